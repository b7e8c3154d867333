// Package voice cleans model output so it reads in the persona's own voice.
package voice

import "strings"

// Emoji prefixes first-person phrases when emoji polishing is on.
const Emoji = "🧙‍♂️"

var qualifiers = []string{
	"While it is not possible to have Augustine directly",
	"Augustine might say",
	"Based on Augustine's writings",
	"It is likely that Augustine would respond",
	"According to Augustine's thoughts",
	"In his writings, Augustine",
}

// Polish strips third-person qualifiers and trims the result. With emoji set,
// "I " and "My dear child," are prefixed with Emoji.
func Polish(text string, emoji bool) string {
	for _, phrase := range qualifiers {
		text = strings.ReplaceAll(text, phrase, "")
	}
	text = strings.TrimSpace(text)

	if emoji {
		text = strings.ReplaceAll(text, "I ", Emoji+" I ")
		text = strings.ReplaceAll(text, "My dear child,", Emoji+" My dear child,")
	}
	return text
}

// Options toggles polishing of raw answers. The zero value leaves text untouched.
type Options struct {
	Polish bool
	Emoji  bool
}

// Apply polishes text when either option is set.
func (o Options) Apply(text string) string {
	if !o.Polish && !o.Emoji {
		return text
	}
	return Polish(text, o.Emoji)
}
