package tweet

import "strings"

// MaxLength is the tweet limit in characters.
const MaxLength = 280

const ellipsis = "..."

// Shape collapses whitespace runs to single spaces and bounds text to
// MaxLength characters, ending truncated text with an ellipsis.
func Shape(text string) string {
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) <= MaxLength {
		return text
	}
	return string(runes[:MaxLength-len(ellipsis)]) + ellipsis
}
