package voice

import "testing"

func TestPolishStripsQualifiers(t *testing.T) {
	in := "  Augustine might say that the heart is restless. "
	if got := Polish(in, false); got != "that the heart is restless." {
		t.Fatalf("unexpected output: %q", got)
	}

	in = "Based on Augustine's writings, love is the weight of the soul."
	if got := Polish(in, false); got != ", love is the weight of the soul." {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestPolishEmoji(t *testing.T) {
	got := Polish("My dear child, I pray for you.", true)
	want := Emoji + " My dear child, " + Emoji + " I pray for you."
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}

	if got := Polish("I pray for you.", false); got != "I pray for you." {
		t.Fatalf("emoji should be off: %q", got)
	}
}

func TestPolishUntouched(t *testing.T) {
	in := "Tolle, lege."
	if got := Polish(in, true); got != in {
		t.Fatalf("unexpected change: %q", got)
	}
}

func TestOptionsApply(t *testing.T) {
	raw := "Augustine might say: I seek."
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"off keeps raw answer", Options{}, raw},
		{"polish strips qualifiers", Options{Polish: true}, ": I seek."},
		{"emoji implies polish", Options{Emoji: true}, ": " + Emoji + " I seek."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.Apply(raw); got != tt.want {
				t.Fatalf("Apply() = %q, want %q", got, tt.want)
			}
		})
	}
}
