package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Text lowercases, trims surrounding whitespace, and strips combining
// diacritical marks (NFD decomposition, then removal of nonspacing marks).
// Empty input passes through unchanged. Idempotent.
func Text(s string) string {
	if s == "" {
		return s
	}

	s = strings.ToLower(strings.TrimSpace(s))

	// Transformers carry internal state, so build a fresh chain per call;
	// concurrent filter requests share nothing this way.
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn))), s)
	if err != nil {
		return s
	}
	return folded
}

// Alnum applies Text and then keeps ASCII letters and digits only. Used to
// build grouping keys where punctuation and spacing variants must collapse.
func Alnum(s string) string {
	s = Text(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}
