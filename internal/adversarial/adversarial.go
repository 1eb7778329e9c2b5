package adversarial

import (
	"unicode"
)

// DefaultMaxInvisibleRatio is the share of invisible runes above which text
// counts as obfuscated.
const DefaultMaxInvisibleRatio = 0.05

type Result struct {
	IsAdversarial bool
	Reason        string
	Invisible     int
	Total         int
}

// Ratio is the share of invisible runes in the checked text.
func (r Result) Ratio() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Invisible) / float64(r.Total)
}

// Check counts invisible and zero-width runes in text and flags it when their
// share exceeds maxRatio.
func Check(text string, maxRatio float64) Result {
	var res Result
	for _, r := range text {
		if IsInvisible(r) {
			res.Invisible++
		}
		res.Total++
	}
	if res.Total > 0 && res.Ratio() > maxRatio {
		res.IsAdversarial = true
		res.Reason = "high share of invisible characters"
	}
	return res
}

// IsInvisible reports whether r renders as nothing: zero-width marks, the
// byte order mark, and other non-printing runes that are not whitespace.
func IsInvisible(r rune) bool {
	switch r {
	case '\u200B', '\u200C', '\u200D', '\u2060', '\uFEFF', '\u00AD':
		return true
	}
	return !unicode.IsPrint(r) && !unicode.IsSpace(r)
}
