package engine

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const minTokenRunes = 2

// Tokenize splits text into lowercase terms: maximal runs of letters, digits
// and underscores at least two runes long. No stemming or stop-word removal.
func Tokenize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	text = norm.NFKC.String(text)

	out := make([]string, 0, 24)
	var b strings.Builder
	runes := 0
	flush := func() {
		if runes >= minTokenRunes {
			out = append(out, b.String())
		}
		b.Reset()
		runes = 0
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(unicode.ToLower(r))
			runes++
			continue
		}
		flush()
	}
	flush()
	return out
}
