package keyword

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinLength is the exclusive lower bound on keyword length, in runes.
const MinLength = 3

// Extract lower-cases text, splits it on anything that is not a letter or digit
// and returns the distinct words longer than MinLength in sorted order.
func Extract(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) <= MinLength {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
