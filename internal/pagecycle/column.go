package pagecycle

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Fold canonicalises header text for comparison: NFC, upper case, typographic
// apostrophes replaced and whitespace collapsed. "Quantità" and "QUANTITÀ"
// fold to the same string.
func Fold(s string) string {
	s = norm.NFC.String(s)
	s = strings.NewReplacer("’", "'", "‘", "'", "`", "'").Replace(s)
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// ResolveColumn finds the column of a field in a page header.
// Candidates are tried in order, first as exact folded matches, then as
// substrings of a header cell. When nothing matches the fallback index is
// returned; -1 means the field is absent from the page.
func ResolveColumn(header, candidates []string, fallback int) int {
	folded := make([]string, len(header))
	for i, h := range header {
		folded[i] = Fold(h)
	}

	for _, c := range candidates {
		want := Fold(c)
		for i, h := range folded {
			if h == want {
				return i
			}
		}
	}

	for _, c := range candidates {
		want := Fold(c)
		if want == "" {
			continue
		}
		for i, h := range folded {
			if strings.Contains(h, want) {
				return i
			}
		}
	}

	return fallback
}
