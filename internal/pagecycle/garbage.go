package pagecycle

import (
	"regexp"
	"strings"
)

// Pagination and aggregate rows the ERP prints inside its tables.
var artifactPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^count\s*=`),
	regexp.MustCompile(`(?i)^sum\s*=`),
	regexp.MustCompile(`(?i)^pagina\s+\d+\s+di\s+\d+$`),
	regexp.MustCompile(`(?i)^page\s+\d+\s+of\s+\d+$`),
}

// IsGarbageKey reports whether a natural key marks an empty or
// placeholder row. The ERP pads short cycles with rows whose ID is "0".
func IsGarbageKey(key string) bool {
	key = strings.TrimSpace(key)
	return key == "" || key == "0"
}

// IsArtifactRow reports whether a table row is not a data row: blank,
// a "Count=… Sum=…" footer, a page marker, or a repeat of the header.
func IsArtifactRow(cells, header []string) bool {
	first := ""
	nonEmpty := 0
	for _, c := range cells {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if first == "" {
			first = c
		}
		nonEmpty++
	}
	if nonEmpty == 0 {
		return true
	}

	for _, re := range artifactPatterns {
		if re.MatchString(first) {
			return true
		}
	}

	return len(header) > 0 && repeatsHeader(cells, header)
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func repeatsHeader(cells, header []string) bool {
	matched := 0
	for i, c := range cells {
		if strings.TrimSpace(c) == "" {
			continue
		}
		if i >= len(header) || Fold(c) != Fold(header[i]) {
			return false
		}
		matched++
	}
	return matched > 0
}
