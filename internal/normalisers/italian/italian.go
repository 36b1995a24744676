// Package italian parses the Italian locale formats the ERP renders into
// its PDF exports: DD/MM/YYYY dates, "21,49 %" percentages and
// "1.234,56 €" amounts. Every parser reports failure through its boolean
// result and never panics.
package italian

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/archibald-labs/archisync/internal/core/domain"
)

const (
	dateLayout     = "02/01/2006"
	dateTimeLayout = "02/01/2006 15:04:05"

	isoDate     = "2006-01-02"
	isoDateTime = "2006-01-02T15:04:05"
)

// ParseDate converts DD/MM/YYYY to YYYY-MM-DD and DD/MM/YYYY HH:MM:SS to
// YYYY-MM-DDTHH:MM:SS. Empty or unparseable input returns ("", false).
func ParseDate(text string) (string, bool) {
	t, withTime, ok := parse(text)
	if !ok {
		return "", false
	}
	if withTime {
		return t.Format(isoDateTime), true
	}
	return t.Format(isoDate), true
}

// ParseDateTime parses either Italian form into a time in UTC.
func ParseDateTime(text string) (time.Time, bool) {
	t, _, ok := parse(text)
	return t, ok
}

// ParseISO parses a value already normalised by ParseDate.
func ParseISO(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{isoDateTime, isoDate} {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parse(text string) (time.Time, bool, bool) {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return time.Time{}, false, false
	}
	if t, err := time.Parse(dateTimeLayout, text); err == nil {
		return t, true, true
	}
	// Some exports render the time without seconds.
	if t, err := time.Parse("02/01/2006 15:04", text); err == nil {
		return t, true, true
	}
	if t, err := time.Parse(dateLayout, text); err == nil {
		return t, false, true
	}
	return time.Time{}, false, false
}

// ParsePercent converts "21,49 %" to 21.49.
func ParsePercent(text string) (float64, bool) {
	d, ok := ParseAmount(strings.ReplaceAll(text, "%", ""))
	if !ok {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// ParseAmount converts an Italian-formatted number such as "1.234,56 €"
// to a decimal. Dots are thousand separators, the comma is the decimal mark.
func ParseAmount(text string) (decimal.Decimal, bool) {
	cleaned := strings.NewReplacer("€", "", "%", "", " ", "", "\u00a0", "", ".", "").Replace(text)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" || cleaned == "-" {
		return decimal.Zero, false
	}
	cleaned = strings.Replace(cleaned, ",", ".", 1)

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseAmountFloat is ParseAmount for callers that accept float rounding.
func ParseAmountFloat(text string) (float64, bool) {
	d, ok := ParseAmount(text)
	if !ok {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// Comparable converts a display price into a value that can be compared
// or summed. The display price itself is never modified.
func Comparable(p domain.DisplayPrice) (decimal.Decimal, bool) {
	return ParseAmount(string(p))
}

// FormatAmount renders a decimal the way the ERP does, e.g. "1.234,56 €".
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := b.String() + "," + frac + " €"
	if neg {
		return "-" + out
	}
	return out
}

// CollapseWhitespace joins multi-line cells into a single spaced line.
func CollapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
