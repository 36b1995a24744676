package driven

import "github.com/archibald-labs/archisync/internal/core/domain"

// FieldNormaliser converts raw cell text into canonical field values.
type FieldNormaliser interface {
	// Normalise returns normalised fields for every field in the layout.
	// Values that cannot be parsed become null and are reported as issues.
	Normalise(layout domain.Layout, raw domain.Fields) (domain.Fields, []FieldIssue)
}

// FieldIssue describes a value that could not be normalised.
type FieldIssue struct {
	// Field is the canonical field name.
	Field string

	// Raw is the cell text that failed to parse.
	Raw string
}
