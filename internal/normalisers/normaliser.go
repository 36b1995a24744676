package normalisers

import (
	"strconv"
	"strings"

	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/core/ports/driven"
	"github.com/archibald-labs/archisync/internal/normalisers/italian"
)

// Ensure Normaliser implements the interface.
var _ driven.FieldNormaliser = (*Normaliser)(nil)

// Normaliser applies the per-kind field conversions.
type Normaliser struct{}

// New creates a new field normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Normalise returns a new field set with every layout field converted.
// Values that fail to parse become null and are reported as issues;
// the raw map is not modified.
func (n *Normaliser) Normalise(layout domain.Layout, raw domain.Fields) (domain.Fields, []driven.FieldIssue) {
	out := make(domain.Fields, len(layout.Fields))
	var issues []driven.FieldIssue

	for _, spec := range layout.Fields {
		value, ok := n.Field(spec.Kind, raw[spec.Name])
		if !ok {
			issues = append(issues, driven.FieldIssue{Field: spec.Name, Raw: raw[spec.Name]})
		}
		out[spec.Name] = value
	}

	return out, issues
}

// Field converts a single value. Empty input is null and not an issue.
func (n *Normaliser) Field(kind domain.FieldKind, raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", true
	}

	switch kind {
	case domain.KindDisplayPrice:
		// Verbatim apart from surrounding whitespace.
		return trimmed, true
	case domain.KindMultiline:
		return italian.CollapseWhitespace(trimmed), true
	case domain.KindDate, domain.KindDateTime:
		return italian.ParseDate(trimmed)
	case domain.KindPercent:
		v, ok := italian.ParsePercent(trimmed)
		if !ok {
			return "", false
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case domain.KindAmount:
		d, ok := italian.ParseAmount(trimmed)
		if !ok {
			return "", false
		}
		return d.String(), true
	default:
		return italian.CollapseWhitespace(trimmed), true
	}
}
