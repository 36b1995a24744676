package domain

// FieldKind selects the normaliser applied to a raw cell.
type FieldKind string

// Field kinds.
const (
	// KindText is trimmed and stored as-is.
	KindText FieldKind = "text"

	// KindMultiline collapses internal whitespace and line breaks.
	KindMultiline FieldKind = "multiline"

	// KindDate converts DD/MM/YYYY to YYYY-MM-DD.
	KindDate FieldKind = "date"

	// KindDateTime converts DD/MM/YYYY HH:MM:SS to YYYY-MM-DDTHH:MM:SS.
	KindDateTime FieldKind = "datetime"

	// KindPercent converts "21,49 %" to "21.49".
	KindPercent FieldKind = "percent"

	// KindDisplayPrice keeps the locale-formatted string verbatim.
	KindDisplayPrice FieldKind = "display_price"

	// KindAmount converts "1.234,56" to "1234.56".
	KindAmount FieldKind = "amount"
)

// IsValid returns true if the field kind is recognised.
func (k FieldKind) IsValid() bool {
	switch k {
	case KindText, KindMultiline, KindDate, KindDateTime,
		KindPercent, KindDisplayPrice, KindAmount:
		return true
	default:
		return false
	}
}

// FieldSpec locates one field inside a page cycle.
type FieldSpec struct {
	// Name is the canonical field name used in storage.
	Name string `validate:"required"`

	// Page is the offset of the page within the cycle, starting at 0.
	Page int `validate:"gte=0"`

	// Headers are candidate header texts, tried in order.
	Headers []string

	// Index is the column used when no header matches. -1 disables the fallback.
	Index int `validate:"gte=-1"`

	// Kind selects the normaliser.
	Kind FieldKind `validate:"required"`

	// JoinWith names another field of the layout whose raw value is
	// appended to this one, separated by a space.
	JoinWith string
}

// Layout describes how records of one entity type are spread across pages.
type Layout struct {
	// EntityType is the export this layout decodes.
	EntityType EntityType `validate:"required"`

	// PagesPerCycle is the number of consecutive pages that together hold
	// one batch of records.
	PagesPerCycle int `validate:"oneof=3 4 6 7 8"`

	// AnchorPage is the page whose data rows define the records of a cycle.
	AnchorPage int `validate:"gte=0,ltfield=PagesPerCycle"`

	// CycleHeader is the first header cell of the anchor page, used to
	// detect the cycle size from the file.
	CycleHeader string

	// Fields lists every field of the record.
	Fields []FieldSpec `validate:"required,min=1,dive"`
}

// FieldNames returns the stored field names in layout order.
func (l Layout) FieldNames() []string {
	names := make([]string, 0, len(l.Fields))
	for _, f := range l.Fields {
		names = append(names, f.Name)
	}
	return names
}

// FieldsOnPage returns the field specs that live on the given page offset.
func (l Layout) FieldsOnPage(page int) []FieldSpec {
	var specs []FieldSpec
	for _, f := range l.Fields {
		if f.Page == page {
			specs = append(specs, f)
		}
	}
	return specs
}

// Span returns the fewest pages a cycle needs to hold the anchor and
// every field.
func (l Layout) Span() int {
	last := l.AnchorPage
	for _, f := range l.Fields {
		last = max(last, f.Page)
	}
	return last + 1
}

// Table is the tabular content extracted from one PDF page.
type Table struct {
	// Header holds the column titles.
	Header []string

	// Rows holds the data rows. Rows may be shorter than Header.
	Rows [][]string
}

// Cell returns the cell at row r and column c, or "" when out of range.
func (t *Table) Cell(r, c int) string {
	if t == nil || r < 0 || r >= len(t.Rows) || c < 0 || c >= len(t.Rows[r]) {
		return ""
	}
	return t.Rows[r][c]
}
