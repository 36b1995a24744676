package domain

import (
	"strings"
	"time"
)

// Fields maps canonical field names to normalised values.
// A missing key and an empty string both mean null.
type Fields map[string]string

// Get returns the trimmed value of a field, "" when null.
func (f Fields) Get(name string) string {
	return strings.TrimSpace(f[name])
}

// IsNull returns true if the field is missing or blank.
func (f Fields) IsNull(name string) bool {
	return f.Get(name) == ""
}

// Clone returns a copy of the fields.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// ParsedRecord is one row produced by the page-cycle decoder.
// It is transient: normalised, filtered, then folded into the store.
type ParsedRecord struct {
	// Type is the entity type of the export.
	Type EntityType

	// Key is the natural key, taken from the policy's key field.
	Key string

	// Fields holds the field values.
	Fields Fields

	// Partial is set when a page of the cycle had fewer rows than the anchor.
	Partial bool

	// Cycle is the zero-based index of the page cycle the row came from.
	Cycle int

	// Row is the zero-based row index within the anchor page.
	Row int
}

// StoredRecord is the persisted form of a record.
type StoredRecord struct {
	// Type is the entity type.
	Type EntityType

	// Key is the natural key.
	Key string

	// Fields holds the last written field values.
	Fields Fields

	// ContentHash is the digest of the significant fields.
	ContentHash string

	// LastSyncAt is when a sync last saw this record, changed or not.
	LastSyncAt time.Time

	// CreatedAt is when the record was first inserted.
	CreatedAt time.Time

	// UpdatedAt is when the business fields were last written.
	UpdatedAt time.Time
}

// UpsertOutcome reports what the delta store did with a record.
type UpsertOutcome string

// Upsert outcomes.
const (
	OutcomeInserted UpsertOutcome = "inserted"
	OutcomeUpdated  UpsertOutcome = "updated"
	OutcomeSkipped  UpsertOutcome = "skipped"
)

// RecordFilter narrows a record listing.
type RecordFilter struct {
	// KeyPrefix keeps records whose key starts with the prefix.
	KeyPrefix string

	// FieldEquals keeps records whose fields equal every given value.
	FieldEquals map[string]string

	// Limit caps the result size. Zero means no limit.
	Limit int

	// Offset skips the first records, ordered by key.
	Offset int
}

// Matches reports whether a record satisfies the filter, ignoring paging.
func (f RecordFilter) Matches(rec *StoredRecord) bool {
	if f.KeyPrefix != "" && !strings.HasPrefix(rec.Key, f.KeyPrefix) {
		return false
	}
	for name, want := range f.FieldEquals {
		if rec.Fields.Get(name) != want {
			return false
		}
	}
	return true
}

// DisplayPrice is a currency value kept exactly as the ERP rendered it,
// e.g. "1.234,56 €". It is opaque: convert it explicitly to compare.
type DisplayPrice string

// String returns the verbatim text.
func (p DisplayPrice) String() string {
	return string(p)
}

// IsEmpty returns true if no price was rendered.
func (p DisplayPrice) IsEmpty() bool {
	return strings.TrimSpace(string(p)) == ""
}
