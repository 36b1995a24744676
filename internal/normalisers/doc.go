// Package normalisers converts the raw cell text of a decoded record into
// canonical field values according to each field's kind.
//
// Locale-specific parsing lives in the italian subpackage. The Normaliser
// here only dispatches on domain.FieldKind and decides what becomes null.
package normalisers
