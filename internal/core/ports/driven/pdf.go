package driven

import (
	"context"

	"github.com/archibald-labs/archisync/internal/core/domain"
)

// PageSource yields the tables of an export one page at a time.
// Pages are extracted on demand so a multi-thousand-page file is never
// held in memory.
type PageSource interface {
	// NumPages returns the number of pages in the export.
	NumPages() int

	// Page extracts the table on the zero-based page index.
	// Returns nil and no error for a page without a table.
	Page(ctx context.Context, index int) (*domain.Table, error)

	// Close releases the underlying file.
	Close() error
}

// PDFOpener opens exports for decoding.
type PDFOpener interface {
	// Open validates the file and returns its page source.
	Open(ctx context.Context, path string) (PageSource, error)
}

// PDFLocator finds the latest export of an entity type.
// The export is produced by an external collaborator.
type PDFLocator interface {
	// Locate returns the path of the export.
	// Returns domain.ErrExportNotFound if no export is available.
	Locate(ctx context.Context, entityType domain.EntityType) (string, error)
}
