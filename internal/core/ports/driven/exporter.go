package driven

import (
	"context"
	"io"

	"github.com/archibald-labs/archisync/internal/core/domain"
)

// ReviewExporter writes matcher results that need a human decision.
type ReviewExporter interface {
	// Export writes the unmatched records and low-confidence associations
	// of each result.
	Export(ctx context.Context, w io.Writer, results []*domain.MatchResult) error
}
