package pagecycle

import (
	"context"
	"fmt"

	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/core/ports/driven"
	"github.com/archibald-labs/archisync/internal/logger"
)

// maxScan bounds the pages read while looking for the cycle header.
const maxScan = 24

// DetectCycleSize finds the distance between the first two pages whose
// first header cell is the cycle header. It returns expected when the
// header does not repeat within the scanned pages, and logs a warning when
// the detected size differs from expected.
func DetectCycleSize(ctx context.Context, src driven.PageSource, cycleHeader string, expected int) (int, error) {
	if cycleHeader == "" {
		return expected, nil
	}
	want := Fold(cycleHeader)

	first := -1
	limit := min(src.NumPages(), maxScan)
	for i := 0; i < limit; i++ {
		table, err := src.Page(ctx, i)
		if err != nil {
			return 0, fmt.Errorf("%w: page %d: %w", domain.ErrDecode, i+1, err)
		}
		if table == nil || len(table.Header) == 0 || Fold(table.Header[0]) != want {
			continue
		}
		if first < 0 {
			first = i
			continue
		}

		detected := i - first
		if detected != expected {
			logger.For("decode").Warn("detected %d pages per cycle, expected %d", detected, expected)
		}
		return detected, nil
	}

	return expected, nil
}
