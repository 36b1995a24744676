// Package xlsx writes matcher review sheets as Excel workbooks.
package xlsx

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/core/ports/driven"
)

// Ensure Exporter implements the interface.
var _ driven.ReviewExporter = (*Exporter)(nil)

// Sheet names.
const (
	SheetUnmatched     = "Unmatched"
	SheetLowConfidence = "LowConfidence"
)

var (
	unmatchedHeadings     = []string{"Pair", "Source", "Reason", "Candidates", "Detail"}
	lowConfidenceHeadings = []string{"Pair", "Source", "Target", "Strategy", "Confidence"}
)

// Exporter writes one workbook with a sheet for unmatched source records
// and one for associations flagged as low confidence.
type Exporter struct{}

// NewExporter creates an exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export writes the review workbook to w.
func (e *Exporter) Export(ctx context.Context, w io.Writer, results []*domain.MatchResult) error {
	f := excelize.NewFile()
	defer f.Close()

	// The default sheet is renamed rather than left empty.
	if err := f.SetSheetName(f.GetSheetName(0), SheetUnmatched); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetLowConfidence); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	if err := writeRow(f, SheetUnmatched, 1, toAny(unmatchedHeadings)); err != nil {
		return err
	}
	if err := writeRow(f, SheetLowConfidence, 1, toAny(lowConfidenceHeadings)); err != nil {
		return err
	}

	unmatchedRow, lowRow := 2, 2
	for _, res := range results {
		if err := ctx.Err(); err != nil {
			return err
		}
		if res == nil {
			continue
		}

		for _, u := range res.Unmatched {
			values := []any{string(res.Pair), u.SourceKey, string(u.Reason), strings.Join(u.Candidates, ", "), u.Detail}
			if err := writeRow(f, SheetUnmatched, unmatchedRow, values); err != nil {
				return err
			}
			unmatchedRow++
		}

		for _, a := range res.LowConfidence() {
			values := []any{string(res.Pair), a.SourceKey, a.TargetKey, string(a.Strategy), a.Confidence}
			if err := writeRow(f, SheetLowConfidence, lowRow, values); err != nil {
				return err
			}
			lowRow++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
