package pagecycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/core/ports/driven"
	"github.com/archibald-labs/archisync/internal/logger"
)

// EmitFunc receives each decoded record. Returning an error stops the
// decode; the error is returned by Decode unchanged.
type EmitFunc func(rec domain.ParsedRecord) error

// Progress reports decoding progress after each cycle.
type Progress struct {
	// PagesRead is the number of pages consumed so far.
	PagesRead int

	// TotalPages is the page count of the export.
	TotalPages int

	// Cycles is the number of cycles decoded so far.
	Cycles int
}

// Decoder turns a page source into records according to a layout.
type Decoder struct {
	layout domain.Layout
	log    logger.Scoped

	// OnCycle, if set, is called after every cycle.
	OnCycle func(Progress)
}

// NewDecoder creates a decoder for a layout.
func NewDecoder(layout domain.Layout) *Decoder {
	return &Decoder{layout: layout, log: logger.For("decode", string(layout.EntityType))}
}

// Decode reads the source one cycle at a time and emits one raw record per
// data row of the anchor page. Fields hold the cell text untouched apart
// from JoinWith concatenation.
//
// Rows are aligned by index across the pages of a cycle. An artifact row
// of the anchor page drops the same index on every page; a blank cell on
// any other page stays a null field of its record.
//
// A page that fails to extract, or an in-range page without a table, stops
// the decode with domain.ErrDecode. A page with fewer rows than the anchor
// yields null fields and marks the affected records partial.
func (d *Decoder) Decode(ctx context.Context, src driven.PageSource, emit EmitFunc) error {
	per := d.layout.PagesPerCycle
	if per <= 0 {
		return fmt.Errorf("%w: pages per cycle must be positive", domain.ErrInvalidInput)
	}

	total := src.NumPages()
	cycles := (total + per - 1) / per

	for cycle := 0; cycle < cycles; cycle++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		tables, err := d.readCycle(ctx, src, cycle, total)
		if err != nil {
			return err
		}

		if err := d.emitCycle(cycle, tables, emit); err != nil {
			return err
		}

		if d.OnCycle != nil {
			d.OnCycle(Progress{
				PagesRead:  min((cycle+1)*per, total),
				TotalPages: total,
				Cycles:     cycle + 1,
			})
		}
	}

	return nil
}

// readCycle extracts the pages of one cycle. Pages past the end of the
// file are returned as nil.
func (d *Decoder) readCycle(ctx context.Context, src driven.PageSource, cycle, total int) ([]*domain.Table, error) {
	per := d.layout.PagesPerCycle
	start := cycle * per
	tables := make([]*domain.Table, per)

	for i := 0; i < per; i++ {
		index := start + i
		if index >= total {
			d.log.Warn("cycle %d truncated at page %d of %d", cycle, index, total)
			break
		}

		table, err := src.Page(ctx, index)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", domain.ErrDecode, index+1, err)
		}
		if table == nil {
			return nil, fmt.Errorf("%w: page %d has no table", domain.ErrDecode, index+1)
		}
		table.Rows = trimLeading(table)
		tables[i] = table
	}

	return tables, nil
}

// emitCycle aligns the rows of a cycle and emits one record per anchor row.
func (d *Decoder) emitCycle(cycle int, tables []*domain.Table, emit EmitFunc) error {
	anchor := pageOf(tables, d.layout.AnchorPage)
	if anchor == nil {
		return nil
	}

	columns := d.resolveColumns(tables)

	emitted := 0
	for row, cells := range anchor.Rows {
		if IsArtifactRow(cells, anchor.Header) {
			continue
		}

		fields := make(domain.Fields, len(d.layout.Fields))
		partial := false

		for i, spec := range d.layout.Fields {
			table := pageOf(tables, spec.Page)
			if table == nil || row >= len(table.Rows) {
				partial = true
				continue
			}
			if columns[i] < 0 {
				continue
			}
			fields[spec.Name] = strings.TrimSpace(table.Cell(row, columns[i]))
		}

		for _, spec := range d.layout.Fields {
			if spec.JoinWith == "" {
				continue
			}
			fields[spec.Name] = strings.TrimSpace(fields[spec.Name] + " " + fields[spec.JoinWith])
		}

		if partial {
			d.log.Warn("cycle %d row %d: fewer rows on a cycle page than on the anchor", cycle, row)
		}

		rec := domain.ParsedRecord{
			Type:    d.layout.EntityType,
			Fields:  fields,
			Partial: partial,
			Cycle:   cycle,
			Row:     emitted,
		}
		if err := emit(rec); err != nil {
			return err
		}
		emitted++
	}

	return nil
}

// resolveColumns maps every layout field to a column of its page.
func (d *Decoder) resolveColumns(tables []*domain.Table) []int {
	columns := make([]int, len(d.layout.Fields))
	for i, spec := range d.layout.Fields {
		table := pageOf(tables, spec.Page)
		if table == nil {
			columns[i] = -1
			continue
		}
		columns[i] = ResolveColumn(table.Header, spec.Headers, spec.Index)
		if columns[i] < 0 {
			d.log.Debug("no column for %s on cycle page %d", spec.Name, spec.Page)
		}
	}
	return columns
}

// pageOf returns the table at a cycle offset, or nil when the offset lies
// outside the cycle.
func pageOf(tables []*domain.Table, page int) *domain.Table {
	if page < 0 || page >= len(tables) {
		return nil
	}
	return tables[page]
}

// trimLeading drops the repeated-header and page-marker rows the ERP prints
// above the first data row. Blank rows are kept: they hold the null cells
// of a record.
func trimLeading(t *domain.Table) [][]string {
	rows := t.Rows
	for len(rows) > 0 && !isBlankRow(rows[0]) && IsArtifactRow(rows[0], t.Header) {
		rows = rows[1:]
	}
	return rows
}
