package pdf

import (
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/pagecycle"
)

// Gaps are measured in multiples of the font size.
const (
	// wordGap separates glyph runs that belong to different words.
	wordGap = 0.2
	// cellGap separates words that belong to different cells.
	cellGap = 1.5
)

// A line closer than this fraction of the row pitch to the line above it
// continues the row above.
const continuationPitch = 0.85

// cell is a run of text with its horizontal extent.
type cell struct {
	x0, x1 float64
	text   string
}

func (c cell) center() float64 {
	return (c.x0 + c.x1) / 2
}

// textLine is one row of text with its vertical position.
type textLine struct {
	y     int64
	cells []cell
}

// placedLine is a text line laid out under the header columns.
type placedLine struct {
	y     int64
	cells []string
}

// buildTable turns positioned text rows into a table. The first row with
// text is the header; every header cell becomes a column, and data cells
// are placed in the column whose span holds their center. A cell wrapped
// over several lines stays in one row, its lines joined by "\n".
func buildTable(rows pdf.Rows) *domain.Table {
	var lines []textLine
	for _, row := range rows {
		if row == nil {
			continue
		}
		if cells := splitCells(row.Content); len(cells) > 0 {
			lines = append(lines, textLine{y: row.Position, cells: cells})
		}
	}
	if len(lines) == 0 {
		return nil
	}

	header := lines[0].cells
	table := &domain.Table{Header: make([]string, len(header))}
	for i, c := range header {
		table.Header[i] = c.text
	}

	bounds := columnBounds(header)
	placed := make([]placedLine, 0, len(lines)-1)
	for _, line := range lines[1:] {
		placed = append(placed, placedLine{y: line.y, cells: placeCells(line.cells, bounds)})
	}
	table.Rows = mergeContinuations(placed, table.Header)
	return table
}

// mergeContinuations folds wrapped lines into the row they continue. A
// line continues the row above when its first column is empty and it sits
// closer than the row pitch, the smallest gap between two consecutive
// lines that both start a row. Without a measurable pitch every line with
// an empty first column is a continuation. Footers and page markers are
// never merged.
func mergeContinuations(lines []placedLine, header []string) [][]string {
	pitch := int64(0)
	for i := 1; i < len(lines); i++ {
		if !startsRow(lines[i-1].cells) || !startsRow(lines[i].cells) {
			continue
		}
		if gap := absGap(lines[i-1].y, lines[i].y); gap > 0 && (pitch == 0 || gap < pitch) {
			pitch = gap
		}
	}

	var rows [][]string
	for i, line := range lines {
		continues := i > 0 && len(rows) > 0 && !startsRow(line.cells) &&
			!pagecycle.IsArtifactRow(line.cells, header)
		if continues && pitch > 0 {
			continues = float64(absGap(lines[i-1].y, line.y)) < continuationPitch*float64(pitch)
		}
		if !continues {
			rows = append(rows, line.cells)
			continue
		}

		last := rows[len(rows)-1]
		for len(last) < len(line.cells) {
			last = append(last, "")
		}
		for col, text := range line.cells {
			switch {
			case text == "":
			case last[col] == "":
				last[col] = text
			default:
				last[col] += "\n" + text
			}
		}
		rows[len(rows)-1] = last
	}
	return rows
}

func startsRow(cells []string) bool {
	return len(cells) > 0 && cells[0] != ""
}

func absGap(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}

// splitCells groups the glyph runs of one row into cells.
func splitCells(texts pdf.TextHorizontal) []cell {
	items := make([]pdf.Text, 0, len(texts))
	for _, t := range texts {
		if t.S != "" {
			items = append(items, t)
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].X < items[j].X })

	var cells []cell
	var b strings.Builder
	var cur cell
	open := false

	flush := func() {
		if !open {
			return
		}
		cur.text = strings.TrimSpace(b.String())
		if cur.text != "" {
			cells = append(cells, cur)
		}
		b.Reset()
		open = false
	}

	for _, t := range items {
		size := t.FontSize
		if size <= 0 {
			size = 1
		}
		if open {
			gap := t.X - cur.x1
			switch {
			case gap > cellGap*size:
				flush()
			case gap > wordGap*size:
				b.WriteByte(' ')
			}
		}
		if !open {
			cur = cell{x0: t.X}
			open = true
		}
		b.WriteString(t.S)
		if end := t.X + t.W; end > cur.x1 {
			cur.x1 = end
		}
	}
	flush()
	return cells
}

// columnBounds returns the right edge of each column span. Spans meet
// halfway between neighbouring header cells; the last one is unbounded.
func columnBounds(header []cell) []float64 {
	bounds := make([]float64, len(header))
	for i := range header {
		if i == len(header)-1 {
			bounds[i] = 1e9
			continue
		}
		bounds[i] = (header[i].x1 + header[i+1].x0) / 2
	}
	return bounds
}

// placeCells lays a data row out under the header columns. Cells that
// land in the same column are joined with a space; columns without a
// cell stay empty.
func placeCells(line []cell, bounds []float64) []string {
	out := make([]string, len(bounds))
	for _, c := range line {
		col := sort.SearchFloat64s(bounds, c.center())
		if col >= len(bounds) {
			col = len(bounds) - 1
		}
		if out[col] == "" {
			out[col] = c.text
		} else {
			out[col] += " " + c.text
		}
	}

	// Trailing empty cells carry no information.
	end := len(out)
	for end > 0 && out[end-1] == "" {
		end--
	}
	return out[:end]
}
