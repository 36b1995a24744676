package pdf

import (
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// word builds a run of text at x, 6 units per glyph at font size 10.
func word(x float64, s string) pdf.Text {
	return pdf.Text{X: x, W: float64(len(s)) * 6, S: s, FontSize: 10}
}

func row(pos int64, texts ...pdf.Text) *pdf.Row {
	return &pdf.Row{Position: pos, Content: texts}
}

func TestBuildTable(t *testing.T) {
	rows := pdf.Rows{
		row(700, word(10, "ID"), word(100, "DATA"), word(127, "CREAZIONE"), word(300, "CLIENTE")),
		row(680, word(10, "1001"), word(100, "02/03/2026"), word(300, "Rossi"), word(333, "Srl")),
		row(660, word(10, "1002"), word(300, "Bianchi")),
	}

	table := buildTable(rows)
	require.NotNil(t, table)

	assert.Equal(t, []string{"ID", "DATA CREAZIONE", "CLIENTE"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"1001", "02/03/2026", "Rossi Srl"}, table.Rows[0])
	assert.Equal(t, []string{"1002", "", "Bianchi"}, table.Rows[1])
}

func TestBuildTable_GlyphRunsJoin(t *testing.T) {
	// Per-glyph output with no gap between glyphs forms one word.
	rows := pdf.Rows{
		row(700, word(10, "Q"), word(16, "T"), word(22, "A")),
		row(680, word(10, "1"), word(16, "2")),
	}

	table := buildTable(rows)
	require.NotNil(t, table)
	assert.Equal(t, []string{"QTA"}, table.Header)
	assert.Equal(t, [][]string{{"12"}}, table.Rows)
}

func TestBuildTable_RightAlignedNumbers(t *testing.T) {
	rows := pdf.Rows{
		row(700, word(10, "ARTICOLO"), word(200, "PREZZO")),
		row(680, word(10, "Vite"), word(190, "1.234,56")),
	}

	table := buildTable(rows)
	require.NotNil(t, table)
	assert.Equal(t, [][]string{{"Vite", "1.234,56"}}, table.Rows)
}

func TestBuildTable_TrailingEmptyCellsDropped(t *testing.T) {
	rows := pdf.Rows{
		row(700, word(10, "A"), word(100, "B"), word(200, "C")),
		row(680, word(10, "x")),
	}

	table := buildTable(rows)
	require.NotNil(t, table)
	assert.Equal(t, [][]string{{"x"}}, table.Rows)
}

func TestBuildTable_WrappedCellStaysInItsRow(t *testing.T) {
	rows := pdf.Rows{
		row(700, word(10, "NOME"), word(200, "INDIRIZZO")),
		row(680, word(10, "Rossi"), word(200, "Via Roma 1")),
		row(672, word(200, "80100 Napoli")),
		row(656, word(10, "Bianchi"), word(200, "Via Po 2")),
	}

	table := buildTable(rows)
	require.NotNil(t, table)
	assert.Equal(t, [][]string{
		{"Rossi", "Via Roma 1\n80100 Napoli"},
		{"Bianchi", "Via Po 2"},
	}, table.Rows)
}

func TestBuildTable_EmptyFirstColumnAtRowPitchIsARow(t *testing.T) {
	rows := pdf.Rows{
		row(700, word(10, "NOME"), word(200, "INDIRIZZO")),
		row(680, word(10, "Rossi"), word(200, "Via Roma 1")),
		row(672, word(200, "80100 Napoli")),
		row(656, word(10, "Bianchi"), word(200, "Via Po 2")),
		row(640, word(10, "Verdi"), word(200, "Via Tevere 9")),
		row(624, word(200, "Via Manzoni 4")),
	}

	table := buildTable(rows)
	require.NotNil(t, table)
	require.Len(t, table.Rows, 4)
	assert.Equal(t, []string{"Rossi", "Via Roma 1\n80100 Napoli"}, table.Rows[0])
	assert.Equal(t, []string{"", "Via Manzoni 4"}, table.Rows[3])
}

func TestBuildTable_FooterNotMerged(t *testing.T) {
	rows := pdf.Rows{
		row(700, word(10, "NOME"), word(200, "TOTALE")),
		row(680, word(10, "Rossi"), word(200, "10,00")),
		row(672, word(200, "Count=1")),
	}

	table := buildTable(rows)
	require.NotNil(t, table)
	assert.Equal(t, [][]string{{"Rossi", "10,00"}, {"", "Count=1"}}, table.Rows)
}

func TestBuildTable_Empty(t *testing.T) {
	assert.Nil(t, buildTable(nil))
	assert.Nil(t, buildTable(pdf.Rows{row(700, pdf.Text{X: 10, S: ""}), nil}))
}
