package pagecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archibald-labs/archisync/internal/core/domain"
)

// fakeSource implements driven.PageSource over in-memory tables.
type fakeSource struct {
	pages  []*domain.Table
	errAt  int
	reads  []int
	closed bool
}

func newFakeSource(pages ...*domain.Table) *fakeSource {
	return &fakeSource{pages: pages, errAt: -1}
}

func (s *fakeSource) NumPages() int { return len(s.pages) }

func (s *fakeSource) Page(_ context.Context, index int) (*domain.Table, error) {
	s.reads = append(s.reads, index)
	if index == s.errAt {
		return nil, errors.New("corrupt content stream")
	}
	return s.pages[index], nil
}

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}

func table(header []string, rows ...[]string) *domain.Table {
	return &domain.Table{Header: header, Rows: rows}
}

func priceLayout() domain.Layout {
	return domain.Layout{
		EntityType:    domain.EntityPrices,
		PagesPerCycle: 3,
		Fields: []domain.FieldSpec{
			{Name: "id", Page: 0, Headers: []string{"ID"}, Index: 0, Kind: domain.KindText},
			{Name: "item_selection", Page: 0, Headers: []string{"ITEM SELECTION"}, Index: 1, Kind: domain.KindText},
			{Name: "product_name", Page: 1, Headers: []string{"ITEM DESCRIPTION"}, Index: 0, Kind: domain.KindText},
			{Name: "valid_from", Page: 1, Headers: []string{"DA DATA"}, Index: 1, Kind: domain.KindDate},
			{Name: "unit_price", Page: 2, Headers: []string{"IMPORTO UNITARIO"}, Index: 0, Kind: domain.KindDisplayPrice},
		},
	}
}

func collect(t *testing.T, d *Decoder, src *fakeSource) []domain.ParsedRecord {
	t.Helper()
	var out []domain.ParsedRecord
	err := d.Decode(context.Background(), src, func(rec domain.ParsedRecord) error {
		out = append(out, rec)
		return nil
	})
	require.NoError(t, err)
	return out
}

// ==================== Decoder Tests ====================

func TestDecode_ThreePageCycleTwoRecords(t *testing.T) {
	// Six pages, each extracted as a header row plus one data row.
	src := newFakeSource(
		table([]string{"ID", "ITEM SELECTION"}, []string{"P1", "K2"}),
		table([]string{"ITEM DESCRIPTION", "DA DATA"}, []string{"Fresa", "20/01/2026"}),
		table([]string{"IMPORTO UNITARIO"}, []string{"1.234,56 €"}),
		table([]string{"ID", "ITEM SELECTION"}, []string{"P2", "K3"}),
		table([]string{"ITEM DESCRIPTION", "DA DATA"}, []string{"Punta", "01/02/2026"}),
		table([]string{"IMPORTO UNITARIO"}, []string{"12,00 €"}),
	)

	records := collect(t, NewDecoder(priceLayout()), src)

	require.Len(t, records, 2)
	assert.Equal(t, domain.Fields{
		"id": "P1", "item_selection": "K2", "product_name": "Fresa",
		"valid_from": "20/01/2026", "unit_price": "1.234,56 €",
	}, records[0].Fields)
	assert.Equal(t, "P2", records[1].Fields["id"])
	assert.Equal(t, "Punta", records[1].Fields["product_name"])
	assert.Equal(t, "12,00 €", records[1].Fields["unit_price"])
	assert.Equal(t, 1, records[1].Cycle)
	assert.False(t, records[0].Partial)
	assert.Equal(t, domain.EntityPrices, records[0].Type)
}

func TestDecode_MultipleRowsPerCycle(t *testing.T) {
	src := newFakeSource(
		table([]string{"ID", "ITEM SELECTION"}, []string{"P1", "K2"}, []string{"P2", "K3"}),
		table([]string{"ITEM DESCRIPTION", "DA DATA"}, []string{"Fresa", ""}, []string{"Punta", ""}),
		table([]string{"IMPORTO UNITARIO"}, []string{"1,00 €"}, []string{"2,00 €"}),
	)

	records := collect(t, NewDecoder(priceLayout()), src)

	require.Len(t, records, 2)
	assert.Equal(t, "Punta", records[1].Fields["product_name"])
	assert.Equal(t, "2,00 €", records[1].Fields["unit_price"])
	assert.Equal(t, 1, records[1].Row)
}

func TestDecode_HeaderDriftResolvedByText(t *testing.T) {
	// Columns swapped relative to the index fallback.
	src := newFakeSource(
		table([]string{"ITEM SELECTION", "ID"}, []string{"K2", "P1"}),
		table([]string{"DA DATA", "Item Description"}, []string{"20/01/2026", "Fresa"}),
		table([]string{"VALUTA", "IMPORTO UNITARIO"}, []string{"EUR", "5,00 €"}),
	)

	records := collect(t, NewDecoder(priceLayout()), src)

	require.Len(t, records, 1)
	assert.Equal(t, "P1", records[0].Fields["id"])
	assert.Equal(t, "K2", records[0].Fields["item_selection"])
	assert.Equal(t, "Fresa", records[0].Fields["product_name"])
	assert.Equal(t, "5,00 €", records[0].Fields["unit_price"])
}

func TestDecode_ShortPageMarksPartial(t *testing.T) {
	src := newFakeSource(
		table([]string{"ID", "ITEM SELECTION"}, []string{"P1", "K2"}, []string{"P2", "K3"}),
		table([]string{"ITEM DESCRIPTION", "DA DATA"}, []string{"Fresa", "20/01/2026"}),
		table([]string{"IMPORTO UNITARIO"}, []string{"1,00 €"}, []string{"2,00 €"}),
	)

	records := collect(t, NewDecoder(priceLayout()), src)

	require.Len(t, records, 2)
	assert.False(t, records[0].Partial)
	assert.True(t, records[1].Partial)
	assert.True(t, records[1].Fields.IsNull("product_name"))
	assert.Equal(t, "2,00 €", records[1].Fields["unit_price"])
}

func TestDecode_TruncatedTrailingCycle(t *testing.T) {
	src := newFakeSource(
		table([]string{"ID", "ITEM SELECTION"}, []string{"P1", "K2"}),
		table([]string{"ITEM DESCRIPTION", "DA DATA"}, []string{"Fresa", "20/01/2026"}),
	)

	records := collect(t, NewDecoder(priceLayout()), src)

	require.Len(t, records, 1)
	assert.True(t, records[0].Partial)
	assert.True(t, records[0].Fields.IsNull("unit_price"))
	assert.Equal(t, "Fresa", records[0].Fields["product_name"])
}

func TestDecode_FooterRowsDropped(t *testing.T) {
	src := newFakeSource(
		table([]string{"ID", "ITEM SELECTION"}, []string{"P1", "K2"}, []string{"Count=1", "Sum=52,00"}),
		table([]string{"ITEM DESCRIPTION", "DA DATA"}, []string{"Fresa", ""}, []string{"", ""}),
		table([]string{"IMPORTO UNITARIO"}, []string{"Importo unitario"}, []string{"1,00 €"}),
	)

	records := collect(t, NewDecoder(priceLayout()), src)

	require.Len(t, records, 1)
	assert.Equal(t, "1,00 €", records[0].Fields["unit_price"])
}

func TestDecode_BlankRowKeepsAlignment(t *testing.T) {
	src := newFakeSource(
		table([]string{"ID", "ITEM SELECTION"}, []string{"P1", "K2"}, []string{"P2", "K3"}, []string{"P3", "K1"}),
		table([]string{"ITEM DESCRIPTION", "DA DATA"},
			[]string{"Fresa", "20/01/2026"}, []string{"", ""}, []string{"Punta", "03/02/2026"}),
		table([]string{"IMPORTO UNITARIO"}, []string{"1,00 €"}, []string{"2,00 €"}, []string{"3,00 €"}),
	)

	records := collect(t, NewDecoder(priceLayout()), src)

	require.Len(t, records, 3)
	assert.True(t, records[1].Fields.IsNull("product_name"))
	assert.True(t, records[1].Fields.IsNull("valid_from"))
	assert.False(t, records[1].Partial)
	assert.Equal(t, "2,00 €", records[1].Fields["unit_price"])
	assert.Equal(t, "P3", records[2].Fields["id"])
	assert.Equal(t, "Punta", records[2].Fields["product_name"])
	assert.Equal(t, "03/02/2026", records[2].Fields["valid_from"])
}

func TestDecode_LeadingBlankRowKeepsAlignment(t *testing.T) {
	src := newFakeSource(
		table([]string{"ID", "ITEM SELECTION"}, []string{"P1", "K2"}, []string{"P2", "K3"}),
		table([]string{"ITEM DESCRIPTION", "DA DATA"}, []string{"", ""}, []string{"Punta", "03/02/2026"}),
		table([]string{"IMPORTO UNITARIO"}, []string{"1,00 €"}, []string{"2,00 €"}),
	)

	records := collect(t, NewDecoder(priceLayout()), src)

	require.Len(t, records, 2)
	assert.True(t, records[0].Fields.IsNull("valid_from"))
	assert.Equal(t, "Punta", records[1].Fields["product_name"])
	assert.Equal(t, "03/02/2026", records[1].Fields["valid_from"])
}

func TestDecode_AnchorArtifactDropsRowOnEveryPage(t *testing.T) {
	src := newFakeSource(
		table([]string{"ID", "ITEM SELECTION"},
			[]string{"P1", "K2"}, []string{"Pagina 1 di 2"}, []string{"P2", "K3"}),
		table([]string{"ITEM DESCRIPTION", "DA DATA"},
			[]string{"Fresa", ""}, []string{"Pagina 1 di 2"}, []string{"Punta", ""}),
		table([]string{"IMPORTO UNITARIO"}, []string{"1,00 €"}, []string{""}, []string{"2,00 €"}),
	)

	records := collect(t, NewDecoder(priceLayout()), src)

	require.Len(t, records, 2)
	assert.Equal(t, "P2", records[1].Fields["id"])
	assert.Equal(t, "Punta", records[1].Fields["product_name"])
	assert.Equal(t, "2,00 €", records[1].Fields["unit_price"])
	assert.Equal(t, 1, records[1].Row)
}

func TestDecode_FieldPageOutsideCycle(t *testing.T) {
	layout := priceLayout()
	layout.PagesPerCycle = 1
	src := newFakeSource(
		table([]string{"ID", "ITEM SELECTION"}, []string{"P1", "K2"}),
		table([]string{"ID", "ITEM SELECTION"}, []string{"P2", "K3"}),
	)

	records := collect(t, NewDecoder(layout), src)

	require.Len(t, records, 2)
	assert.True(t, records[0].Partial)
	assert.True(t, records[0].Fields.IsNull("unit_price"))
	assert.Equal(t, "P2", records[1].Fields["id"])
}

func TestDecode_JoinWith(t *testing.T) {
	layout := domain.Layout{
		EntityType:    domain.EntityProducts,
		PagesPerCycle: 3,
		Fields: []domain.FieldSpec{
			{Name: "id_articolo", Page: 0, Index: 0, Kind: domain.KindText},
			{Name: "pacco_gamba", Page: 2, Headers: []string{"PACCO"}, Index: -1, Kind: domain.KindText, JoinWith: "gamba"},
			{Name: "gamba", Page: 2, Headers: []string{"GAMBA"}, Index: -1, Kind: domain.KindText},
		},
	}
	src := newFakeSource(
		table([]string{"ID ARTICOLO"}, []string{"H1"}),
		table([]string{"X"}, []string{"x"}),
		table([]string{"PACCO", "GAMBA"}, []string{"5", "HP"}),
	)

	records := collect(t, NewDecoder(layout), src)

	require.Len(t, records, 1)
	assert.Equal(t, "5 HP", records[0].Fields["pacco_gamba"])
	assert.Equal(t, "HP", records[0].Fields["gamba"])
}

func TestDecode_PageErrorIsDecodeError(t *testing.T) {
	src := newFakeSource(
		table([]string{"ID"}, []string{"P1"}),
		table([]string{"ITEM DESCRIPTION"}, []string{"Fresa"}),
		table([]string{"IMPORTO UNITARIO"}, []string{"1,00 €"}),
		table([]string{"ID"}, []string{"P2"}),
		table([]string{"ITEM DESCRIPTION"}, []string{"Punta"}),
		table([]string{"IMPORTO UNITARIO"}, []string{"2,00 €"}),
	)
	src.errAt = 4

	var emitted int
	err := NewDecoder(priceLayout()).Decode(context.Background(), src, func(domain.ParsedRecord) error {
		emitted++
		return nil
	})

	assert.ErrorIs(t, err, domain.ErrDecode)
	assert.Contains(t, err.Error(), "page 5")
	assert.Equal(t, 1, emitted, "records of earlier cycles are emitted before the failure")
}

func TestDecode_MissingTableIsDecodeError(t *testing.T) {
	src := newFakeSource(
		table([]string{"ID"}, []string{"P1"}),
		nil,
		table([]string{"IMPORTO UNITARIO"}, []string{"1,00 €"}),
	)

	err := NewDecoder(priceLayout()).Decode(context.Background(), src, func(domain.ParsedRecord) error { return nil })

	assert.ErrorIs(t, err, domain.ErrDecode)
}

func TestDecode_EmitErrorStops(t *testing.T) {
	src := newFakeSource(
		table([]string{"ID"}, []string{"P1"}, []string{"P2"}),
		table([]string{"ITEM DESCRIPTION"}, []string{"a"}, []string{"b"}),
		table([]string{"IMPORTO UNITARIO"}, []string{"1"}, []string{"2"}),
		table([]string{"ID"}, []string{"P3"}),
		table([]string{"ITEM DESCRIPTION"}, []string{"c"}),
		table([]string{"IMPORTO UNITARIO"}, []string{"3"}),
	)
	stop := errors.New("stop")

	err := NewDecoder(priceLayout()).Decode(context.Background(), src, func(domain.ParsedRecord) error {
		return stop
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, []int{0, 1, 2}, src.reads, "second cycle never read")
}

func TestDecode_ContextCancelled(t *testing.T) {
	src := newFakeSource(table([]string{"ID"}, []string{"P1"}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewDecoder(priceLayout()).Decode(ctx, src, func(domain.ParsedRecord) error { return nil })

	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecode_Progress(t *testing.T) {
	src := newFakeSource(
		table([]string{"ID"}, []string{"P1"}),
		table([]string{"ITEM DESCRIPTION"}, []string{"a"}),
		table([]string{"IMPORTO UNITARIO"}, []string{"1"}),
		table([]string{"ID"}, []string{"P2"}),
	)
	var progress []Progress
	d := NewDecoder(priceLayout())
	d.OnCycle = func(p Progress) { progress = append(progress, p) }

	collect(t, d, src)

	require.Len(t, progress, 2)
	assert.Equal(t, Progress{PagesRead: 3, TotalPages: 4, Cycles: 1}, progress[0])
	assert.Equal(t, Progress{PagesRead: 4, TotalPages: 4, Cycles: 2}, progress[1])
}

// ==================== Column Tests ====================

func TestResolveColumn(t *testing.T) {
	header := []string{"ID", "Quantità", "DA DATA", "DATA", "ALL’ATTENZIONE DI"}

	tests := []struct {
		name       string
		candidates []string
		fallback   int
		want       int
	}{
		{"exact", []string{"ID"}, -1, 0},
		{"accent and case folded", []string{"QUANTITÀ"}, -1, 1},
		{"exact beats substring", []string{"DATA"}, -1, 3},
		{"typographic apostrophe", []string{"ALL'ATTENZIONE DI"}, -1, 4},
		{"substring", []string{"ATTENZIONE"}, -1, 4},
		{"second candidate", []string{"MISSING", "DA DATA"}, -1, 2},
		{"index fallback", []string{"MISSING"}, 7, 7},
		{"absent", []string{"MISSING"}, -1, -1},
		{"no candidates", nil, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveColumn(header, tt.candidates, tt.fallback))
		})
	}
}

func TestFold_DecomposedAccent(t *testing.T) {
	// "A" followed by a combining grave accent.
	assert.Equal(t, Fold("CITTÀ"), Fold("citta\u0300"))
	assert.Equal(t, "NOME DI CONSEGNA", Fold("  nome di\nconsegna "))
}

// ==================== Garbage Tests ====================

func TestIsGarbageKey(t *testing.T) {
	assert.True(t, IsGarbageKey(""))
	assert.True(t, IsGarbageKey("   "))
	assert.True(t, IsGarbageKey("0"))
	assert.True(t, IsGarbageKey(" 0 "))
	assert.False(t, IsGarbageKey("00"))
	assert.False(t, IsGarbageKey("50049421"))
}

func TestIsArtifactRow(t *testing.T) {
	header := []string{"ID", "NOME"}

	tests := []struct {
		name  string
		cells []string
		want  bool
	}{
		{"data row", []string{"C1", "Rossi"}, false},
		{"blank row", []string{"", "  "}, true},
		{"empty row", nil, true},
		{"count footer", []string{"Count=11 Sum=52,00"}, true},
		{"count in second cell", []string{"", "Count=3"}, true},
		{"sum footer", []string{"Sum=52,00"}, true},
		{"page marker", []string{"Pagina 3 di 120"}, true},
		{"repeated header", []string{"ID", "Nome"}, true},
		{"partial header repeat", []string{"ID", ""}, true},
		{"value equal to header elsewhere", []string{"NOME", "ID"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsArtifactRow(tt.cells, header))
		})
	}
}

// ==================== Detection Tests ====================

func TestDetectCycleSize(t *testing.T) {
	pages := make([]*domain.Table, 0, 16)
	for i := 0; i < 16; i++ {
		h := "OTHER"
		if i%8 == 0 {
			h = "ID ARTICOLO"
		}
		pages = append(pages, table([]string{h}))
	}

	size, err := DetectCycleSize(context.Background(), newFakeSource(pages...), "ID ARTICOLO", 8)
	require.NoError(t, err)
	assert.Equal(t, 8, size)

	size, err = DetectCycleSize(context.Background(), newFakeSource(pages...), "ID ARTICOLO", 7)
	require.NoError(t, err)
	assert.Equal(t, 8, size, "detected size wins over expected")

	size, err = DetectCycleSize(context.Background(), newFakeSource(pages[:5]...), "ID ARTICOLO", 8)
	require.NoError(t, err)
	assert.Equal(t, 8, size, "no repeat falls back to expected")
}
