package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairType_Sides(t *testing.T) {
	tests := []struct {
		pair   PairType
		source EntityType
		target EntityType
	}{
		{PairPricesProducts, EntityPrices, EntityProducts},
		{PairInvoicesOrders, EntityInvoices, EntityOrders},
		{PairDeliveryNotesOrders, EntityDeliveryNotes, EntityOrders},
		{PairType("bogus"), "", ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.pair), func(t *testing.T) {
			assert.Equal(t, tt.source, tt.pair.Source())
			assert.Equal(t, tt.target, tt.pair.Target())
		})
	}
}

func TestPairsFor(t *testing.T) {
	assert.ElementsMatch(t, []PairType{PairInvoicesOrders, PairDeliveryNotesOrders}, PairsFor(EntityOrders))
	assert.Equal(t, []PairType{PairPricesProducts}, PairsFor(EntityPrices))
	assert.Empty(t, PairsFor(EntityCustomers))
}

func TestParsePairType(t *testing.T) {
	p, err := ParsePairType("invoices_orders")
	require.NoError(t, err)
	assert.Equal(t, PairInvoicesOrders, p)

	_, err = ParsePairType("orders_invoices")
	assert.ErrorIs(t, err, ErrUnknownPair)
}

func TestMatchAssociation_IsManual(t *testing.T) {
	assert.True(t, (&MatchAssociation{CreatedBy: CreatedByManual}).IsManual())
	assert.False(t, (&MatchAssociation{CreatedBy: CreatedByAuto}).IsManual())
}

func TestMatchResult_LowConfidence(t *testing.T) {
	r := &MatchResult{Matched: []MatchAssociation{
		{TargetKey: "a", LowConfidence: true},
		{TargetKey: "b"},
		{TargetKey: "c", LowConfidence: true},
	}}

	low := r.LowConfidence()
	assert.Len(t, low, 2)
	assert.Equal(t, "c", low[1].TargetKey)
	assert.Empty(t, (&MatchResult{}).LowConfidence())
}
