package italian

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archibald-labs/archisync/internal/core/domain"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"date only", "20/01/2026", "2026-01-20", true},
		{"date with time", "20/01/2026 12:04:22", "2026-01-20T12:04:22", true},
		{"time without seconds", "20/01/2026 12:04", "2026-01-20T12:04:00", true},
		{"surrounding whitespace", "  05/03/2025\n", "2025-03-05", true},
		{"line break inside", "20/01/2026\n12:04:22", "2026-01-20T12:04:22", true},
		{"empty", "", "", false},
		{"blank", "   ", "", false},
		{"iso input", "2026-01-20", "", false},
		{"impossible day", "31/02/2026", "", false},
		{"garbage", "n/d", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate_RoundTrip(t *testing.T) {
	iso, ok := ParseDate("20/01/2026 12:04:22")
	require.True(t, ok)

	parsed, ok := ParseISO(iso)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 1, 20, 12, 4, 22, 0, time.UTC), parsed)
}

func TestParseDateTime(t *testing.T) {
	got, ok := ParseDateTime("01/12/2025")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), got)

	_, ok = ParseDateTime("")
	assert.False(t, ok)
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		{"21,49 %", 21.49, true},
		{"0,00%", 0, true},
		{"100 %", 100, true},
		{"", 0, false},
		{"%", 0, false},
		{"abc %", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParsePercent(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"1.234,56 €", "1234.56", true},
		{"1.234.567,89", "1234567.89", true},
		{"52,00", "52", true},
		{"-12,50 €", "-12.5", true},
		{" 1.000,00 €", "1000", true},
		{"7", "7", true},
		{"", "", false},
		{"€", "", false},
		{"-", "", false},
		{"n.d.", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseAmount(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
			}
		})
	}
}

func TestParseAmountFloat(t *testing.T) {
	got, ok := ParseAmountFloat("1.234,56 €")
	require.True(t, ok)
	assert.InDelta(t, 1234.56, got, 0.0001)
}

func TestComparable_LeavesDisplayPriceUntouched(t *testing.T) {
	price := domain.DisplayPrice("1.234,56 €")

	value, ok := Comparable(price)
	require.True(t, ok)
	assert.True(t, value.Equal(decimal.RequireFromString("1234.56")))
	assert.Equal(t, "1.234,56 €", price.String())
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1.234,56 €", FormatAmount(decimal.RequireFromString("1234.56")))
	assert.Equal(t, "0,50 €", FormatAmount(decimal.RequireFromString("0.5")))
	assert.Equal(t, "123.456,00 €", FormatAmount(decimal.RequireFromString("123456")))
	assert.Equal(t, "-12,00 €", FormatAmount(decimal.RequireFromString("-12")))
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "VIA ROMA 1 20100 MILANO", CollapseWhitespace("VIA ROMA 1\n20100   MILANO "))
	assert.Equal(t, "", CollapseWhitespace("\n\t "))
}
