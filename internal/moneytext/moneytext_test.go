package moneytext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{name: "plain", raw: "123.45", want: 123.45},
		{name: "thousands separator", raw: "1,234.56", want: 1234.56},
		{name: "quetzal prefix", raw: "Q.1,500.00", want: 1500.00},
		{name: "quetzal without dot", raw: "Q 250.75", want: 250.75},
		{name: "dollar prefix", raw: "$.99.10", want: 99.10},
		{name: "negative sign", raw: "-45.00", want: -45.00},
		{name: "accounting parentheses", raw: "(1,000.00)", want: -1000.00},
		{name: "prefix and sign", raw: "-Q.12.50", want: -12.50},
		{name: "empty", raw: "", want: 0},
		{name: "decorative cell", raw: "---", want: 0},
		{name: "whitespace", raw: "  78.00  ", want: 78.00},
		{name: "trailing decoration", raw: "1,234.56*", want: 1234.56},
		{name: "currency suffix", raw: "150.00 GTQ", want: 150.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseAmount(tt.raw), 0.0001)
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		fallback int
		want     time.Time
		wantErr  bool
	}{
		{name: "slash full year", raw: "15/03/2024", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{name: "dash two digit year", raw: "01-12-24", want: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)},
		{name: "dot separator", raw: "28.02.2023", want: time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC)},
		{name: "two digit year 1900s", raw: "15/06/99", want: time.Date(1999, 6, 15, 0, 0, 0, 0, time.UTC)},
		{name: "two digit year 2000s boundary", raw: "15/06/50", want: time.Date(2050, 6, 15, 0, 0, 0, 0, time.UTC)},
		{name: "day month only with fallback", raw: "07/09", fallback: 2024, want: time.Date(2024, 9, 7, 0, 0, 0, 0, time.UTC)},
		{name: "day month only without fallback", raw: "07/09", wantErr: true},
		{name: "abbreviated spanish month", raw: "15 MAR 2024", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{name: "full spanish form", raw: "3 de marzo de 2024", want: time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)},
		{name: "setiembre variant", raw: "10 SET 2023", want: time.Date(2023, 9, 10, 0, 0, 0, 0, time.UTC)},
		{name: "invalid day", raw: "32/01/2024", wantErr: true},
		{name: "leap day valid", raw: "29/02/2024", want: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{name: "leap day invalid", raw: "29/02/2023", wantErr: true},
		{name: "garbage", raw: "SALDO ANTERIOR", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.raw, tt.fallback)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
		})
	}
}

func TestParseMonthYear(t *testing.T) {
	got, err := ParseMonthYear("MARZO 2024")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseMonthYear("dic-23")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseMonthYear("PERIODO")
	require.Error(t, err)
}

func TestMonthEnd(t *testing.T) {
	assert.Equal(t,
		time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		MonthEnd(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t,
		time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		MonthEnd(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)))
}
