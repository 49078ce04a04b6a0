package funcs

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"5000", "₦5,000.00"},
		{"1234567.89", "₦1,234,567.89"},
		{"0.5", "₦0.50"},
	}

	for _, tt := range tests {
		got := FormatMoney(decimal.RequireFromString(tt.amount))
		require.Equal(t, tt.want, got)
	}
}
