package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/utxo-connector/internal/core/domain"
)

func TestCalculateBalance(t *testing.T) {
	t.Parallel()

	utxos := []domain.Utxo{
		{TxID: "tx1", VOut: 0, Address: "A", Amount: decimal.RequireFromString("3.0")},
		{TxID: "tx1", VOut: 1, Address: "B", Amount: decimal.RequireFromString("2.0")},
		{TxID: "tx2", VOut: 0, Address: "A", Amount: decimal.RequireFromString("5.0")},
	}

	tests := []struct {
		address  string
		expected string
	}{
		{"", "10"},
		{"A", "8"},
		{"B", "2"},
		{"C", "0"},
	}

	for _, tt := range tests {
		balance := domain.CalculateBalance(utxos, tt.address)
		require.True(
			t, decimal.RequireFromString(tt.expected).Equal(balance),
			"address %q: got %s", tt.address, balance,
		)
	}

	require.True(t, domain.CalculateBalance(nil, "").IsZero())
}

func TestCalculateBalanceIsExact(t *testing.T) {
	t.Parallel()

	utxos := make([]domain.Utxo, 0, 1000)
	for i := 0; i < 1000; i++ {
		utxos = append(utxos, domain.Utxo{
			TxID:   "tx",
			VOut:   uint32(i),
			Amount: decimal.RequireFromString("0.1"),
		})
	}

	balance := domain.CalculateBalance(utxos, "")
	require.Equal(t, "100", balance.String())
}
