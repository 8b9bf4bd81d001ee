package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/utxo-connector/internal/core/domain"
)

func TestUtxoKey(t *testing.T) {
	t.Parallel()

	u := domain.Utxo{
		TxID:    "tx1",
		VOut:    1,
		Address: "A",
		Amount:  decimal.RequireFromString("2.5"),
	}
	other := domain.Utxo{
		TxID:    "tx1",
		VOut:    1,
		Address: "B",
		Amount:  decimal.RequireFromString("7"),
	}

	require.Equal(t, domain.UtxoKey{TxID: "tx1", VOut: 1}, u.Key())
	require.Equal(t, u.Key(), other.Key())
	require.True(t, u.IsKeyEqual(other.Key()))
	require.False(t, u.IsKeyEqual(domain.UtxoKey{TxID: "tx1", VOut: 0}))
	require.Equal(t, "tx1:1", u.Key().String())
}

func TestUtxoString(t *testing.T) {
	t.Parallel()

	u := domain.Utxo{
		TxID:    "b6f6991d",
		VOut:    3,
		Address: "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2",
		Amount:  decimal.RequireFromString("0.00012"),
	}
	require.Equal(
		t, "b6f6991d:3:0.00012:1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", u.String(),
	)
}

func TestUtxoKeys(t *testing.T) {
	t.Parallel()

	utxos := []domain.Utxo{{TxID: "tx2", VOut: 0}, {TxID: "tx1", VOut: 4}}
	require.Equal(t, []domain.UtxoKey{
		{TxID: "tx2", VOut: 0}, {TxID: "tx1", VOut: 4},
	}, domain.UtxoKeys(utxos))
	require.Empty(t, domain.UtxoKeys(nil))
}
