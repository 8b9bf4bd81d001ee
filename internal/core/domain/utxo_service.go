package domain

import (
	"fmt"
	"strings"
)

// String returns the txid:vout representation of the key.
func (k UtxoKey) String() string {
	return fmt.Sprintf("%s:%d", k.TxID, k.VOut)
}

// Key returns the UtxoKey of the current utxo.
func (u Utxo) Key() UtxoKey {
	return UtxoKey{
		TxID: u.TxID,
		VOut: u.VOut,
	}
}

// IsKeyEqual returns whether the provided UtxoKey matches that of the current
// utxo.
func (u Utxo) IsKeyEqual(key UtxoKey) bool {
	return u.TxID == key.TxID && u.VOut == key.VOut
}

// String renders the utxo as txid:vout:amount:address. It's meant for logs
// only and must never be parsed back.
func (u Utxo) String() string {
	return strings.Join([]string{
		u.TxID, fmt.Sprint(u.VOut), u.Amount.String(), u.Address,
	}, ":")
}

// UtxoKeys returns the keys of the given list of utxos, in the same order.
func UtxoKeys(utxos []Utxo) []UtxoKey {
	keys := make([]UtxoKey, 0, len(utxos))
	for _, u := range utxos {
		keys = append(keys, u.Key())
	}
	return keys
}
