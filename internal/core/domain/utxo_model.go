package domain

import (
	"github.com/shopspring/decimal"
)

// UtxoKey represent the ID of an Utxo, composed by its txid and vout.
type UtxoKey struct {
	TxID string
	VOut uint32
}

// Utxo is the data structure representing a spendable output owned by the
// wallet of a connected chain. Only TxID and VOut make its identity, Address
// and Amount are informative.
type Utxo struct {
	TxID    string
	VOut    uint32
	Address string
	Amount  decimal.Decimal
}
