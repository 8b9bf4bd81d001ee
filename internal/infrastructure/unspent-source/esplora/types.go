package esplora

import (
	"github.com/shopspring/decimal"
	"github.com/tdex-network/utxo-connector/internal/core/domain"
)

type status struct {
	Confirmed   bool   `json:"confirmed"`
	BlockHeight uint32 `json:"block_height,omitempty"`
	BlockHash   string `json:"block_hash,omitempty"`
}

type esploraUtxo struct {
	TxID   string `json:"txid"`
	VOut   uint32 `json:"vout"`
	Value  uint64 `json:"value"`
	Status status `json:"status"`
}

func (u esploraUtxo) toDomain(addr string, decimals int32) domain.Utxo {
	return domain.Utxo{
		TxID:    u.TxID,
		VOut:    u.VOut,
		Address: addr,
		Amount:  decimal.New(int64(u.Value), -decimals),
	}
}
