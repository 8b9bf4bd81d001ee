package httpinterface

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/utxo-connector/internal/core/domain"
)

type utxo struct {
	TxID    string          `json:"txid"`
	VOut    uint32          `json:"vout"`
	Address string          `json:"address,omitempty"`
	Amount  decimal.Decimal `json:"amount"`
}

func (u utxo) toDomain() domain.Utxo {
	return domain.Utxo{
		TxID:    u.TxID,
		VOut:    u.VOut,
		Address: u.Address,
		Amount:  u.Amount,
	}
}

type utxoList []utxo

func newUtxoList(utxos []domain.Utxo) utxoList {
	list := make(utxoList, 0, len(utxos))
	for _, u := range utxos {
		list = append(list, utxo{u.TxID, u.VOut, u.Address, u.Amount})
	}
	return list
}

type utxosRequest struct {
	Utxos utxoList `json:"utxos"`
}

func (r utxosRequest) parse() ([]domain.Utxo, error) {
	utxos := make([]domain.Utxo, 0, len(r.Utxos))
	for i, u := range r.Utxos {
		if u.TxID == "" {
			return nil, fmt.Errorf("utxo %d: missing txid", i)
		}
		if u.Amount.IsNegative() {
			return nil, fmt.Errorf("utxo %d: amount must not be negative", i)
		}
		utxos = append(utxos, u.toDomain())
	}
	return utxos, nil
}

type fundRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type utxosResponse struct {
	Utxos utxoList `json:"utxos"`
}

type chainsResponse struct {
	Chains []string `json:"chains"`
}

type balanceResponse struct {
	Chain   string          `json:"chain"`
	Address string          `json:"address,omitempty"`
	Balance decimal.Decimal `json:"balance"`
}

type addressResponse struct {
	Address string `json:"address"`
	Valid   bool   `json:"valid"`
	Type    string `json:"type"`
}

type fundResponse struct {
	Utxos  utxoList        `json:"utxos"`
	Change decimal.Decimal `json:"change"`
}

type errorResponse struct {
	Error string `json:"error"`
}
