package domain

import "github.com/shopspring/decimal"

// CalculateBalance sums the amount of the given utxos locked to address. An
// empty address sums all of them.
func CalculateBalance(utxos []Utxo, address string) decimal.Decimal {
	balance := decimal.Zero
	for _, u := range utxos {
		if address != "" && u.Address != address {
			continue
		}
		balance = balance.Add(u.Amount)
	}
	return balance
}
