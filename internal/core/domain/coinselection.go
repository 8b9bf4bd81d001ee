package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// SelectUtxos performs a coin selection over the given list of utxos and
// returns a subset of them covering the target amount, along with the change.
// Biggest utxos are picked first so that the fewest inputs are used.
func SelectUtxos(
	utxos []Utxo, targetAmount decimal.Decimal,
) (coins []Utxo, change decimal.Decimal, err error) {
	if !targetAmount.IsPositive() {
		err = ErrInvalidAmount
		return
	}

	sorted := make([]Utxo, len(utxos))
	copy(sorted, utxos)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount.GreaterThan(sorted[j].Amount)
	})

	totalAmount := decimal.Zero
	for _, u := range sorted {
		if totalAmount.GreaterThanOrEqual(targetAmount) {
			break
		}
		coins = append(coins, u)
		totalAmount = totalAmount.Add(u.Amount)
	}

	if totalAmount.LessThan(targetAmount) {
		coins = nil
		err = ErrInsufficientFunds
		return
	}

	change = totalAmount.Sub(targetAmount)
	return
}
