package dbbadger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/shopspring/decimal"
	"github.com/tdex-network/utxo-connector/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

// lockedUtxo is the stored version of a locked domain.Utxo. The amount is
// kept in its string form to not lose precision.
type lockedUtxo struct {
	Chain   string `badgerhold:"index"`
	TxID    string
	VOut    uint32
	Address string
	Amount  string
}

func (l lockedUtxo) toDomain() (domain.Utxo, error) {
	amount, err := decimal.NewFromString(l.Amount)
	if err != nil {
		return domain.Utxo{}, fmt.Errorf(
			"invalid amount for locked utxo %s:%d: %s", l.TxID, l.VOut, err,
		)
	}
	return domain.Utxo{
		TxID:    l.TxID,
		VOut:    l.VOut,
		Address: l.Address,
		Amount:  amount,
	}, nil
}

type lockStoreImpl struct {
	store *badgerhold.Store
	chain string
}

func newLockStoreImpl(store *badgerhold.Store, chain string) *lockStoreImpl {
	return &lockStoreImpl{store, chain}
}

func (s *lockStoreImpl) Put(_ context.Context, utxos []domain.Utxo) error {
	return s.store.Badger().Update(func(tx *badger.Txn) error {
		for _, u := range utxos {
			record := lockedUtxo{
				Chain:   s.chain,
				TxID:    u.TxID,
				VOut:    u.VOut,
				Address: u.Address,
				Amount:  u.Amount.String(),
			}
			if err := s.store.TxUpsert(tx, s.key(u.Key()), record); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *lockStoreImpl) Delete(_ context.Context, keys []domain.UtxoKey) error {
	return s.store.Badger().Update(func(tx *badger.Txn) error {
		for _, key := range keys {
			err := s.store.TxDelete(tx, s.key(key), lockedUtxo{})
			if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
				return err
			}
		}
		return nil
	})
}

func (s *lockStoreImpl) List(_ context.Context) ([]domain.Utxo, error) {
	var records []lockedUtxo
	query := badgerhold.Where("Chain").Eq(s.chain).Index("Chain").
		SortBy("TxID", "VOut")
	if err := s.store.Find(&records, query); err != nil {
		return nil, err
	}

	utxos := make([]domain.Utxo, 0, len(records))
	for _, r := range records {
		u, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		utxos = append(utxos, u)
	}
	return utxos, nil
}

func (s *lockStoreImpl) key(key domain.UtxoKey) string {
	return fmt.Sprintf("%s:%s", s.chain, key)
}
