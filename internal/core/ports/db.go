package ports

import (
	"context"

	"github.com/tdex-network/utxo-connector/internal/core/domain"
)

// DbManager gives access to the lock journal of every connected chain.
type DbManager interface {
	LockStore(chain string) LockStore
	Close()
}

// LockStore persists the utxos reserved by in-flight trades on one chain so
// that reservations survive a restart of the daemon.
type LockStore interface {
	// Put records the given utxos as locked, all or none of them.
	Put(ctx context.Context, utxos []domain.Utxo) error
	// Delete drops the given utxos, ignoring those not found.
	Delete(ctx context.Context, keys []domain.UtxoKey) error
	// List returns all the recorded utxos.
	List(ctx context.Context) ([]domain.Utxo, error)
}
