package coinlock

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tdex-network/utxo-connector/internal/core/domain"
	"github.com/tdex-network/utxo-connector/internal/core/ports"
)

// Registry keeps track of the utxos of a single chain reserved by in-flight
// trades. It doesn't know which trade holds a lock: callers unlock by
// presenting the same utxos they locked.
//
// Every method runs inside the same critical section, that is never held
// while querying the chain.
type Registry struct {
	locked   map[domain.UtxoKey]domain.Utxo
	lock     *sync.Mutex
	store    ports.LockStore
	onChange func(size int)
}

// NewRegistry returns an empty registry. If store is not nil, every
// successful lock and unlock is mirrored to it.
func NewRegistry(store ports.LockStore) *Registry {
	return &Registry{
		locked: map[domain.UtxoKey]domain.Utxo{},
		lock:   &sync.Mutex{},
		store:  store,
	}
}

// OnChange registers fn to be called with the number of locked utxos every
// time it may have changed. fn runs inside the critical section, therefore
// it must not call back into the registry.
func (r *Registry) OnChange(fn func(size int)) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.onChange = fn
}

// Lock reserves all the given utxos or none of them. If any of them is
// already locked, an error wrapping domain.ErrUtxoAlreadyLocked is returned
// and the registry is left untouched.
func (r *Registry) Lock(ctx context.Context, utxos []domain.Utxo) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := lockUtxos(ctx, r.locked, r.store, utxos); err != nil {
		return err
	}
	r.notify()
	return nil
}

// Unlock releases the given utxos. Those not locked are ignored, therefore
// unlocking is idempotent. The only error returned comes from the lock
// store, in which case the utxos are released anyway.
func (r *Registry) Unlock(ctx context.Context, utxos []domain.Utxo) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	err := unlockUtxos(ctx, r.locked, r.store, utxos)
	r.notify()
	return err
}

// FilterFree returns the given candidates that are not locked, preserving
// their order.
func (r *Registry) FilterFree(candidates []domain.Utxo) []domain.Utxo {
	r.lock.Lock()
	defer r.lock.Unlock()

	free := make([]domain.Utxo, 0, len(candidates))
	for _, u := range candidates {
		if _, ok := r.locked[u.Key()]; !ok {
			free = append(free, u)
		}
	}
	return free
}

// IsLocked returns whether the utxo identified by key is locked.
func (r *Registry) IsLocked(key domain.UtxoKey) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	_, ok := r.locked[key]
	return ok
}

// Locked returns the locked utxos sorted by txid and vout.
func (r *Registry) Locked() []domain.Utxo {
	r.lock.Lock()
	defer r.lock.Unlock()

	utxos := make([]domain.Utxo, 0, len(r.locked))
	for _, u := range r.locked {
		utxos = append(utxos, u)
	}
	sort.Slice(utxos, func(i, j int) bool {
		if utxos[i].TxID == utxos[j].TxID {
			return utxos[i].VOut < utxos[j].VOut
		}
		return utxos[i].TxID < utxos[j].TxID
	})
	return utxos
}

// Len returns the number of locked utxos.
func (r *Registry) Len() int {
	r.lock.Lock()
	defer r.lock.Unlock()

	return len(r.locked)
}

// Restore adds to the registry utxos found in the lock store at startup,
// without writing them back.
func (r *Registry) Restore(utxos []domain.Utxo) {
	r.lock.Lock()
	defer r.lock.Unlock()

	for _, u := range utxos {
		r.locked[u.Key()] = u
	}
	r.notify()
}

func (r *Registry) notify() {
	if r.onChange != nil {
		r.onChange(len(r.locked))
	}
}

func lockUtxos(
	ctx context.Context,
	locked map[domain.UtxoKey]domain.Utxo,
	store ports.LockStore,
	utxos []domain.Utxo,
) error {
	toLock := make([]domain.Utxo, 0, len(utxos))
	seen := make(map[domain.UtxoKey]struct{}, len(utxos))
	for _, u := range utxos {
		key := u.Key()
		if _, ok := locked[key]; ok {
			return fmt.Errorf("%w: %s", domain.ErrUtxoAlreadyLocked, key)
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		toLock = append(toLock, u)
	}

	if len(toLock) <= 0 {
		return nil
	}

	if store != nil {
		if err := store.Put(ctx, toLock); err != nil {
			return fmt.Errorf("failed to persist locked utxos: %w", err)
		}
	}

	for _, u := range toLock {
		locked[u.Key()] = u
	}
	return nil
}

func unlockUtxos(
	ctx context.Context,
	locked map[domain.UtxoKey]domain.Utxo,
	store ports.LockStore,
	utxos []domain.Utxo,
) error {
	if len(utxos) <= 0 {
		return nil
	}

	keys := domain.UtxoKeys(utxos)
	for _, key := range keys {
		delete(locked, key)
	}

	if store != nil {
		if err := store.Delete(ctx, keys); err != nil {
			return fmt.Errorf("failed to persist unlocked utxos: %w", err)
		}
	}
	return nil
}
