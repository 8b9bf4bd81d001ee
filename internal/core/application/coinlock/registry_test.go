package coinlock_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/utxo-connector/internal/core/application/coinlock"
	"github.com/tdex-network/utxo-connector/internal/core/domain"
)

var ctx = context.Background()

func newUtxo(txid string, vout uint32, amount int64, addr string) domain.Utxo {
	return domain.Utxo{
		TxID:    txid,
		VOut:    vout,
		Address: addr,
		Amount:  decimal.NewFromInt(amount),
	}
}

func TestLockUnlock(t *testing.T) {
	t.Parallel()

	r := coinlock.NewRegistry(nil)
	utxos := []domain.Utxo{newUtxo("tx1", 0, 3, "A"), newUtxo("tx2", 0, 5, "A")}

	err := r.Lock(ctx, utxos)
	require.NoError(t, err)
	require.Equal(t, 2, r.Len())
	require.True(t, r.IsLocked(domain.UtxoKey{TxID: "tx1", VOut: 0}))
	require.False(t, r.IsLocked(domain.UtxoKey{TxID: "tx1", VOut: 1}))

	err = r.Unlock(ctx, utxos)
	require.NoError(t, err)
	require.Zero(t, r.Len())
}

func TestFailingDoubleLock(t *testing.T) {
	t.Parallel()

	r := coinlock.NewRegistry(nil)
	utxos := []domain.Utxo{newUtxo("tx1", 0, 3, "A"), newUtxo("tx2", 0, 5, "A")}

	err := r.Lock(ctx, utxos)
	require.NoError(t, err)

	err = r.Lock(ctx, utxos)
	require.ErrorIs(t, err, domain.ErrUtxoAlreadyLocked)
	require.Equal(t, utxos, r.Locked())
}

func TestLockIsAllOrNothing(t *testing.T) {
	t.Parallel()

	r := coinlock.NewRegistry(nil)
	err := r.Lock(ctx, []domain.Utxo{newUtxo("tx1", 0, 3, "A")})
	require.NoError(t, err)

	// Same key with different payload is the same output.
	err = r.Lock(ctx, []domain.Utxo{
		newUtxo("tx3", 0, 1, "C"),
		newUtxo("tx1", 0, 99, "Z"),
	})
	require.ErrorIs(t, err, domain.ErrUtxoAlreadyLocked)
	require.False(t, r.IsLocked(domain.UtxoKey{TxID: "tx3", VOut: 0}))
	require.Equal(t, 1, r.Len())
	require.Equal(t, "A", r.Locked()[0].Address)
}

func TestLockDuplicatesInRequest(t *testing.T) {
	t.Parallel()

	r := coinlock.NewRegistry(nil)
	u := newUtxo("tx1", 0, 3, "A")

	err := r.Lock(ctx, []domain.Utxo{u, u})
	require.NoError(t, err)
	require.Equal(t, 1, r.Len())

	err = r.Lock(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, r.Len())
}

func TestUnlockIsIdempotent(t *testing.T) {
	t.Parallel()

	r := coinlock.NewRegistry(nil)
	locked := []domain.Utxo{newUtxo("tx1", 0, 3, "A"), newUtxo("tx1", 1, 2, "B")}
	err := r.Lock(ctx, locked)
	require.NoError(t, err)

	toUnlock := []domain.Utxo{newUtxo("tx1", 0, 3, "A"), newUtxo("tx9", 9, 1, "Z")}

	err = r.Unlock(ctx, toUnlock)
	require.NoError(t, err)
	once := r.Locked()

	err = r.Unlock(ctx, toUnlock)
	require.NoError(t, err)
	require.Equal(t, once, r.Locked())
	require.Equal(t, []domain.Utxo{locked[1]}, once)
}

func TestFilterFree(t *testing.T) {
	t.Parallel()

	r := coinlock.NewRegistry(nil)
	err := r.Lock(ctx, []domain.Utxo{
		newUtxo("tx1", 0, 3, "A"), newUtxo("tx3", 2, 1, "A"),
	})
	require.NoError(t, err)

	candidates := []domain.Utxo{
		newUtxo("tx4", 0, 1, "A"),
		newUtxo("tx1", 0, 3, "A"),
		newUtxo("tx1", 1, 2, "B"),
		newUtxo("tx3", 2, 1, "A"),
		newUtxo("tx0", 7, 4, "B"),
	}
	snapshot := append([]domain.Utxo{}, candidates...)

	free := r.FilterFree(candidates)
	require.Equal(t, []domain.UtxoKey{
		{TxID: "tx4", VOut: 0}, {TxID: "tx1", VOut: 1}, {TxID: "tx0", VOut: 7},
	}, domain.UtxoKeys(free))
	require.Equal(t, snapshot, candidates)
	require.Equal(t, 2, r.Len())

	require.Empty(t, r.FilterFree(nil))
}

func TestConcurrentDisjointLocks(t *testing.T) {
	t.Parallel()

	r := coinlock.NewRegistry(nil)
	numOfTrades := 50
	errs := make(chan error, numOfTrades)

	wg := &sync.WaitGroup{}
	for i := 0; i < numOfTrades; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			txid := fmt.Sprintf("tx%d", i)
			errs <- r.Lock(ctx, []domain.Utxo{
				newUtxo(txid, 0, 1, "A"), newUtxo(txid, 1, 1, "A"),
			})
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	expected := make([]domain.UtxoKey, 0, 2*numOfTrades)
	for i := 0; i < numOfTrades; i++ {
		txid := fmt.Sprintf("tx%d", i)
		expected = append(expected,
			domain.UtxoKey{TxID: txid, VOut: 0}, domain.UtxoKey{TxID: txid, VOut: 1},
		)
	}
	sort.Slice(expected, func(i, j int) bool {
		if expected[i].TxID == expected[j].TxID {
			return expected[i].VOut < expected[j].VOut
		}
		return expected[i].TxID < expected[j].TxID
	})
	require.Equal(t, expected, domain.UtxoKeys(r.Locked()))
	require.Equal(t, 2*numOfTrades, r.Len())
}

func TestConcurrentOverlappingLocks(t *testing.T) {
	t.Parallel()

	for round := 0; round < 20; round++ {
		r := coinlock.NewRegistry(nil)
		shared := newUtxo("shared", 0, 10, "A")
		numOfTrades := 16
		var succeeded, conflicted int32

		start := make(chan struct{})
		wg := &sync.WaitGroup{}
		for i := 0; i < numOfTrades; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				err := r.Lock(ctx, []domain.Utxo{
					newUtxo(fmt.Sprintf("own%d", i), 0, 1, "A"), shared,
				})
				if err == nil {
					atomic.AddInt32(&succeeded, 1)
					return
				}
				if errors.Is(err, domain.ErrUtxoAlreadyLocked) {
					atomic.AddInt32(&conflicted, 1)
				}
			}(i)
		}
		close(start)
		wg.Wait()

		require.Equal(t, int32(1), succeeded)
		require.Equal(t, int32(numOfTrades-1), conflicted)
		require.Equal(t, 2, r.Len())
	}
}

func TestConcurrentLockUnlock(t *testing.T) {
	t.Parallel()

	r := coinlock.NewRegistry(nil)
	utxos := []domain.Utxo{newUtxo("tx1", 0, 1, "A"), newUtxo("tx1", 1, 1, "A")}
	var holders int32

	wg := &sync.WaitGroup{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if err := r.Lock(ctx, utxos); err != nil {
					continue
				}
				if n := atomic.AddInt32(&holders, 1); n != 1 {
					t.Errorf("%d trades hold the same utxos", n)
				}
				atomic.AddInt32(&holders, -1)
				if err := r.Unlock(ctx, utxos); err != nil {
					t.Error(err)
				}
			}
		}()
	}
	wg.Wait()

	require.Zero(t, r.Len())
}

func TestRegistryWithStore(t *testing.T) {
	t.Parallel()

	utxos := []domain.Utxo{newUtxo("tx1", 0, 3, "A"), newUtxo("tx2", 0, 5, "A")}

	t.Run("lock and unlock are persisted", func(t *testing.T) {
		store := &mockLockStore{}
		store.On("Put", mock.Anything, utxos).Return(nil)
		store.On("Delete", mock.Anything, domain.UtxoKeys(utxos)).Return(nil)
		r := coinlock.NewRegistry(store)

		require.NoError(t, r.Lock(ctx, utxos))
		require.NoError(t, r.Unlock(ctx, utxos))
		store.AssertExpectations(t)
	})

	t.Run("conflicts are not persisted", func(t *testing.T) {
		store := &mockLockStore{}
		store.On("Put", mock.Anything, utxos).Return(nil).Once()
		r := coinlock.NewRegistry(store)

		require.NoError(t, r.Lock(ctx, utxos))
		err := r.Lock(ctx, utxos)
		require.ErrorIs(t, err, domain.ErrUtxoAlreadyLocked)
		store.AssertNumberOfCalls(t, "Put", 1)
	})

	t.Run("failing put aborts lock", func(t *testing.T) {
		store := &mockLockStore{}
		store.On("Put", mock.Anything, utxos).Return(errors.New("disk full"))
		r := coinlock.NewRegistry(store)

		err := r.Lock(ctx, utxos)
		require.Error(t, err)
		require.NotErrorIs(t, err, domain.ErrUtxoAlreadyLocked)
		require.Zero(t, r.Len())
	})

	t.Run("failing delete still unlocks", func(t *testing.T) {
		store := &mockLockStore{}
		store.On("Put", mock.Anything, utxos).Return(nil)
		store.On("Delete", mock.Anything, mock.Anything).Return(errors.New("disk full"))
		r := coinlock.NewRegistry(store)

		require.NoError(t, r.Lock(ctx, utxos))
		require.Error(t, r.Unlock(ctx, utxos))
		require.Zero(t, r.Len())
	})
}

func TestRestore(t *testing.T) {
	t.Parallel()

	r := coinlock.NewRegistry(nil)
	utxos := []domain.Utxo{newUtxo("tx2", 0, 5, "A"), newUtxo("tx1", 0, 3, "A")}
	r.Restore(utxos)

	require.Equal(t, []domain.Utxo{utxos[1], utxos[0]}, r.Locked())
	require.ErrorIs(t, r.Lock(ctx, utxos[:1]), domain.ErrUtxoAlreadyLocked)
}

func TestOnChange(t *testing.T) {
	t.Parallel()

	r := coinlock.NewRegistry(nil)
	sizes := make([]int, 0)
	r.OnChange(func(size int) {
		sizes = append(sizes, size)
	})

	require.NoError(t, r.Lock(ctx, []domain.Utxo{
		newUtxo("tx1", 0, 3, "A"), newUtxo("tx2", 0, 5, "A"),
	}))
	err := r.Lock(ctx, []domain.Utxo{newUtxo("tx1", 0, 3, "A")})
	require.ErrorIs(t, err, domain.ErrUtxoAlreadyLocked)
	require.NoError(t, r.Unlock(ctx, []domain.Utxo{newUtxo("tx1", 0, 3, "A")}))
	r.Restore([]domain.Utxo{newUtxo("tx3", 1, 1, "B")})

	require.Equal(t, []int{2, 1, 2}, sizes)
}

func TestOnChangeUnderConcurrency(t *testing.T) {
	t.Parallel()

	r := coinlock.NewRegistry(nil)
	var last int64 = -1
	r.OnChange(func(size int) {
		atomic.StoreInt64(&last, int64(size))
	})

	wg := &sync.WaitGroup{}
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := []domain.Utxo{newUtxo(fmt.Sprintf("tx%d", i), 0, 1, "A")}
			if err := r.Lock(ctx, u); err != nil {
				return
			}
			if i%2 == 0 {
				_ = r.Unlock(ctx, u)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, int64(r.Len()), atomic.LoadInt64(&last))
	require.Equal(t, 50, r.Len())
}
