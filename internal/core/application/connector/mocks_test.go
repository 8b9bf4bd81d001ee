package connector_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/utxo-connector/internal/core/domain"
)

// **** Unspent source ****

type mockUnspentSource struct {
	mock.Mock
}

func (m *mockUnspentSource) ListUnspent(ctx context.Context) ([]domain.Utxo, error) {
	args := m.Called(ctx)

	var res []domain.Utxo
	if a := args.Get(0); a != nil {
		res = a.([]domain.Utxo)
	}
	return res, args.Error(1)
}

// **** Lock store ****

type mockLockStore struct {
	mock.Mock
}

func (m *mockLockStore) Put(ctx context.Context, utxos []domain.Utxo) error {
	args := m.Called(ctx, utxos)
	return args.Error(0)
}

func (m *mockLockStore) Delete(ctx context.Context, keys []domain.UtxoKey) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *mockLockStore) List(ctx context.Context) ([]domain.Utxo, error) {
	args := m.Called(ctx)

	var res []domain.Utxo
	if a := args.Get(0); a != nil {
		res = a.([]domain.Utxo)
	}
	return res, args.Error(1)
}
