package ports

import (
	"context"

	"github.com/tdex-network/utxo-connector/internal/core/domain"
)

// UnspentSource is the chain specific capability of enumerating the utxos
// owned by the wallet, implemented by explorer or node adapters.
type UnspentSource interface {
	ListUnspent(ctx context.Context) ([]domain.Utxo, error)
}
