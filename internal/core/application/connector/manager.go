package connector

import (
	"context"
	"fmt"
	"sort"

	"github.com/tdex-network/utxo-connector/internal/core/domain"
	"golang.org/x/sync/errgroup"
)

// Manager holds the connectors of all the chains supported by the daemon.
type Manager struct {
	connectors map[string]WalletConnector
}

// NewManager returns a Manager for the given connectors, one per chain.
func NewManager(connectors ...WalletConnector) (*Manager, error) {
	byChain := make(map[string]WalletConnector, len(connectors))
	for _, c := range connectors {
		if _, ok := byChain[c.Chain()]; ok {
			return nil, fmt.Errorf("duplicated connector for chain %s", c.Chain())
		}
		byChain[c.Chain()] = c
	}
	return &Manager{byChain}, nil
}

// Connector returns the connector of the given chain.
func (m *Manager) Connector(chain string) (WalletConnector, error) {
	c, ok := m.connectors[chain]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrChainNotFound, chain)
	}
	return c, nil
}

// Chains returns the sorted list of connected chains.
func (m *Manager) Chains() []string {
	chains := make([]string, 0, len(m.connectors))
	for chain := range m.connectors {
		chains = append(chains, chain)
	}
	sort.Strings(chains)
	return chains
}

// RestoreAll restores the locks of every chain concurrently.
func (m *Manager) RestoreAll(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, c := range m.connectors {
		c := c
		eg.Go(func() error {
			if err := c.Restore(ctx); err != nil {
				return fmt.Errorf("chain %s: %w", c.Chain(), err)
			}
			return nil
		})
	}
	return eg.Wait()
}
