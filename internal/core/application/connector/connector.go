package connector

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/utxo-connector/internal/core/application/coinlock"
	"github.com/tdex-network/utxo-connector/internal/core/domain"
	"github.com/tdex-network/utxo-connector/internal/core/ports"
)

// maxFundingAttempts caps how many times FundInputs selects new coins after
// losing a race for the previous selection.
const maxFundingAttempts = 5

// WalletConnector is the per chain surface used by the swap coordinator to
// query funds, validate counterparty addresses and reserve trade inputs.
type WalletConnector interface {
	Chain() string
	GetBalance(ctx context.Context, address string) (decimal.Decimal, error)
	ValidateAddress(address string) bool
	ClassifyAddress(address string) domain.AddressType
	LockInputs(ctx context.Context, utxos []domain.Utxo) error
	UnlockInputs(ctx context.Context, utxos []domain.Utxo) error
	SelectFreeInputs(candidates []domain.Utxo) []domain.Utxo
	ListUnspent(ctx context.Context) ([]domain.Utxo, error)
	LockedInputs() []domain.Utxo
	FundInputs(
		ctx context.Context, target decimal.Decimal,
	) ([]domain.Utxo, decimal.Decimal, error)
	Restore(ctx context.Context) error
}

// Config holds what's needed to connect a chain. Store and Metrics are
// optional.
type Config struct {
	Chain    string
	Prefixes domain.AddressPrefixes
	Source   ports.UnspentSource
	Store    ports.LockStore
	Metrics  *Metrics
}

func (c Config) validate() error {
	if c.Chain == "" {
		return fmt.Errorf("missing chain name")
	}
	if err := c.Prefixes.Validate(); err != nil {
		return err
	}
	if c.Source == nil {
		return fmt.Errorf("missing unspent source")
	}
	return nil
}

type walletConnector struct {
	chain    string
	prefixes domain.AddressPrefixes
	source   ports.UnspentSource
	store    ports.LockStore
	registry *coinlock.Registry
	metrics  *Metrics
	log      *log.Entry
}

// NewWalletConnector returns a connector for the configured chain with an
// empty coin lock registry.
func NewWalletConnector(cfg Config) (WalletConnector, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config for chain %s: %w", cfg.Chain, err)
	}

	registry := coinlock.NewRegistry(cfg.Store)
	registry.OnChange(func(size int) {
		cfg.Metrics.setLocked(cfg.Chain, size)
	})

	return &walletConnector{
		chain:    cfg.Chain,
		prefixes: cfg.Prefixes,
		source:   cfg.Source,
		store:    cfg.Store,
		registry: registry,
		metrics:  cfg.Metrics,
		log:      log.WithField("chain", cfg.Chain),
	}, nil
}

func (c *walletConnector) Chain() string {
	return c.chain
}

// GetBalance returns the sum of the wallet's utxos, restricted to those of
// address if not empty. If the unspent source fails, the returned error wraps
// domain.ErrSourceUnavailable and the amount must be ignored.
func (c *walletConnector) GetBalance(
	ctx context.Context, address string,
) (decimal.Decimal, error) {
	utxos, err := c.ListUnspent(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return domain.CalculateBalance(utxos, address), nil
}

func (c *walletConnector) ValidateAddress(address string) bool {
	return domain.ValidateAddress(address, c.prefixes)
}

func (c *walletConnector) ClassifyAddress(address string) domain.AddressType {
	return domain.ClassifyAddress(address, c.prefixes)
}

func (c *walletConnector) LockInputs(
	ctx context.Context, utxos []domain.Utxo,
) error {
	c.metrics.lockAttempt(c.chain)

	if err := c.registry.Lock(ctx, utxos); err != nil {
		if errors.Is(err, domain.ErrUtxoAlreadyLocked) {
			c.metrics.lockConflict(c.chain)
			c.log.WithError(err).Debug("lock rejected")
		}
		return err
	}

	c.log.Debugf("locked %d utxos", len(utxos))
	return nil
}

func (c *walletConnector) UnlockInputs(
	ctx context.Context, utxos []domain.Utxo,
) error {
	c.metrics.unlock(c.chain)

	err := c.registry.Unlock(ctx, utxos)
	if err != nil {
		c.log.WithError(err).Warn("utxos unlocked but lock store not updated")
		return err
	}

	c.log.Debugf("unlocked %d utxos", len(utxos))
	return nil
}

func (c *walletConnector) SelectFreeInputs(
	candidates []domain.Utxo,
) []domain.Utxo {
	return c.registry.FilterFree(candidates)
}

// ListUnspent returns all the utxos of the wallet, locked or not.
func (c *walletConnector) ListUnspent(
	ctx context.Context,
) ([]domain.Utxo, error) {
	utxos, err := c.source.ListUnspent(ctx)
	if err != nil {
		c.metrics.sourceFailure(c.chain)
		c.log.WithError(err).Warn("failed to list unspents")
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}
	return utxos, nil
}

func (c *walletConnector) LockedInputs() []domain.Utxo {
	return c.registry.Locked()
}

// FundInputs selects and locks free utxos covering the target amount,
// returning them along with the change. If some other trade locks part of
// the selection first, a new selection is attempted.
func (c *walletConnector) FundInputs(
	ctx context.Context, target decimal.Decimal,
) ([]domain.Utxo, decimal.Decimal, error) {
	if !target.IsPositive() {
		return nil, decimal.Zero, domain.ErrInvalidAmount
	}

	utxos, err := c.ListUnspent(ctx)
	if err != nil {
		return nil, decimal.Zero, err
	}

	for i := 0; i < maxFundingAttempts; i++ {
		free := c.registry.FilterFree(utxos)
		coins, change, err := domain.SelectUtxos(free, target)
		if err != nil {
			return nil, decimal.Zero, err
		}

		if err := c.LockInputs(ctx, coins); err != nil {
			if errors.Is(err, domain.ErrUtxoAlreadyLocked) {
				continue
			}
			return nil, decimal.Zero, err
		}
		return coins, change, nil
	}

	return nil, decimal.Zero, fmt.Errorf(
		"%w: gave up after %d attempts", domain.ErrUtxoAlreadyLocked,
		maxFundingAttempts,
	)
}

// Restore reloads the reservations found in the lock store and releases
// those whose utxo is not unspent anymore. Reservations are kept untouched if
// the unspent source can't be reached.
func (c *walletConnector) Restore(ctx context.Context) error {
	if c.store == nil {
		return nil
	}

	locked, err := c.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load locked utxos: %w", err)
	}
	if len(locked) <= 0 {
		return nil
	}
	c.registry.Restore(locked)
	c.log.Infof("restored %d locked utxos", len(locked))

	utxos, err := c.ListUnspent(ctx)
	if err != nil {
		c.log.Warn("unable to check restored locks against chain, keeping them")
		return nil
	}

	unspents := make(map[domain.UtxoKey]struct{}, len(utxos))
	for _, u := range utxos {
		unspents[u.Key()] = struct{}{}
	}
	spent := make([]domain.Utxo, 0)
	for _, u := range locked {
		if _, ok := unspents[u.Key()]; !ok {
			spent = append(spent, u)
		}
	}
	if len(spent) <= 0 {
		return nil
	}

	if err := c.UnlockInputs(ctx, spent); err != nil {
		return err
	}
	c.log.Infof("released %d locks of already spent utxos", len(spent))
	return nil
}
