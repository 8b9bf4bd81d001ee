package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/utxo-connector/internal/core/domain"
	"github.com/tdex-network/utxo-connector/pkg/circuitbreaker"
)

const (
	defaultDecimals       = 8
	defaultRequestTimeout = 15 * time.Second
)

// Config holds the settings to connect to a bitcoind compatible node.
type Config struct {
	// Host is the host:port of the node's RPC interface.
	Host     string
	User     string
	Password string
	UseTLS   bool
	// Addresses optionally restricts the wallet utxos to those of the given
	// addresses.
	Addresses []string
	// Decimals is the precision of the chain's unit, 8 if not set.
	Decimals int
	// RequestTimeout defaults to 15 seconds.
	RequestTimeout time.Duration
}

// Service lists the utxos of the wallet loaded into a bitcoind compatible
// node with listunspent.
type Service struct {
	client    *rpcclient.Client
	addresses map[string]struct{}
	decimals  int32
	timeout   time.Duration
	cb        *gobreaker.CircuitBreaker
}

// NewService returns a Service talking to the node in HTTP POST mode, no
// connection is opened until the first request.
func NewService(cfg Config) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("missing rpc host")
	}

	client, err := rpcclient.New(&rpcclient.ConnConfig{
		Host:         cfg.Host,
		User:         cfg.User,
		Pass:         cfg.Password,
		HTTPPostMode: true,
		DisableTLS:   !cfg.UseTLS,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create rpc client: %s", err)
	}

	addresses := make(map[string]struct{}, len(cfg.Addresses))
	for _, addr := range cfg.Addresses {
		addresses[addr] = struct{}{}
	}
	decimals := cfg.Decimals
	if decimals <= 0 {
		decimals = defaultDecimals
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &Service{
		client:    client,
		addresses: addresses,
		decimals:  int32(decimals),
		timeout:   timeout,
		cb:        circuitbreaker.NewCircuitBreaker(fmt.Sprintf("rpc %s", cfg.Host)),
	}, nil
}

type listUnspentResult struct {
	unspents []btcjson.ListUnspentResult
	err      error
}

func (s *Service) ListUnspent(ctx context.Context) ([]domain.Utxo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.cb.Execute(func() (interface{}, error) {
		chRes := make(chan listUnspentResult, 1)
		go func() {
			unspents, err := s.client.ListUnspent()
			chRes <- listUnspentResult{unspents, err}
		}()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case r := <-chRes:
			return r.unspents, r.err
		}
	})
	if err != nil {
		return nil, fmt.Errorf("error on retrieving utxos: %w", err)
	}

	unspents := res.([]btcjson.ListUnspentResult)
	utxos := make([]domain.Utxo, 0, len(unspents))
	for _, u := range unspents {
		if len(s.addresses) > 0 {
			if _, ok := s.addresses[u.Address]; !ok {
				continue
			}
		}
		utxos = append(utxos, domain.Utxo{
			TxID:    u.TxID,
			VOut:    u.Vout,
			Address: u.Address,
			Amount:  decimal.NewFromFloat(u.Amount).Round(s.decimals),
		})
	}
	return utxos, nil
}

// Close shuts down the rpc client.
func (s *Service) Close() {
	s.client.Shutdown()
}
