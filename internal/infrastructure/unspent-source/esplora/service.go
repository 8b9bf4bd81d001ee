package esplora

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"github.com/tdex-network/utxo-connector/internal/core/domain"
	"github.com/tdex-network/utxo-connector/internal/core/ports"
	"github.com/tdex-network/utxo-connector/pkg/circuitbreaker"
	"go.uber.org/ratelimit"
	"golang.org/x/sync/errgroup"
)

const (
	defaultDecimals       = 8
	defaultRequestTimeout = 15 * time.Second
)

// Config holds the settings of an esplora backed unspent source.
type Config struct {
	URL       string
	Addresses []string
	// Decimals is the precision of the chain's unit, 8 if not set.
	Decimals int
	// RequestTimeout defaults to 15 seconds.
	RequestTimeout time.Duration
	// RateLimit is the max number of requests per second, 0 means unlimited.
	RateLimit int
	// OnlyConfirmed excludes utxos still in mempool.
	OnlyConfirmed bool
}

type esplora struct {
	apiURL        string
	addresses     []string
	decimals      int32
	onlyConfirmed bool
	client        *http.Client
	limiter       ratelimit.Limiter
	cb            *gobreaker.CircuitBreaker
}

// NewService returns a new esplora service as a ports.UnspentSource
// interface, listing the utxos of the configured wallet addresses.
func NewService(cfg Config) (ports.UnspentSource, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("missing esplora url")
	}
	if len(cfg.Addresses) <= 0 {
		return nil, fmt.Errorf("missing wallet addresses")
	}

	decimals := cfg.Decimals
	if decimals <= 0 {
		decimals = defaultDecimals
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	limiter := ratelimit.NewUnlimited()
	if cfg.RateLimit > 0 {
		limiter = ratelimit.New(cfg.RateLimit)
	}

	return &esplora{
		apiURL:        strings.TrimRight(cfg.URL, "/"),
		addresses:     cfg.Addresses,
		decimals:      int32(decimals),
		onlyConfirmed: cfg.OnlyConfirmed,
		client:        &http.Client{Timeout: timeout},
		limiter:       limiter,
		cb:            circuitbreaker.NewCircuitBreaker("esplora"),
	}, nil
}

// ListUnspent fetches the utxos of every address concurrently. The whole
// fan-out counts as a single request for the circuit breaker, so that
// siblings canceled after a failure don't add up to trip it.
func (e *esplora) ListUnspent(ctx context.Context) ([]domain.Utxo, error) {
	res, err := e.cb.Execute(func() (interface{}, error) {
		return e.listUnspent(ctx)
	})
	if err != nil {
		return nil, err
	}
	return res.([]domain.Utxo), nil
}

func (e *esplora) listUnspent(ctx context.Context) ([]domain.Utxo, error) {
	unspentsByAddress := make([][]domain.Utxo, len(e.addresses))

	eg, ctx := errgroup.WithContext(ctx)
	for i := range e.addresses {
		i := i
		eg.Go(func() error {
			unspents, err := e.getUnspents(ctx, e.addresses[i])
			if err != nil {
				return err
			}
			unspentsByAddress[i] = unspents
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	unspents := make([]domain.Utxo, 0)
	for _, u := range unspentsByAddress {
		unspents = append(unspents, u...)
	}
	return unspents, nil
}

func (e *esplora) getUnspents(
	ctx context.Context, addr string,
) ([]domain.Utxo, error) {
	e.limiter.Take()

	url := fmt.Sprintf("%s/address/%s/utxo", e.apiURL, addr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error on retrieving utxos: %s", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf(
			"error on retrieving utxos: status %d %s",
			resp.StatusCode, strings.TrimSpace(string(body)),
		)
	}

	var outs []esploraUtxo
	if err := json.NewDecoder(resp.Body).Decode(&outs); err != nil {
		return nil, fmt.Errorf("error on retrieving utxos: %s", err)
	}

	unspents := make([]domain.Utxo, 0, len(outs))
	for _, out := range outs {
		if e.onlyConfirmed && !out.Status.Confirmed {
			continue
		}
		unspents = append(unspents, out.toDomain(addr, e.decimals))
	}
	return unspents, nil
}
