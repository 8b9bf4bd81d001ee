package unspentsource

import (
	"fmt"
	"time"

	"github.com/tdex-network/utxo-connector/internal/core/ports"
	"github.com/tdex-network/utxo-connector/internal/infrastructure/unspent-source/esplora"
	"github.com/tdex-network/utxo-connector/internal/infrastructure/unspent-source/rpc"
)

const (
	// SourceTypeEsplora lists utxos of a set of addresses from an esplora
	// explorer.
	SourceTypeEsplora = "esplora"
	// SourceTypeRPC lists utxos of the wallet loaded into a bitcoind
	// compatible node.
	SourceTypeRPC = "rpc"
)

var supportedTypes = map[string]struct{}{
	SourceTypeEsplora: {},
	SourceTypeRPC:     {},
}

// Config is the union of the settings of every supported source type.
type Config struct {
	Type      string
	URL       string
	User      string
	Password  string
	UseTLS    bool
	Addresses []string
	Decimals  int

	RequestTimeout time.Duration
	RateLimit      int
	OnlyConfirmed  bool
}

// IsSupportedType returns whether sourceType is one of the supported ones.
func IsSupportedType(sourceType string) bool {
	_, ok := supportedTypes[sourceType]
	return ok
}

// NewUnspentSource returns the unspent source for the configured type.
func NewUnspentSource(cfg Config) (ports.UnspentSource, error) {
	switch cfg.Type {
	case SourceTypeEsplora:
		return esplora.NewService(esplora.Config{
			URL:            cfg.URL,
			Addresses:      cfg.Addresses,
			Decimals:       cfg.Decimals,
			RequestTimeout: cfg.RequestTimeout,
			RateLimit:      cfg.RateLimit,
			OnlyConfirmed:  cfg.OnlyConfirmed,
		})
	case SourceTypeRPC:
		svc, err := rpc.NewService(rpc.Config{
			Host:      cfg.URL,
			User:      cfg.User,
			Password:  cfg.Password,
			UseTLS:    cfg.UseTLS,
			Addresses: cfg.Addresses,
			Decimals:  cfg.Decimals,

			RequestTimeout: cfg.RequestTimeout,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("unknown unspent source type %q", cfg.Type)
	}
}
