package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/viper"
	"github.com/tdex-network/utxo-connector/internal/core/domain"
	unspentsource "github.com/tdex-network/utxo-connector/internal/infrastructure/unspent-source"
)

const (
	// DatadirKey is the local data directory to store the internal state of daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// ListenPortKey is the port where the HTTP interface will listen on
	ListenPortKey = "LISTEN_PORT"
	// PersistLocksKey enables the journal of locked utxos, reloaded at startup
	PersistLocksKey = "PERSIST_LOCKS"
	// SourceRequestTimeoutKey is the timeout in milliseconds of a single
	// request to an unspent source
	SourceRequestTimeoutKey = "SOURCE_REQUEST_TIMEOUT"
	// SourceRateLimitKey is the max number of requests per second sent to an
	// esplora unspent source
	SourceRateLimitKey = "SOURCE_RATE_LIMIT"
	// ConfigFileKey is the path of the YAML file listing the connected chains.
	// Defaults to config.yaml in the datadir.
	ConfigFileKey = "CONFIG_FILE"

	DbLocation     = "db"
	configFilename = "config.yaml"
	chainsKey      = "chains"

	defaultDecimals = 8
	maxDecimals     = 18
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("utxo-connector", false)

// SourceConfig is the unspent source section of a chain's configuration.
type SourceConfig struct {
	Type      string   `mapstructure:"type"`
	URL       string   `mapstructure:"url"`
	User      string   `mapstructure:"user"`
	Password  string   `mapstructure:"password"`
	UseTLS    bool     `mapstructure:"use_tls"`
	Addresses []string `mapstructure:"addresses"`
	// OnlyConfirmed excludes mempool utxos, esplora only.
	OnlyConfirmed bool `mapstructure:"only_confirmed"`
}

// ChainConfig is the configuration of a single connected chain. Address
// prefixes are derived from the network when this is set, otherwise the hex
// encoded prefixes are used.
type ChainConfig struct {
	Name             string       `mapstructure:"name"`
	Network          string       `mapstructure:"network"`
	PubKeyHashPrefix string       `mapstructure:"pubkey_hash_prefix"`
	ScriptHashPrefix string       `mapstructure:"script_hash_prefix"`
	Decimals         int          `mapstructure:"decimals"`
	Source           SourceConfig `mapstructure:"source"`
}

// Prefixes returns the address prefixes of the chain.
func (c ChainConfig) Prefixes() (*domain.AddressPrefixes, error) {
	if c.Network != "" {
		return domain.NewAddressPrefixesFromNetwork(c.Network)
	}
	return domain.NewAddressPrefixesFromHex(c.PubKeyHashPrefix, c.ScriptHashPrefix)
}

// UnspentSourceConfig returns the settings for the chain's unspent source,
// completed with the global source ones.
func (c ChainConfig) UnspentSourceConfig() unspentsource.Config {
	return unspentsource.Config{
		Type:           c.Source.Type,
		URL:            c.Source.URL,
		User:           c.Source.User,
		Password:       c.Source.Password,
		UseTLS:         c.Source.UseTLS,
		Addresses:      c.Source.Addresses,
		Decimals:       c.Decimals,
		RequestTimeout: time.Duration(GetInt(SourceRequestTimeoutKey)) * time.Millisecond,
		RateLimit:      GetInt(SourceRateLimitKey),
		OnlyConfirmed:  c.Source.OnlyConfirmed,
	}
}

func (c ChainConfig) validate() error {
	if c.Name == "" {
		return fmt.Errorf("missing chain name")
	}
	if _, err := c.Prefixes(); err != nil {
		return err
	}
	if c.Decimals < 0 || c.Decimals > maxDecimals {
		return fmt.Errorf("decimals must be in range [0, %d]", maxDecimals)
	}
	if !unspentsource.IsSupportedType(c.Source.Type) {
		return fmt.Errorf("unknown unspent source type %q", c.Source.Type)
	}
	if c.Source.URL == "" {
		return fmt.Errorf("missing unspent source url")
	}
	if c.Source.Type == unspentsource.SourceTypeEsplora &&
		len(c.Source.Addresses) <= 0 {
		return fmt.Errorf("esplora unspent source requires wallet addresses")
	}
	return nil
}

var chains []ChainConfig

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("CONNECTOR")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(ListenPortKey, 9090)
	vip.SetDefault(PersistLocksKey, false)
	vip.SetDefault(SourceRequestTimeoutKey, 15000)
	vip.SetDefault(SourceRateLimitKey, 10)

	if err := loadChains(); err != nil {
		return fmt.Errorf("error while loading chains config: %s", err)
	}

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func GetConfigFile() string {
	if path := GetString(ConfigFileKey); path != "" {
		return path
	}
	return filepath.Join(GetDatadir(), configFilename)
}

// GetChains returns the configuration of every connected chain.
func GetChains() []ChainConfig {
	return chains
}

func loadChains() error {
	vip.SetConfigFile(GetConfigFile())
	if err := vip.ReadInConfig(); err != nil {
		return err
	}

	chains = nil
	if err := vip.UnmarshalKey(chainsKey, &chains); err != nil {
		return err
	}
	for i := range chains {
		chains[i].Name = strings.ToUpper(chains[i].Name)
		if chains[i].Decimals == 0 {
			chains[i].Decimals = defaultDecimals
		}
	}
	return nil
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	if port := GetInt(ListenPortKey); port <= 0 || port > 65535 {
		return fmt.Errorf("%s must be a valid port number", ListenPortKey)
	}
	if GetInt(SourceRequestTimeoutKey) <= 0 {
		return fmt.Errorf("%s must be greater than 0", SourceRequestTimeoutKey)
	}
	if GetInt(SourceRateLimitKey) <= 0 {
		return fmt.Errorf("%s must be greater than 0", SourceRateLimitKey)
	}

	if len(chains) <= 0 {
		return fmt.Errorf("no chains configured")
	}
	names := make(map[string]struct{}, len(chains))
	for i, c := range chains {
		if err := c.validate(); err != nil {
			return fmt.Errorf("chain %d (%s): %s", i, c.Name, err)
		}
		if _, ok := names[c.Name]; ok {
			return fmt.Errorf("chain %s configured more than once", c.Name)
		}
		names[c.Name] = struct{}{}
	}

	return nil
}

func initDatadir() error {
	if !GetBool(PersistLocksKey) {
		return nil
	}
	datadir := GetDatadir()
	return makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation))
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
