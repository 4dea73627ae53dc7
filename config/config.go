// Package config loads SDK configuration for long-running consumers
// (oracles, dashboards): network selection, contract addresses, and the
// optional metadata and cache backends. Library callers can skip it entirely
// and wire options by hand.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hackpredict/sdk-go/core/types"
)

type Config struct {
	Network  NetworkSection  `yaml:"network"`
	Factory  FactorySection  `yaml:"factory"`
	Poll     PollSection     `yaml:"poll"`
	Postgres PostgresSection `yaml:"postgres"`
	Redis    RedisSection    `yaml:"redis"`
	Log      LogSection      `yaml:"log"`
}

type NetworkSection struct {
	// Name is "test" or "public".
	Name        string `yaml:"name"`
	RPCEndpoint string `yaml:"rpc_endpoint"` // empty selects the network default
}

type FactorySection struct {
	Address string `yaml:"address"`
	// MarketWasmHash is the hex-encoded hash of the installed market
	// contract code. Required only for market creation.
	MarketWasmHash string `yaml:"market_wasm_hash"`
}

type PollSection struct {
	IntervalSeconds int `yaml:"interval_seconds"`
	MaxAttempts     int `yaml:"max_attempts"`
}

type PostgresSection struct {
	DSN string `yaml:"dsn"` // empty disables the metadata store
}

type RedisSection struct {
	Addr       string `yaml:"addr"` // empty disables the market cache
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

type LogSection struct {
	Level string `yaml:"level"` // debug | info | warn | error
}

// Load reads the YAML file at path, loads a .env file when one exists,
// applies HACKPREDICT_* environment overrides, and fills in defaults. Call
// Validate before using the result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Network.Name, "HACKPREDICT_NETWORK")
	setStr(&cfg.Network.RPCEndpoint, "HACKPREDICT_RPC_ENDPOINT")
	setStr(&cfg.Factory.Address, "HACKPREDICT_FACTORY_ADDRESS")
	setStr(&cfg.Factory.MarketWasmHash, "HACKPREDICT_MARKET_WASM_HASH")
	setStr(&cfg.Postgres.DSN, "HACKPREDICT_POSTGRES_DSN")
	setStr(&cfg.Redis.Addr, "HACKPREDICT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "HACKPREDICT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "HACKPREDICT_REDIS_DB")
	setStr(&cfg.Log.Level, "HACKPREDICT_LOG_LEVEL")
}

func setDefaults(cfg *Config) {
	if cfg.Network.Name == "" {
		cfg.Network.Name = "test"
	}
	if cfg.Poll.IntervalSeconds <= 0 {
		cfg.Poll.IntervalSeconds = 2
	}
	if cfg.Poll.MaxAttempts <= 0 {
		cfg.Poll.MaxAttempts = 30
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate checks the fields that would otherwise fail deep inside the
// client stack.
func (c *Config) Validate() error {
	if _, err := c.NetworkConfig(); err != nil {
		return err
	}
	if c.Factory.Address == "" {
		return fmt.Errorf("config: factory address is required")
	}
	if _, err := types.NewContractAddress(c.Factory.Address); err != nil {
		return fmt.Errorf("config: factory address: %w", err)
	}
	if c.Factory.MarketWasmHash != "" {
		if _, err := c.MarketWasmHash(); err != nil {
			return err
		}
	}
	return nil
}

// NetworkConfig resolves the network section into the typed config the
// client consumes.
func (c *Config) NetworkConfig() (types.NetworkConfig, error) {
	var network types.Network
	switch c.Network.Name {
	case "test":
		network = types.NetworkTest
	case "public":
		network = types.NetworkPublic
	default:
		return types.NetworkConfig{}, fmt.Errorf("config: unknown network %q", c.Network.Name)
	}
	return types.NewNetworkConfig(network, c.Network.RPCEndpoint)
}

// MarketWasmHash decodes the hex wasm hash into its fixed-size form.
func (c *Config) MarketWasmHash() ([32]byte, error) {
	var hash [32]byte
	raw, err := hex.DecodeString(c.Factory.MarketWasmHash)
	if err != nil {
		return hash, fmt.Errorf("config: market wasm hash: %w", err)
	}
	if len(raw) != 32 {
		return hash, fmt.Errorf("config: market wasm hash is %d bytes, want 32", len(raw))
	}
	copy(hash[:], raw)
	return hash, nil
}

// PollInterval returns the poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalSeconds) * time.Second
}

// CacheTTL returns the market cache TTL, zero meaning the cache default.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Redis.TTLSeconds) * time.Second
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
