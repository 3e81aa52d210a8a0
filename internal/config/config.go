// Package config provides the daemon's YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hashforge/kaspay/internal/network"
)

// ConfigFileName is the config file name inside the data directory.
const ConfigFileName = "kaspay.yaml"

// DefaultDataDir is used when no data directory is given.
const DefaultDataDir = "~/.kaspay"

// Config holds all daemon configuration.
type Config struct {
	// Network selects the chain parameters (mainnet, testnet, simnet, devnet).
	Network string `yaml:"network"`

	// Treasury holds the key material for the payout wallet.
	Treasury TreasuryConfig `yaml:"treasury"`

	// Node is the kaspad RPC endpoint.
	Node NodeConfig `yaml:"node"`

	// Payouts holds payout policy settings.
	Payouts PayoutConfig `yaml:"payouts"`

	// Storage holds journal settings.
	Storage StorageConfig `yaml:"storage"`

	// Logging holds log settings.
	Logging LoggingConfig `yaml:"logging"`
}

// TreasuryConfig holds the treasury key source. Exactly one of Mnemonic and
// SeedHex must be set.
type TreasuryConfig struct {
	// Mnemonic is a BIP-39 recovery phrase.
	Mnemonic string `yaml:"mnemonic,omitempty"`

	// SeedHex is a hex-encoded master seed, used instead of a mnemonic.
	SeedHex string `yaml:"seed_hex,omitempty"`

	// DerivationPath overrides the default derivation path.
	DerivationPath string `yaml:"derivation_path,omitempty"`
}

// NodeConfig holds the kaspad connection settings.
type NodeConfig struct {
	// URL is the websocket RPC endpoint. When empty, the network's default
	// port on localhost is used.
	URL string `yaml:"url,omitempty"`

	// TimeoutSeconds bounds individual RPC calls.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Timeout returns the RPC call timeout.
func (n NodeConfig) Timeout() time.Duration {
	if n.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(n.TimeoutSeconds) * time.Second
}

// PayoutConfig holds payout policy settings.
type PayoutConfig struct {
	// MinimumPayout in sompi; payouts below it are skipped.
	MinimumPayout uint64 `yaml:"minimum_payout"`

	// ChangeAddress overrides the treasury address as change destination.
	ChangeAddress string `yaml:"change_address,omitempty"`
}

// StorageConfig holds journal settings.
type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Network: "mainnet",
		Treasury: TreasuryConfig{
			DerivationPath: network.DefaultDerivationPath,
		},
		Node: NodeConfig{
			TimeoutSeconds: 30,
		},
		Payouts: PayoutConfig{
			MinimumPayout: 100_000_000, // 1 KAS
		},
		Storage: StorageConfig{
			DataDir: DefaultDataDir,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads the config from the data directory, writing a default
// config file on first run.
func LoadConfig(dataDir string) (*Config, error) {
	expandedDir := expandPath(dataDir)
	configPath := filepath.Join(expandedDir, ConfigFileName)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.Storage.DataDir = dataDir

		if err := cfg.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to the given path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The config may hold a mnemonic, keep it private.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for structural errors. Key material is
// validated separately when the treasury key is derived.
func (c *Config) Validate() error {
	if _, ok := network.Get(network.Network(c.Network)); !ok {
		return fmt.Errorf("config: unknown network %q (known: %v)", c.Network, network.Networks())
	}
	if c.Node.TimeoutSeconds < 0 {
		return fmt.Errorf("config: node timeout must not be negative")
	}
	return nil
}

// Params returns the chain parameters for the configured network.
func (c *Config) Params() (*network.Params, error) {
	params, ok := network.Get(network.Network(c.Network))
	if !ok {
		return nil, fmt.Errorf("config: unknown network %q", c.Network)
	}
	return params, nil
}

// NodeURL returns the configured node URL, or the network's default.
func (c *Config) NodeURL() (string, error) {
	if c.Node.URL != "" {
		return c.Node.URL, nil
	}
	params, err := c.Params()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ws://localhost:%d", params.RPCPort), nil
}

// expandPath expands ~ to home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}
