package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigCreatesDefault(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Network != "mainnet" {
		t.Errorf("network = %q, want mainnet", cfg.Network)
	}
	if cfg.Payouts.MinimumPayout != 100_000_000 {
		t.Errorf("minimum payout = %d, want 100000000", cfg.Payouts.MinimumPayout)
	}

	path := filepath.Join(dir, ConfigFileName)
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("default config file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file mode = %o, want 0600", perm)
	}
}

func TestLoadConfigExisting(t *testing.T) {
	dir := t.TempDir()
	yaml := `
network: testnet
treasury:
  seed_hex: "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
node:
  url: ws://node.example:18210
  timeout_seconds: 5
payouts:
  minimum_payout: 50000000
logging:
  level: debug
`
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Network != "testnet" {
		t.Errorf("network = %q, want testnet", cfg.Network)
	}
	if cfg.Node.Timeout() != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.Node.Timeout())
	}
	if cfg.Payouts.MinimumPayout != 50_000_000 {
		t.Errorf("minimum payout = %d, want 50000000", cfg.Payouts.MinimumPayout)
	}
	// Defaults survive partial configs.
	if cfg.Treasury.DerivationPath != "m/44'/972/0'/0/0" {
		t.Errorf("derivation path = %q, want default", cfg.Treasury.DerivationPath)
	}

	url, err := cfg.NodeURL()
	if err != nil {
		t.Fatalf("NodeURL() error = %v", err)
	}
	if url != "ws://node.example:18210" {
		t.Errorf("node url = %q", url)
	}
}

func TestLoadConfigUnknownNetwork(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("network: ropsten\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(dir); err == nil {
		t.Fatal("LoadConfig() accepted unknown network")
	}
}

func TestNodeURLDefaultsToNetworkPort(t *testing.T) {
	cfg := DefaultConfig()

	url, err := cfg.NodeURL()
	if err != nil {
		t.Fatalf("NodeURL() error = %v", err)
	}
	if url != "ws://localhost:18110" {
		t.Errorf("node url = %q, want ws://localhost:18110", url)
	}

	cfg.Network = "testnet"
	url, err = cfg.NodeURL()
	if err != nil {
		t.Fatalf("NodeURL() error = %v", err)
	}
	if url != "ws://localhost:18210" {
		t.Errorf("node url = %q, want ws://localhost:18210", url)
	}
}

func TestNodeTimeoutDefault(t *testing.T) {
	n := NodeConfig{}
	if n.Timeout() != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", n.Timeout())
	}
}
