// Package main provides the kaspayd daemon - a treasury payout engine for
// Kaspa mining pools.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hashforge/kaspay/internal/config"
	"github.com/hashforge/kaspay/internal/payout"
	"github.com/hashforge/kaspay/internal/rpc"
	"github.com/hashforge/kaspay/internal/storage"
	"github.com/hashforge/kaspay/internal/wallet"
	"github.com/hashforge/kaspay/pkg/helpers"
	"github.com/hashforge/kaspay/pkg/logging"
)

var (
	version = "0.1.0-dev"
	commit  = "unknown"
)

func main() {
	var (
		dataDir     = flag.String("data-dir", config.DefaultDataDir, "Data directory")
		configFile  = flag.String("config", "", "Config file path (default: <data-dir>/kaspay.yaml)")
		payoutsFile = flag.String("payouts", "", "Payouts CSV file (address,amount in KAS)")
		dryRun      = flag.Bool("dry-run", false, "Build and sign the transaction but do not submit it")
		logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error), overrides config")
		showVersion = flag.Bool("version", false, "Show version and exit")
	)
	flag.Parse()

	log := logging.New(&logging.Config{
		Level:      *logLevel,
		TimeFormat: time.TimeOnly,
	})

	if *showVersion {
		fmt.Printf("kaspayd %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	// Load or create config file
	configDir := *dataDir
	if *configFile != "" {
		configDir = filepath.Dir(*configFile)
	}
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// CLI flags take precedence over the config file
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	cfg.Storage.DataDir = *dataDir

	log = logging.New(&logging.Config{
		Level:      cfg.Logging.Level,
		TimeFormat: time.TimeOnly,
	})

	if *payoutsFile == "" {
		log.Fatal("No payouts file given, use -payouts")
	}

	params, err := cfg.Params()
	if err != nil {
		log.Fatal("Invalid network", "error", err)
	}

	payouts, skipped, err := loadPayouts(*payoutsFile, cfg.Payouts.MinimumPayout)
	if err != nil {
		log.Fatal("Failed to load payouts", "error", err)
	}
	if skipped > 0 {
		log.Warn("Skipped payouts below minimum", "count", skipped, "minimum", helpers.FormatKAS(cfg.Payouts.MinimumPayout))
	}

	// Derive the treasury key; its raw bytes are wiped on exit.
	key, err := wallet.DeriveTreasuryKey(wallet.KeyConfig{
		Mnemonic: cfg.Treasury.Mnemonic,
		SeedHex:  cfg.Treasury.SeedHex,
		Path:     cfg.Treasury.DerivationPath,
	}, params)
	if err != nil {
		log.Fatal("Failed to derive treasury key", "error", err)
	}
	defer key.Zero()
	log.Info("Treasury key derived", "address", key.Address, "network", params.Name)

	store, err := storage.New(&storage.Config{DataDir: cfg.Storage.DataDir})
	if err != nil {
		log.Fatal("Failed to open storage", "error", err)
	}
	defer store.Close()

	nodeURL, err := cfg.NodeURL()
	if err != nil {
		log.Fatal("Failed to resolve node URL", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := rpc.NewClient(nodeURL, log)
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Node.Timeout())
	err = client.Connect(connectCtx)
	cancel()
	if err != nil {
		log.Fatal("Failed to connect to kaspad", "url", nodeURL, "error", err)
	}
	defer client.Close()

	engine := payout.NewEngine(params, key, cfg.Payouts.ChangeAddress, client, store, log)

	if *dryRun {
		transaction, fee, err := engine.Preview(ctx, payouts)
		if err != nil {
			log.Fatal("Failed to build payout transaction", "error", err)
		}
		log.Info("Dry run: transaction built but not submitted",
			"inputs", len(transaction.Inputs),
			"outputs", len(transaction.Outputs),
			"fee", helpers.FormatKAS(fee),
			"mass", transaction.Mass)
		return
	}

	txID, fee, err := engine.Run(ctx, payouts)
	if err != nil {
		log.Fatal("Payout round failed", "error", err)
	}
	log.Info("Payout round complete", "txid", txID, "recipients", len(payouts), "fee", helpers.FormatKAS(fee))
}

// loadPayouts reads a payouts CSV file with one "address,amount" pair per
// line, amounts in KAS. Lines below the minimum are counted and skipped.
func loadPayouts(path string, minimum uint64) ([]payout.Payout, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	var payouts []payout.Payout
	skipped := 0
	lineNo := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		addr, amountStr, ok := strings.Cut(line, ",")
		if !ok {
			return nil, 0, fmt.Errorf("line %d: expected address,amount", lineNo)
		}
		amount, err := helpers.ParseKAS(strings.TrimSpace(amountStr))
		if err != nil {
			return nil, 0, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if amount < minimum {
			skipped++
			continue
		}
		payouts = append(payouts, payout.Payout{
			Address: strings.TrimSpace(addr),
			Amount:  amount,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}
	return payouts, skipped, nil
}
