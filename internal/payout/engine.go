package payout

import (
	"context"
	"fmt"

	"github.com/hashforge/kaspay/internal/network"
	"github.com/hashforge/kaspay/internal/tx"
	"github.com/hashforge/kaspay/internal/wallet"
	"github.com/hashforge/kaspay/pkg/logging"
)

// NodeClient is the node RPC collaborator: the engine only ever lists
// spendable UTXOs and submits finished transactions.
type NodeClient interface {
	UTXOsByAddress(ctx context.Context, addr string) ([]UTXO, error)
	SubmitTransaction(ctx context.Context, transaction *tx.Transaction, allowOrphan bool) (string, error)
}

// Journal records completed payout rounds for auditing. Implementations
// must not fail the payout on journal errors; the engine logs and proceeds.
type Journal interface {
	RecordPayout(txID string, fee uint64, payouts []Payout) error
}

// Engine ties the node client, the transaction builder and the journal into
// payout rounds. It holds no mutable state between rounds; concurrent rounds
// for different treasuries are independent.
type Engine struct {
	params     *network.Params
	key        *wallet.DerivedKey
	changeAddr string
	node       NodeClient
	journal    Journal // may be nil
	log        *logging.Logger
}

// NewEngine creates a payout engine for one treasury key. An empty
// changeAddr sends change back to the treasury address.
func NewEngine(params *network.Params, key *wallet.DerivedKey, changeAddr string, node NodeClient, journal Journal, log *logging.Logger) *Engine {
	if changeAddr == "" {
		changeAddr = key.Address
	}
	if log == nil {
		log = logging.Default()
	}
	return &Engine{params: params, key: key, changeAddr: changeAddr, node: node, journal: journal, log: log}
}

// Run executes one payout round: fetch the treasury's spendable UTXOs, build
// and sign the payout transaction, submit it, and journal the result. It
// returns the submitted transaction id and the realized fee.
//
// A failure at any step returns before submission, so no funds are spent.
func (e *Engine) Run(ctx context.Context, payouts []Payout) (string, uint64, error) {
	transaction, fee, err := e.prepare(ctx, payouts)
	if err != nil {
		return "", 0, err
	}

	txID, err := e.node.SubmitTransaction(ctx, transaction, false)
	if err != nil {
		return "", 0, fmt.Errorf("submit transaction: %w", err)
	}
	e.log.Info("payout transaction submitted",
		"txid", txID,
		"inputs", len(transaction.Inputs),
		"outputs", len(transaction.Outputs),
		"fee", fee,
		"mass", transaction.Mass)

	if e.journal != nil {
		if err := e.journal.RecordPayout(txID, fee, payouts); err != nil {
			e.log.Error("failed to journal payout", "txid", txID, "error", err)
		}
	}
	return txID, fee, nil
}

// Preview builds and signs the payout transaction without submitting it.
func (e *Engine) Preview(ctx context.Context, payouts []Payout) (*tx.Transaction, uint64, error) {
	return e.prepare(ctx, payouts)
}

func (e *Engine) prepare(ctx context.Context, payouts []Payout) (*tx.Transaction, uint64, error) {
	positive := 0
	for _, p := range payouts {
		if p.Amount > 0 {
			positive++
		}
	}
	if positive == 0 {
		return nil, 0, ErrNoPayouts
	}

	utxos, err := e.node.UTXOsByAddress(ctx, e.key.Address)
	if err != nil {
		return nil, 0, fmt.Errorf("list UTXOs: %w", err)
	}
	e.log.Debug("fetched treasury UTXOs", "count", len(utxos), "payouts", positive)

	return BuildTransaction(e.params, e.key, e.changeAddr, payouts, utxos)
}
