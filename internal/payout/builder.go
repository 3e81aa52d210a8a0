// Package payout assembles, fee-balances and signs the transaction paying
// miners from the pool treasury.
package payout

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hashforge/kaspay/internal/address"
	"github.com/hashforge/kaspay/internal/network"
	"github.com/hashforge/kaspay/internal/tx"
	"github.com/hashforge/kaspay/internal/wallet"
)

// Build errors.
var (
	ErrNoPayouts         = errors.New("no positive-amount payouts")
	ErrInsufficientFunds = errors.New("insufficient funds for payouts plus fee")
	ErrUnableToStabilize = errors.New("fee and change did not stabilize")
)

// maxFeeIterations bounds the fee/change fixed-point search. The loop state
// is (includeChange, changeAmount); each iteration either flips the boolean
// once or moves changeAmount toward the fixed point, so convergence is
// expected within a few rounds.
const maxFeeIterations = 8

// Payout is one miner obligation. Non-positive amounts never produce
// outputs.
type Payout struct {
	Address string
	Amount  uint64
}

// UTXO pairs a spendable outpoint with its entry from the node.
type UTXO struct {
	Outpoint tx.Outpoint
	Entry    *tx.UTXOEntry
}

// attemptStatus is the outcome of one bounded finalize attempt.
type attemptStatus int

const (
	attemptOK attemptStatus = iota
	attemptNeedsFunds
	attemptUnstable
)

// BuildTransaction selects treasury UTXOs, builds payout and change outputs,
// iterates fee computation to a fixed point and signs every input. It
// returns the finished transaction and the realized fee.
//
// The treasury key's private key bytes are read but not retained; the caller
// remains responsible for zeroing them.
func BuildTransaction(
	params *network.Params,
	key *wallet.DerivedKey,
	changeAddress string,
	payouts []Payout,
	utxos []UTXO,
) (*tx.Transaction, uint64, error) {
	outputs, payoutTotal, err := buildPayoutOutputs(params, payouts)
	if err != nil {
		return nil, 0, err
	}
	if len(outputs) == 0 {
		return nil, 0, ErrNoPayouts
	}
	if len(utxos) == 0 {
		return nil, 0, ErrInsufficientFunds
	}

	changeType, changePayload, err := address.Decode(params, changeAddress)
	if err != nil {
		return nil, 0, fmt.Errorf("change address: %w", err)
	}
	changeScript, err := tx.PayToAddrScript(changeType, changePayload)
	if err != nil {
		return nil, 0, fmt.Errorf("change address: %w", err)
	}

	sorted := sortUTXOs(utxos)

	// Grow the selected input set largest-first until the payout total is
	// covered, then keep growing while finalize attempts report that the fee
	// pushes the requirement past the selection.
	var selected []UTXO
	var selectedTotal uint64
	next := 0
	addNext := func() error {
		if next >= len(sorted) {
			return fmt.Errorf("%w: need more than %d sompi", ErrInsufficientFunds, selectedTotal)
		}
		sum := selectedTotal + sorted[next].Entry.Amount
		if sum < selectedTotal {
			return fmt.Errorf("%w: selected input total", tx.ErrAmountOverflow)
		}
		selected = append(selected, sorted[next])
		selectedTotal = sum
		next++
		return nil
	}
	for selectedTotal < payoutTotal {
		if err := addNext(); err != nil {
			return nil, 0, err
		}
	}

	for {
		transaction, fee, status, err := attemptFinalize(outputs, payoutTotal, changeScript, selected, selectedTotal)
		if err != nil {
			return nil, 0, err
		}
		switch status {
		case attemptOK:
			if err := signTransaction(transaction, key, selected); err != nil {
				return nil, 0, err
			}
			return transaction, fee, nil
		case attemptNeedsFunds:
			if err := addNext(); err != nil {
				return nil, 0, err
			}
		case attemptUnstable:
			return nil, 0, ErrUnableToStabilize
		}
	}
}

// attemptFinalize runs the bounded fee/change fixed-point search over the
// current input selection. On attemptOK the returned transaction carries its
// final outputs and mass but is not yet signed.
func attemptFinalize(
	payoutOutputs []*tx.Output,
	payoutTotal uint64,
	changeScript tx.ScriptPublicKey,
	selected []UTXO,
	selectedTotal uint64,
) (*tx.Transaction, uint64, attemptStatus, error) {
	consumed := consumedEntries(selected)

	includeChange := false
	var changeAmount uint64

	for iteration := 0; iteration < maxFeeIterations; iteration++ {
		outputs := payoutOutputs
		if includeChange {
			outputs = append(append([]*tx.Output{}, payoutOutputs...), &tx.Output{
				Amount:          changeAmount,
				ScriptPublicKey: changeScript,
			})
		}

		transaction := buildUnsigned(selected, outputs)
		mass, err := tx.CalculateUnsigned(transaction, consumed)
		if err != nil {
			return nil, 0, 0, err
		}
		requiredFee := mass.OverallMass()
		if requiredFee < tx.MinimumRelayFee {
			requiredFee = tx.MinimumRelayFee
		}

		totalRequired := payoutTotal + requiredFee
		if totalRequired < payoutTotal {
			return nil, 0, 0, fmt.Errorf("%w: payout total plus fee", tx.ErrAmountOverflow)
		}
		if selectedTotal < totalRequired {
			return nil, 0, attemptNeedsFunds, nil
		}
		potentialChange := selectedTotal - totalRequired

		if includeChange {
			switch {
			case potentialChange == 0:
				includeChange = false
				changeAmount = 0
			case tx.IsDust(&tx.Output{Amount: potentialChange, ScriptPublicKey: changeScript}):
				includeChange = false
				changeAmount = 0
			case potentialChange == changeAmount:
				// Fixed point: the fee assumed by this output set reproduces
				// exactly this change amount.
				return finalize(transaction, mass, selectedTotal)
			default:
				changeAmount = potentialChange
			}
			continue
		}

		if potentialChange > 0 && !tx.IsDust(&tx.Output{Amount: potentialChange, ScriptPublicKey: changeScript}) {
			includeChange = true
			changeAmount = potentialChange
			continue
		}

		// No change output: any surplus is absorbed into the fee.
		return finalize(transaction, mass, selectedTotal)
	}

	return nil, 0, attemptUnstable, nil
}

// finalize stamps the transaction's mass and computes the exact fee as the
// conservation residue.
func finalize(transaction *tx.Transaction, mass tx.MassResult, selectedTotal uint64) (*tx.Transaction, uint64, attemptStatus, error) {
	transaction.Mass = mass.OverallMass()
	outTotal, err := tx.SumOutputAmounts(transaction.Outputs)
	if err != nil {
		return nil, 0, 0, err
	}
	return transaction, selectedTotal - outTotal, attemptOK, nil
}

// buildPayoutOutputs converts positive-amount payouts into outputs and
// totals them with overflow checking.
func buildPayoutOutputs(params *network.Params, payouts []Payout) ([]*tx.Output, uint64, error) {
	var outputs []*tx.Output
	var total uint64
	for _, p := range payouts {
		if p.Amount == 0 {
			continue
		}
		addrType, payload, err := address.Decode(params, p.Address)
		if err != nil {
			return nil, 0, fmt.Errorf("payout address %s: %w", p.Address, err)
		}
		script, err := tx.PayToAddrScript(addrType, payload)
		if err != nil {
			return nil, 0, fmt.Errorf("payout address %s: %w", p.Address, err)
		}
		outputs = append(outputs, &tx.Output{Amount: p.Amount, ScriptPublicKey: script})

		sum := total + p.Amount
		if sum < total {
			return nil, 0, fmt.Errorf("%w: payout total", tx.ErrAmountOverflow)
		}
		total = sum
	}
	return outputs, total, nil
}

// sortUTXOs orders UTXOs by descending amount; ties break on the outpoint so
// selection is fully deterministic.
func sortUTXOs(utxos []UTXO) []UTXO {
	sorted := make([]UTXO, len(utxos))
	copy(sorted, utxos)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Entry.Amount != sorted[j].Entry.Amount {
			return sorted[i].Entry.Amount > sorted[j].Entry.Amount
		}
		a, b := &sorted[i].Outpoint, &sorted[j].Outpoint
		if c := compareTransactionIDs(a.TransactionID, b.TransactionID); c != 0 {
			return c < 0
		}
		return a.Index < b.Index
	})
	return sorted
}

func compareTransactionIDs(a, b tx.TransactionID) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func buildUnsigned(selected []UTXO, outputs []*tx.Output) *tx.Transaction {
	inputs := make([]*tx.Input, len(selected))
	for i, u := range selected {
		inputs[i] = &tx.Input{
			PreviousOutpoint: u.Outpoint,
			Sequence:         0,
			SigOpCount:       1,
		}
	}
	return &tx.Transaction{
		Version: tx.Version,
		Inputs:  inputs,
		Outputs: outputs,
	}
}

func consumedEntries(selected []UTXO) []*tx.UTXOEntry {
	entries := make([]*tx.UTXOEntry, len(selected))
	for i, u := range selected {
		entries[i] = u.Entry
	}
	return entries
}

func signTransaction(transaction *tx.Transaction, key *wallet.DerivedKey, selected []UTXO) error {
	return tx.Sign(transaction, key.PrivateKey, consumedEntries(selected))
}
