// Package tx defines the Kaspa transaction model and implements the
// consensus-critical pieces the payout engine needs: locking-script
// construction, mass computation, signature hashing, and Schnorr signing.
package tx

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// Transaction field defaults for payout transactions.
const (
	Version          uint16 = 0
	SubnetworkIDSize        = 20
	TransactionIDSize       = 32
)

// SubnetworkID identifies the subnetwork a transaction belongs to. Payouts
// always use the native (all-zero) subnetwork.
type SubnetworkID [SubnetworkIDSize]byte

// IsNative reports whether the subnetwork is the all-zero native subnetwork.
func (s SubnetworkID) IsNative() bool {
	return s == SubnetworkID{}
}

// TransactionID is the 32-byte id of a previous transaction.
type TransactionID [TransactionIDSize]byte

// String returns the id as lowercase hex.
func (id TransactionID) String() string {
	return hex.EncodeToString(id[:])
}

// NewTransactionIDFromHex parses a 64-character hex transaction id.
func NewTransactionIDFromHex(s string) (TransactionID, error) {
	var id TransactionID
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("invalid transaction id %q: %w", s, err)
	}
	if len(raw) != TransactionIDSize {
		return id, fmt.Errorf("invalid transaction id length %d, want %d", len(raw), TransactionIDSize)
	}
	copy(id[:], raw)
	return id, nil
}

// Outpoint identifies an output of a previous transaction.
type Outpoint struct {
	TransactionID TransactionID
	Index         uint32
}

// ScriptPublicKey is a versioned locking script.
type ScriptPublicKey struct {
	Version uint16
	Script  []byte
}

// UTXOEntry describes a spendable output as reported by the node.
type UTXOEntry struct {
	Amount          uint64
	ScriptPublicKey ScriptPublicKey
	IsCoinbase      bool
	BlockDAAScore   uint64
}

// Input spends a previous output. SignatureScript is empty until signing.
type Input struct {
	PreviousOutpoint Outpoint
	SignatureScript  []byte
	Sequence         uint64
	SigOpCount       uint32
}

// Output pays an amount to a locking script.
type Output struct {
	Amount          uint64
	ScriptPublicKey ScriptPublicKey
}

// Transaction is a Kaspa transaction. Mass is filled in once the final
// shape is known.
type Transaction struct {
	Version      uint16
	Inputs       []*Input
	Outputs      []*Output
	LockTime     uint64
	SubnetworkID SubnetworkID
	Gas          uint64
	Payload      []byte
	Mass         uint64
}

// ErrAmountOverflow indicates that a monetary sum exceeded uint64 range.
// Money paths never wrap silently.
var ErrAmountOverflow = errors.New("amount overflows uint64")

// checkedAdd returns a+b or ErrAmountOverflow.
func checkedAdd(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, fmt.Errorf("%w: %d + %d", ErrAmountOverflow, a, b)
	}
	return sum, nil
}

// checkedMul returns a*b or ErrAmountOverflow.
func checkedMul(a, b uint64) (uint64, error) {
	if a != 0 && b > ^uint64(0)/a {
		return 0, fmt.Errorf("%w: %d * %d", ErrAmountOverflow, a, b)
	}
	return a * b, nil
}

// SumInputAmounts totals the consumed UTXO amounts with overflow checking.
func SumInputAmounts(utxos []*UTXOEntry) (uint64, error) {
	var total uint64
	var err error
	for _, u := range utxos {
		total, err = checkedAdd(total, u.Amount)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

// SumOutputAmounts totals the output amounts with overflow checking.
func SumOutputAmounts(outputs []*Output) (uint64, error) {
	var total uint64
	var err error
	for _, o := range outputs {
		total, err = checkedAdd(total, o.Amount)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}
