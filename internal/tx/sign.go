package tx

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// ErrSigning indicates the transaction could not be signed, typically an
// input/UTXO count mismatch.
var ErrSigning = errors.New("transaction signing failed")

// Sign produces a Schnorr signature script for every input of the
// transaction using a single private key. consumed must hold the UTXO entry
// for each input, in input order. The private key scalar is wiped before
// returning.
func Sign(transaction *Transaction, privateKey []byte, consumed []*UTXOEntry) error {
	if len(consumed) != len(transaction.Inputs) {
		return fmt.Errorf("%w: %d inputs but %d consumed UTXO entries",
			ErrSigning, len(transaction.Inputs), len(consumed))
	}

	key := secp256k1.PrivKeyFromBytes(privateKey)
	defer key.Zero()

	for i, input := range transaction.Inputs {
		sigHash := CalculateSigHash(transaction, i, consumed[i])
		sig, err := schnorr.Sign(key, sigHash)
		if err != nil {
			return fmt.Errorf("%w: input %d: %v", ErrSigning, i, err)
		}

		// <push-65> <64-byte signature || hash type>
		script := make([]byte, 0, SignatureScriptSize)
		script = append(script, 0x41)
		script = append(script, sig.Serialize()...)
		script = append(script, sigHashAll)
		input.SignatureScript = script
	}
	return nil
}
