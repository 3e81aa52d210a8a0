package tx

import (
	"errors"
	"fmt"
)

// Protocol mass constants. These encode consensus rules the node enforces
// and must not be re-derived.
const (
	massPerTxByte           = 1
	massPerScriptPubKeyByte = 10
	massPerSigOp            = 1000

	// storageMassParameter scales the storage-mass penalty for creating
	// low-value outputs (10_000 KAS in sompi).
	storageMassParameter = 1_000_000_000_000

	// MinimumRelayFee is the floor, in sompi, for a transaction fee.
	MinimumRelayFee = 1000

	// SignatureScriptSize is the size of a Schnorr signature script:
	// one push opcode, a 64-byte signature and the sighash-type byte.
	SignatureScriptSize = 66

	// dustSpendOverhead approximates the byte cost of later spending an
	// output, used by the dust test.
	dustSpendOverhead = 148

	// Plurality counts 100-byte storage cells per UTXO. The fixed part is
	// outpoint (36) + amount (8) + DAA score (8) + coinbase flag (1) +
	// script version (2) + script length (8).
	pluralityCellSize  = 100
	pluralityFixedSize = 63
)

// ErrMassComputation indicates a degenerate transaction shape: a zero-valued
// output or input set the storage-mass formula cannot price.
var ErrMassComputation = errors.New("mass computation failed")

// MassResult breaks a transaction's mass into its components.
type MassResult struct {
	BaseMass      uint64
	SignatureMass uint64
	StorageMass   uint64
}

// OverallMass is the consensus mass: compute mass and storage mass are
// priced on independent axes and the larger one binds.
func (m MassResult) OverallMass() uint64 {
	compute := m.BaseMass + m.SignatureMass
	if m.StorageMass > compute {
		return m.StorageMass
	}
	return compute
}

// CalculateUnsigned computes the mass of a not-yet-signed transaction given
// the UTXO entries its inputs consume. Signature scripts are assumed empty;
// SignatureMass reserves space for the Schnorr signature scripts attached
// later.
func CalculateUnsigned(transaction *Transaction, consumed []*UTXOEntry) (MassResult, error) {
	base := skeletonSize(transaction) * massPerTxByte

	for _, out := range transaction.Outputs {
		scriptLen := uint64(len(out.ScriptPublicKey.Script))
		base += massPerScriptPubKeyByte * (2 + scriptLen)
		base += outputSerializedSize(out) * massPerTxByte
	}

	for _, in := range transaction.Inputs {
		base += massPerSigOp * uint64(in.SigOpCount)
		base += inputSerializedSize(in) * massPerTxByte
	}

	signature := uint64(len(transaction.Inputs)) * SignatureScriptSize * massPerTxByte

	storage, err := storageMass(transaction.Outputs, consumed)
	if err != nil {
		return MassResult{}, err
	}

	return MassResult{BaseMass: base, SignatureMass: signature, StorageMass: storage}, nil
}

// IsDust reports whether an output's value is too small relative to the
// cost of spending it later.
func IsDust(out *Output) bool {
	serializedSize := outputSerializedSize(out) + dustSpendOverhead
	value, err := checkedMul(out.Amount, 1000)
	if err != nil {
		// An amount this large can never be dust.
		return false
	}
	return value/(3*serializedSize) < MinimumRelayFee
}

// skeletonSize is the serialized size of the transaction without its inputs
// and outputs: version, input/output counts, lock time, subnetwork id, gas,
// and length-prefixed payload.
func skeletonSize(transaction *Transaction) uint64 {
	return 2 + 8 + 8 + 8 + SubnetworkIDSize + 8 + 8 + uint64(len(transaction.Payload))
}

func outputSerializedSize(out *Output) uint64 {
	// amount + script version + script length prefix + script
	return 8 + 2 + 8 + uint64(len(out.ScriptPublicKey.Script))
}

func inputSerializedSize(in *Input) uint64 {
	// outpoint + signature script length prefix + script + sequence
	return TransactionIDSize + 4 + 8 + uint64(len(in.SignatureScript)) + 8
}

// plurality is the number of storage cells a UTXO occupies.
func plurality(scriptLen int) uint64 {
	return (pluralityFixedSize + uint64(scriptLen) + pluralityCellSize - 1) / pluralityCellSize
}

// storageMass prices the UTXO set churn of the transaction: a harmonic sum
// over created outputs against the value of the consumed inputs. A zero
// amount, a zero value mean, or an empty input plurality is a degenerate
// shape and fails rather than saturating.
func storageMass(outputs []*Output, consumed []*UTXOEntry) (uint64, error) {
	var harmonicOuts, outPlurality uint64
	for _, out := range outputs {
		if out.Amount == 0 {
			return 0, fmt.Errorf("%w: zero-valued output", ErrMassComputation)
		}
		p := plurality(len(out.ScriptPublicKey.Script))
		term, err := checkedMul(storageMassParameter, p*p)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrMassComputation, err)
		}
		harmonicOuts, err = checkedAdd(harmonicOuts, term/out.Amount)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrMassComputation, err)
		}
		outPlurality += p
	}

	var inPlurality, inTotal uint64
	for _, u := range consumed {
		inPlurality += plurality(len(u.ScriptPublicKey.Script))
		var err error
		inTotal, err = checkedAdd(inTotal, u.Amount)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrMassComputation, err)
		}
	}

	relaxed := outPlurality == 1 ||
		(len(consumed) <= 2 && (inPlurality == 1 || (inPlurality == 2 && outPlurality == 2)))

	if relaxed {
		var harmonicIns uint64
		for _, u := range consumed {
			if u.Amount == 0 {
				return 0, fmt.Errorf("%w: zero-valued input", ErrMassComputation)
			}
			p := plurality(len(u.ScriptPublicKey.Script))
			term, err := checkedMul(storageMassParameter, p*p)
			if err != nil {
				return 0, fmt.Errorf("%w: %v", ErrMassComputation, err)
			}
			harmonicIns, err = checkedAdd(harmonicIns, term/u.Amount)
			if err != nil {
				return 0, fmt.Errorf("%w: %v", ErrMassComputation, err)
			}
		}
		if harmonicIns >= harmonicOuts {
			return 0, nil
		}
		return harmonicOuts - harmonicIns, nil
	}

	if inPlurality == 0 {
		return 0, fmt.Errorf("%w: no consumed inputs", ErrMassComputation)
	}
	meanIns := inTotal / inPlurality
	if meanIns == 0 {
		return 0, fmt.Errorf("%w: zero mean input value", ErrMassComputation)
	}
	arithmeticIns, err := checkedMul(inPlurality, storageMassParameter/meanIns)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMassComputation, err)
	}
	if arithmeticIns >= harmonicOuts {
		return 0, nil
	}
	return harmonicOuts - arithmeticIns, nil
}
