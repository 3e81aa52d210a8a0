package tx

import (
	"encoding/binary"
	"hash"

	"golang.org/x/crypto/blake2b"
)

// signingHashKey personalizes every hash in the signature-hash construction,
// separating this domain from other Kaspa hash uses.
const signingHashKey = "TransactionSigningHash"

// sigHashAll is the only hash type the payout engine emits: every input
// commits to all outputs.
const sigHashAll byte = 0x01

// sigHashWriter feeds canonical little-endian serializations into a keyed
// blake2b-256 hash.
type sigHashWriter struct {
	h hash.Hash
}

func newSigHashWriter() *sigHashWriter {
	h, err := blake2b.New256([]byte(signingHashKey))
	if err != nil {
		// The key is a compile-time constant well under the 64-byte limit.
		panic(err)
	}
	return &sigHashWriter{h: h}
}

func (w *sigHashWriter) sum() []byte {
	return w.h.Sum(nil)
}

func (w *sigHashWriter) bytes(b []byte) {
	w.h.Write(b)
}

func (w *sigHashWriter) byte1(b byte) {
	w.h.Write([]byte{b})
}

func (w *sigHashWriter) uint16(v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	w.h.Write(buf[:])
}

func (w *sigHashWriter) uint32(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.h.Write(buf[:])
}

func (w *sigHashWriter) uint64(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	w.h.Write(buf[:])
}

// lenPrefixedBytes writes a byte string preceded by its 64-bit length.
func (w *sigHashWriter) lenPrefixedBytes(b []byte) {
	w.uint64(uint64(len(b)))
	w.bytes(b)
}

// CalculateSigHash computes the deterministic signing payload for input
// inputIndex, committing to every transaction field and the consumed UTXO.
func CalculateSigHash(transaction *Transaction, inputIndex int, utxo *UTXOEntry) []byte {
	input := transaction.Inputs[inputIndex]

	w := newSigHashWriter()
	w.uint16(transaction.Version)
	w.bytes(previousOutputsHash(transaction))
	w.bytes(sequencesHash(transaction))
	w.bytes(sigOpCountsHash(transaction))

	w.bytes(input.PreviousOutpoint.TransactionID[:])
	w.uint32(input.PreviousOutpoint.Index)

	w.uint16(utxo.ScriptPublicKey.Version)
	w.lenPrefixedBytes(utxo.ScriptPublicKey.Script)
	w.uint64(utxo.Amount)

	w.uint64(input.Sequence)
	w.byte1(byte(input.SigOpCount))

	w.bytes(outputsHash(transaction))
	w.uint64(transaction.LockTime)
	w.bytes(transaction.SubnetworkID[:])
	w.uint64(transaction.Gas)
	w.bytes(payloadHash(transaction))
	w.byte1(sigHashAll)

	return w.sum()
}

func previousOutputsHash(transaction *Transaction) []byte {
	w := newSigHashWriter()
	for _, in := range transaction.Inputs {
		w.bytes(in.PreviousOutpoint.TransactionID[:])
		w.uint32(in.PreviousOutpoint.Index)
	}
	return w.sum()
}

func sequencesHash(transaction *Transaction) []byte {
	w := newSigHashWriter()
	for _, in := range transaction.Inputs {
		w.uint64(in.Sequence)
	}
	return w.sum()
}

func sigOpCountsHash(transaction *Transaction) []byte {
	w := newSigHashWriter()
	for _, in := range transaction.Inputs {
		w.byte1(byte(in.SigOpCount))
	}
	return w.sum()
}

func outputsHash(transaction *Transaction) []byte {
	w := newSigHashWriter()
	for _, out := range transaction.Outputs {
		w.uint64(out.Amount)
		w.uint16(out.ScriptPublicKey.Version)
		w.lenPrefixedBytes(out.ScriptPublicKey.Script)
	}
	return w.sum()
}

// payloadHash is the all-zero hash for native-subnetwork transactions with
// no payload, and the hash of the length-prefixed payload otherwise.
func payloadHash(transaction *Transaction) []byte {
	if transaction.SubnetworkID.IsNative() && len(transaction.Payload) == 0 {
		return make([]byte, 32)
	}
	w := newSigHashWriter()
	w.lenPrefixedBytes(transaction.Payload)
	return w.sum()
}
