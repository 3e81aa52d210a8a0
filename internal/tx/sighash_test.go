package tx

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

const signerPrivHex = "53397ef426ef62f497eac3915fb2465edd9077650e67a50367d9f08ee7b9c0d1"
const signerXOnlyHex = "a27527b7c1c2c7867134f956bf2bb3611f6abbc78413b870186225ae870f34cc"

// goldenTx is a fixed one-input, two-output transaction used for the
// signature-hash vectors below.
func goldenTx(t *testing.T) (*Transaction, []*UTXOEntry) {
	t.Helper()

	xOnly, err := hex.DecodeString(signerXOnlyHex)
	if err != nil {
		t.Fatal(err)
	}
	script := append(append([]byte{0x20}, xOnly...), 0xac)
	spk := ScriptPublicKey{Version: 0, Script: script}

	var txID TransactionID
	for i := range txID {
		txID[i] = byte(i)
	}

	transaction := &Transaction{
		Version: Version,
		Inputs: []*Input{{
			PreviousOutpoint: Outpoint{TransactionID: txID, Index: 0},
			Sequence:         0,
			SigOpCount:       1,
		}},
		Outputs: []*Output{
			{Amount: 125_000_000, ScriptPublicKey: spk},
			{Amount: 50_000_000, ScriptPublicKey: spk},
		},
	}
	consumed := []*UTXOEntry{{Amount: 400_000_000, ScriptPublicKey: spk}}
	return transaction, consumed
}

func TestCalculateSigHashGolden(t *testing.T) {
	transaction, consumed := goldenTx(t)

	tests := []struct {
		name string
		got  []byte
		want string
	}{
		{"prevouts", previousOutputsHash(transaction), "7cb5a380da3239ec1bb89ec3fc45211ad84cb0ebb5a8ca5111bbd4e68c2ac365"},
		{"sequences", sequencesHash(transaction), "0f99135614633e507969d12522c80f967cff6ebc0436863e02ee42b2b66556fc"},
		{"sigOpCounts", sigOpCountsHash(transaction), "8523b0471bcbea04575ccaa635eef9f9114f2890bda54367e5ff8caa3878bf82"},
		{"outputs", outputsHash(transaction), "5169183a2718221ed0f88336496707004a0b703659b5c3e06434eb161f27447a"},
		{"sigHash", CalculateSigHash(transaction, 0, consumed[0]), "c518460472af557cef36f39090cecb5b0f9f3edff4dfe2ee5710fde284bcf237"},
	}

	for _, tc := range tests {
		if got := hex.EncodeToString(tc.got); got != tc.want {
			t.Errorf("%s = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestPayloadHashNative(t *testing.T) {
	transaction, _ := goldenTx(t)

	if got := payloadHash(transaction); !bytes.Equal(got, make([]byte, 32)) {
		t.Errorf("payloadHash(native, empty) = %x, want all-zero", got)
	}

	// A non-empty payload hashes rather than zeroing.
	transaction.Payload = []byte{0x01}
	if got := payloadHash(transaction); bytes.Equal(got, make([]byte, 32)) {
		t.Error("payloadHash(payload) should not be the zero hash")
	}
}

func TestSign(t *testing.T) {
	transaction, consumed := goldenTx(t)
	privKey, _ := hex.DecodeString(signerPrivHex)

	if err := Sign(transaction, privKey, consumed); err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	script := transaction.Inputs[0].SignatureScript
	if len(script) != SignatureScriptSize {
		t.Fatalf("signature script length = %d, want %d", len(script), SignatureScriptSize)
	}
	if script[0] != 0x41 {
		t.Errorf("signature script push opcode = %#x, want 0x41", script[0])
	}
	if script[len(script)-1] != 0x01 {
		t.Errorf("signature script hash type = %#x, want 0x01", script[len(script)-1])
	}

	// The signature must verify against the treasury x-only key.
	sig, err := schnorr.ParseSignature(script[1:65])
	if err != nil {
		t.Fatalf("ParseSignature() error = %v", err)
	}
	xOnly, _ := hex.DecodeString(signerXOnlyHex)
	pubKey, err := schnorr.ParsePubKey(xOnly)
	if err != nil {
		t.Fatalf("ParsePubKey() error = %v", err)
	}
	sigHash := CalculateSigHash(transaction, 0, consumed[0])
	if !sig.Verify(sigHash, pubKey) {
		t.Error("signature does not verify against the signing key")
	}
}

func TestSignDeterministic(t *testing.T) {
	privKey, _ := hex.DecodeString(signerPrivHex)

	first, firstConsumed := goldenTx(t)
	second, secondConsumed := goldenTx(t)
	if err := Sign(first, privKey, firstConsumed); err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	privKey, _ = hex.DecodeString(signerPrivHex)
	if err := Sign(second, privKey, secondConsumed); err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	if !bytes.Equal(first.Inputs[0].SignatureScript, second.Inputs[0].SignatureScript) {
		t.Error("signing the same transaction twice produced different signatures")
	}
}

func TestSignCountMismatch(t *testing.T) {
	transaction, _ := goldenTx(t)
	privKey, _ := hex.DecodeString(signerPrivHex)

	err := Sign(transaction, privKey, nil)
	if !errors.Is(err, ErrSigning) {
		t.Fatalf("Sign() error = %v, want ErrSigning", err)
	}
}
