package tx

import (
	"bytes"
	"errors"
	"testing"

	"github.com/hashforge/kaspay/internal/address"
)

func TestPayToAddrScript(t *testing.T) {
	pk32 := bytes.Repeat([]byte{0x11}, 32)
	pk33 := bytes.Repeat([]byte{0x22}, 33)
	hash := bytes.Repeat([]byte{0x33}, 32)

	tests := []struct {
		name    string
		typ     address.Type
		payload []byte
		want    []byte
	}{
		{
			"schnorr pubkey", address.TypePubKey, pk32,
			append(append([]byte{0x20}, pk32...), 0xac),
		},
		{
			"ecdsa pubkey", address.TypePubKeyECDSA, pk33,
			append(append([]byte{0x21}, pk33...), 0xab),
		},
		{
			"script hash", address.TypeScriptHash, hash,
			append(append([]byte{0xaa, 0x20}, hash...), 0x87),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spk, err := PayToAddrScript(tc.typ, tc.payload)
			if err != nil {
				t.Fatalf("PayToAddrScript() error = %v", err)
			}
			if spk.Version != 0 {
				t.Errorf("script version = %d, want 0", spk.Version)
			}
			if !bytes.Equal(spk.Script, tc.want) {
				t.Errorf("script = %x, want %x", spk.Script, tc.want)
			}
		})
	}
}

func TestPayToAddrScriptUnsupported(t *testing.T) {
	_, err := PayToAddrScript(address.Type(99), nil)
	if !errors.Is(err, ErrUnsupportedAddressType) {
		t.Errorf("error = %v, want ErrUnsupportedAddressType", err)
	}
}
