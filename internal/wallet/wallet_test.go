package wallet

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/tyler-smith/go-bip39"

	"github.com/hashforge/kaspay/internal/network"
)

// Test mnemonic (DO NOT USE FOR REAL FUNDS)
const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

const (
	wantXPrv    = "kprv69KonnpFRxMFJg92dsShntS8TUDANxfEMqSdqv8U9qmGFdfAXfTErjXwLo3qUCgNQWyNnLp5CErPZJ5Y4JEacUS4ExLRMYftQH3FBXyUdH5"
	wantPrivHex = "53397ef426ef62f497eac3915fb2465edd9077650e67a50367d9f08ee7b9c0d1"
	wantXOnly   = "a27527b7c1c2c7867134f956bf2bb3611f6abbc78413b870186225ae870f34cc"
	wantAddress = "kaspa:qz382fahc8pv0pn3xnu4d0etkds3764mc7zp8wrsrp3ztt58pu6vclrs67rdl"
)

func mainnetParams(t *testing.T) *network.Params {
	t.Helper()
	params, ok := network.Get(network.Mainnet)
	if !ok {
		t.Fatal("mainnet params missing")
	}
	return params
}

func TestDeriveTreasuryKeyKnownVector(t *testing.T) {
	key, err := DeriveTreasuryKey(KeyConfig{Mnemonic: testMnemonic, Path: "m/44'/972/0'/0/0"}, mainnetParams(t))
	if err != nil {
		t.Fatalf("DeriveTreasuryKey() error = %v", err)
	}

	if key.ExtendedPrivateKey != wantXPrv {
		t.Errorf("extended private key = %s, want %s", key.ExtendedPrivateKey, wantXPrv)
	}
	if got := hex.EncodeToString(key.PrivateKey); got != wantPrivHex {
		t.Errorf("private key = %s, want %s", got, wantPrivHex)
	}
	if got := hex.EncodeToString(key.XOnlyPublicKey); got != wantXOnly {
		t.Errorf("x-only public key = %s, want %s", got, wantXOnly)
	}
	if got := hex.EncodeToString(key.PublicKey); got != "03"+wantXOnly {
		t.Errorf("public key = %s, want %s", got, "03"+wantXOnly)
	}
	if key.Address != wantAddress {
		t.Errorf("address = %s, want %s", key.Address, wantAddress)
	}
}

func TestDeriveTreasuryKeySeedRoundTrip(t *testing.T) {
	params := mainnetParams(t)

	fromMnemonic, err := DeriveTreasuryKey(KeyConfig{Mnemonic: testMnemonic}, params)
	if err != nil {
		t.Fatalf("DeriveTreasuryKey(mnemonic) error = %v", err)
	}

	seed := bip39.NewSeed(testMnemonic, "")
	fromSeed, err := DeriveTreasuryKey(KeyConfig{SeedHex: hex.EncodeToString(seed)}, params)
	if err != nil {
		t.Fatalf("DeriveTreasuryKey(seed) error = %v", err)
	}

	if fromMnemonic.ExtendedPrivateKey != fromSeed.ExtendedPrivateKey {
		t.Errorf("extended keys differ: %s vs %s", fromMnemonic.ExtendedPrivateKey, fromSeed.ExtendedPrivateKey)
	}
	if fromMnemonic.Address != fromSeed.Address {
		t.Errorf("addresses differ: %s vs %s", fromMnemonic.Address, fromSeed.Address)
	}
}

func TestDeriveTreasuryKeyBadConfig(t *testing.T) {
	params := mainnetParams(t)

	tests := []struct {
		name string
		cfg  KeyConfig
	}{
		{"both secrets", KeyConfig{Mnemonic: testMnemonic, SeedHex: "00"}},
		{"no secret", KeyConfig{}},
		{"invalid mnemonic", KeyConfig{Mnemonic: "not a mnemonic"}},
		{"invalid seed hex", KeyConfig{SeedHex: "zz"}},
		{"seed too short", KeyConfig{SeedHex: "00"}},
		{"bad path", KeyConfig{Mnemonic: testMnemonic, Path: "44'/972/0"}},
		{"bad path step", KeyConfig{Mnemonic: testMnemonic, Path: "m/abc"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DeriveTreasuryKey(tc.cfg, params)
			if !errors.Is(err, ErrConfig) {
				t.Errorf("error = %v, want ErrConfig", err)
			}
		})
	}
}

func TestParsePath(t *testing.T) {
	const hardened = 0x80000000

	steps, err := parsePath("m/44'/972/0h/1/2")
	if err != nil {
		t.Fatalf("parsePath() error = %v", err)
	}
	want := []uint32{44 + hardened, 972, 0 + hardened, 1, 2}
	if len(steps) != len(want) {
		t.Fatalf("got %d steps, want %d", len(steps), len(want))
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Errorf("step %d = %d, want %d", i, steps[i], want[i])
		}
	}
}

func TestZero(t *testing.T) {
	key, err := DeriveTreasuryKey(KeyConfig{Mnemonic: testMnemonic}, mainnetParams(t))
	if err != nil {
		t.Fatalf("DeriveTreasuryKey() error = %v", err)
	}

	key.Zero()
	for i, b := range key.PrivateKey {
		if b != 0 {
			t.Fatalf("private key byte %d not zeroed", i)
		}
	}
}
