// Package wallet derives the pool treasury signing key from a BIP39 mnemonic
// or a raw seed using BIP32 hierarchical-deterministic derivation.
package wallet

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip39"

	"github.com/hashforge/kaspay/internal/address"
	"github.com/hashforge/kaspay/internal/network"
)

// ErrConfig indicates invalid key-derivation input: a missing or ambiguous
// secret, a malformed derivation path, or an invalid seed.
var ErrConfig = errors.New("invalid key derivation config")

// KeyConfig selects the treasury secret and derivation path. Exactly one of
// Mnemonic or SeedHex must be set.
type KeyConfig struct {
	Mnemonic string
	SeedHex  string
	Path     string // empty means network.DefaultDerivationPath
}

// DerivedKey is the treasury signing identity. PrivateKey is an exclusively
// owned secret; callers must Zero() it once signing is done.
type DerivedKey struct {
	ExtendedPrivateKey string
	PrivateKey         []byte // 32 bytes
	PublicKey          []byte // 33 bytes, compressed
	XOnlyPublicKey     []byte // 32 bytes
	Address            string
}

// Zero wipes the private key material in place.
func (k *DerivedKey) Zero() {
	for i := range k.PrivateKey {
		k.PrivateKey[i] = 0
	}
}

// DeriveTreasuryKey derives the treasury key and address for the given
// network. The extended private key is serialized with the network's
// kprv/ktrv version bytes.
func DeriveTreasuryKey(cfg KeyConfig, params *network.Params) (*DerivedKey, error) {
	seed, err := resolveSeed(cfg)
	if err != nil {
		return nil, err
	}

	path := cfg.Path
	if path == "" {
		path = network.DefaultDerivationPath
	}
	steps, err := parsePath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	// hdkeychain reads only the HD version bytes from the chain params, so a
	// copy of the Bitcoin params with Kaspa version bytes is sufficient.
	netParams := chaincfg.MainNetParams
	netParams.HDPrivateKeyID = params.HDPrivateKeyID
	netParams.HDPublicKeyID = params.HDPublicKeyID

	key, err := hdkeychain.NewMaster(seed, &netParams)
	if err != nil {
		return nil, fmt.Errorf("%w: master key: %v", ErrConfig, err)
	}
	for _, step := range steps {
		key, err = key.Derive(step)
		if err != nil {
			return nil, fmt.Errorf("%w: derive path %s: %v", ErrConfig, path, err)
		}
	}

	privKey, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: private key: %v", ErrConfig, err)
	}
	pubKey := privKey.PubKey().SerializeCompressed()
	xOnly := pubKey[1:]

	addr, err := address.Encode(params, address.VersionPubKey, xOnly)
	if err != nil {
		return nil, fmt.Errorf("%w: address: %v", ErrConfig, err)
	}

	return &DerivedKey{
		ExtendedPrivateKey: key.String(),
		PrivateKey:         privKey.Serialize(),
		PublicKey:          pubKey,
		XOnlyPublicKey:     xOnly,
		Address:            addr,
	}, nil
}

// resolveSeed enforces the mnemonic XOR seed rule and returns the BIP32 seed.
func resolveSeed(cfg KeyConfig) ([]byte, error) {
	switch {
	case cfg.Mnemonic != "" && cfg.SeedHex != "":
		return nil, fmt.Errorf("%w: both mnemonic and seed supplied", ErrConfig)
	case cfg.Mnemonic == "" && cfg.SeedHex == "":
		return nil, fmt.Errorf("%w: neither mnemonic nor seed supplied", ErrConfig)
	case cfg.Mnemonic != "":
		if !bip39.IsMnemonicValid(cfg.Mnemonic) {
			return nil, fmt.Errorf("%w: invalid mnemonic", ErrConfig)
		}
		return bip39.NewSeed(cfg.Mnemonic, ""), nil
	default:
		seed, err := hex.DecodeString(cfg.SeedHex)
		if err != nil {
			return nil, fmt.Errorf("%w: seed hex: %v", ErrConfig, err)
		}
		return seed, nil
	}
}
