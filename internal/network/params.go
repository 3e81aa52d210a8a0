// Package network defines per-network parameters for the Kaspa networks the
// payout engine can operate on. All network-specific values are hardcoded
// here - no external configuration needed.
package network

// Network identifies one of the Kaspa networks.
type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
	Simnet  Network = "simnet"
	Devnet  Network = "devnet"
)

// SompiPerKaspa is the number of sompi (the smallest indivisible unit) in
// one KAS.
const SompiPerKaspa = 100_000_000

// DefaultDerivationPath is the BIP44-style path used for the treasury key
// when the configuration does not override it.
const DefaultDerivationPath = "m/44'/972/0'/0/0"

// Params contains all parameters for one Kaspa network.
type Params struct {
	// Name is the canonical network name (mainnet, testnet, ...).
	Name Network

	// AddressPrefix is the human-readable address prefix ("kaspa:...").
	AddressPrefix string

	// HDPrivateKeyID is the 4-byte version prefix for serialized extended
	// private keys (kprv on mainnet, ktrv elsewhere).
	HDPrivateKeyID [4]byte

	// HDPublicKeyID is the matching extended public key prefix.
	HDPublicKeyID [4]byte

	// RPCPort is the default kaspad wRPC (JSON over websocket) port.
	RPCPort uint16
}

var registry = map[Network]*Params{
	Mainnet: {
		Name:           Mainnet,
		AddressPrefix:  "kaspa",
		HDPrivateKeyID: [4]byte{0x03, 0x8f, 0x2e, 0xf4}, // kprv
		HDPublicKeyID:  [4]byte{0x03, 0x8f, 0x33, 0x2e}, // kpub
		RPCPort:        18110,
	},
	Testnet: {
		Name:           Testnet,
		AddressPrefix:  "kaspatest",
		HDPrivateKeyID: [4]byte{0x03, 0x90, 0x9e, 0x07}, // ktrv
		HDPublicKeyID:  [4]byte{0x03, 0x90, 0xa2, 0x41}, // ktub
		RPCPort:        18210,
	},
	Simnet: {
		Name:           Simnet,
		AddressPrefix:  "kaspasim",
		HDPrivateKeyID: [4]byte{0x03, 0x90, 0x9e, 0x07},
		HDPublicKeyID:  [4]byte{0x03, 0x90, 0xa2, 0x41},
		RPCPort:        18510,
	},
	Devnet: {
		Name:           Devnet,
		AddressPrefix:  "kaspadev",
		HDPrivateKeyID: [4]byte{0x03, 0x90, 0x9e, 0x07},
		HDPublicKeyID:  [4]byte{0x03, 0x90, 0xa2, 0x41},
		RPCPort:        18610,
	},
}

// Get returns the parameters for a network, or false if the network is
// unknown.
func Get(network Network) (*Params, bool) {
	p, ok := registry[network]
	return p, ok
}

// Networks returns all known network names.
func Networks() []Network {
	return []Network{Mainnet, Testnet, Simnet, Devnet}
}
