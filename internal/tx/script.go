package tx

import (
	"errors"
	"fmt"

	"github.com/hashforge/kaspay/internal/address"
)

// Script opcodes used by the supported locking scripts.
const (
	opData32         = 0x20
	opData33         = 0x21
	opEqual          = 0x87
	opBlake2b        = 0xaa
	opCheckSigECDSA  = 0xab
	opCheckSig       = 0xac
)

// ErrUnsupportedAddressType indicates an address whose script type the
// engine cannot pay to.
var ErrUnsupportedAddressType = errors.New("unsupported address type")

// PayToAddrScript maps a decoded address to its locking script. The script
// version always matches the address version tag (0 for the current
// encoding).
func PayToAddrScript(addrType address.Type, payload []byte) (ScriptPublicKey, error) {
	switch addrType {
	case address.TypePubKey:
		// <push-32> <pubkey> OP_CHECKSIG
		script := make([]byte, 0, 34)
		script = append(script, opData32)
		script = append(script, payload...)
		script = append(script, opCheckSig)
		return ScriptPublicKey{Version: 0, Script: script}, nil

	case address.TypePubKeyECDSA:
		// <push-33> <pubkey> OP_CHECKSIGECDSA
		script := make([]byte, 0, 35)
		script = append(script, opData33)
		script = append(script, payload...)
		script = append(script, opCheckSigECDSA)
		return ScriptPublicKey{Version: 0, Script: script}, nil

	case address.TypeScriptHash:
		// OP_BLAKE2B <push-32> <hash> OP_EQUAL
		script := make([]byte, 0, 35)
		script = append(script, opBlake2b, opData32)
		script = append(script, payload...)
		script = append(script, opEqual)
		return ScriptPublicKey{Version: 0, Script: script}, nil

	default:
		return ScriptPublicKey{}, fmt.Errorf("%w: %d", ErrUnsupportedAddressType, addrType)
	}
}
