// Package address implements the checksummed Kaspa address encoding.
//
// Kaspa addresses are a cashaddr-style variant of bech32: the payload is a
// version byte plus the public key or script hash, regrouped into 5-bit
// symbols, followed by an 8-symbol (40-bit) polynomial checksum over the
// network prefix and payload.
package address

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashforge/kaspay/internal/network"
)

// Address version bytes. The version together with the decoded payload
// length determines the script type the address stands for.
const (
	VersionPubKey      = 0 // 32-byte x-only Schnorr public key
	VersionPubKeyECDSA = 1 // 33-byte compressed ECDSA public key
	VersionScriptHash  = 8 // 32-byte script hash
)

// Type classifies a decoded address.
type Type int

const (
	TypePubKey Type = iota
	TypePubKeyECDSA
	TypeScriptHash
)

// Encoding/validation errors.
var (
	ErrEmptyPayload      = errors.New("address payload is empty")
	ErrBadPrefix         = errors.New("address prefix does not match network")
	ErrBadChecksum       = errors.New("address checksum mismatch")
	ErrBadCharacter      = errors.New("address contains invalid character")
	ErrUnsupportedLength = errors.New("unsupported address payload length")
)

const charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

var charsetRev = func() [128]int8 {
	var rev [128]int8
	for i := range rev {
		rev[i] = -1
	}
	for i, c := range charset {
		rev[c] = int8(i)
	}
	return rev
}()

// Encode builds the checksummed address string for the given version byte
// and payload on the given network.
func Encode(params *network.Params, version byte, payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", ErrEmptyPayload
	}

	data := make([]byte, 0, len(payload)+1)
	data = append(data, version)
	data = append(data, payload...)

	fiveBit := convertTo5Bit(data)
	checksum := calculateChecksum(params.AddressPrefix, fiveBit)

	var sb strings.Builder
	sb.Grow(len(params.AddressPrefix) + 1 + len(fiveBit) + 8)
	sb.WriteString(params.AddressPrefix)
	sb.WriteByte(':')
	for _, v := range fiveBit {
		sb.WriteByte(charset[v])
	}
	for i := 0; i < 8; i++ {
		sb.WriteByte(charset[(checksum>>uint(5*(7-i)))&31])
	}
	return sb.String(), nil
}

// Decode validates an address against the network prefix and returns its
// script type and raw payload (without the version byte).
func Decode(params *network.Params, addr string) (Type, []byte, error) {
	sep := strings.IndexByte(addr, ':')
	if sep < 1 {
		return 0, nil, fmt.Errorf("%w: missing prefix separator", ErrBadPrefix)
	}
	prefix := addr[:sep]
	if prefix != params.AddressPrefix {
		return 0, nil, fmt.Errorf("%w: got %q, want %q", ErrBadPrefix, prefix, params.AddressPrefix)
	}

	body := addr[sep+1:]
	if len(body) <= 8 {
		return 0, nil, fmt.Errorf("%w: %d symbols", ErrUnsupportedLength, len(body))
	}

	fiveBit := make([]byte, len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c >= 128 || charsetRev[c] < 0 {
			return 0, nil, fmt.Errorf("%w: %q", ErrBadCharacter, c)
		}
		fiveBit[i] = byte(charsetRev[c])
	}

	if !verifyChecksum(prefix, fiveBit) {
		return 0, nil, ErrBadChecksum
	}

	data, err := convertFrom5Bit(fiveBit[:len(fiveBit)-8])
	if err != nil {
		return 0, nil, err
	}
	if len(data) < 2 {
		return 0, nil, fmt.Errorf("%w: %d bytes", ErrUnsupportedLength, len(data))
	}

	version, payload := data[0], data[1:]
	switch {
	case version == VersionPubKey && len(payload) == 32:
		return TypePubKey, payload, nil
	case version == VersionPubKeyECDSA && len(payload) == 33:
		return TypePubKeyECDSA, payload, nil
	case version == VersionScriptHash && len(payload) == 32:
		return TypeScriptHash, payload, nil
	default:
		return 0, nil, fmt.Errorf("%w: version %d with %d-byte payload", ErrUnsupportedLength, version, len(payload))
	}
}

// polyMod is the cashaddr checksum accumulator over 5-bit symbols.
func polyMod(values []byte) uint64 {
	c := uint64(1)
	for _, d := range values {
		c0 := c >> 35
		c = ((c & 0x07ffffffff) << 5) ^ uint64(d)
		if c0&0x01 != 0 {
			c ^= 0x98f2bc8e61
		}
		if c0&0x02 != 0 {
			c ^= 0x79b76d99e2
		}
		if c0&0x04 != 0 {
			c ^= 0xf33e5fb3c4
		}
		if c0&0x08 != 0 {
			c ^= 0xae2eabe2a8
		}
		if c0&0x10 != 0 {
			c ^= 0x1e4f43e470
		}
	}
	return c
}

// expandPrefix maps prefix characters to their low 5 bits followed by a zero
// separator symbol.
func expandPrefix(prefix string) []byte {
	out := make([]byte, len(prefix)+1)
	for i := 0; i < len(prefix); i++ {
		out[i] = prefix[i] & 31
	}
	out[len(prefix)] = 0
	return out
}

func calculateChecksum(prefix string, payload []byte) uint64 {
	values := append(expandPrefix(prefix), payload...)
	values = append(values, make([]byte, 8)...)
	return polyMod(values) ^ 1
}

func verifyChecksum(prefix string, payload []byte) bool {
	return polyMod(append(expandPrefix(prefix), payload...)) == 1
}

// convertTo5Bit regroups 8-bit bytes into 5-bit symbols, zero-padding the
// final partial symbol on the low bits.
func convertTo5Bit(data []byte) []byte {
	var out []byte
	acc := uint32(0)
	bits := uint(0)
	for _, b := range data {
		acc = (acc << 8) | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out = append(out, byte((acc>>bits)&31))
		}
	}
	if bits > 0 {
		out = append(out, byte((acc<<(5-bits))&31))
	}
	return out
}

// convertFrom5Bit regroups 5-bit symbols back into bytes, rejecting nonzero
// padding.
func convertFrom5Bit(data []byte) ([]byte, error) {
	var out []byte
	acc := uint32(0)
	bits := uint(0)
	for _, b := range data {
		acc = (acc << 5) | uint32(b)
		bits += 5
		for bits >= 8 {
			bits -= 8
			out = append(out, byte((acc>>bits)&0xff))
		}
	}
	if bits >= 5 || (acc<<(8-bits))&0xff != 0 {
		return nil, fmt.Errorf("%w: invalid padding", ErrBadChecksum)
	}
	return out, nil
}
