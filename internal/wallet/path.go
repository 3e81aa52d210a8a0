package wallet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// parsePath parses a derivation path string like "m/44'/972/0'/0/0" into
// child indices. An apostrophe (or h/H) suffix marks a hardened step.
func parsePath(path string) ([]uint32, error) {
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] != "m" {
		return nil, fmt.Errorf("derivation path must start with \"m\": %q", path)
	}

	steps := make([]uint32, 0, len(parts)-1)
	for _, part := range parts[1:] {
		if part == "" {
			return nil, fmt.Errorf("empty step in derivation path %q", path)
		}

		hardened := false
		switch part[len(part)-1] {
		case '\'', 'h', 'H':
			hardened = true
			part = part[:len(part)-1]
		}

		index, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid step %q in derivation path: %v", part, err)
		}
		if index >= hdkeychain.HardenedKeyStart {
			return nil, fmt.Errorf("step %d out of range in derivation path", index)
		}

		step := uint32(index)
		if hardened {
			step += hdkeychain.HardenedKeyStart
		}
		steps = append(steps, step)
	}

	if len(steps) == 0 {
		return nil, fmt.Errorf("derivation path %q has no steps", path)
	}
	return steps, nil
}
