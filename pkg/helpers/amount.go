// Package helpers provides amount formatting shared by the daemon and tools.
package helpers

import (
	"fmt"
	"math/big"
	"strings"
)

// kasDecimals is the number of decimal places in one KAS (10^8 sompi).
const kasDecimals = 8

// FormatKAS formats a sompi amount as a decimal KAS string, trimming
// trailing zeros. FormatKAS(150000000) returns "1.5".
func FormatKAS(sompi uint64) string {
	divisor := uint64(1)
	for i := 0; i < kasDecimals; i++ {
		divisor *= 10
	}

	whole := sompi / divisor
	frac := sompi % divisor
	if frac == 0 {
		return fmt.Sprintf("%d", whole)
	}

	fracStr := fmt.Sprintf("%0*d", kasDecimals, frac)
	fracStr = strings.TrimRight(fracStr, "0")
	return fmt.Sprintf("%d.%s", whole, fracStr)
}

// ParseKAS parses a decimal KAS string into sompi. ParseKAS("1.5") returns
// 150000000. Fractional digits beyond the sompi precision are rejected.
func ParseKAS(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty amount string")
	}

	wholeStr, fracStr := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		wholeStr, fracStr = s[:i], s[i+1:]
	}
	if wholeStr == "" {
		wholeStr = "0"
	}

	for _, c := range wholeStr + fracStr {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid character in amount %q", s)
		}
	}
	if len(fracStr) > kasDecimals {
		return 0, fmt.Errorf("amount %q has more than %d decimal places", s, kasDecimals)
	}
	for len(fracStr) < kasDecimals {
		fracStr += "0"
	}

	amount, ok := new(big.Int).SetString(wholeStr+fracStr, 10)
	if !ok {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if !amount.IsUint64() {
		return 0, fmt.Errorf("amount %q overflows", s)
	}
	return amount.Uint64(), nil
}
