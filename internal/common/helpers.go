package common

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const (
	NativeDecimals = 18 // native asset has 18 decimals (wei)
)

var (
	// ErrInvalidAmount is returned for anything that is not a plain decimal
	ErrInvalidAmount = errors.New("invalid decimal amount")

	// ErrTooManyDecimals is returned when the fraction is finer than the unit allows
	ErrTooManyDecimals = errors.New("too many decimal places")
)

// WeiToNative converts wei to a native asset decimal string
func WeiToNative(wei *big.Int) string {
	return FormatUnits(wei, NativeDecimals)
}

// FormatUnits converts an integer amount to a decimal string by inserting the decimal point.
// Trailing fractional zeros are trimmed but one digit is kept.
// Example: FormatUnits(1500000, 6) = "1.5"
func FormatUnits(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0.0"
	}

	neg := value.Sign() < 0
	s := new(big.Int).Abs(value).String()
	if decimals == 0 {
		if neg {
			return "-" + s
		}
		return s
	}

	// Pad with leading zeros if needed
	d := int(decimals)
	if len(s) <= d {
		s = strings.Repeat("0", d-len(s)+1) + s
	}

	// Insert decimal point
	pos := len(s) - d
	whole, frac := s[:pos], strings.TrimRight(s[pos:], "0")
	if frac == "" {
		frac = "0"
	}
	if neg {
		whole = "-" + whole
	}
	return whole + "." + frac
}

// ParseUnits converts a decimal string to an integer amount by removing the decimal point.
// Example: ParseUnits("1.5", 6) = 1500000
func ParseUnits(s string, decimals uint8) (*big.Int, error) {
	whole, frac, err := splitDecimal(s)
	if err != nil {
		return nil, err
	}

	d := int(decimals)
	trimmed := strings.TrimRight(frac, "0")
	if len(trimmed) > d {
		return nil, fmt.Errorf("%w: %s allows %d", ErrTooManyDecimals, s, d)
	}
	frac = trimmed + strings.Repeat("0", d-len(trimmed))

	n, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, s)
	}
	return n, nil
}

// IsPositiveDecimal checks the syntax of an amount without knowing its unit
func IsPositiveDecimal(s string) bool {
	whole, frac, err := splitDecimal(s)
	if err != nil {
		return false
	}
	return strings.Trim(whole+frac, "0") != ""
}

// splitDecimal splits an unsigned decimal into whole and fraction digits
func splitDecimal(s string) (string, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidAmount, s)
	}

	whole := parts[0]
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}
	if whole == "" && frac == "" {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidAmount, s)
	}
	if !digitsOnly(whole) || !digitsOnly(frac) {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidAmount, s)
	}
	if whole == "" {
		whole = "0"
	}
	return whole, frac, nil
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
