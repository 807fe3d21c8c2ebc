package common

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatUnits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value    string
		decimals uint8
		want     string
	}{
		{"0", 18, "0.0"},
		{"1500000", 6, "1.5"},
		{"24981836", 9, "0.024981836"},
		{"1000000000000000000", 18, "1.0"},
		{"1", 18, "0.000000000000000001"},
		{"42", 0, "42"},
		{"-1500000", 6, "-1.5"},
	}

	for _, test := range tests {
		v, ok := new(big.Int).SetString(test.value, 10)
		require.True(t, ok)
		require.Equal(t, test.want, FormatUnits(v, test.decimals),
			"value %s decimals %d", test.value, test.decimals)
	}

	require.Equal(t, "0.0", FormatUnits(nil, 18))
}

func TestParseUnits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		decimals uint8
		want     string
		err      error
	}{
		{in: "1.5", decimals: 6, want: "1500000"},
		{in: "0.024981836", decimals: 9, want: "24981836"},
		{in: " 2 ", decimals: 18, want: "2000000000000000000"},
		{in: ".5", decimals: 1, want: "5"},
		{in: "3.", decimals: 2, want: "300"},
		{in: "1.10", decimals: 1, want: "11"},
		{in: "1.25", decimals: 1, err: ErrTooManyDecimals},
		{in: "", decimals: 6, err: ErrInvalidAmount},
		{in: "-1", decimals: 6, err: ErrInvalidAmount},
		{in: "1e5", decimals: 6, err: ErrInvalidAmount},
		{in: "1.2.3", decimals: 6, err: ErrInvalidAmount},
		{in: ".", decimals: 6, err: ErrInvalidAmount},
	}

	for _, test := range tests {
		got, err := ParseUnits(test.in, test.decimals)
		if test.err != nil {
			require.ErrorIs(t, err, test.err, "input %q", test.in)
			continue
		}
		require.NoError(t, err, "input %q", test.in)
		require.Equal(t, test.want, got.String(), "input %q", test.in)
	}
}

func TestIsPositiveDecimal(t *testing.T) {
	t.Parallel()

	require.True(t, IsPositiveDecimal("1.5"))
	require.True(t, IsPositiveDecimal("0.0001"))
	require.False(t, IsPositiveDecimal("0"))
	require.False(t, IsPositiveDecimal("0.000"))
	require.False(t, IsPositiveDecimal("-3"))
	require.False(t, IsPositiveDecimal("abc"))
	require.False(t, IsPositiveDecimal(""))
}

func TestNativeRoundTrip(t *testing.T) {
	t.Parallel()

	wei, err := ParseUnits("0.25", NativeDecimals)
	require.NoError(t, err)
	require.Equal(t, "250000000000000000", wei.String())
	require.Equal(t, "0.25", WeiToNative(wei))
}
