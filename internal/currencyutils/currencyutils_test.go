package currencyutils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name      string
		amountStr string
		expected  string
		hasError  bool
	}{
		{"Empty string", "", "0", false},
		{"Simple decimal", "123.45", "123.45", false},
		{"Negative decimal", "-123.45", "-123.45", false},
		{"Integer", "100", "100", false},
		{"With comma decimal separator", "123,45", "123.45", false},
		{"With thousand separator (comma)", "1,234.56", "1234.56", false},
		{"With thousand separator (apostrophe)", "1'234.56", "1234.56", false},
		{"European format", "1.234,56", "1234.56", false},
		{"With currency symbol (EUR)", "€123.45", "123.45", false},
		{"With currency code", "CHF 123.45", "123.45", false},
		{"Quoted with spaces", ` "123.45" `, "123.45", false},
		{"Malformed decimal", "123.45.67", "0", true},
		{"Only symbols", "--", "0", true},
		{"Trailing currency code", "12.50 EUR", "12.5", false},
		{"Letters inside digits", "12abc34", "0", true},
		{"Exponent notation", "1e3", "0", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseAmount(tc.amountStr)
			if tc.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tc.expected).Equal(result), "expected %s, got %s", tc.expected, result)
		})
	}
}

func TestStandardizeAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"123.45", "123.45"},
		{"-123.45", "-123.45"},
		{"123,45", "123.45"},
		{"1,234.56", "1234.56"},
		{"1,234,567.89", "1234567.89"},
		{"1,234", "1234"},
		{"1.234.567,89", "1234567.89"},
		{"€1.234,56", "1234.56"},
		{"  12.50  ", "12.50"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, StandardizeAmount(tc.input))
		})
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{" 12.50 ", "12.5"},
		{"1,234.50", "1234.5"},
		{"-4.00", "-4"},
		{"", "0"},
		{"n/a", "0"},
		{"N/A", "0"},
		{"12abc34", "0"},
		{"1e3", "0"},
		{"12.50 EUR", "12.5"},
		{"USD-3.20", "-3.2"},
		{"0.10", "0.1"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, Canonical(tc.input))
		})
	}
}

func TestCanonical_Idempotent(t *testing.T) {
	for _, in := range []string{" 12.50 ", "1,234.50", "abc", "-0.30"} {
		once := Canonical(in)
		assert.Equal(t, once, Canonical(once))
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   decimal.Decimal
		currency string
		expected string
	}{
		{"EUR currency", decimal.RequireFromString("1234.56"), "EUR", "€1234.56"},
		{"USD currency", decimal.RequireFromString("1234.56"), "usd", "$1234.56"},
		{"CHF currency", decimal.RequireFromString("1234.56"), "CHF", "CHF 1234.56"},
		{"Other currency", decimal.RequireFromString("1234.56"), "CAD", "CAD 1234.56"},
		{"Empty currency", decimal.RequireFromString("1234.5"), "", "1234.50"},
		{"Negative amount", decimal.RequireFromString("-1234.56"), "EUR", "€-1234.56"},
		{"Zero amount", decimal.Zero, "USD", "$0.00"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatAmount(tc.amount, tc.currency))
		})
	}
}

func TestAverage(t *testing.T) {
	assert.True(t, decimal.Zero.Equal(Average(decimal.NewFromInt(10), 0)))
	assert.True(t, decimal.RequireFromString("2.5").Equal(Average(decimal.NewFromInt(10), 4)))
}
