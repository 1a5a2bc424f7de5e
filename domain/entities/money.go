package entities

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is an upper-case currency code such as "USD" or "BTC"
type Currency string

// minorUnitExponents lists currencies whose minor unit is not cents
var minorUnitExponents = map[Currency]int32{
	"JPY":  0,
	"KRW":  0,
	"VND":  0,
	"BTC":  8,
	"ETH":  8,
	"USDT": 6,
	"USDC": 6,
}

const defaultMinorUnitExponent int32 = 2

// ParseCurrency normalizes and validates a currency code
func ParseCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) < 3 || len(code) > 5 {
		return "", fmt.Errorf("invalid currency code %q", code)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("invalid currency code %q", code)
		}
	}
	return Currency(code), nil
}

// MinorUnitExponent returns the number of decimal places of the currency's minor unit
func (c Currency) MinorUnitExponent() int32 {
	if exp, ok := minorUnitExponents[c]; ok {
		return exp
	}
	return defaultMinorUnitExponent
}

func (c Currency) String() string {
	return string(c)
}

// ParseAmount converts a decimal string ("100.25") into minor units of the currency.
// Amounts with more precision than the currency supports are rejected, not rounded.
func ParseAmount(value string, currency Currency) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", value, err)
	}

	scaled := d.Shift(currency.MinorUnitExponent())
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than %d decimal places", value, currency.MinorUnitExponent())
	}
	if scaled.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || scaled.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return 0, errors.New("amount out of range")
	}

	return scaled.IntPart(), nil
}

// FormatAmount renders minor units as a fixed-point decimal string
func FormatAmount(minor int64, currency Currency) string {
	exp := currency.MinorUnitExponent()
	return decimal.New(minor, -exp).StringFixed(exp)
}
