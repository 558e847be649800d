package numeric

import (
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// MaxDecimals is the largest number of currency decimals supported
const MaxDecimals = 30

// currencyDividers[d] = 10^(MaxDecimals-d)
var currencyDividers = func() [MaxDecimals + 1]*big.Int {
	var dividers [MaxDecimals + 1]*big.Int
	ten := big.NewInt(10)
	for i := range dividers {
		dividers[i] = new(big.Int).Exp(ten, big.NewInt(int64(MaxDecimals-i)), nil)
	}
	return dividers
}()

func checkDecimals(decimals int) error {
	if decimals < 0 || decimals > MaxDecimals {
		return fmt.Errorf("%w: %d is outside [0, %d]", ErrUnsupportedDecimals, decimals, MaxDecimals)
	}
	return nil
}

// CurrencyAtomicToDecimal renders an amount of atomic units as a human decimal
// string, e.g. ("1500000", 6) -> "1.5". Trailing fractional zeros are dropped.
func CurrencyAtomicToDecimal(amount any, decimals int) (string, error) {
	if err := checkDecimals(decimals); err != nil {
		return "", err
	}
	atomic, err := ToBigInt(amount)
	if err != nil {
		return "", err
	}
	scaled := new(big.Int).Mul(atomic, currencyDividers[decimals])
	return decimal.NewFromBigInt(scaled, -MaxDecimals).String(), nil
}

// CurrencyDecimalToAtomic converts a human decimal amount into atomic units.
// Digits below the smallest unit are truncated toward zero; more than
// MaxDecimals fractional digits are rejected.
func CurrencyDecimalToAtomic(amount any, decimals int) (*big.Int, error) {
	if err := checkDecimals(decimals); err != nil {
		return nil, err
	}
	d, err := toDecimal(amount)
	if err != nil {
		return nil, err
	}
	scaled := d.Shift(MaxDecimals)
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("%w: %s has more than %d fractional digits", ErrInvalidNumericInput, d, MaxDecimals)
	}
	return new(big.Int).Quo(scaled.BigInt(), currencyDividers[decimals]), nil
}

func toDecimal(amount any) (decimal.Decimal, error) {
	switch v := amount.(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("%w: %q is not a decimal number: %v", ErrInvalidNumericInput, v, err)
		}
		return d, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Decimal{}, fmt.Errorf("%w: %v", ErrInvalidNumericInput, v)
		}
		return decimal.NewFromFloat(v), nil
	default:
		i, err := ToBigInt(amount)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromBigInt(i, 0), nil
	}
}
