package utilities

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/cockroachdb/apd/v3"

	"github.com/pooofdevelopment/go-postmarket-client/pkg/types"
)

var minorUnitScale = big.NewInt(int64(math.Pow10(types.USDCDecimals)))

// ToMinorUnits converts a display-unit amount to USDC minor units
// (6 decimals). Rounds to the nearest unit to absorb float representation
// error; a positive amount never rounds to zero.
func ToMinorUnits(amount float64) *big.Int {
	scaled := amount * math.Pow10(types.USDCDecimals)
	rounded := math.Round(scaled)
	if rounded == 0 && amount > 0 {
		rounded = 1
	}
	return big.NewInt(int64(rounded))
}

// FromMinorUnits converts USDC minor units back to a display-unit float.
// Inverse of ToMinorUnits.
func FromMinorUnits(amount *big.Int) float64 {
	divisor := new(big.Float).SetInt(minorUnitScale)
	amountFloat := new(big.Float).SetInt(amount)
	result, _ := new(big.Float).Quo(amountFloat, divisor).Float64()
	return result
}

// DecimalToMinorUnits converts an exact decimal display amount to USDC
// minor units, truncating anything below the minor-unit precision.
func DecimalToMinorUnits(amount *apd.Decimal) (*big.Int, error) {
	ctx := apd.BaseContext.WithPrecision(34)
	ctx.Rounding = apd.RoundDown

	var scaled apd.Decimal
	if _, err := ctx.Mul(&scaled, amount, apd.New(1, types.USDCDecimals)); err != nil {
		return nil, fmt.Errorf("failed to scale amount: %w", err)
	}
	var truncated apd.Decimal
	if _, err := ctx.Quantize(&truncated, &scaled, 0); err != nil {
		return nil, fmt.Errorf("failed to truncate amount: %w", err)
	}
	units := new(big.Int)
	if _, ok := units.SetString(truncated.Text('f'), 10); !ok {
		return nil, fmt.Errorf("amount %s is not an integer after scaling", truncated.Text('f'))
	}
	return units, nil
}

// MinorUnitsToDecimal converts USDC minor units to an exact decimal display
// amount.
func MinorUnitsToDecimal(units *big.Int) *apd.Decimal {
	var coeff apd.BigInt
	coeff.SetMathBigInt(units)
	return apd.NewWithBigInt(&coeff, -types.USDCDecimals)
}

// ParseFloat safely parses a string to float64
func ParseFloat(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty string")
	}
	return strconv.ParseFloat(s, 64)
}

// FormatUSDC renders a minor-unit amount as a display string with the full
// 6-decimal precision.
func FormatUSDC(units *big.Int) string {
	return MinorUnitsToDecimal(units).Text('f')
}
