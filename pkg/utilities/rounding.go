package utilities

import "math"

// RoundNormal performs standard rounding to specified decimal places
func RoundNormal(value float64, decimalPlaces int) float64 {
	multiplier := math.Pow(10, float64(decimalPlaces))
	return math.Round(value*multiplier) / multiplier
}

// RoundDown performs floor rounding to specified decimal places
func RoundDown(value float64, decimalPlaces int) float64 {
	multiplier := math.Pow(10, float64(decimalPlaces))
	return math.Floor(value*multiplier) / multiplier
}
