// Package core provides meter value parsing and handling utilities.
//
// This file contains functions for parsing meter values from strings and
// converting between thousandths-of-m³ and display representations.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Volume is a meter value in thousandths of a cubic meter. Integer
// arithmetic keeps consumption deltas exact; gas meters are read to the
// full 3 decimals, water meters use 2 for display.
type Volume struct {
	Milli int64
}

// ParseDecimalToMilli converts a decimal string to thousandths of m³.
//
// It accepts both dot (12.345) and comma (12,345) decimal separators and
// performs half-up rounding on the fourth decimal place. Meter dials only
// count upward, so signed input is rejected; zero is a valid reading.
//
// Examples:
//   ParseDecimalToMilli("12.5")    -> 12500, nil
//   ParseDecimalToMilli("12,345")  -> 12345, nil
//   ParseDecimalToMilli("12.3456") -> 12346, nil (rounds up)
func ParseDecimalToMilli(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidValue
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidValue
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidValue
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidValue
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidValue
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidValue
	}
	// Prevent overflow when multiplying by 1000
	const maxSafeInt64 = (1<<63 - 1) / 1000
	if iv > maxSafeInt64 {
		return 0, ErrInvalidValue
	}
	// Take the first three fractional digits; half-up rounding on the fourth
	var fracMilli int64
	for i := 0; i < 3; i++ {
		fracMilli *= 10
		if i < len(fracPart) {
			fracMilli += int64(fracPart[i] - '0')
		}
	}
	if len(fracPart) > 3 && fracPart[3] >= '5' {
		fracMilli++
	}
	return iv*1000 + fracMilli, nil
}

// CubicMeters returns the value as a float64 for display purposes.
// Use Milli for calculations to avoid floating-point precision issues.
func (v Volume) CubicMeters() float64 {
	return float64(v.Milli) / 1000.0
}

// Format renders the volume with the given number of decimal places
// (1 to 3) using sep as the decimal separator. Water report columns use
// 2 places with '.', gas uses 3; spreadsheet consumption cells use ','.
func (v Volume) Format(decimals int, sep byte) string {
	if decimals < 1 {
		decimals = 1
	}
	if decimals > 3 {
		decimals = 3
	}
	milli := v.Milli
	neg := milli < 0
	if neg {
		milli = -milli
	}
	// Half-up round away the digits beyond the requested precision.
	for i := 3; i > decimals; i-- {
		milli = (milli + 5) / 10
	}
	pow := int64(1)
	for i := 0; i < decimals; i++ {
		pow *= 10
	}
	whole := milli / pow
	frac := milli % pow
	fracStr := strconv.FormatInt(frac, 10)
	for len(fracStr) < decimals {
		fracStr = "0" + fracStr
	}
	s := strconv.FormatInt(whole, 10) + string(sep) + fracStr
	if neg {
		return "-" + s
	}
	return s
}
