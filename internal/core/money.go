// Package core provides the domain model shared by the aggregation engine,
// the budget evaluator and the storage backends.
//
// This file contains amount parsing and the rounding policy applied to all
// monetary output.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts a decimal string to a positive amount in currency
// units.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Returns
// an error for invalid formats, signs, or zero amounts.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	for _, part := range parts {
		for _, r := range part {
			if !unicode.IsDigit(r) {
				return 0, ErrInvalidAmount
			}
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if v <= 0 || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// Round2 rounds to 2 decimal places, half away from zero. Applied at the
// point of output only, never to intermediate sums.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// RoundPercent rounds a percentage to the nearest integer.
func RoundPercent(x float64) int {
	return int(math.Round(x))
}

// Cents converts an amount in currency units to integer cents, half away
// from zero. Storage backends persist cents to keep sums exact.
func Cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromCents converts integer cents back to currency units.
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}
