// Package core holds the pure domain logic of the ledger: money
// normalization, balance reconciliation, budget aggregation, and
// recurring-charge detection. Everything here is a side-effect-free
// function over in-memory snapshots; persistence and transport live in
// their own packages.
package core

import (
	"math"
	"strconv"
	"strings"
)

// NormalizeAmount canonicalizes a numeric amount into whole rupiah.
// Fractional inputs are rounded to the nearest integer so that sums of
// float inputs (1000.1 + 2000.2) land on exactly 3000 instead of
// accumulating drift. Negative, NaN, and infinite inputs yield 0; this
// function never fails, and callers reject a zero result wherever a
// positive amount is required.
func NormalizeAmount(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return int64(math.Round(v))
}

// NormalizeSignedAmount rounds like NormalizeAmount but keeps the sign,
// for quantities that may legitimately be negative such as a wallet's
// initial balance. NaN and infinite inputs yield 0.
func NormalizeSignedAmount(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int64(math.Round(v))
}

// NormalizeAmountString extracts the digit sequence from s and parses
// it. Thousands separators, currency symbols, and a leading minus sign
// all disappear with the non-digit runes, so "-5.000" reduces to 5000.
// Returns 0 when no digits remain or the sequence overflows.
func NormalizeAmountString(s string) int64 {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	v, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
