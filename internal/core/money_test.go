package core

import (
	"math"
	"testing"
)

func TestNormalizeAmount(t *testing.T) {
	cases := []struct {
		in  float64
		out int64
	}{
		{15000, 15000},
		{15000.4, 15000},
		{15000.5, 15001},
		{0.3, 0}, // rounds to zero, callers treat as unusable
		{1000.1 + 2000.2, 3000},
		{0, 0},
		{-5000, 0},
	}
	for _, tc := range cases {
		if got := NormalizeAmount(tc.in); got != tc.out {
			t.Fatalf("NormalizeAmount(%v) = %d, want %d", tc.in, got, tc.out)
		}
	}
}

func TestNormalizeSignedAmount(t *testing.T) {
	cases := []struct {
		in  float64
		out int64
	}{
		{1999.5, 2000},
		{1999.4, 1999},
		{-2500.6, -2501},
		{-2500.4, -2500},
		{-5000, -5000},
		{0, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{math.Inf(-1), 0},
	}
	for _, tc := range cases {
		if got := NormalizeSignedAmount(tc.in); got != tc.out {
			t.Fatalf("NormalizeSignedAmount(%v) = %d, want %d", tc.in, got, tc.out)
		}
	}
}

func TestNormalizeAmountDeterministic(t *testing.T) {
	// Summing normalized integers must never drift the way float sums do.
	var sum int64
	for i := 0; i < 10; i++ {
		sum += NormalizeAmount(1000.1)
	}
	if sum != 10000 {
		t.Fatalf("expected 10000, got %d", sum)
	}
}

func TestNormalizeAmountString(t *testing.T) {
	cases := []struct {
		in  string
		out int64
	}{
		{"15000", 15000},
		{"15.000", 15000},
		{"Rp 15.000", 15000},
		{"-5.000", 5000}, // sign disappears with the non-digit runes
		{"-5000", 5000},
		{"", 0},
		{"abc", 0},
	}
	for _, tc := range cases {
		if got := NormalizeAmountString(tc.in); got != tc.out {
			t.Fatalf("NormalizeAmountString(%q) = %d, want %d", tc.in, got, tc.out)
		}
	}
}
