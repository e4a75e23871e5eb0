package parser

import "testing"

func TestParseAmounts(t *testing.T) {
	cases := []struct {
		in     string
		amount int64
	}{
		{"makan siang 15rb", 15000},
		{"makan siang 15 ribu", 15000},
		{"makan siang 15k", 15000},
		{"gaji 5jt", 5000000},
		{"bayar 15000", 15000},
		{"bayar 15.000", 15000},
		{"kopi 7,5rb", 7500},
		{"beli barang 2 pcs, total 15rb", 15000}, // quantity suffix excluded
		{"nonton 3 jam, tiket 50rb", 50000},
		{"cicilan 12 bulan 500rb", 500000},
		{"tanpa angka sama sekali", 0},
		{"", 0},
	}
	for _, tc := range cases {
		got := Parse(tc.in)
		if got.Amount != tc.amount {
			t.Fatalf("Parse(%q).Amount = %d, want %d", tc.in, got.Amount, tc.amount)
		}
	}
}

// A currency-suffixed number beats a larger bare number.
func TestParseSuffixedBeatsBare(t *testing.T) {
	got := Parse("bayar 99999 sisanya 15rb")
	if got.Amount != 15000 {
		t.Fatalf("amount = %d, want 15000", got.Amount)
	}
}

func TestParseLargestBareNumberWins(t *testing.T) {
	got := Parse("patungan 5000 10000")
	if got.Amount != 10000 {
		t.Fatalf("amount = %d, want 10000", got.Amount)
	}
}

func TestParseCategories(t *testing.T) {
	cases := []struct {
		in       string
		category string
	}{
		{"makan siang 15rb", "F&B"},
		{"kopi kenangan 22rb", "F&B"},
		{"bensin motor 30rb", "Transport"},
		{"gojek ke kantor 18rb", "Transport"},
		{"belanja bulanan 250rb", "Shopping"},
		{"token listrik 100rb", "Bills"},
		{"netflix 186rb", "Bills"},
		{"sedekah 50rb", "Misc"},
	}
	for _, tc := range cases {
		got := Parse(tc.in)
		if got.Category != tc.category {
			t.Fatalf("Parse(%q).Category = %q, want %q", tc.in, got.Category, tc.category)
		}
	}
}

func TestParseWallet(t *testing.T) {
	cases := []struct {
		in     string
		wallet string
	}{
		{"makan siang 15rb pakai gopay", "ATM"},
		{"bayar qris 50rb", "ATM"},
		{"jajan warung 5rb", "CASH"},
		{"bayar tunai 12rb", "CASH"},
		// no payment keyword: magnitude decides
		{"beli hp 200rb", "ATM"},
		{"jajan 5rb", "CASH"},
		// the keyword check runs on substrings, so "netflix" hits "tf"
		{"netflix 186rb", "ATM"},
	}
	for _, tc := range cases {
		got := Parse(tc.in)
		if got.SourceWallet != tc.wallet {
			t.Fatalf("Parse(%q).SourceWallet = %q, want %q", tc.in, got.SourceWallet, tc.wallet)
		}
	}
}

func TestParseDescription(t *testing.T) {
	cases := []struct {
		in   string
		desc string
	}{
		{"makan siang 15rb", "Makan Siang"},
		{"MAKAN SIANG 15rb", "Makan Siang"},
		{"15rb", "Transaksi"},
		{"netflix 186rb", "Langganan Netflix"},
		{"bayar spotify 55rb", "Langganan Spotify"},
		{"bayar wifi 300rb", "Pembayaran WiFi"},
		{"token pln 100rb", "Bayar Listrik"},
	}
	for _, tc := range cases {
		got := Parse(tc.in)
		if got.Description != tc.desc {
			t.Fatalf("Parse(%q).Description = %q, want %q", tc.in, got.Description, tc.desc)
		}
	}
}

func TestParseEmptyInput(t *testing.T) {
	got := Parse("   ")
	if got.Amount != 0 || got.Category != "Misc" || got.SourceWallet != "CASH" || got.Description != "" {
		t.Fatalf("unexpected zero-input result: %+v", got)
	}
}
