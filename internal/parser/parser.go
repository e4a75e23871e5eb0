// Package parser extracts structured transaction fields from terse
// free-text input such as "makan siang 15rb tunai". It never fails: a
// zero amount in the result is the signal that no monetary token was
// found, and callers reject zero-amount submissions.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/naansa-naufalsaputra/duasaku-app/internal/core"
)

// Result holds the fields recovered from one input line.
type Result struct {
	Amount       int64  `json:"amount"`
	Category     string `json:"category"`
	SourceWallet string `json:"sourceWallet"`
	Description  string `json:"description"`
}

// Suffixes that mark a number as a quantity or duration, never money.
var blacklistSuffixes = map[string]bool{
	"bulan": true, "hari": true, "minggu": true, "tahun": true,
	"x": true, "pcs": true, "orang": true, "kali": true, "jam": true,
}

// Currency multiplier suffixes. A suffixed number outranks any bare
// number regardless of magnitude.
var currencySuffixes = map[string]int64{
	"rb": 1000, "ribu": 1000, "k": 1000,
	"jt": 1000000, "juta": 1000000,
	"rp": 1,
}

// Category keyword tables, checked in declaration order; the first
// table with a matching keyword wins.
var categoryTable = []struct {
	name     string
	keywords []string
}{
	{"F&B", []string{"makan", "minum", "kopi", "cafe", "warteg", "jajan", "lunch", "dinner", "sarapan", "es", "teh", "bakso", "mie"}},
	{"Transport", []string{"bensin", "parkir", "tol", "gojek", "grab", "ojek", "uber", "taxi", "kereta"}},
	{"Shopping", []string{"belanja", "mart", "indo", "alfa", "baju", "celana", "sepatu", "tas", "skincare"}},
	{"Bills", []string{"listrik", "air", "internet", "pulsa", "pln", "token", "wifi", "netflix", "spotify", "youtube"}},
}

var (
	atmKeywords  = []string{"qris", "tf", "transfer", "gopay", "ovo", "dana", "bank", "debit", "linkaja", "shopeepay", "atm"}
	cashKeywords = []string{"tunai", "cash", "kembalian", "warung", "abang", "receh"}
)

// Amounts at or above this default to the bank wallet when no payment
// keyword is present: everyday cash purchases are small, large ones
// typically ride a digital rail.
const bankAmountThreshold = 100000

// Vendor phrases for recurring bills. The matched keyword and anything
// before it are replaced with a readable title; a trailing qualifier
// like "1 Bulan" is kept.
var vendorPhrases = []struct{ keyword, phrase string }{
	{"netflix", "Langganan Netflix"},
	{"spotify", "Langganan Spotify"},
	{"youtube", "Langganan YouTube"},
	{"wifi", "Pembayaran WiFi"},
	{"pln", "Bayar Listrik"},
	{"listrik", "Bayar Listrik"},
	{"air", "Bayar Air"},
	{"pdam", "Bayar PDAM"},
	{"indihome", "Pembayaran IndiHome"},
}

var (
	numberPattern = regexp.MustCompile(`([\d.,]+)\s*([a-z]+)?`)
	leadingNumber = regexp.MustCompile(`^\d+(\.\d+)?`)
)

// Parse extracts amount, category, source wallet, and a cleaned-up
// description from free text.
func Parse(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Category: core.DefaultCategory, SourceWallet: core.WalletCash}
	}
	lower := strings.ToLower(text)

	amount, matchedRaw := extractAmount(lower)

	res := Result{
		Amount:       amount,
		Category:     inferCategory(lower),
		SourceWallet: inferWallet(lower, amount),
		Description:  cleanDescription(text, matchedRaw),
	}
	return res
}

type candidate struct {
	value    float64
	priority int
	raw      string
}

// extractAmount scans for numeric tokens, drops quantity-suffixed ones,
// scales currency-suffixed ones, and picks the winner by priority then
// value. It returns the amount in whole rupiah and the raw matched
// substring so the description step can strip exactly that token.
func extractAmount(lower string) (int64, string) {
	var candidates []candidate
	for _, m := range numberPattern.FindAllStringSubmatch(lower, -1) {
		val, ok := parseLenientFloat(m[1])
		if !ok {
			continue
		}
		suffix := m[2]
		if blacklistSuffixes[suffix] {
			continue
		}
		if mult, ok := currencySuffixes[suffix]; ok {
			candidates = append(candidates, candidate{value: val * float64(mult), priority: 2, raw: m[0]})
		} else {
			candidates = append(candidates, candidate{value: val, priority: 1, raw: m[0]})
		}
	}
	if len(candidates) == 0 {
		return 0, ""
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.priority > best.priority || (c.priority == best.priority && c.value > best.value) {
			best = c
		}
	}
	return core.NormalizeAmount(best.value), best.raw
}

// parseLenientFloat mimics a permissive numeric parse: dots are treated
// as thousands separators and removed, the first comma becomes the
// decimal point, then the longest valid numeric prefix is taken. So
// "15.000" is 15000 and "1,5" is 1.5.
func parseLenientFloat(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)
	s = strings.ReplaceAll(s, ",", "")
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func inferCategory(lower string) string {
	for _, entry := range categoryTable {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.name
			}
		}
	}
	return core.DefaultCategory
}

func inferWallet(lower string, amount int64) string {
	for _, kw := range atmKeywords {
		if strings.Contains(lower, kw) {
			return core.WalletATM
		}
	}
	for _, kw := range cashKeywords {
		if strings.Contains(lower, kw) {
			return core.WalletCash
		}
	}
	if amount >= bankAmountThreshold {
		return core.WalletATM
	}
	return core.WalletCash
}

// cleanDescription removes the selected amount token (only that token,
// not every number), collapses whitespace, title-cases the remainder,
// and applies the vendor phrase table.
func cleanDescription(original, matchedRaw string) string {
	desc := original
	if matchedRaw != "" {
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(matchedRaw))
		desc = re.ReplaceAllString(desc, "")
	}
	desc = strings.Join(strings.Fields(desc), " ")
	desc = titleCase(desc)
	if desc == "" {
		desc = "Transaksi"
	}

	lowerDesc := strings.ToLower(desc)
	for _, v := range vendorPhrases {
		idx := strings.Index(lowerDesc, v.keyword)
		if idx < 0 {
			continue
		}
		suffix := strings.TrimSpace(desc[idx+len(v.keyword):])
		desc = strings.TrimSpace(v.phrase + " " + suffix)
		break
	}
	return desc
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		for j := 1; j < len(r); j++ {
			r[j] = unicode.ToLower(r[j])
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
