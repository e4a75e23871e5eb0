package core

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Filler words stripped before comparing subscription names, so that
// "Langganan Netflix Premium" and "Netflix" compare equal.
var (
	nameStopwordRe = regexp.MustCompile(`\b(langganan|bulan|paket|premium|idr|rp|ribu)\b`)
	nameNonAlnumRe = regexp.MustCompile(`[^a-z0-9]`)
)

// NormalizeName lowercases a subscription name, removes the stopword
// list, and strips everything that is not a letter or digit.
func NormalizeName(name string) string {
	s := strings.ToLower(name)
	s = nameStopwordRe.ReplaceAllString(s, "")
	return nameNonAlnumRe.ReplaceAllString(s, "")
}

// SameSubscription reports whether two names refer to the same
// subscription: after normalization, either contains the other.
func SameSubscription(a, b string) bool {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == "" || nb == "" {
		return na == nb
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// SubscriptionCandidate is a repeating charge inferred from the expense
// history.
type SubscriptionCandidate struct {
	Category string    `json:"category"`
	Amount   int64     `json:"amount"`
	Count    int       `json:"count"`
	NextDue  time.Time `json:"nextDue"`
}

// DetectSubscriptions scans the expense history for charges that repeat
// in consecutive months. Transactions are grouped by exact
// (category, amount) — fixed-price bills recur at an identical charge,
// so no tolerance band is applied. A group of two or more occurrences
// is flagged when any consecutive pair of its date-sorted occurrences
// is exactly one calendar month apart; gaps elsewhere in the sequence
// do not disqualify it. One candidate is emitted per flagged group,
// due one calendar month after its latest occurrence.
func DetectSubscriptions(txs []Transaction) []SubscriptionCandidate {
	type group struct {
		category string
		amount   int64
		dates    []time.Time
	}
	groups := make(map[string]*group)
	var order []string
	for _, t := range txs {
		if t.Type != TypeExpense {
			continue
		}
		key := t.Category + "-" + strconv.FormatInt(t.Amount, 10)
		g, ok := groups[key]
		if !ok {
			g = &group{category: t.Category, amount: t.Amount}
			groups[key] = g
			order = append(order, key)
		}
		g.dates = append(g.dates, t.Date)
	}

	var out []SubscriptionCandidate
	for _, key := range order {
		g := groups[key]
		if len(g.dates) < 2 {
			continue
		}
		sort.Slice(g.dates, func(i, j int) bool { return g.dates[i].Before(g.dates[j]) })

		flagged := false
		for i := 0; i < len(g.dates)-1; i++ {
			if monthIndex(g.dates[i+1])-monthIndex(g.dates[i]) == 1 {
				flagged = true
				break
			}
		}
		if !flagged {
			continue
		}

		last := g.dates[len(g.dates)-1]
		out = append(out, SubscriptionCandidate{
			Category: g.category,
			Amount:   g.amount,
			Count:    len(g.dates),
			NextDue:  last.AddDate(0, 1, 0),
		})
	}
	return out
}

func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// DueThisMonth reports whether a monthly subscription should be charged
// given the last recorded payment. The due day is clamped to the last
// day of short months (a subscription due on the 31st is due on Feb 28).
func DueThisMonth(dueDay int, lastPaid, now time.Time) bool {
	if !lastPaid.IsZero() && lastPaid.Year() == now.Year() && lastPaid.Month() == now.Month() {
		return false
	}
	lastDay := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	target := dueDay
	if target > lastDay {
		target = lastDay
	}
	return now.Day() >= target
}
