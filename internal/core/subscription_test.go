package core

import (
	"testing"
	"time"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"Netflix", "netflix"},
		{"Langganan Netflix Premium", "netflix"},
		{"Spotify (1 Bulan)", "spotify1"},
		{"Paket WiFi 10rb", "wifi10rb"}, // "rb" is not in the stopword list, only "ribu"
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeName(tc.in); got != tc.out {
			t.Fatalf("NormalizeName(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestSameSubscription(t *testing.T) {
	cases := []struct {
		a, b string
		same bool
	}{
		{"Netflix", "Langganan Netflix Premium", true},
		{"netflix", "NETFLIX", true},
		{"Netflix", "Spotify", false},
		{"Langganan", "Paket", true}, // both normalize to empty
		{"Langganan", "Netflix", false},
	}
	for _, tc := range cases {
		if got := SameSubscription(tc.a, tc.b); got != tc.same {
			t.Fatalf("SameSubscription(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.same)
		}
	}
}

func expenseOn(category string, amount int64, year int, month time.Month) Transaction {
	return Transaction{
		Type:     TypeExpense,
		Category: category,
		Amount:   amount,
		Date:     time.Date(year, month, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestDetectSubscriptionsConsecutiveMonths(t *testing.T) {
	txs := []Transaction{
		expenseOn("Bills", 186000, 2026, time.January),
		expenseOn("Bills", 186000, 2026, time.February),
		expenseOn("Bills", 186000, 2026, time.March),
	}
	got := DetectSubscriptions(txs)
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	c := got[0]
	if c.Category != "Bills" || c.Amount != 186000 || c.Count != 3 {
		t.Fatalf("candidate = %+v", c)
	}
	wantDue := time.Date(2026, time.April, 5, 0, 0, 0, 0, time.UTC)
	if !c.NextDue.Equal(wantDue) {
		t.Fatalf("next due = %v, want %v", c.NextDue, wantDue)
	}
}

func TestDetectSubscriptionsGapOnlyNotFlagged(t *testing.T) {
	txs := []Transaction{
		expenseOn("Bills", 186000, 2026, time.January),
		expenseOn("Bills", 186000, 2026, time.March),
	}
	if got := DetectSubscriptions(txs); len(got) != 0 {
		t.Fatalf("two-month gap alone must not flag, got %+v", got)
	}
}

// A single adjacent pair is enough even when the rest of the history has
// gaps. Permissive on purpose: a missed month must not hide a real
// subscription.
func TestDetectSubscriptionsPairWithinGappySeries(t *testing.T) {
	txs := []Transaction{
		expenseOn("Bills", 186000, 2025, time.October),
		expenseOn("Bills", 186000, 2026, time.January),
		expenseOn("Bills", 186000, 2026, time.February),
	}
	got := DetectSubscriptions(txs)
	if len(got) != 1 || got[0].Count != 3 {
		t.Fatalf("got %+v, want one candidate covering all 3 occurrences", got)
	}
}

func TestDetectSubscriptionsYearBoundary(t *testing.T) {
	txs := []Transaction{
		expenseOn("Bills", 50000, 2025, time.December),
		expenseOn("Bills", 50000, 2026, time.January),
	}
	if got := DetectSubscriptions(txs); len(got) != 1 {
		t.Fatalf("December to January is consecutive, got %+v", got)
	}
}

func TestDetectSubscriptionsDistinguishesAmounts(t *testing.T) {
	txs := []Transaction{
		expenseOn("Bills", 186000, 2026, time.January),
		expenseOn("Bills", 186001, 2026, time.February),
	}
	if got := DetectSubscriptions(txs); len(got) != 0 {
		t.Fatalf("different amounts must not group, got %+v", got)
	}
}

func TestDetectSubscriptionsIgnoresIncome(t *testing.T) {
	txs := []Transaction{
		{Type: TypeIncome, Category: "Income", Amount: 5000000, Date: time.Date(2026, time.January, 25, 0, 0, 0, 0, time.UTC)},
		{Type: TypeIncome, Category: "Income", Amount: 5000000, Date: time.Date(2026, time.February, 25, 0, 0, 0, 0, time.UTC)},
	}
	if got := DetectSubscriptions(txs); len(got) != 0 {
		t.Fatalf("monthly salary is not a subscription, got %+v", got)
	}
}

func TestDueThisMonth(t *testing.T) {
	now := time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		dueDay   int
		lastPaid time.Time
		want     bool
	}{
		{"due day reached", 15, time.Time{}, true},
		{"due day clamped to short month", 31, time.Time{}, true},
		{"already paid this month", 15, time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC), false},
		{"paid last month", 15, time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DueThisMonth(tc.dueDay, tc.lastPaid, now); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}

	early := time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)
	if DueThisMonth(15, time.Time{}, early) {
		t.Fatal("not yet due on the 10th for due day 15")
	}
}
