package core

import (
	"testing"
	"time"
)

func TestAggregateBudgets(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	budgets := []Budget{
		{Category: "F&B", Limit: 200000},
		{Category: "Transport", Limit: 100000},
	}
	txs := []Transaction{
		{Type: TypeExpense, Category: "F&B", Amount: 150000, Date: now},
		{Type: TypeExpense, Category: "F&B", Amount: 10000, Date: now.AddDate(0, -1, 0)}, // last month
		{Type: TypeIncome, Category: "F&B", Amount: 999999, Date: now},                   // income never counts
		{Type: TypeExpense, Category: "Transport", Amount: 110000, Date: now},
	}

	usages := AggregateBudgets(txs, budgets, now)
	if len(usages) != 2 {
		t.Fatalf("got %d usages, want 2", len(usages))
	}

	fb := usages[0]
	if fb.Spent != 150000 || fb.Percent != 75 || fb.Warning || fb.Over {
		t.Fatalf("F&B usage = %+v", fb)
	}

	tr := usages[1]
	if tr.Spent != 110000 || !tr.Warning || !tr.Over {
		t.Fatalf("Transport usage = %+v", tr)
	}
	if tr.Percent <= 100 {
		t.Fatalf("raw percent must stay unclamped, got %v", tr.Percent)
	}
	if tr.DisplayPercent() != 100 {
		t.Fatalf("display percent = %v, want 100", tr.DisplayPercent())
	}
}

func TestAggregateBudgetsWarningBoundary(t *testing.T) {
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	budgets := []Budget{{Category: "F&B", Limit: 100000}}

	cases := []struct {
		spent   int64
		warning bool
		over    bool
	}{
		{79999, false, false},
		{80000, true, false}, // exactly 80% warns
		{99999, true, false},
		{100000, true, true}, // exactly 100% is over
	}
	for _, tc := range cases {
		txs := []Transaction{{Type: TypeExpense, Category: "F&B", Amount: tc.spent, Date: now}}
		u := AggregateBudgets(txs, budgets, now)[0]
		if u.Warning != tc.warning || u.Over != tc.over {
			t.Fatalf("spent %d: warning=%v over=%v, want %v/%v", tc.spent, u.Warning, u.Over, tc.warning, tc.over)
		}
	}
}

func TestBudgetAlert(t *testing.T) {
	if BudgetAlert(nil) {
		t.Fatal("no budgets must not alert")
	}
	all := []BudgetUsage{{Warning: true}, {Warning: true}}
	if !BudgetAlert(all) {
		t.Fatal("expected alert when every budget warns")
	}
	some := []BudgetUsage{{Warning: true}, {Warning: false}}
	if BudgetAlert(some) {
		t.Fatal("one healthy budget must suppress the alert")
	}
}
