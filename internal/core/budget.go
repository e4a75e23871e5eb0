package core

import "time"

// Budget thresholds, in percent of the monthly limit.
const (
	BudgetWarningThreshold = 80
	BudgetOverThreshold    = 100
)

// BudgetUsage is one budget's spending for a calendar month.
type BudgetUsage struct {
	Budget
	Spent   int64   `json:"spent"`
	Percent float64 `json:"percent"` // unclamped; values above 100 mean over budget
	Warning bool    `json:"warning"` // Percent >= 80
	Over    bool    `json:"over"`    // Percent >= 100
}

// DisplayPercent clamps the usage percentage at 100 for rendering.
// Overage detection must use Percent, which is never clamped.
func (u BudgetUsage) DisplayPercent() float64 {
	if u.Percent > 100 {
		return 100
	}
	return u.Percent
}

// AggregateBudgets sums EXPENSE amounts per budget category for the
// calendar month containing now (wall-clock month and year, not a
// rolling window) and derives the warning and over-budget states.
func AggregateBudgets(txs []Transaction, budgets []Budget, now time.Time) []BudgetUsage {
	year, month := now.Year(), now.Month()
	usages := make([]BudgetUsage, 0, len(budgets))
	for _, b := range budgets {
		var spent int64
		for _, t := range txs {
			if t.Type != TypeExpense || t.Category != b.Category {
				continue
			}
			if t.Date.Year() != year || t.Date.Month() != month {
				continue
			}
			spent += t.Amount
		}
		u := BudgetUsage{Budget: b, Spent: spent}
		if b.Limit > 0 {
			u.Percent = float64(spent) / float64(b.Limit) * 100
		}
		u.Warning = u.Percent >= BudgetWarningThreshold
		u.Over = u.Percent >= BudgetOverThreshold
		usages = append(usages, u)
	}
	return usages
}

// BudgetAlert reports the ledger-level alert: every configured budget
// has crossed the warning threshold. No budgets means no alert.
func BudgetAlert(usages []BudgetUsage) bool {
	if len(usages) == 0 {
		return false
	}
	for _, u := range usages {
		if !u.Warning {
			return false
		}
	}
	return true
}
