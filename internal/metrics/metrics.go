// Package metrics derives dashboard views from raw transaction and
// account collections. Everything here is pure and synchronous: callers
// pass the reference time explicitly and recompute per evaluation.
package metrics

import (
	"sort"
	"time"

	"family-fund-go/internal/models"

	"github.com/shopspring/decimal"
)

// TrendKind selects which series TrendSeries reconstructs.
type TrendKind string

const (
	TrendBalance   TrendKind = "balance"
	TrendIncome    TrendKind = "income"
	TrendExpense   TrendKind = "expense"
	TrendRemaining TrendKind = "remaining"
)

// DefaultTrendWindow is the dashboard's trailing window in days.
const DefaultTrendWindow = 14

// TrendPoint is one day's value in a trend series.
type TrendPoint struct {
	Value decimal.Decimal
}

// TrendSeries produces exactly window chronologically ascending points of
// the selected series over the trailing window ending at now.
//
// For balance the history is reconstructed backwards from the current
// balance: each day's net signed change is subtracted walking toward the
// past, so days without activity repeat the prior balance. The other
// kinds are per-day sums, zero-filled.
func TrendSeries(kind TrendKind, txs []models.Transaction, currentBalance decimal.Decimal, window int, now time.Time) []TrendPoint {
	if window <= 0 {
		return nil
	}
	points := make([]TrendPoint, window)

	if kind == TrendBalance {
		running := currentBalance
		for i := 0; i < window; i++ {
			day := now.AddDate(0, 0, -i)
			points[window-1-i] = TrendPoint{Value: running}
			running = running.Sub(netChangeOn(txs, day))
		}
		return points
	}

	for i := 0; i < window; i++ {
		day := now.AddDate(0, 0, -(window - 1 - i))
		income, expense := sumsOn(txs, day)
		var value decimal.Decimal
		switch kind {
		case TrendIncome:
			value = income
		case TrendExpense:
			value = expense
		case TrendRemaining:
			value = income.Sub(expense)
		}
		points[i] = TrendPoint{Value: value}
	}
	return points
}

// ActivityPoint is one calendar day's income/expense aggregate.
type ActivityPoint struct {
	Day     time.Time
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// DailyActivity buckets transactions into the trailing window of calendar
// days ending at now, one point per day, zero-filled for days without
// activity. 7 days feeds the weekly chart, 30 the monthly one.
func DailyActivity(txs []models.Transaction, days int, now time.Time) []ActivityPoint {
	points := make([]ActivityPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		income, expense := sumsOn(txs, day)
		points = append(points, ActivityPoint{
			Day:     time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()),
			Income:  income,
			Expense: expense,
		})
	}
	return points
}

// CategorySum is one category's share of total expenses.
type CategorySum struct {
	Name  string
	Color string
	Total decimal.Decimal
}

// FallbackCategoryColor is the neutral color used for expenses whose
// category was deleted or never set.
const FallbackCategoryColor = "#9ca3af"

// CategoryBreakdown groups expense transactions by category, summing
// amounts, sorted descending by total. Transactions without a resolvable
// category land under "Uncategorized".
func CategoryBreakdown(txs []models.Transaction) []CategorySum {
	totals := make(map[string]*CategorySum)
	for i := range txs {
		t := &txs[i]
		if t.Type != models.TypeExpense {
			continue
		}
		name, color := "Uncategorized", FallbackCategoryColor
		if t.Category != nil {
			name = t.Category.Name
			if t.Category.Color != "" {
				color = t.Category.Color
			}
		}
		sum, ok := totals[name]
		if !ok {
			sum = &CategorySum{Name: name, Color: color}
			totals[name] = sum
		}
		sum.Total = sum.Total.Add(t.Amount)
	}

	breakdown := make([]CategorySum, 0, len(totals))
	for _, sum := range totals {
		breakdown = append(breakdown, *sum)
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if !breakdown[i].Total.Equal(breakdown[j].Total) {
			return breakdown[i].Total.GreaterThan(breakdown[j].Total)
		}
		return breakdown[i].Name < breakdown[j].Name
	})
	return breakdown
}

// HealthScore maps the savings ratio over a trailing window to 0..100:
// spending double the income scores 0, break-even 50, saving everything
// 100. Zero income scores 50 when expense is also zero, otherwise 0.
func HealthScore(income, expense decimal.Decimal) int {
	if income.IsZero() {
		if expense.IsZero() {
			return 50
		}
		return 0
	}
	fifty := decimal.NewFromInt(50)
	ratio := income.Sub(expense).Div(income)
	score := fifty.Add(fifty.Mul(ratio)).Round(0).IntPart()
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(score)
}

// TotalIncome sums the amounts of all income transactions.
func TotalIncome(txs []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for i := range txs {
		if txs[i].Type == models.TypeIncome {
			total = total.Add(txs[i].Amount)
		}
	}
	return total
}

// TotalExpense sums the amounts of all expense transactions.
func TotalExpense(txs []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for i := range txs {
		if txs[i].Type == models.TypeExpense {
			total = total.Add(txs[i].Amount)
		}
	}
	return total
}

// FilterByAccounts keeps only transactions against the given accounts;
// the dashboard uses it to scope metrics to the selected account(s).
func FilterByAccounts(txs []models.Transaction, accountIds []string) []models.Transaction {
	wanted := make(map[string]struct{}, len(accountIds))
	for _, id := range accountIds {
		wanted[id] = struct{}{}
	}
	var filtered []models.Transaction
	for i := range txs {
		if _, ok := wanted[txs[i].AccountId]; ok {
			filtered = append(filtered, txs[i])
		}
	}
	return filtered
}

func netChangeOn(txs []models.Transaction, day time.Time) decimal.Decimal {
	net := decimal.Zero
	for i := range txs {
		if sameDay(txs[i].Date, day) {
			net = net.Add(txs[i].SignedAmount())
		}
	}
	return net
}

func sumsOn(txs []models.Transaction, day time.Time) (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero
	for i := range txs {
		if !sameDay(txs[i].Date, day) {
			continue
		}
		if txs[i].Type == models.TypeIncome {
			income = income.Add(txs[i].Amount)
		} else {
			expense = expense.Add(txs[i].Amount)
		}
	}
	return income, expense
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
