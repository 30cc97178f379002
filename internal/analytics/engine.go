// Package analytics computes derived financial metrics over the
// transaction store. Every operation re-reads store state at call time;
// nothing is cached. Ratios with a zero denominator degrade to 0 so no
// result ever carries NaN or undefined fields.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type Engine struct {
	store store.Reader
}

func NewEngine(s store.Reader) *Engine {
	return &Engine{store: s}
}

type (
	Summary struct {
		TotalIncome       float64 `json:"totalIncome"`
		TotalExpense      float64 `json:"totalExpense"`
		NetBalance        float64 `json:"netBalance"`
		TransactionCount  int64   `json:"transactionCount"`
		SavingsPercentage float64 `json:"savingsPercentage"`
	}

	DailyReport struct {
		Date             core.Date          `json:"date"`
		Income           float64            `json:"income"`
		Expense          float64            `json:"expense"`
		NetDaily         float64            `json:"netDaily"`
		TransactionCount int                `json:"transactionCount"`
		Transactions     []core.Transaction `json:"transactions"`
	}

	RangeReport struct {
		StartDate           core.Date `json:"startDate"`
		EndDate             core.Date `json:"endDate"`
		Income              float64   `json:"income"`
		Expense             float64   `json:"expense"`
		NetBalance          float64   `json:"netBalance"`
		TransactionCount    int       `json:"transactionCount"`
		AverageDailyExpense float64   `json:"averageDailyExpense"`
	}

	MonthlyReport struct {
		YearMonth         string             `json:"yearMonth"`
		Income            float64            `json:"income"`
		Expense           float64            `json:"expense"`
		NetSavings        float64            `json:"netSavings"`
		CategoryBreakdown map[string]float64 `json:"categoryBreakdown"`
		TransactionCount  int                `json:"transactionCount"`
	}

	Comparison struct {
		Income            float64 `json:"income"`
		Expense           float64 `json:"expense"`
		Balance           float64 `json:"balance"`
		IncomePercentage  float64 `json:"incomePercentage"`
		ExpensePercentage float64 `json:"expensePercentage"`
	}

	TrendsReport struct {
		TotalExpenses    float64 `json:"totalExpenses"`
		TransactionCount int     `json:"transactionCount"`
		AverageExpense   float64 `json:"averageExpense"`
		Category         string  `json:"category"`
	}

	CategoryBudget struct {
		Budget     float64 `json:"budget"`
		Actual     float64 `json:"actual"`
		Remaining  float64 `json:"remaining"`
		Percentage float64 `json:"percentage"`
		Exceeded   bool    `json:"exceeded"`
	}

	BudgetReport struct {
		Categories         map[string]CategoryBudget `json:"categories"`
		TotalBudget        float64                   `json:"totalBudget"`
		TotalActualSpend   float64                   `json:"totalActualSpend"`
		TotalRemaining     float64                   `json:"totalRemaining"`
		BudgetUtilization  float64                   `json:"budgetUtilization"`
		CategoriesExceeded int                       `json:"categoriesExceeded"`
		OnTrack            bool                      `json:"onTrack"`
	}

	SavingsReport struct {
		TotalIncome         float64 `json:"totalIncome"`
		TotalExpense        float64 `json:"totalExpense"`
		NetSavings          float64 `json:"netSavings"`
		SavingsRate         float64 `json:"savingsRate"`
		SavingsRateCategory string  `json:"savingsRateCategory"`
	}
)

func (e *Engine) Summary(ctx context.Context) (Summary, error) {
	totalIncome, err := e.totalByType(ctx, core.Income)
	if err != nil {
		return Summary{}, err
	}
	totalExpense, err := e.totalByType(ctx, core.Expense)
	if err != nil {
		return Summary{}, err
	}
	count, err := e.store.Count(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("count transactions: %w", err)
	}

	netBalance := totalIncome - totalExpense
	return Summary{
		TotalIncome:       totalIncome,
		TotalExpense:      totalExpense,
		NetBalance:        netBalance,
		TransactionCount:  count,
		SavingsPercentage: ratio(netBalance, totalIncome),
	}, nil
}

// ExpenseByCategory groups expense transactions by their verbatim
// category key and sums the amounts.
func (e *Engine) ExpenseByCategory(ctx context.Context) (map[string]float64, error) {
	expenses, err := e.store.FindByType(ctx, core.Expense)
	if err != nil {
		return nil, fmt.Errorf("find expenses: %w", err)
	}
	return sumByCategory(expenses), nil
}

// Daily reports on the transactions of a single calendar date. A zero
// date means today.
func (e *Engine) Daily(ctx context.Context, date core.Date) (DailyReport, error) {
	if date.IsZero() {
		date = core.Today()
	}

	all, err := e.store.FindAll(ctx)
	if err != nil {
		return DailyReport{}, fmt.Errorf("find transactions: %w", err)
	}

	daily := make([]core.Transaction, 0)
	for _, tx := range all {
		if tx.Date.Equal(date) {
			daily = append(daily, tx)
		}
	}

	income := sumByType(daily, core.Income)
	expense := sumByType(daily, core.Expense)
	return DailyReport{
		Date:             date,
		Income:           income,
		Expense:          expense,
		NetDaily:         income - expense,
		TransactionCount: len(daily),
		Transactions:     daily,
	}, nil
}

// Range aggregates over an inclusive date interval.
func (e *Engine) Range(ctx context.Context, start, end core.Date) (RangeReport, error) {
	txs, err := e.store.FindByDateBetween(ctx, start, end)
	if err != nil {
		return RangeReport{}, fmt.Errorf("find transactions in range: %w", err)
	}

	income := sumByType(txs, core.Income)
	expense := sumByType(txs, core.Expense)

	var avgDailyExpense float64
	if len(txs) > 0 {
		avgDailyExpense = expense / float64(daysInclusive(start, end))
	}

	return RangeReport{
		StartDate:           start,
		EndDate:             end,
		Income:              income,
		Expense:             expense,
		NetBalance:          income - expense,
		TransactionCount:    len(txs),
		AverageDailyExpense: avgDailyExpense,
	}, nil
}

// Monthly aggregates over one calendar month. Zero year or month means
// the current month.
func (e *Engine) Monthly(ctx context.Context, year, month int) (MonthlyReport, error) {
	if year == 0 || month == 0 {
		now := time.Now()
		year, month = now.Year(), int(now.Month())
	}

	start := core.NewDate(year, month, 1)
	end := core.Date{Time: start.AddDate(0, 1, -1)}

	txs, err := e.store.FindByDateBetween(ctx, start, end)
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("find monthly transactions: %w", err)
	}

	income := sumByType(txs, core.Income)
	expense := sumByType(txs, core.Expense)
	return MonthlyReport{
		YearMonth:         fmt.Sprintf("%04d-%02d", year, month),
		Income:            income,
		Expense:           expense,
		NetSavings:        income - expense,
		CategoryBreakdown: sumByCategory(filterByType(txs, core.Expense)),
		TransactionCount:  len(txs),
	}, nil
}

func (e *Engine) Comparison(ctx context.Context) (Comparison, error) {
	income, err := e.totalByType(ctx, core.Income)
	if err != nil {
		return Comparison{}, err
	}
	expense, err := e.totalByType(ctx, core.Expense)
	if err != nil {
		return Comparison{}, err
	}

	total := income + expense
	return Comparison{
		Income:            income,
		Expense:           expense,
		Balance:           income - expense,
		IncomePercentage:  ratio(income, total),
		ExpensePercentage: ratio(expense, total),
	}, nil
}

// TopExpenses returns the limit largest expense transactions, sorted
// descending by amount. Ties keep their original relative order.
func (e *Engine) TopExpenses(ctx context.Context, limit int) ([]core.Transaction, error) {
	expenses, err := e.store.FindByType(ctx, core.Expense)
	if err != nil {
		return nil, fmt.Errorf("find expenses: %w", err)
	}

	sorted := append([]core.Transaction(nil), expenses...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount.GreaterThan(sorted[j].Amount)
	})

	if limit < 0 {
		limit = 0
	}
	if limit > len(sorted) {
		limit = len(sorted)
	}
	return sorted[:limit], nil
}

// Trends reports total and average spending, optionally restricted to a
// single category. An empty category means all expenses.
func (e *Engine) Trends(ctx context.Context, category string) (TrendsReport, error) {
	var (
		expenses []core.Transaction
		err      error
		label    = "All Categories"
	)
	if category != "" {
		var txs []core.Transaction
		txs, err = e.store.FindByCategory(ctx, category)
		expenses = filterByType(txs, core.Expense)
		label = category
	} else {
		expenses, err = e.store.FindByType(ctx, core.Expense)
	}
	if err != nil {
		return TrendsReport{}, fmt.Errorf("find expenses: %w", err)
	}

	total := sumAmounts(expenses)
	var average float64
	if len(expenses) > 0 {
		average = total / float64(len(expenses))
	}

	return TrendsReport{
		TotalExpenses:    total,
		TransactionCount: len(expenses),
		AverageExpense:   average,
		Category:         label,
	}, nil
}

// BudgetCheck compares actual category spending against the supplied
// per-category budgets. Categories with no recorded expenses count as
// zero spend, not as errors.
func (e *Engine) BudgetCheck(ctx context.Context, budgets map[string]float64) (BudgetReport, error) {
	actuals, err := e.ExpenseByCategory(ctx)
	if err != nil {
		return BudgetReport{}, err
	}

	report := BudgetReport{Categories: make(map[string]CategoryBudget, len(budgets))}
	for category, budget := range budgets {
		actual := actuals[category]
		exceeded := actual > budget
		if exceeded {
			report.CategoriesExceeded++
		}

		report.TotalBudget += budget
		report.TotalActualSpend += actual
		report.Categories[category] = CategoryBudget{
			Budget:     budget,
			Actual:     actual,
			Remaining:  budget - actual,
			Percentage: ratio(actual, budget),
			Exceeded:   exceeded,
		}
	}

	report.TotalRemaining = report.TotalBudget - report.TotalActualSpend
	report.BudgetUtilization = ratio(report.TotalActualSpend, report.TotalBudget)
	report.OnTrack = report.TotalActualSpend <= report.TotalBudget
	return report, nil
}

func (e *Engine) SavingsRate(ctx context.Context) (SavingsReport, error) {
	income, err := e.totalByType(ctx, core.Income)
	if err != nil {
		return SavingsReport{}, err
	}
	expense, err := e.totalByType(ctx, core.Expense)
	if err != nil {
		return SavingsReport{}, err
	}

	netSavings := income - expense
	rate := ratio(netSavings, income)
	return SavingsReport{
		TotalIncome:         income,
		TotalExpense:        expense,
		NetSavings:          netSavings,
		SavingsRate:         rate,
		SavingsRateCategory: savingsRateCategory(rate),
	}, nil
}

func (e *Engine) totalByType(ctx context.Context, t core.TransactionType) (float64, error) {
	txs, err := e.store.FindByType(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("find %s transactions: %w", t, err)
	}
	return sumAmounts(txs), nil
}

// ratio returns numerator/denominator scaled to a percentage, or 0 when
// the denominator is not positive.
func ratio(numerator, denominator float64) float64 {
	if denominator > 0 {
		return numerator / denominator * 100
	}
	return 0
}

func daysInclusive(start, end core.Date) int64 {
	return int64(end.Sub(start.Time).Hours()/24) + 1
}

func sumAmounts(txs []core.Transaction) float64 {
	var total float64
	for _, tx := range txs {
		total += tx.Amount.InexactFloat64()
	}
	return total
}

func sumByType(txs []core.Transaction, t core.TransactionType) float64 {
	return sumAmounts(filterByType(txs, t))
}

func filterByType(txs []core.Transaction, t core.TransactionType) []core.Transaction {
	var out []core.Transaction
	for _, tx := range txs {
		if tx.Type.Matches(t) {
			out = append(out, tx)
		}
	}
	return out
}

// sumByCategory is the shared fold-by-key aggregation used by the
// category breakdown, the monthly report and the budget check.
func sumByCategory(txs []core.Transaction) map[string]float64 {
	breakdown := make(map[string]float64)
	for _, tx := range txs {
		breakdown[tx.Category] += tx.Amount.InexactFloat64()
	}
	return breakdown
}

func savingsRateCategory(rate float64) string {
	switch {
	case rate >= 50:
		return "Excellent"
	case rate >= 30:
		return "Very Good"
	case rate >= 20:
		return "Good"
	case rate >= 10:
		return "Fair"
	case rate >= 0:
		return "Poor"
	}
	return "Negative"
}
