package report

import (
	"context"
	"fmt"
	"time"

	"tally/internal/category"
	"tally/internal/core"
	"tally/internal/store"
)

// Generator composes aggregation results into full reports. Dependencies
// are injected; the generator holds no mutable state of its own, so calls
// with the same snapshot and reference time are idempotent.
type Generator struct {
	store    store.Store
	registry *category.Registry
}

func NewGenerator(st store.Store, registry *category.Registry) *Generator {
	return &Generator{store: st, registry: registry}
}

// GenerateReport is the primary entry point: one snapshot read, then pure
// computation. Unknown window kinds fall back to month.
func (g *Generator) GenerateReport(ctx context.Context, kind core.WindowKind, now time.Time) (core.Report, error) {
	snapshot, err := g.store.Snapshot(ctx)
	if err != nil {
		return core.Report{}, fmt.Errorf("snapshot transactions: %w", err)
	}
	return Generate(snapshot, kind, now, g.registry), nil
}

// Generate builds a report over an already-captured snapshot.
func Generate(snapshot []core.Transaction, kind core.WindowKind, now time.Time, registry *category.Registry) core.Report {
	kind = kind.Canonical()
	filtered := FilterByWindow(snapshot, kind, now)

	overview := Overview(filtered, kind)
	cats := GroupByCategory(filtered, registry)

	var top *core.CategoryStat
	if len(cats) > 0 {
		c := cats[0]
		top = &c
	}

	return core.Report{
		Window:           kind,
		Overview:         overview,
		CategoryAnalysis: cats,
		SourceAnalysis:   GroupBySource(filtered),
		TrendAnalysis:    TrendSeries(filtered, kind, now),
		SmartBill: core.SmartBill{
			HealthScore:     HealthScore(overview, cats),
			TopCategory:     top,
			Anomalies:       DetectAnomalies(filtered),
			Recommendations: Recommendations(overview, cats),
		},
	}
}

// Overview computes the headline numbers for a filtered transaction set.
func Overview(filtered []core.Transaction, kind core.WindowKind) core.Overview {
	income := SumByType(filtered, core.Income)
	expense := SumByType(filtered, core.Expense)
	balance := income - expense

	var savingsRate float64
	if income > 0 {
		savingsRate = core.Round2(balance / income * 100)
	}

	return core.Overview{
		Income:           core.Round2(income),
		Expense:          core.Round2(expense),
		Balance:          core.Round2(balance),
		SavingsRate:      savingsRate,
		AvgDailyExpense:  core.Round2(expense / float64(core.DaysInWindow(kind))),
		TransactionCount: len(filtered),
		// Period-over-period growth has no historical baseline yet; the
		// fields stay present and zero.
		IncomeGrowth:  0,
		ExpenseGrowth: 0,
	}
}

// TrendSeries buckets the window's transactions into one point per calendar
// day, zero-filling days without activity.
func TrendSeries(filtered []core.Transaction, kind core.WindowKind, now time.Time) []core.TrendPoint {
	start, end := core.WindowRange(kind, now)
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location())

	type bucket struct{ income, expense float64 }
	buckets := make(map[string]*bucket)
	for _, tx := range filtered {
		key := tx.Date.Format("2006-01-02")
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		if tx.Type == core.Income {
			b.income += tx.Amount
		} else {
			b.expense += tx.Amount
		}
	}

	var out []core.TrendPoint
	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		point := core.TrendPoint{Date: key}
		if b, ok := buckets[key]; ok {
			point.Income = core.Round2(b.income)
			point.Expense = core.Round2(b.expense)
		}
		out = append(out, point)
	}
	return out
}
