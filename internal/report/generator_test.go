package report

import (
	"context"
	"reflect"
	"testing"
	"time"

	"tally/internal/category"
	"tally/internal/core"
	"tally/internal/store/memory"
)

func seededGenerator(t *testing.T, txs ...core.Transaction) *Generator {
	t.Helper()
	st := memory.New()
	for _, tx := range txs {
		if err := st.Add(context.Background(), tx); err != nil {
			t.Fatalf("seed %s: %v", tx.ID, err)
		}
	}
	return NewGenerator(st, category.NewRegistry())
}

func TestGenerateReportMonthScenario(t *testing.T) {
	g := seededGenerator(t,
		income("i1", 5000, time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC)),
		expense("e1", "food", 1500, time.Date(2024, 12, 2, 12, 0, 0, 0, time.UTC)),
		expense("e2", "transport", 500, time.Date(2024, 12, 3, 8, 0, 0, 0, time.UTC)),
	)

	rep, err := g.GenerateReport(context.Background(), core.WindowMonth, testNow)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	ov := rep.Overview
	if ov.Income != 5000 || ov.Expense != 2000 || ov.Balance != 3000 {
		t.Fatalf("overview = %+v", ov)
	}
	if ov.SavingsRate != 60 {
		t.Fatalf("savings rate = %v, want 60", ov.SavingsRate)
	}
	if ov.TransactionCount != 3 {
		t.Fatalf("transaction count = %d", ov.TransactionCount)
	}
	if ov.AvgDailyExpense != 66.67 {
		t.Fatalf("avg daily expense = %v, want 66.67 (2000/30)", ov.AvgDailyExpense)
	}
	if ov.IncomeGrowth != 0 || ov.ExpenseGrowth != 0 {
		t.Fatalf("growth fields must be 0 without a baseline: %+v", ov)
	}

	if rep.SmartBill.TopCategory == nil || rep.SmartBill.TopCategory.Category.ID != "food" {
		t.Fatalf("top category = %+v", rep.SmartBill.TopCategory)
	}
}

func TestGenerateReportIdempotent(t *testing.T) {
	g := seededGenerator(t,
		income("i1", 5000, time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC)),
		expense("e1", "food", 1500, time.Date(2024, 12, 2, 12, 0, 0, 0, time.UTC)),
	)

	a, err := g.GenerateReport(context.Background(), core.WindowMonth, testNow)
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}
	b, err := g.GenerateReport(context.Background(), core.WindowMonth, testNow)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("reports must be identical for an unchanged store and now")
	}
}

func TestGenerateReportEmptyStore(t *testing.T) {
	g := seededGenerator(t)

	rep, err := g.GenerateReport(context.Background(), core.WindowMonth, testNow)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	ov := rep.Overview
	if ov.Income != 0 || ov.Expense != 0 || ov.Balance != 0 ||
		ov.SavingsRate != 0 || ov.AvgDailyExpense != 0 || ov.TransactionCount != 0 {
		t.Fatalf("empty overview must be all zero: %+v", ov)
	}
	if rep.SmartBill.TopCategory != nil {
		t.Fatalf("top category must be nil, got %+v", rep.SmartBill.TopCategory)
	}
	if len(rep.CategoryAnalysis) != 0 || len(rep.SmartBill.Anomalies) != 0 {
		t.Fatal("empty store must yield empty analyses")
	}
	// Empty store still scores stability and concentration components.
	if rep.SmartBill.HealthScore != 60 {
		t.Fatalf("health score = %d, want 60", rep.SmartBill.HealthScore)
	}
}

func TestBalanceSumInvariant(t *testing.T) {
	g := seededGenerator(t,
		income("i1", 123.45, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)),
		income("i2", 67.89, time.Date(2024, 12, 2, 0, 0, 0, 0, time.UTC)),
		expense("e1", "food", 55.55, time.Date(2024, 12, 3, 0, 0, 0, 0, time.UTC)),
		expense("e2", "shopping", 44.31, time.Date(2024, 12, 4, 0, 0, 0, 0, time.UTC)),
	)

	rep, err := g.GenerateReport(context.Background(), core.WindowMonth, testNow)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	diff := rep.Overview.Income - rep.Overview.Expense - rep.Overview.Balance
	if diff > 0.01 || diff < -0.01 {
		t.Fatalf("balance invariant broken: income=%v expense=%v balance=%v",
			rep.Overview.Income, rep.Overview.Expense, rep.Overview.Balance)
	}
}

func TestGenerateUnknownWindowDefaultsToMonth(t *testing.T) {
	g := seededGenerator(t,
		expense("e1", "food", 100, time.Date(2024, 12, 2, 0, 0, 0, 0, time.UTC)),
	)
	rep, err := g.GenerateReport(context.Background(), "quarter", testNow)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if rep.Window != core.WindowMonth {
		t.Fatalf("window = %q, want month", rep.Window)
	}
	if rep.Overview.Expense != 100 {
		t.Fatalf("expense = %v", rep.Overview.Expense)
	}
}

func TestTrendSeriesZeroFills(t *testing.T) {
	txs := []core.Transaction{
		expense("e1", "food", 10, time.Date(2024, 12, 10, 8, 0, 0, 0, time.UTC)),
		income("i1", 50, time.Date(2024, 12, 12, 8, 0, 0, 0, time.UTC)),
	}
	points := TrendSeries(txs, core.WindowMonth, testNow)
	if len(points) != 15 {
		t.Fatalf("expected 15 daily points for Dec 1-15, got %d", len(points))
	}
	if points[0].Date != "2024-12-01" || points[14].Date != "2024-12-15" {
		t.Fatalf("series bounds = %s .. %s", points[0].Date, points[14].Date)
	}
	if points[9].Expense != 10 || points[11].Income != 50 {
		t.Fatalf("bucketing wrong: %+v %+v", points[9], points[11])
	}
	if points[1].Income != 0 || points[1].Expense != 0 {
		t.Fatalf("gap days must be zero-filled: %+v", points[1])
	}
}
