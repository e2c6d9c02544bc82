package report

import (
	"testing"

	"tally/internal/category"
	"tally/internal/core"
)

func TestDetectAnomalies(t *testing.T) {
	// Five identical small expenses and one spike. mean = 175, population
	// stddev ~368.95, threshold ~912.9; only the spike exceeds it.
	txs := []core.Transaction{
		expense("a", "food", 10, testNow),
		expense("b", "food", 10, testNow),
		expense("c", "food", 10, testNow),
		expense("d", "food", 10, testNow),
		expense("e", "food", 10, testNow),
		expense("spike", "shopping", 1000, testNow),
	}

	got := DetectAnomalies(txs)
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 anomaly, got %d", len(got))
	}
	if got[0].Transaction.ID != "spike" {
		t.Fatalf("flagged wrong transaction: %s", got[0].Transaction.ID)
	}
	// (1000 - 175) / 175 * 100 = 471.43 → 471
	if got[0].Deviation != 471 {
		t.Fatalf("deviation = %d, want 471", got[0].Deviation)
	}
}

func TestDetectAnomaliesDegenerate(t *testing.T) {
	if got := DetectAnomalies(nil); got != nil {
		t.Fatalf("no expenses must yield nil, got %+v", got)
	}
	if got := DetectAnomalies([]core.Transaction{income("i", 100, testNow)}); got != nil {
		t.Fatalf("income-only must yield nil, got %+v", got)
	}
	// A single expense is its own mean; never flagged.
	if got := DetectAnomalies([]core.Transaction{expense("a", "food", 50, testNow)}); got != nil {
		t.Fatalf("single expense must yield nil, got %+v", got)
	}
}

func TestHealthScoreBounds(t *testing.T) {
	cases := []struct {
		name string
		ov   core.Overview
		cats []core.CategoryStat
	}{
		{"all good", core.Overview{SavingsRate: 80}, []core.CategoryStat{{Percentage: 20}}},
		{"all bad", core.Overview{SavingsRate: -50, ExpenseGrowth: 90}, []core.CategoryStat{{Percentage: 95}}},
		{"no categories", core.Overview{SavingsRate: 10}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score := HealthScore(tc.ov, tc.cats)
			if score < 0 || score > 100 {
				t.Fatalf("score %d out of [0,100]", score)
			}
		})
	}
}

func TestHealthScoreComponents(t *testing.T) {
	// savings 40 (capped) + stability 30 + concentration 30 = 100
	ov := core.Overview{SavingsRate: 50}
	if got := HealthScore(ov, []core.CategoryStat{{Percentage: 25}}); got != 100 {
		t.Fatalf("score = %d, want 100", got)
	}
	// Negative savings contributes negatively but the floor holds.
	ov = core.Overview{SavingsRate: -100, ExpenseGrowth: 50}
	if got := HealthScore(ov, []core.CategoryStat{{Percentage: 90}}); got != 0 {
		t.Fatalf("score = %d, want 0", got)
	}
	// No expense categories scores the full concentration component.
	ov = core.Overview{SavingsRate: 0}
	if got := HealthScore(ov, nil); got != 60 {
		t.Fatalf("score = %d, want 60", got)
	}
}

func TestRecommendationsOrder(t *testing.T) {
	ov := core.Overview{SavingsRate: 5, AvgDailyExpense: 300}
	cats := []core.CategoryStat{{Category: core.Category{Name: "餐饮"}, Percentage: 60}}

	got := Recommendations(ov, cats)
	if len(got) != 3 {
		t.Fatalf("expected all 3 rules to fire, got %d", len(got))
	}
	wantKinds := []string{"savings", "expense-control", "category-diversification"}
	for i, kind := range wantKinds {
		if got[i].Kind != kind {
			t.Fatalf("rule %d = %q, want %q", i, got[i].Kind, kind)
		}
	}
	if got[0].Priority != "high" || got[1].Priority != "medium" {
		t.Fatalf("priorities = %q, %q", got[0].Priority, got[1].Priority)
	}
}

func TestRecommendationsNoneFire(t *testing.T) {
	ov := core.Overview{SavingsRate: 40, AvgDailyExpense: 50}
	cats := []core.CategoryStat{{Percentage: 30}}
	if got := Recommendations(ov, cats); len(got) != 0 {
		t.Fatalf("expected no recommendations, got %+v", got)
	}
}

func TestGroupByCategoryStableTies(t *testing.T) {
	reg := category.NewRegistry()
	txs := []core.Transaction{
		expense("a", "transport", 50, testNow),
		expense("b", "food", 50, testNow),
	}
	got := GroupByCategory(txs, reg)
	if got[0].Category.ID != "transport" || got[1].Category.ID != "food" {
		t.Fatalf("tie must keep encounter order: %+v", got)
	}
}
