package report

import (
	"fmt"
	"math"

	"tally/internal/core"
)

// HealthScore computes a 0-100 financial health score from three capped
// components: savings rate (up to 40), expense stability (up to 30) and
// category concentration (up to 30).
func HealthScore(ov core.Overview, cats []core.CategoryStat) int {
	score := math.Min(ov.SavingsRate*2, 40)

	growth := math.Abs(ov.ExpenseGrowth)
	switch {
	case growth <= 10:
		score += 30
	case growth <= 20:
		score += 20
	case growth <= 30:
		score += 10
	}

	if len(cats) == 0 {
		score += 30
	} else {
		switch top := cats[0].Percentage; {
		case top <= 30:
			score += 30
		case top <= 50:
			score += 20
		case top <= 70:
			score += 10
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return core.RoundPercent(score)
}

// DetectAnomalies flags expense transactions whose amount exceeds the mean
// by more than two population standard deviations. Returns nil when there
// are no expenses.
func DetectAnomalies(txs []core.Transaction) []core.Anomaly {
	var expenses []core.Transaction
	var sum float64
	for _, tx := range txs {
		if tx.Type == core.Expense {
			expenses = append(expenses, tx)
			sum += tx.Amount
		}
	}
	if len(expenses) == 0 {
		return nil
	}

	mean := sum / float64(len(expenses))
	var variance float64
	for _, tx := range expenses {
		d := tx.Amount - mean
		variance += d * d
	}
	variance /= float64(len(expenses))
	threshold := mean + 2*math.Sqrt(variance)

	var out []core.Anomaly
	for _, tx := range expenses {
		if tx.Amount > threshold {
			out = append(out, core.Anomaly{
				Transaction: tx,
				Deviation:   core.RoundPercent((tx.Amount - mean) / mean * 100),
			})
		}
	}
	return out
}

// Recommendations evaluates the advisory rules in a fixed order. Rules are
// independent; several can fire for the same window.
func Recommendations(ov core.Overview, cats []core.CategoryStat) []core.Recommendation {
	var out []core.Recommendation

	if ov.SavingsRate < 20 {
		out = append(out, core.Recommendation{
			Kind:     "savings",
			Priority: "high",
			Message:  "储蓄率偏低，建议将每月收入的20%以上存起来",
		})
	}
	if ov.AvgDailyExpense > 200 {
		out = append(out, core.Recommendation{
			Kind:     "expense-control",
			Priority: "medium",
			Message:  fmt.Sprintf("日均支出 %.2f 元偏高，建议控制日常开销", ov.AvgDailyExpense),
		})
	}
	if len(cats) > 0 && cats[0].Percentage > 50 {
		out = append(out, core.Recommendation{
			Kind:     "category-diversification",
			Priority: "medium",
			Message:  fmt.Sprintf("%s类支出占比 %d%%，建议分散消费结构", cats[0].Category.Name, cats[0].Percentage),
		})
	}
	return out
}
