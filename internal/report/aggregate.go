// Package report implements the aggregation engine and report generator:
// deterministic, allocation-light reductions over a transaction snapshot.
// All functions are pure; degenerate inputs (empty slices, zero totals)
// yield zero values, never errors or NaN.
package report

import (
	"sort"
	"time"

	"tally/internal/category"
	"tally/internal/core"
)

// FilterByWindow returns the order-preserving subsequence of transactions
// whose date falls inside the window [start, now].
func FilterByWindow(txs []core.Transaction, kind core.WindowKind, now time.Time) []core.Transaction {
	start, end := core.WindowRange(kind, now)
	var out []core.Transaction
	for _, tx := range txs {
		if tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// SumByType sums amounts over transactions of the given type. Empty input
// sums to 0.
func SumByType(txs []core.Transaction, t core.TransactionType) float64 {
	var sum float64
	for _, tx := range txs {
		if tx.Type == t {
			sum += tx.Amount
		}
	}
	return sum
}

// GroupByCategory aggregates expense transactions per resolved category.
// Unresolvable category ids contribute to the "other" sentinel. The result
// is sorted descending by amount; ties keep first-encounter order. When the
// expense total is 0 every percentage is 0.
func GroupByCategory(txs []core.Transaction, registry *category.Registry) []core.CategoryStat {
	type acc struct {
		stat  core.CategoryStat
		order int
	}
	groups := make(map[string]*acc)
	var keys []string
	var total float64

	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		cat := registry.Resolve(tx.CategoryID)
		g, ok := groups[cat.ID]
		if !ok {
			g = &acc{stat: core.CategoryStat{Category: cat}, order: len(keys)}
			groups[cat.ID] = g
			keys = append(keys, cat.ID)
		}
		g.stat.Amount += tx.Amount
		g.stat.Count++
		total += tx.Amount
	}

	out := make([]core.CategoryStat, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		if total > 0 {
			g.stat.Percentage = core.RoundPercent(g.stat.Amount / total * 100)
		}
		g.stat.Amount = core.Round2(g.stat.Amount)
		out = append(out, g.stat)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount > out[j].Amount
	})
	return out
}

// GroupBySource aggregates expense transactions per provenance tag, in the
// same shape as GroupByCategory.
func GroupBySource(txs []core.Transaction) []core.SourceStat {
	type acc struct {
		stat core.SourceStat
	}
	groups := make(map[core.TransactionSource]*acc)
	var keys []core.TransactionSource
	var total float64

	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		src := tx.Source
		if src == "" {
			src = core.SourceManual
		}
		g, ok := groups[src]
		if !ok {
			g = &acc{stat: core.SourceStat{Source: src}}
			groups[src] = g
			keys = append(keys, src)
		}
		g.stat.Amount += tx.Amount
		g.stat.Count++
		total += tx.Amount
	}

	out := make([]core.SourceStat, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		if total > 0 {
			g.stat.Percentage = core.RoundPercent(g.stat.Amount / total * 100)
		}
		g.stat.Amount = core.Round2(g.stat.Amount)
		out = append(out, g.stat)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount > out[j].Amount
	})
	return out
}
