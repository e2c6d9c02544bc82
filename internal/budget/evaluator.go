package budget

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tally/internal/category"
	"tally/internal/core"
	"tally/internal/report"
	"tally/internal/store"
)

// Evaluator checks month-to-date spending against a budget config. It holds
// only the per-scope last-fired timestamps used for alert de-duplication.
type Evaluator struct {
	store    store.Store
	registry *category.Registry
	sink     AlertSink
	clock    Clock

	mu        sync.Mutex
	lastFired map[string]time.Time
}

// NewEvaluator wires the evaluator's collaborators. A nil clock falls back
// to the system clock; a nil sink disables alert delivery but not status
// computation.
func NewEvaluator(st store.Store, registry *category.Registry, sink AlertSink, clock Clock) *Evaluator {
	if clock == nil {
		clock = SystemClock
	}
	return &Evaluator{
		store:     st,
		registry:  registry,
		sink:      sink,
		clock:     clock,
		lastFired: make(map[string]time.Time),
	}
}

// EvaluateScope classifies a single scope. budget <= 0 means the scope is
// unset and never alerts.
func EvaluateScope(spent, budget float64, thresholdPercent int) ScopeStatus {
	st := ScopeStatus{Budget: budget, Spent: core.Round2(spent)}
	if budget <= 0 {
		st.Status = StatusUnset
		return st
	}
	st.PercentUsed = core.RoundPercent(spent / budget * 100)
	usage := spent / budget * 100
	switch {
	case usage >= 100:
		st.Status = StatusOverBudget
	case usage >= float64(thresholdPercent):
		st.Status = StatusNearLimit
	default:
		st.Status = StatusUnderThreshold
	}
	return st
}

// Evaluate runs one budget check over the current month window and emits
// de-duplicated alerts for scopes at or over their limits. Unknown category
// ids in the config are skipped without failing the rest of the check.
func (e *Evaluator) Evaluate(ctx context.Context, cfg Config) ([]ScopeStatus, error) {
	now := e.clock.Now()
	snapshot, err := e.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot transactions: %w", err)
	}
	filtered := report.FilterByWindow(snapshot, core.WindowMonth, now)
	threshold := cfg.Threshold()

	var statuses []ScopeStatus

	total := EvaluateScope(report.SumByType(filtered, core.Expense), cfg.Monthly, threshold)
	total.Scope = "total"
	statuses = append(statuses, total)
	e.maybeAlert(ctx, total)

	perCategory := make(map[string]float64)
	for _, tx := range filtered {
		if tx.Type != core.Expense {
			continue
		}
		perCategory[e.registry.Resolve(tx.CategoryID).ID] += tx.Amount
	}

	for id, limit := range cfg.Categories {
		if !e.registry.Known(id) {
			slog.DebugContext(ctx, "Skipping unknown budget category", "category_id", id)
			continue
		}
		st := EvaluateScope(perCategory[id], limit, threshold)
		st.Scope = id
		statuses = append(statuses, st)
		e.maybeAlert(ctx, st)
	}

	return statuses, nil
}

func (e *Evaluator) maybeAlert(ctx context.Context, st ScopeStatus) {
	if e.sink == nil {
		return
	}

	var alert Alert
	switch st.Status {
	case StatusNearLimit:
		alert = Alert{
			Scope:   st.Scope,
			Level:   LevelWarning,
			Message: fmt.Sprintf("预算使用已达 %d%%，请注意控制支出", st.PercentUsed),
		}
	case StatusOverBudget:
		alert = Alert{
			Scope:   st.Scope,
			Level:   LevelError,
			Message: fmt.Sprintf("预算已超支 %d%%", st.PercentUsed-100),
		}
	default:
		return
	}

	now := e.clock.Now()
	e.mu.Lock()
	if last, ok := e.lastFired[st.Scope]; ok && now.Sub(last) < AlertCooldown {
		e.mu.Unlock()
		return
	}
	e.lastFired[st.Scope] = now
	e.mu.Unlock()

	alert.PercentUsed = st.PercentUsed
	alert.AmountSpent = st.Spent
	alert.FiredAt = now

	slog.InfoContext(ctx, "Budget alert fired",
		"scope", alert.Scope,
		"level", alert.Level,
		"percent_used", alert.PercentUsed,
		"amount_spent", alert.AmountSpent)

	e.sink.Emit(alert)
}
