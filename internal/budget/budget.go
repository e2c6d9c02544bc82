// Package budget compares aggregated spending against configured limits and
// emits rate-limited alerts. Evaluation is stateless per check: each run
// recomputes scope statuses from a fresh snapshot, with no hysteresis.
package budget

import "time"

const (
	StatusUnset          Status = "unset"
	StatusUnderThreshold Status = "under_threshold"
	StatusNearLimit      Status = "near_limit"
	StatusOverBudget     Status = "over_budget"
)

const (
	LevelWarning AlertLevel = "warning"
	LevelError   AlertLevel = "error"
)

// DefaultAlertThresholdPercent is the usage percentage at which a warning
// fires when the config leaves it unset.
const DefaultAlertThresholdPercent = 80

// AlertCooldown bounds alert frequency per scope: a rate limit, not a state
// transition guard.
const AlertCooldown = time.Hour

type (
	Status string

	AlertLevel string

	// Config is a read-only snapshot of the budget configuration. Category
	// sub-budgets are deliberately not validated against the monthly
	// total; both limits are enforced independently.
	Config struct {
		Monthly               float64            `json:"monthly"`
		Categories            map[string]float64 `json:"categories"`
		AlertThresholdPercent int                `json:"alertThresholdPercent"`
	}

	Alert struct {
		Scope       string     `json:"scope"` // "total" or a category id
		Level       AlertLevel `json:"level"`
		Message     string     `json:"message"`
		PercentUsed int        `json:"percentUsed"`
		AmountSpent float64    `json:"amountSpent"`
		FiredAt     time.Time  `json:"firedAt"`
	}

	// AlertSink receives alert events; delivery and display belong to the
	// consumer.
	AlertSink interface {
		Emit(Alert)
	}

	// Clock abstracts time for deterministic tests.
	Clock interface {
		Now() time.Time
	}

	// ScopeStatus is the evaluated state of one budget scope.
	ScopeStatus struct {
		Scope       string  `json:"scope"`
		Status      Status  `json:"status"`
		Budget      float64 `json:"budget"`
		Spent       float64 `json:"spent"`
		PercentUsed int     `json:"percentUsed"`
	}
)

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// SystemClock is the wall-clock implementation of Clock.
var SystemClock Clock = realClock{}

// Threshold returns the configured alert threshold, defaulted and clamped
// to [0, 100].
func (c Config) Threshold() int {
	t := c.AlertThresholdPercent
	if t == 0 {
		return DefaultAlertThresholdPercent
	}
	if t < 0 {
		return 0
	}
	if t > 100 {
		return 100
	}
	return t
}
