package budget

import "sync"

// History is an AlertSink that keeps the most recent alerts in memory so
// consumers can list them. Oldest entries are dropped past the capacity.
type History struct {
	mu     sync.Mutex
	max    int
	alerts []Alert
}

func NewHistory(max int) *History {
	if max < 1 {
		max = 1
	}
	return &History{max: max}
}

func (h *History) Emit(a Alert) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.alerts = append(h.alerts, a)
	if len(h.alerts) > h.max {
		h.alerts = h.alerts[len(h.alerts)-h.max:]
	}
}

// Recent returns the stored alerts, newest last.
func (h *History) Recent() []Alert {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Alert, len(h.alerts))
	copy(out, h.alerts)
	return out
}

// MultiSink fans one alert out to several sinks.
type MultiSink []AlertSink

func (m MultiSink) Emit(a Alert) {
	for _, s := range m {
		if s != nil {
			s.Emit(a)
		}
	}
}
