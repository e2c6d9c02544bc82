package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tally/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// parseWindow reads the window query parameter. Unknown or missing values
// fall back to the month window.
func parseWindow(r *http.Request) core.WindowKind {
	v := strings.TrimSpace(r.URL.Query().Get("window"))
	return core.WindowKind(v).Canonical()
}

// parseAmountField accepts the amount both as a JSON number and as a string
// with dot or comma decimals.
func parseAmountField(raw json.RawMessage) (float64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return 0, core.ErrInvalidAmount
	}
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return 0, core.ErrInvalidAmount
		}
		s = unquoted
	}
	return core.ParseAmount(s)
}

// parseDateField accepts RFC 3339 timestamps and plain YYYY-MM-DD dates. An
// empty value returns the zero time; the caller defaults it.
func parseDateField(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
