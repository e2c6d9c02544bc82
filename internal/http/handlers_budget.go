package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"tally/internal/budget"
)

type budgetResponse struct {
	Config budget.Config        `json:"config"`
	Scopes []budget.ScopeStatus `json:"scopes"`
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetBudget(w, r)
	case http.MethodPut:
		s.handleUpdateBudget(w, r)
	default:
		methodNotAllowed(w, "GET", "PUT")
	}
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	cfg := s.budgetConfig()

	var scopes []budget.ScopeStatus
	if s.evaluator != nil {
		var err error
		scopes, err = s.evaluator.Evaluate(r.Context(), cfg)
		if err != nil {
			slog.ErrorContext(r.Context(), "Budget evaluation failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to evaluate budget")
			return
		}
	}

	writeJSON(w, http.StatusOK, budgetResponse{Config: cfg, Scopes: scopes})
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var cfg budget.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if cfg.Monthly < 0 {
		writeError(w, http.StatusUnprocessableEntity, "monthly budget must not be negative")
		return
	}
	for id, limit := range cfg.Categories {
		if limit < 0 {
			writeError(w, http.StatusUnprocessableEntity, "category budget must not be negative: "+id)
			return
		}
	}
	if cfg.AlertThresholdPercent < 0 || cfg.AlertThresholdPercent > 100 {
		writeError(w, http.StatusUnprocessableEntity, "alert threshold must be in [0,100]")
		return
	}

	s.budgetMu.Lock()
	s.budgetCfg = cfg
	s.budgetMu.Unlock()

	slog.InfoContext(r.Context(), "Budget configuration updated",
		"monthly", cfg.Monthly,
		"categories", len(cfg.Categories),
		"threshold", cfg.Threshold())

	// Re-check against the new limits right away.
	if s.evaluator != nil {
		go func() {
			if _, err := s.evaluator.Evaluate(context.Background(), cfg); err != nil {
				slog.Error("Budget evaluation after config update failed", "error", err)
			}
		}()
	}

	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	alerts := []budget.Alert{}
	if s.alerts != nil {
		alerts = s.alerts.Recent()
	}
	writeJSON(w, http.StatusOK, alerts)
}
