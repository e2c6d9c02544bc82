package http

import (
	"log/slog"
	"net/http"
	"time"

	"tally/internal/report"
)

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	kind := parseWindow(r)
	key := string(kind)

	if rep, found := s.reportCache.Get(key); found {
		slog.DebugContext(r.Context(), "Report cache hit", "window", kind)
		writeJSON(w, http.StatusOK, rep)
		return
	}

	snapshot, err := s.store.Snapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to snapshot transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate report")
		return
	}

	rep := report.Generate(snapshot, kind, time.Now(), s.registry)
	s.reportCache.Set(key, rep)
	slog.DebugContext(r.Context(), "Report cached",
		"window", kind,
		"transactions", rep.Overview.TransactionCount)

	writeJSON(w, http.StatusOK, rep)
}

type categoryResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	all := s.registry.All()
	out := make([]categoryResponse, 0, len(all))
	for _, c := range all {
		out = append(out, categoryResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}
