package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"tally/internal/category"
	"tally/internal/core"
	"tally/internal/report"
	"tally/internal/store"
)

// Operation names match the change-event messages consumed by the mirror
// worker.
const (
	OpAdd    = "add"
	OpUpdate = "update"
	OpDelete = "delete"
)

// transactionPayload is the request body for create and update. Amount is
// raw JSON so both 12.5 and "12,5" are accepted.
type transactionPayload struct {
	Type        string          `json:"type"`
	Amount      json.RawMessage `json:"amount"`
	CategoryID  string          `json:"categoryId"`
	Description string          `json:"description"`
	Merchant    string          `json:"merchant"`
	Date        string          `json:"date"`
	Source      string          `json:"source"`
	Tags        []string        `json:"tags"`
}

type transactionResponse struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Amount      float64  `json:"amount"`
	CategoryID  string   `json:"categoryId"`
	Description string   `json:"description"`
	Merchant    string   `json:"merchant,omitempty"`
	Date        string   `json:"date"`
	Source      string   `json:"source"`
	Tags        []string `json:"tags,omitempty"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Type:        string(tx.Type),
		Amount:      core.Round2(tx.Amount),
		CategoryID:  tx.CategoryID,
		Description: tx.Description,
		Merchant:    tx.Merchant,
		Date:        tx.Date.Format(time.RFC3339),
		Source:      string(tx.Source),
		Tags:        tx.Tags,
	}
}

// transactionFromPayload validates and normalizes a payload into a domain
// transaction with the given id. Unknown category ids fall back to "other".
func (s *Server) transactionFromPayload(id string, p transactionPayload) (core.Transaction, error) {
	amount, err := parseAmountField(p.Amount)
	if err != nil {
		return core.Transaction{}, err
	}

	date, err := parseDateField(p.Date)
	if err != nil {
		return core.Transaction{}, core.ErrZeroDate
	}

	categoryID := strings.TrimSpace(p.CategoryID)
	if !s.registry.Known(categoryID) {
		categoryID = category.OtherID
	}

	tx := core.Transaction{
		ID:          id,
		Type:        core.TransactionType(strings.TrimSpace(p.Type)),
		Amount:      amount,
		CategoryID:  categoryID,
		Description: sanitizeInput(p.Description),
		Merchant:    sanitizeInput(p.Merchant),
		Date:        date,
		Source:      core.TransactionSource(strings.TrimSpace(p.Source)),
		Tags:        p.Tags,
	}
	tx = tx.Normalize(time.Now())
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	case http.MethodGet:
		s.handleListTransactions(w, r)
	default:
		methodNotAllowed(w, "GET", "POST")
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var payload transactionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := s.transactionFromPayload(uuid.NewString(), payload)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.store.Add(r.Context(), tx); err != nil {
		slog.ErrorContext(r.Context(), "Failed to add transaction", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save transaction")
		return
	}

	s.afterMutation(r.Context(), tx.ID, OpAdd)
	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.store.Snapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to read transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read transactions")
		return
	}

	if v := strings.TrimSpace(r.URL.Query().Get("window")); v != "" {
		snapshot = report.FilterByWindow(snapshot, core.WindowKind(v).Canonical(), time.Now())
	}

	out := make([]transactionResponse, 0, len(snapshot))
	for _, tx := range snapshot {
		out = append(out, toTransactionResponse(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetTransaction(w, r, id)
	case http.MethodPut:
		s.handleUpdateTransaction(w, r, id)
	case http.MethodDelete:
		s.handleDeleteTransaction(w, r, id)
	default:
		methodNotAllowed(w, "GET", "PUT", "DELETE")
	}
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request, id string) {
	tx, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to get transaction", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read transaction")
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, id string) {
	var payload transactionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := s.transactionFromPayload(id, payload)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.store.Update(r.Context(), tx); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to update transaction", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update transaction")
		return
	}

	s.afterMutation(r.Context(), id, OpUpdate)
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete transaction", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	s.afterMutation(r.Context(), id, OpDelete)
	w.WriteHeader(http.StatusNoContent)
}
