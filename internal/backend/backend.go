package backend

import (
	"fmt"
	"log/slog"

	"tally/internal/config"
	"tally/internal/store"
	"tally/internal/store/memory"
	"tally/internal/store/sqlite"
)

const (
	MemoryBackend Type = "memory"
	SQLiteBackend Type = "sqlite"
)

// Type selects the transaction store backend.
type Type string

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result bundles the created store with its cleanup function and change
// notifier. Both store implementations notify; the field is separate so
// callers depend on the capability, not the concrete type.
type Result struct {
	Store    store.Store
	Notifier store.Notifier
	Cleanup  CleanupFunc
}

// Open creates the transaction store selected by the application config.
func Open(cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	backendType := Type(cfg.DataBackend)
	switch backendType {
	case SQLiteBackend:
		repo, err := sqlite.NewRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite store: %w", err)
		}
		logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: repo, Notifier: repo, Cleanup: repo.Close}, nil

	case MemoryBackend:
		st := memory.New()
		logger.Info("Initialized memory backend")
		return &Result{Store: st, Notifier: st, Cleanup: nil}, nil

	default:
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}
}
