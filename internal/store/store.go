package store

import (
	"context"
	"errors"

	"tally/internal/core"
)

// ErrNotFound is returned when a transaction id does not exist.
var ErrNotFound = errors.New("transaction not found")

// Ports for transaction storage backends.
type (
	// Store is the single source of truth for transactions. Reports must
	// be computed over one Snapshot per call; backends guarantee the
	// snapshot is a consistent point-in-time copy.
	Store interface {
		Add(ctx context.Context, tx core.Transaction) error
		Update(ctx context.Context, tx core.Transaction) error
		Delete(ctx context.Context, id string) error
		Get(ctx context.Context, id string) (core.Transaction, error)
		Snapshot(ctx context.Context) ([]core.Transaction, error)
	}

	// Notifier lets consumers subscribe to mutation events. Callbacks run
	// synchronously after the mutation commits; they must not block.
	Notifier interface {
		OnChange(fn func())
	}
)
