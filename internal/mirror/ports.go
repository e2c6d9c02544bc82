// Package mirror replicates transactions to an external remote backend so
// the ledger survives local data loss. Adapters implement RowAppender; the
// worker drives them from the transaction-change event stream.
package mirror

import (
	"context"

	"tally/internal/core"
)

// Ports for outbound mirror adapters.
type (
	// RowAppender appends one transaction to the remote backend and
	// returns an opaque row reference.
	RowAppender interface {
		Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}

	// RowDeleter removes a previously mirrored transaction by id.
	RowDeleter interface {
		DeleteRow(ctx context.Context, id string) error
	}
)
