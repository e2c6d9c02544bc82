package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tally/internal/events"
	"tally/internal/store"
)

// Worker applies transaction-change events to a remote mirror. Add and
// update both append (the mirror keeps an append-only audit trail, matching
// row versions by id is the deleter's concern); delete removes the row when
// the adapter supports it.
type Worker struct {
	store    store.Store
	appender RowAppender
	deleter  RowDeleter
}

func NewWorker(st store.Store, appender RowAppender, deleter RowDeleter) *Worker {
	return &Worker{store: st, appender: appender, deleter: deleter}
}

// Handle processes a single transaction-change message.
func (w *Worker) Handle(ctx context.Context, msg *events.TransactionChangedMessage) error {
	switch msg.Op {
	case events.OpAdd, events.OpUpdate:
		tx, err := w.store.Get(ctx, msg.ID)
		if errors.Is(err, store.ErrNotFound) {
			// Deleted before we got to it. Nothing to mirror.
			slog.WarnContext(ctx, "Transaction vanished before mirroring", "id", msg.ID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("get transaction %s: %w", msg.ID, err)
		}

		ref, err := w.appender.Append(ctx, tx)
		if err != nil {
			return fmt.Errorf("mirror transaction %s: %w", msg.ID, err)
		}
		slog.InfoContext(ctx, "Transaction mirrored", "id", msg.ID, "op", msg.Op, "row_ref", ref)
		return nil

	case events.OpDelete:
		if w.deleter == nil {
			slog.WarnContext(ctx, "No row deleter configured, skipping mirror delete", "id", msg.ID)
			return nil
		}
		if err := w.deleter.DeleteRow(ctx, msg.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("delete mirrored row %s: %w", msg.ID, err)
		}
		slog.InfoContext(ctx, "Mirrored row deleted", "id", msg.ID)
		return nil

	default:
		slog.WarnContext(ctx, "Unknown mirror operation", "op", msg.Op, "id", msg.ID)
		return nil
	}
}
