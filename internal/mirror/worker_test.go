package mirror

import (
	"context"
	"testing"
	"time"

	"tally/internal/core"
	"tally/internal/events"
	mirrormem "tally/internal/mirror/memory"
	storemem "tally/internal/store/memory"
)

func seededWorker(t *testing.T) (*Worker, *storemem.Store, *mirrormem.Store) {
	t.Helper()
	st := storemem.New()
	m := mirrormem.New()
	return NewWorker(st, m, m), st, m
}

func sampleTx(id string) core.Transaction {
	return core.Transaction{
		ID: id, Type: core.Expense, Amount: 9.9, CategoryID: "food",
		Date:   time.Date(2024, 12, 2, 0, 0, 0, 0, time.UTC),
		Source: core.SourceManual,
	}
}

func TestHandleAddMirrorsTransaction(t *testing.T) {
	ctx := context.Background()
	w, st, m := seededWorker(t)
	_ = st.Add(ctx, sampleTx("tx-1"))

	msg := events.NewTransactionChangedMessage("tx-1", events.OpAdd)
	if err := w.Handle(ctx, msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	rows := m.Rows()
	if len(rows) != 1 || rows[0].ID != "tx-1" {
		t.Fatalf("mirror rows = %+v", rows)
	}
}

func TestHandleAddVanishedTransaction(t *testing.T) {
	ctx := context.Background()
	w, _, m := seededWorker(t)

	msg := events.NewTransactionChangedMessage("ghost", events.OpAdd)
	if err := w.Handle(ctx, msg); err != nil {
		t.Fatalf("vanished transaction must not error: %v", err)
	}
	if len(m.Rows()) != 0 {
		t.Fatal("nothing should be mirrored")
	}
}

func TestHandleDelete(t *testing.T) {
	ctx := context.Background()
	w, st, m := seededWorker(t)
	_ = st.Add(ctx, sampleTx("tx-1"))
	_ = w.Handle(ctx, events.NewTransactionChangedMessage("tx-1", events.OpAdd))

	if err := w.Handle(ctx, events.NewTransactionChangedMessage("tx-1", events.OpDelete)); err != nil {
		t.Fatalf("handle delete: %v", err)
	}
	if len(m.Rows()) != 0 {
		t.Fatalf("row should be removed, got %+v", m.Rows())
	}

	// Deleting an unmirrored row is not an error.
	if err := w.Handle(ctx, events.NewTransactionChangedMessage("tx-1", events.OpDelete)); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
}

func TestHandleUnknownOp(t *testing.T) {
	w, _, _ := seededWorker(t)
	if err := w.Handle(context.Background(), events.NewTransactionChangedMessage("x", "rename")); err != nil {
		t.Fatalf("unknown op must be skipped, got %v", err)
	}
}
