package memory

import (
	"context"
	"testing"
	"time"

	"tally/internal/core"
	"tally/internal/store"
)

func tx(id string, amount float64) core.Transaction {
	return core.Transaction{
		ID:         id,
		Type:       core.Expense,
		Amount:     amount,
		CategoryID: "food",
		Date:       time.Date(2024, 12, 2, 0, 0, 0, 0, time.UTC),
		Source:     core.SourceManual,
	}
}

func TestAddGetDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.Add(ctx, tx("a", 10)); err != nil {
		t.Fatalf("add: %v", err)
	}
	got, err := s.Get(ctx, "a")
	if err != nil || got.Amount != 10 {
		t.Fatalf("get = %+v, %v", got, err)
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "a"); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "a"); err != store.ErrNotFound {
		t.Fatalf("double delete expected ErrNotFound, got %v", err)
	}
}

func TestAddRejectsInvalid(t *testing.T) {
	s := New()
	bad := tx("a", 10)
	bad.Amount = -1
	if err := s.Add(context.Background(), bad); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.Add(ctx, tx("a", 10)); err != nil {
		t.Fatalf("add: %v", err)
	}

	updated := tx("a", 25)
	if err := s.Update(ctx, updated); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.Get(ctx, "a")
	if got.Amount != 25 {
		t.Fatalf("amount = %v, want 25", got.Amount)
	}

	if err := s.Update(ctx, tx("missing", 5)); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.Add(ctx, tx("a", 10))
	_ = s.Add(ctx, tx("b", 20))

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap) != 2 || snap[0].ID != "a" || snap[1].ID != "b" {
		t.Fatalf("snapshot order broken: %+v", snap)
	}

	snap[0].Amount = 999
	got, _ := s.Get(ctx, "a")
	if got.Amount != 10 {
		t.Fatal("snapshot must not alias store data")
	}
}

func TestOnChange(t *testing.T) {
	ctx := context.Background()
	s := New()
	fired := 0
	s.OnChange(func() { fired++ })

	_ = s.Add(ctx, tx("a", 10))
	_ = s.Update(ctx, tx("a", 11))
	_ = s.Delete(ctx, "a")

	if fired != 3 {
		t.Fatalf("expected 3 notifications, got %d", fired)
	}
}
