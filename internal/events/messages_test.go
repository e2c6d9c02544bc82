package events

import (
	"testing"
	"time"

	"tally/internal/budget"
)

func TestTransactionChangedMessageRoundTrip(t *testing.T) {
	msg := NewTransactionChangedMessage("tx-1", OpAdd)
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := TransactionChangedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != "tx-1" || got.Op != OpAdd {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestTransactionChangedMessageRejectsGarbage(t *testing.T) {
	if _, err := TransactionChangedMessageFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestBudgetAlertMessageFromAlert(t *testing.T) {
	fired := time.Date(2024, 12, 15, 12, 0, 0, 0, time.UTC)
	msg := NewBudgetAlertMessage(budget.Alert{
		Scope:       "food",
		Level:       budget.LevelWarning,
		Message:     "预算使用已达 90%",
		PercentUsed: 90,
		AmountSpent: 900,
		FiredAt:     fired,
	})
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := BudgetAlertMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Scope != "food" || got.Level != "warning" || got.PercentUsed != 90 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.FiredAt.Equal(fired) {
		t.Fatalf("fired at = %v", got.FiredAt)
	}
}
