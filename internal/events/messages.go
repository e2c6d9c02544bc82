package events

import (
	"encoding/json"
	"time"

	"tally/internal/budget"
)

const (
	OpAdd    = "add"
	OpUpdate = "update"
	OpDelete = "delete"
)

// TransactionChangedMessage announces a store mutation. It carries only the
// id and operation; consumers fetch the full transaction from the store.
type TransactionChangedMessage struct {
	ID        string    `json:"id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionChangedMessage(id, op string) *TransactionChangedMessage {
	return &TransactionChangedMessage{ID: id, Op: op, Timestamp: time.Now()}
}

func (m *TransactionChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionChangedMessageFromJSON(data []byte) (*TransactionChangedMessage, error) {
	var msg TransactionChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// BudgetAlertMessage is the wire form of a budget alert event.
type BudgetAlertMessage struct {
	Scope       string    `json:"scope"`
	Level       string    `json:"level"`
	Message     string    `json:"message"`
	PercentUsed int       `json:"percentUsed"`
	AmountSpent float64   `json:"amountSpent"`
	FiredAt     time.Time `json:"firedAt"`
}

func NewBudgetAlertMessage(a budget.Alert) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		Scope:       a.Scope,
		Level:       string(a.Level),
		Message:     a.Message,
		PercentUsed: a.PercentUsed,
		AmountSpent: a.AmountSpent,
		FiredAt:     a.FiredAt,
	}
}

func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
