package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	SourceManual TransactionSource = "manual"
	SourceVoice  TransactionSource = "voice"
	SourcePhoto  TransactionSource = "photo"
	SourceWeChat TransactionSource = "wechat"
	SourceAlipay TransactionSource = "alipay"
	SourceQR     TransactionSource = "qr"
)

type (
	TransactionType string

	TransactionSource string

	Transaction struct {
		ID          string
		Type        TransactionType
		Amount      float64 // currency units, always > 0
		CategoryID  string
		Description string
		Merchant    string
		Date        time.Time
		Source      TransactionSource
		Tags        []string
	}

	Category struct {
		ID    string
		Name  string
		Color string // presentation metadata, opaque to aggregation
		Icon  string
	}
)

var (
	ErrEmptyID         = errors.New("empty transaction id")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrZeroDate        = errors.New("date cannot be zero")
	ErrInvalidSource   = errors.New("invalid transaction source")
	ErrLongDescription = errors.New("description too long (max 200 characters)")
)

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (s TransactionSource) IsValid() bool {
	switch s {
	case SourceManual, SourceVoice, SourcePhoto, SourceWeChat, SourceAlipay, SourceQR:
		return true
	default:
		return false
	}
}

func (tx Transaction) Validate() error {
	if strings.TrimSpace(tx.ID) == "" {
		return ErrEmptyID
	}
	if !tx.Type.IsValid() {
		return ErrInvalidType
	}
	if tx.Amount <= 0 {
		return ErrInvalidAmount
	}
	if tx.Date.IsZero() {
		return ErrZeroDate
	}
	if len(tx.Description) > 200 {
		return ErrLongDescription
	}
	if tx.Source != "" && !tx.Source.IsValid() {
		return ErrInvalidSource
	}
	return nil
}

// Normalize fills optional fields with their defaults: the source tag falls
// back to manual and a zero date to the reference time.
func (tx Transaction) Normalize(now time.Time) Transaction {
	if tx.Source == "" {
		tx.Source = SourceManual
	}
	if tx.Date.IsZero() {
		tx.Date = now
	}
	return tx
}
