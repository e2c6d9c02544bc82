package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"tally/internal/core"
	"tally/internal/store"

	_ "modernc.org/sqlite"
)

// Repository is the SQLite-backed transaction store. Amounts are persisted
// as integer cents so sums stay exact.
type Repository struct {
	db *sql.DB

	mu        sync.Mutex
	listeners []func()
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) Add(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	tags, err := json.Marshal(tx.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, type, amount_cents, category_id, description, merchant, date, source, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, string(tx.Type), core.Cents(tx.Amount), tx.CategoryID,
		tx.Description, tx.Merchant, tx.Date.UTC(), string(tx.Source), string(tags))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"type", tx.Type,
		"amount_cents", core.Cents(tx.Amount),
		"category_id", tx.CategoryID)

	r.notify()
	return nil
}

func (r *Repository) Update(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	tags, err := json.Marshal(tx.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET type = ?, amount_cents = ?, category_id = ?, description = ?, merchant = ?, date = ?, source = ?, tags = ?
		WHERE id = ?`,
		string(tx.Type), core.Cents(tx.Amount), tx.CategoryID, tx.Description,
		tx.Merchant, tx.Date.UTC(), string(tx.Source), string(tags), tx.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}

	r.notify()
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	r.notify()
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, type, amount_cents, category_id, description, merchant, date, source, tags
		FROM transactions WHERE id = ?`, id)

	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// Snapshot reads all transactions inside a single read transaction, ordered
// by insertion time, so a report observes a consistent point-in-time view.
func (r *Repository) Snapshot(ctx context.Context) ([]core.Transaction, error) {
	dbTx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin snapshot: %w", err)
	}
	defer dbTx.Rollback()

	rows, err := dbTx.QueryContext(ctx, `
		SELECT id, type, amount_cents, category_id, description, merchant, date, source, tags
		FROM transactions ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// OnChange registers fn to run after every committed mutation.
func (r *Repository) OnChange(fn func()) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

func (r *Repository) notify() {
	r.mu.Lock()
	listeners := append(([]func())(nil), r.listeners...)
	r.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx       core.Transaction
		txType   string
		cents    int64
		source   string
		tagsJSON string
		date     time.Time
	)
	err := row.Scan(&tx.ID, &txType, &cents, &tx.CategoryID,
		&tx.Description, &tx.Merchant, &date, &source, &tagsJSON)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Type = core.TransactionType(txType)
	tx.Amount = core.FromCents(cents)
	tx.Date = date
	tx.Source = core.TransactionSource(source)
	if err := json.Unmarshal([]byte(tagsJSON), &tx.Tags); err != nil {
		return core.Transaction{}, fmt.Errorf("unmarshal tags: %w", err)
	}
	return tx, nil
}
