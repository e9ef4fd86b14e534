package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ivanoskov/expensebot/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteRepository хранит расходы в файле SQLite.
// Соединение открывается один раз на всё время работы процесса.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite открывает (или создаёт) базу и применяет схему
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite допускает одного писателя
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CreateExpense добавляет одну строку; ID и LoggedAt записываются обратно в expense
func (r *SQLiteRepository) CreateExpense(ctx context.Context, expense *model.Expense) error {
	loggedAt := r.now().UTC()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (expense_name, amount, category, date, logged_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		expense.Name,
		expense.Amount.InexactFloat64(),
		expense.Category.String(),
		expense.Date.Format(model.DateLayoutISO),
		loggedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		slog.Error("error inserting expense", "table", "expenses", "error", err)
		return fmt.Errorf("%w: failed to insert expense: %w", ErrStorage, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		slog.Error("error reading inserted expense id", "table", "expenses", "error", err)
		return fmt.Errorf("%w: failed to read expense id: %w", ErrStorage, err)
	}

	expense.ID = id
	expense.LoggedAt = loggedAt
	return nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (*model.Expense, error) {
	var (
		e                    model.Expense
		category, date, when string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, expense_name, amount, category, date, logged_at
		FROM expenses
		WHERE id = ?
	`, id).Scan(&e.ID, &e.Name, &e.Amount, &category, &date, &when)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get expense: %w", ErrStorage, err)
	}

	e.Category = model.Category(category)
	if e.Date, err = time.Parse(model.DateLayoutISO, date); err != nil {
		return nil, fmt.Errorf("%w: bad date in row %d: %w", ErrStorage, id, err)
	}
	if e.LoggedAt, err = time.Parse(time.RFC3339Nano, when); err != nil {
		return nil, fmt.Errorf("%w: bad logged_at in row %d: %w", ErrStorage, id, err)
	}
	return &e, nil
}

func (r *SQLiteRepository) CountExpenses(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: failed to count expenses: %w", ErrStorage, err)
	}
	return n, nil
}
