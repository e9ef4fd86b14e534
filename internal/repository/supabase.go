package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/supabase-community/supabase-go"

	"github.com/ivanoskov/expensebot/internal/model"
)

const expensesTable = "expenses"

// SupabaseRepository хранит расходы в таблице expenses проекта Supabase
type SupabaseRepository struct {
	client *supabase.Client
	now    func() time.Time
}

type supabaseExpense struct {
	ID       int64           `json:"id,omitempty"`
	Name     string          `json:"expense_name"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Date     string          `json:"date"`
	LoggedAt string          `json:"logged_at"`
}

func NewSupabaseRepository(url, key string) (*SupabaseRepository, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, err
	}

	return &SupabaseRepository{
		client: client,
		now:    time.Now,
	}, nil
}

func (r *SupabaseRepository) Close() error {
	return nil
}

func (r *SupabaseRepository) CreateExpense(ctx context.Context, expense *model.Expense) error {
	loggedAt := r.now().UTC()
	row := supabaseExpense{
		Name:     expense.Name,
		Amount:   expense.Amount,
		Category: expense.Category.String(),
		Date:     expense.Date.Format(model.DateLayoutISO),
		LoggedAt: loggedAt.Format(time.RFC3339Nano),
	}

	data, _, err := r.client.From(expensesTable).Insert(row, false, "", "representation", "").Execute()
	if err != nil {
		slog.Error("error inserting expense", "table", expensesTable, "error", err)
		return fmt.Errorf("%w: failed to insert expense: %w", ErrStorage, err)
	}

	// Парсим ответ для получения ID
	var created []supabaseExpense
	if err := json.Unmarshal(data, &created); err != nil {
		slog.Error("error parsing inserted expense", "table", expensesTable, "error", err)
		return fmt.Errorf("%w: failed to parse created expense: %w", ErrStorage, err)
	}
	if len(created) == 0 {
		slog.Error("insert returned no rows", "table", expensesTable)
		return fmt.Errorf("%w: insert returned no rows", ErrStorage)
	}

	expense.ID = created[0].ID
	expense.LoggedAt = loggedAt
	return nil
}

func (r *SupabaseRepository) GetExpense(ctx context.Context, id int64) (*model.Expense, error) {
	data, _, err := r.client.From(expensesTable).
		Select("*", "", false).
		Eq("id", strconv.FormatInt(id, 10)).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get expense: %w", ErrStorage, err)
	}

	var rows []supabaseExpense
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: failed to parse expense: %w", ErrStorage, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	return rows[0].toModel()
}

func (r *SupabaseRepository) CountExpenses(ctx context.Context) (int64, error) {
	_, count, err := r.client.From(expensesTable).
		Select("id", "exact", true).
		Execute()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count expenses: %w", ErrStorage, err)
	}
	return count, nil
}

func (s supabaseExpense) toModel() (*model.Expense, error) {
	date, err := time.Parse(model.DateLayoutISO, s.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: bad date in row %d: %w", ErrStorage, s.ID, err)
	}
	loggedAt, err := time.Parse(time.RFC3339Nano, s.LoggedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: bad logged_at in row %d: %w", ErrStorage, s.ID, err)
	}
	return &model.Expense{
		ID:       s.ID,
		Name:     s.Name,
		Amount:   s.Amount,
		Category: model.Category(s.Category),
		Date:     date,
		LoggedAt: loggedAt,
	}, nil
}
