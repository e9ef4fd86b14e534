package repository

import (
	"context"
	"errors"

	"github.com/ivanoskov/expensebot/internal/model"
)

var (
	ErrStorage  = errors.New("storage error")
	ErrNotFound = errors.New("expense not found")
)

// Repository — единственная таблица расходов. ID и logged_at назначает хранилище.
// Конвейер только добавляет записи; GetExpense и CountExpenses нужны для проверки
// сохранённого (тесты, отладка), бот их не вызывает.
type Repository interface {
	CreateExpense(ctx context.Context, expense *model.Expense) error
	GetExpense(ctx context.Context, id int64) (*model.Expense, error)
	CountExpenses(ctx context.Context) (int64, error)
	Close() error
}

var (
	_ Repository = (*SQLiteRepository)(nil)
	_ Repository = (*SupabaseRepository)(nil)
)
