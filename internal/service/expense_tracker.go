package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ivanoskov/expensebot/internal/model"
)

const DefaultCurrencySymbol = "₹"

// Extractor извлекает поля расхода из текста пользователя
type Extractor interface {
	Extract(ctx context.Context, query string, today time.Time) (model.Candidate, error)
}

// Repository определяет интерфейс хранилища расходов
type Repository interface {
	CreateExpense(ctx context.Context, expense *model.Expense) error
}

// ExpenseTracker последовательно выполняет извлечение, нормализацию и сохранение расхода
type ExpenseTracker struct {
	extractor Extractor
	repo      Repository
	now       func() time.Time
	currency  string
}

type Option func(*ExpenseTracker)

// WithClock задаёт источник текущей даты для подсказки модели
func WithClock(now func() time.Time) Option {
	return func(s *ExpenseTracker) {
		if now != nil {
			s.now = now
		}
	}
}

func WithCurrency(symbol string) Option {
	return func(s *ExpenseTracker) {
		if symbol != "" {
			s.currency = symbol
		}
	}
}

// NewExpenseTracker создает новый экземпляр ExpenseTracker
func NewExpenseTracker(extractor Extractor, repo Repository, opts ...Option) *ExpenseTracker {
	s := &ExpenseTracker{
		extractor: extractor,
		repo:      repo,
		now:       time.Now,
		currency:  DefaultCurrencySymbol,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessQuery обрабатывает одно сообщение и всегда возвращает результат для ответа пользователю
func (s *ExpenseTracker) ProcessQuery(ctx context.Context, query string) (res Result) {
	requestID := uuid.NewString()
	log := slog.With("request_id", requestID)
	log.Info("processing query", "query", query)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("unexpected error: %v", r)
			log.Error("query processing panicked", "error", err)
			res = failure(requestID, ErrorKindUnknown, err)
		}
	}()

	candidate, err := s.extractor.Extract(ctx, query, s.now())
	if err != nil {
		log.Error("failed to extract expense", "error", err)
		return failure(requestID, ErrorKindExtraction, err)
	}
	log.Info("extracted data",
		"expense_name", candidate.Name,
		"amount", candidate.Amount.String(),
		"date", candidate.Date,
		"category", candidate.Category,
	)

	expense, err := Normalize(candidate)
	if err != nil {
		log.Error("failed to normalize expense", "error", err)
		return failure(requestID, ErrorKindNormalization, err)
	}

	if err := s.repo.CreateExpense(ctx, &expense); err != nil {
		log.Error("failed to store expense", "error", err)
		return Result{
			RequestID: requestID,
			Kind:      ErrorKindStorage,
			Message:   "❌ Failed to insert expense into database",
			Err:       err,
		}
	}
	log.Info("expense inserted successfully", "expense_id", expense.ID)

	return Result{
		RequestID: requestID,
		Success:   true,
		Kind:      ErrorKindNone,
		Expense:   &expense,
		Message:   s.confirmation(expense),
	}
}

func (s *ExpenseTracker) confirmation(e model.Expense) string {
	return fmt.Sprintf("✅ Added expense: %s - %s%s (%s)", e.Name, s.currency, FormatAmount(e.Amount), e.Category)
}

func failure(requestID string, kind ErrorKind, err error) Result {
	return Result{
		RequestID: requestID,
		Kind:      kind,
		Message:   fmt.Sprintf("❌ Error processing your request: %v", err),
		Err:       err,
	}
}

// FormatAmount печатает сумму минимум с одним знаком после точки: 80 -> "80.0"
func FormatAmount(d decimal.Decimal) string {
	s := d.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
