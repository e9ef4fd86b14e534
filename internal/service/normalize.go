package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ivanoskov/expensebot/internal/model"
)

var (
	ErrInvalidDate    = errors.New("date is not in DD/MM/YYYY format")
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrEmptyName      = errors.New("expense name is empty")
)

// parseLayoutDMY принимает и "7/1/2026", и "07/01/2026"
const parseLayoutDMY = "2/1/2006"

// ParseDMY разбирает дату в формате день/месяц/год
func ParseDMY(s string) (time.Time, error) {
	t, err := time.Parse(parseLayoutDMY, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", ErrInvalidDate, s, err)
	}
	return t, nil
}

func FormatDMY(t time.Time) string {
	return t.Format(model.DateLayoutDMY)
}

func FormatISODate(t time.Time) string {
	return t.Format(model.DateLayoutISO)
}

// Normalize проверяет извлечённые поля и приводит их к виду для хранения.
// Неизвестная категория заменяется на Other.
func Normalize(c model.Candidate) (model.Expense, error) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return model.Expense{}, ErrEmptyName
	}

	if c.Amount.IsNegative() {
		return model.Expense{}, fmt.Errorf("%w: %s", ErrNegativeAmount, c.Amount)
	}

	date, err := ParseDMY(c.Date)
	if err != nil {
		return model.Expense{}, err
	}

	category, ok := model.ParseCategory(c.Category)
	if !ok {
		slog.Warn("unknown category, falling back to Other", "category", c.Category)
		category = model.CategoryOther
	}

	return model.Expense{
		Name:     name,
		Amount:   c.Amount,
		Category: category,
		Date:     date,
	}, nil
}
