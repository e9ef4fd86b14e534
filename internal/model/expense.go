package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DateLayoutDMY — формат даты в тексте пользователя и ответе модели
	DateLayoutDMY = "02/01/2006"
	// DateLayoutISO — формат даты в хранилище
	DateLayoutISO = "2006-01-02"
)

// Expense — сохранённая запись о расходе
type Expense struct {
	ID       int64           `json:"id,omitempty"`
	Name     string          `json:"expense_name"`
	Amount   decimal.Decimal `json:"amount"`
	Category Category        `json:"category"`
	Date     time.Time       `json:"date"`
	LoggedAt time.Time       `json:"logged_at"`
}

// Candidate — поля, извлечённые моделью из сообщения, до нормализации
type Candidate struct {
	Name     string          `json:"expense_name"`
	Amount   decimal.Decimal `json:"amount"`
	Date     string          `json:"date"`
	Category string          `json:"category"`
}
