// Package extractor извлекает поля расхода из свободного текста с помощью языковой модели.
package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ivanoskov/expensebot/internal/model"
)

var (
	ErrEmptyQuery   = errors.New("empty query")
	ErrCompletion   = errors.New("completion failed")
	ErrInvalidJSON  = errors.New("model response is not valid JSON")
	ErrMissingField = errors.New("model response is missing a required field")
)

const promptTemplate = `
Extract expense information from the user query and return a JSON object.

User Query: %q
Today's date: %s

Extract and return the following fields in JSON format:
- expense_name (str): Name of the expense
- amount (float): Amount spent
- date (str): Date in DD/MM/YYYY format (use today's date if not mentioned)
- category (str): Assign one category from: %s

Return ONLY valid JSON, no additional text.
Example output:
{"expense_name": "milk", "amount": 80.0, "date": "17/01/2026", "category": "Grocery"}
`

// rawCandidate — ответ модели как есть; nil означает отсутствующее поле
type rawCandidate struct {
	Name     *string          `json:"expense_name"`
	Amount   *decimal.Decimal `json:"amount"`
	Date     *string          `json:"date"`
	Category *string          `json:"category"`
}

type Extractor struct {
	completer Completer
}

func New(completer Completer) *Extractor {
	return &Extractor{completer: completer}
}

// BuildPrompt формирует инструкцию для модели
func BuildPrompt(query string, today time.Time) string {
	names := make([]string, 0, len(model.Categories()))
	for _, c := range model.Categories() {
		names = append(names, c.String())
	}
	return fmt.Sprintf(promptTemplate, query, today.Format(model.DateLayoutDMY), strings.Join(names, ", "))
}

// Extract отправляет сообщение модели и разбирает её ответ в Candidate
func (e *Extractor) Extract(ctx context.Context, query string, today time.Time) (model.Candidate, error) {
	if strings.TrimSpace(query) == "" {
		return model.Candidate{}, ErrEmptyQuery
	}

	text, err := e.completer.Complete(ctx, BuildPrompt(query, today))
	if err != nil {
		return model.Candidate{}, fmt.Errorf("%w: %w", ErrCompletion, err)
	}
	slog.Debug("model response received", "text", text)

	return ParseCandidate(text)
}

// StripCodeFences убирает markdown-обёртку ``` вокруг JSON
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```JSON", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// ParseCandidate разбирает текст ответа модели; все четыре поля обязательны
func ParseCandidate(text string) (model.Candidate, error) {
	var raw rawCandidate
	if err := json.Unmarshal([]byte(StripCodeFences(text)), &raw); err != nil {
		return model.Candidate{}, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}

	var missing []string
	if raw.Name == nil {
		missing = append(missing, "expense_name")
	}
	if raw.Amount == nil {
		missing = append(missing, "amount")
	}
	if raw.Date == nil {
		missing = append(missing, "date")
	}
	if raw.Category == nil {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return model.Candidate{}, fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}

	return model.Candidate{
		Name:     *raw.Name,
		Amount:   *raw.Amount,
		Date:     *raw.Date,
		Category: *raw.Category,
	}, nil
}
