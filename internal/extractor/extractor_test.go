package extractor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

var today = time.Date(2026, time.January, 17, 10, 30, 0, 0, time.UTC)

func TestExtractMilk(t *testing.T) {
	fc := &fakeCompleter{response: `{"expense_name": "milk", "amount": 80.0, "date": "17/01/2026", "category": "Grocery"}`}

	got, err := New(fc).Extract(context.Background(), "80 on milk", today)
	require.NoError(t, err)

	assert.Equal(t, "milk", got.Name)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(80)), "amount = %s", got.Amount)
	assert.Equal(t, "17/01/2026", got.Date)
	assert.Equal(t, "Grocery", got.Category)

	require.Len(t, fc.prompts, 1)
	assert.Contains(t, fc.prompts[0], `User Query: "80 on milk"`)
	assert.Contains(t, fc.prompts[0], "Today's date: 17/01/2026")
	assert.Contains(t, fc.prompts[0], "Food, Grocery, Travel, Entertainment, Utilities, Healthcare, Education, Other")
}

func TestExtractFencedResponseParsesIdentically(t *testing.T) {
	body := `{"expense_name": "cab fare", "amount": 500, "date": "16/01/2026", "category": "Travel"}`

	plain, err := New(&fakeCompleter{response: body}).Extract(context.Background(), "cab fare 500 yesterday", today)
	require.NoError(t, err)

	for _, fenced := range []string{
		"```json\n" + body + "\n```",
		"```\n" + body + "\n```",
		"  ```JSON" + body + "```  ",
	} {
		got, err := New(&fakeCompleter{response: fenced}).Extract(context.Background(), "cab fare 500 yesterday", today)
		require.NoError(t, err)
		assert.Equal(t, plain.Name, got.Name)
		assert.Equal(t, plain.Date, got.Date)
		assert.Equal(t, plain.Category, got.Category)
		assert.True(t, plain.Amount.Equal(got.Amount))
	}
}

func TestExtractAmountAsString(t *testing.T) {
	fc := &fakeCompleter{response: `{"expense_name": "tea", "amount": "12.50", "date": "17/01/2026", "category": "Food"}`}

	got, err := New(fc).Extract(context.Background(), "tea 12.50", today)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("12.5")))
}

func TestExtractCompletionError(t *testing.T) {
	transportErr := errors.New("connection reset by peer")
	fc := &fakeCompleter{err: transportErr}

	_, err := New(fc).Extract(context.Background(), "80 on milk", today)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCompletion)
	assert.ErrorIs(t, err, transportErr)
}

func TestExtractEmptyQuery(t *testing.T) {
	fc := &fakeCompleter{}

	_, err := New(fc).Extract(context.Background(), "   ", today)
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Empty(t, fc.prompts, "model must not be called")
}

func TestParseCandidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
		detail  string
	}{
		{"prose", "Sure! Here is the expense.", ErrInvalidJSON, ""},
		{"truncated", `{"expense_name": "milk"`, ErrInvalidJSON, ""},
		{"array", `[1, 2]`, ErrInvalidJSON, ""},
		{"bad amount", `{"expense_name":"x","amount":"lots","date":"17/01/2026","category":"Food"}`, ErrInvalidJSON, ""},
		{"missing date", `{"expense_name":"x","amount":1,"category":"Food"}`, ErrMissingField, "date"},
		{"null category", `{"expense_name":"x","amount":1,"date":"17/01/2026","category":null}`, ErrMissingField, "category"},
		{"empty object", `{}`, ErrMissingField, "expense_name, amount, date, category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCandidate(tt.text)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.detail != "" {
				assert.Contains(t, err.Error(), tt.detail)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences(`{"a":1}`))
	assert.Equal(t, "", StripCodeFences("```\n```"))
}
