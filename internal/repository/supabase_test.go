package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postgrestCall struct {
	method string
	path   string
	prefer string
	query  string
	body   map[string]any
}

// newTestSupabase поднимает фейковый PostgREST, отвечающий status и body на любой запрос
func newTestSupabase(t *testing.T, status int, body string) (*SupabaseRepository, *[]postgrestCall) {
	t.Helper()
	calls := &[]postgrestCall{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := postgrestCall{
			method: r.Method,
			path:   r.URL.Path,
			prefer: r.Header.Get("Prefer"),
			query:  r.URL.RawQuery,
		}
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &call.body)
		}
		*calls = append(*calls, call)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	r, err := NewSupabaseRepository(srv.URL, "key")
	require.NoError(t, err)
	return r, calls
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return buf
}

func TestSupabaseCreateExpense(t *testing.T) {
	r, calls := newTestSupabase(t, http.StatusCreated,
		`[{"id":7,"expense_name":"milk","amount":80,"category":"Grocery","date":"2026-01-17","logged_at":"2026-01-17T09:00:00+00:00"}]`)

	start := time.Now()
	e := milk()
	require.NoError(t, r.CreateExpense(context.Background(), e))

	assert.Equal(t, int64(7), e.ID)
	assert.False(t, e.LoggedAt.Before(start))

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, http.MethodPost, call.method)
	assert.Equal(t, "/rest/v1/expenses", call.path)
	assert.Contains(t, call.prefer, "return=representation")
	assert.Equal(t, "milk", call.body["expense_name"])
	assert.Equal(t, "80", call.body["amount"])
	assert.Equal(t, "Grocery", call.body["category"])
	assert.Equal(t, "2026-01-17", call.body["date"])
	assert.NotEmpty(t, call.body["logged_at"])
	assert.NotContains(t, call.body, "id", "id is assigned by the database")
}

func TestSupabaseCreateExpenseNoRows(t *testing.T) {
	logs := captureLogs(t)
	r, _ := newTestSupabase(t, http.StatusCreated, `[]`)

	e := milk()
	err := r.CreateExpense(context.Background(), e)
	assert.ErrorIs(t, err, ErrStorage)
	assert.Zero(t, e.ID)
	assert.Contains(t, logs.String(), "insert returned no rows")
}

func TestSupabaseCreateExpenseHTTPError(t *testing.T) {
	for _, status := range []int{http.StatusConflict, http.StatusInternalServerError} {
		logs := captureLogs(t)
		r, _ := newTestSupabase(t, status, `{"code":"23505","message":"dup","details":null,"hint":null}`)

		e := milk()
		err := r.CreateExpense(context.Background(), e)
		assert.ErrorIs(t, err, ErrStorage, "status %d", status)
		assert.Zero(t, e.ID)
		assert.Contains(t, logs.String(), "error inserting expense")
	}
}

func TestSupabaseGetExpense(t *testing.T) {
	r, calls := newTestSupabase(t, http.StatusOK,
		`[{"id":7,"expense_name":"milk","amount":80,"category":"Grocery","date":"2026-01-17","logged_at":"2026-01-17T09:00:00.5+00:00"}]`)

	got, err := r.GetExpense(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "milk", got.Name)
	assert.Equal(t, "80", got.Amount.String())
	assert.Equal(t, "2026-01-17", got.Date.Format("2006-01-02"))
	assert.True(t, got.LoggedAt.Equal(time.Date(2026, time.January, 17, 9, 0, 0, 500_000_000, time.UTC)))

	require.Len(t, *calls, 1)
	assert.Equal(t, http.MethodGet, (*calls)[0].method)
	assert.Contains(t, (*calls)[0].query, "id=eq.7")
}

func TestSupabaseGetExpenseNotFound(t *testing.T) {
	r, _ := newTestSupabase(t, http.StatusOK, `[]`)

	_, err := r.GetExpense(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSupabaseGetExpenseHTTPError(t *testing.T) {
	r, _ := newTestSupabase(t, http.StatusConflict, `{"code":"23505","message":"dup","details":null,"hint":null}`)

	_, err := r.GetExpense(context.Background(), 7)
	assert.ErrorIs(t, err, ErrStorage)
}
