package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ivanoskov/expensebot/internal/bot"
	"github.com/ivanoskov/expensebot/internal/cli"
	"github.com/ivanoskov/expensebot/internal/config"
)

// Request структура входящего запроса от API Gateway
type Request struct {
	Body string `json:"body"`
}

// Response структура ответа для API Gateway
type Response struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// Handler обрабатывает одно webhook-обновление Telegram.
// В serverless-окружении лучше использовать Supabase: локальный файл SQLite не переживёт перезапуск.
func Handler(ctx context.Context, request Request) (*Response, error) {
	cfg, err := config.LoadConfig(true)
	if err != nil {
		return errorResponse(err)
	}

	repo, err := cli.OpenRepository(cfg)
	if err != nil {
		return errorResponse(err)
	}
	defer repo.Close()

	b, err := bot.NewBot(cfg.TelegramToken, cli.NewTracker(cfg, repo))
	if err != nil {
		return errorResponse(err)
	}

	return webhookResponse(b.HandleWebhook(ctx, []byte(request.Body)))
}

// webhookResponse отвечает 200, если обновление уже обработано: иначе Telegram
// повторит доставку и расход запишется второй раз
func webhookResponse(err error) (*Response, error) {
	if errors.Is(err, bot.ErrSend) {
		slog.Error("reply not delivered", "error", err)
		err = nil
	}
	if err != nil {
		return errorResponse(err)
	}

	return &Response{
		StatusCode: 200,
		Body:       "",
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

func errorResponse(err error) (*Response, error) {
	slog.Error("webhook handling failed", "error", err)
	return &Response{
		StatusCode: 500,
		Body:       err.Error(),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

func main() {
	// Точка входа для локального тестирования
}
