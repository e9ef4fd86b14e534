package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivanoskov/expensebot/internal/service"
)

const helpText = "👋 Welcome to ExpenseBot!\n\n" +
	"📝 Send expense messages like:\n" +
	"`Spent 250 on groceries today`\n" +
	"`80 on milk`\n" +
	"`cab fare 500 yesterday`\n\n" +
	"Commands:\n" +
	"/start - Show this help message\n" +
	"/help - Show this help message"

// ErrSend означает, что сообщение уже обработано, но ответ не доставлен
var ErrSend = errors.New("failed to send reply")

// Sender — часть Telegram API, через которую бот отправляет ответы
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// QueryProcessor обрабатывает текст расхода и возвращает ответ пользователю
type QueryProcessor interface {
	ProcessQuery(ctx context.Context, query string) service.Result
}

type Bot struct {
	api     *tgbotapi.BotAPI
	sender  Sender
	service QueryProcessor
}

func NewBot(token string, service QueryProcessor) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return &Bot{
		api:     api,
		sender:  api,
		service: service,
	}, nil
}

func (b *Bot) Username() string {
	if b.api == nil {
		return ""
	}
	return b.api.Self.UserName
}

// Start запускает бота в режиме long polling; сообщения обрабатываются по одному
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := b.handleUpdate(ctx, update); err != nil {
				// Логируем ошибку, но продолжаем работу
				slog.Error("error handling update", "update_id", update.UpdateID, "error", err)
			}
		}
	}
}

// HandleWebhook - точка входа для обработки входящих webhook-обновлений
func (b *Bot) HandleWebhook(ctx context.Context, body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("failed to decode update: %w", err)
	}

	return b.handleUpdate(ctx, update)
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	message := update.Message
	if message == nil || message.Text == "" {
		return nil
	}

	if isHelpCommand(message) {
		return b.handleHelp(message)
	}

	return b.handleMessage(ctx, message)
}

// isHelpCommand распознаёт /start и /help, в том числе без сущности bot_command
func isHelpCommand(message *tgbotapi.Message) bool {
	switch message.Command() {
	case "start", "help":
		return true
	}
	switch strings.TrimSpace(message.Text) {
	case "/start", "/help":
		return true
	}
	return false
}

func (b *Bot) handleHelp(message *tgbotapi.Message) error {
	msg := tgbotapi.NewMessage(message.Chat.ID, helpText)
	msg.ReplyToMessageID = message.MessageID
	msg.ReplyMarkup = b.getMainKeyboard()
	return b.send(msg)
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	var username string
	if message.From != nil {
		username = message.From.UserName
	}
	slog.Info("received message", "chat_id", message.Chat.ID, "username", username, "text", message.Text)

	result := b.service.ProcessQuery(ctx, message.Text)

	msg := tgbotapi.NewMessage(message.Chat.ID, result.Message)
	msg.ReplyToMessageID = message.MessageID
	return b.send(msg)
}

func (b *Bot) send(msg tgbotapi.MessageConfig) error {
	if _, err := b.sender.Send(msg); err != nil {
		return fmt.Errorf("%w to chat %d: %w", ErrSend, msg.ChatID, err)
	}
	return nil
}
