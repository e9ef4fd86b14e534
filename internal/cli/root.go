package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ivanoskov/expensebot/internal/config"
	"github.com/ivanoskov/expensebot/internal/extractor"
	"github.com/ivanoskov/expensebot/internal/repository"
	"github.com/ivanoskov/expensebot/internal/service"
)

// RootOptions хранит глобальные флаги всех команд
type RootOptions struct {
	Verbose bool

	// LoadConfig можно подменить в тестах
	LoadConfig func(requireTelegram bool) (*config.Config, error)
}

// NewRootCommand создает корневую команду expensebot
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{LoadConfig: config.LoadConfig}

	cmd := &cobra.Command{
		Use:   "expensebot",
		Short: "Telegram bot that logs expenses from free-text messages",
		Long: `ExpenseBot turns messages like "cab fare 500 yesterday" into expense
records using a Mistral model and stores them in SQLite (or Supabase).`,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))

	return cmd
}

func setupLogging(opts *RootOptions, cfg *config.Config) {
	level := cfg.LogLevel
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// OpenRepository открывает хранилище, выбранное конфигурацией
func OpenRepository(cfg *config.Config) (repository.Repository, error) {
	if cfg.UseSupabase() {
		slog.Info("using supabase storage", "url", cfg.SupabaseURL)
		repo, err := repository.NewSupabaseRepository(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			return nil, err
		}
		return repo, nil
	}

	slog.Info("opening database", "path", cfg.SQLiteFile)
	repo, err := repository.OpenSQLite(cfg.SQLiteFile)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// NewTracker собирает конвейер обработки сообщений поверх хранилища
func NewTracker(cfg *config.Config, repo repository.Repository) *service.ExpenseTracker {
	client := extractor.NewMistralClient(cfg.MistralAPIKey,
		extractor.WithModel(cfg.MistralModel),
		extractor.WithBaseURL(cfg.MistralBaseURL),
		extractor.WithTimeout(cfg.MistralTimeout),
	)
	return service.NewExpenseTracker(extractor.New(client), repo, service.WithCurrency(cfg.CurrencySymbol))
}

func closeRepository(repo repository.Repository) {
	if err := repo.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}
