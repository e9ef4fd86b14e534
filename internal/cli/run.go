package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ivanoskov/expensebot/internal/bot"
)

// NewRunCommand создает команду run
func NewRunCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the Telegram bot (long polling)",
		Long: `Start the bot. Every text message is turned into an expense record;
/start and /help show the usage message.

Example:
  TELEGRAM_TOKEN=... MISTRAL_API_KEY=... expensebot run`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(opts, cmd)
		},
	}
}

func runBot(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := opts.LoadConfig(true)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	setupLogging(opts, cfg)

	repo, err := OpenRepository(cfg)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer closeRepository(repo)

	b, err := bot.NewBot(cfg.TelegramToken, NewTracker(cfg, repo))
	if err != nil {
		return fmt.Errorf("failed to connect to telegram: %w", err)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("bot starting", "username", b.Username(), "model", cfg.MistralModel)
	fmt.Fprintln(cmd.OutOrStdout(), "🤖 ExpenseBot is running...")

	if err := b.Start(ctx); err != nil {
		return fmt.Errorf("bot stopped: %w", err)
	}

	slog.Info("bot stopped gracefully")
	return nil
}
