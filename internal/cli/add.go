package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewAddCommand создает команду add: одно сообщение проходит конвейер без Telegram
func NewAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <message...>",
		Short: "Log one expense from the command line",
		Long: `Run a single message through the extraction pipeline and print the reply.

Example:
  expensebot add "cab fare 500 yesterday"
  expensebot add 80 on milk`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return addExpense(opts, cmd, strings.Join(args, " "))
		},
	}
}

func addExpense(opts *RootOptions, cmd *cobra.Command, query string) error {
	cfg, err := opts.LoadConfig(false)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	setupLogging(opts, cfg)

	repo, err := OpenRepository(cfg)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer closeRepository(repo)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result := NewTracker(cfg, repo).ProcessQuery(ctx, query)
	fmt.Fprintln(cmd.OutOrStdout(), result.Message)
	if !result.Success {
		return fmt.Errorf("%s error: %w", result.Kind, result.Err)
	}
	return nil
}
