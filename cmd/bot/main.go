package main

import (
	"fmt"
	"os"

	"github.com/ivanoskov/expensebot/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	// без подкоманды запускаем бота, как раньше
	if len(os.Args) == 1 {
		cmd.SetArgs([]string{"run"})
	}

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
