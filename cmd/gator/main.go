package main

import (
	"os"

	"github.com/spf13/cobra"
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gator",
		Short: "Approval-gated tool action lifecycle manager",
		Long: `gator turns natural-language requests into tool action proposals,
executes the low-risk ones and gates the rest behind explicit approval.

Quick start:
  gator serve --db gator.db                 # HTTP gateway on :8080
  gator ask --db gator.db "restart the database"
  gator approve --db gator.db <action-id>`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().String("db", "", "sqlite database path; in-memory store when empty")
	cmd.PersistentFlags().String("journal", "", "event journal URL (file:///var/log/gator, mem://events)")
	cmd.AddCommand(serveCmd())
	cmd.AddCommand(askCmd())
	cmd.AddCommand(approveCmd())
	cmd.AddCommand(actionsCmd())
	return cmd
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
