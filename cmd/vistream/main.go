package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vistream-inc/vistream/internal/interfaces/cli/migrate"
	"github.com/vistream-inc/vistream/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vistream",
		Short: "ViStream monetization service",
		Long:  `ViStream monetization service handling subscriptions, payments, revenue attribution, and creator payouts.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
