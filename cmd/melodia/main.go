package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/melodia-inc/melodia/internal/interfaces/cli/expire"
	"github.com/melodia-inc/melodia/internal/interfaces/cli/migrate"
	"github.com/melodia-inc/melodia/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "melodia",
		Short: "Melodia - music streaming billing service",
		Long:  `Melodia billing service handles subscription tiers, payment gateway integration and premium entitlement for the streaming platform.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		expire.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
