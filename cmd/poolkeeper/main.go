package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orris-inc/poolkeeper/internal/interfaces/cli/migrate"
	"github.com/orris-inc/poolkeeper/internal/interfaces/cli/seed"
	"github.com/orris-inc/poolkeeper/internal/interfaces/cli/server"
	"github.com/orris-inc/poolkeeper/internal/interfaces/cli/worker"
	"github.com/orris-inc/poolkeeper/internal/shared/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "poolkeeper",
		Short:        "Poolkeeper - subscription pools and entitlements",
		Long:         `Poolkeeper turns owner subscriptions into consumable pools and hands out entitlements to registered consumers.`,
		Version:      version.String(),
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		worker.NewCommand(),
		migrate.NewCommand(),
		seed.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
