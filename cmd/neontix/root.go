package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"neontix/internal/shared/config"
	"neontix/pkg/logger"
)

var Version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "neontix",
		Short:        "Neontix operator CLI",
		Long:         `Preview seat charts, migrate the schema and load the sample catalog from the terminal.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newVersionCmd(),
		newSeatMapCmd(),
		newMigrateCmd(),
		newSeedCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of the Neontix CLI",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "neontix %s\n", Version)
		},
	}
}

// loadConfig reads .env when present and installs the configured logger
func loadConfig(cmd *cobra.Command) *config.Config {
	_ = godotenv.Load()
	cfg := config.Load()
	logger.SetDefault(logger.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel))
	return cfg
}
