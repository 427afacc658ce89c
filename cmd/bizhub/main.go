package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bizhub/internal/interfaces/cli/bootstrap"
	"bizhub/internal/interfaces/cli/migrate"
	"bizhub/internal/interfaces/cli/server"
	"bizhub/internal/interfaces/cli/session"
	"bizhub/internal/interfaces/cli/tenant"
	"bizhub/internal/interfaces/cli/user"
	"bizhub/internal/shared/constants"
)

func main() {
	flags := &bootstrap.Flags{}

	rootCmd := &cobra.Command{
		Use:           "bizhub",
		Short:         "BizHub - multi-tenant business platform",
		Long:          `BizHub serves many tenants from one process, each with its own isolated data store.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if envVar := os.Getenv("ENV"); envVar != "" && !cmd.Flags().Changed("env") {
				flags.Env = envVar
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.Env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")
	rootCmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	rootCmd.AddCommand(
		server.NewCommand(flags),
		migrate.NewCommand(flags),
		tenant.NewCommand(flags),
		user.NewCommand(flags),
		session.NewCommand(flags),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
