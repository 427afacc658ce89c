package session

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bizhub/internal/interfaces/cli/bootstrap"
)

var timeout time.Duration

func NewCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session maintenance",
	}

	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Log out idle sessions in every active tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.NewApp(*flags)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			count, err := app.Container.CleanupJob().Execute(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d idle session(s) logged out\n", count)
			return nil
		},
	}
	cleanup.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "Give up after this long")

	cmd.AddCommand(cleanup)
	return cmd
}
