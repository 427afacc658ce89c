package migrate

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bizhub/internal/infrastructure/database"
	"bizhub/internal/infrastructure/migration"
	"bizhub/internal/interfaces/cli/bootstrap"
)

var steps int

// NewCommand manages the tenant directory schema. Tenant stores are migrated
// with "tenant migrate".
func NewCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Tenant directory migration tools",
		Long:  `Manage migrations of the shared tenant directory database.`,
	}

	cmd.AddCommand(
		newUpCommand(flags),
		newDownCommand(flags),
		newStatusCommand(flags),
	)

	return cmd
}

func newUpCommand(flags *bootstrap.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := bootstrap.Load(*flags)
			if err != nil {
				return err
			}
			defer env.Close()

			env.Log.Infow("running up migrations", "environment", flags.Env)
			result, err := migration.NewRunner(migration.SetDirectory, env.Log).Up(cmd.Context(), database.Get())
			if err != nil {
				env.Log.Errorw("migration failed", "error", err)
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "directory migrated from %d to %d (%d applied)\n",
				result.FromVersion, result.ToVersion, result.Applied)
			return nil
		},
	}
}

func newDownCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := bootstrap.Load(*flags)
			if err != nil {
				return err
			}
			defer env.Close()

			env.Log.Infow("running down migrations", "environment", flags.Env, "steps", steps)
			if err := migration.NewRunner(migration.SetDirectory, env.Log).Down(cmd.Context(), database.Get(), steps); err != nil {
				env.Log.Errorw("down migration failed", "error", err)
				return fmt.Errorf("down migration failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand(flags *bootstrap.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := bootstrap.Load(*flags)
			if err != nil {
				return err
			}
			defer env.Close()

			return printStatus(cmd.Context(), cmd.OutOrStdout(), migration.NewRunner(migration.SetDirectory, env.Log))
		},
	}
}

func printStatus(ctx context.Context, out io.Writer, runner *migration.Runner) error {
	db := database.Get()

	current, latest, err := runner.Version(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	list, err := runner.Status(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	fmt.Fprintf(out, "Current version: %d\nLatest version:  %d\n\n", current, latest)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tAPPLIED\tFILE")
	for _, s := range list {
		fmt.Fprintf(tw, "%d\t%t\t%s\n", s.Version, s.Applied, s.Path)
	}
	return tw.Flush()
}
