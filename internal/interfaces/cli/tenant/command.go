package tenant

import (
	"fmt"

	"github.com/spf13/cobra"

	tenantUsecases "bizhub/internal/application/tenant/usecases"
	"bizhub/internal/domain/tenant"
	"bizhub/internal/interfaces/cli/bootstrap"
)

var (
	name         string
	databaseName string
	migrateAll   bool
	statusFilter string
	output       string
	confirm      bool
)

// NewCommand provisions and administers tenants. Changes are published so
// running servers drop cached directory rows and store handles.
func NewCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants and their stores",
	}

	cmd.AddCommand(
		newCreateCommand(flags),
		newDropCommand(flags),
		newMigrateCommand(flags),
		newStatusCommand(flags, "activate", tenant.StatusActive),
		newStatusCommand(flags, "deactivate", tenant.StatusInactive),
		newStatusCommand(flags, "suspend", tenant.StatusSuspended),
		newListCommand(flags),
	)

	return cmd
}

func newCreateCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <subdomain>",
		Short: "Provision a tenant store and activate the tenant",
		Long: `Insert the directory row, create and migrate the tenant's store, verify it
and activate the tenant. Rerunning after a failure resumes the same tenant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.NewApp(*flags)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := withTimeout(cmd, app.Config.TenantStore.ProvisionTimeout())
			defer cancel()

			tenantName := name
			if tenantName == "" {
				tenantName = args[0]
			}
			result, err := app.Container.TenantAdmin().Provision.Execute(ctx, tenantUsecases.ProvisionTenantCommand{
				Name:         tenantName,
				Subdomain:    args[0],
				DatabaseName: databaseName,
			})
			if err != nil {
				return err
			}

			verb := "created"
			if result.Resumed {
				verb = "resumed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tenant %s %s (id %d, store %s, schema version %d)\n",
				result.Tenant.Subdomain, verb, result.Tenant.ID, result.Tenant.DatabaseName, result.Migration.ToVersion)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (defaults to the subdomain)")
	cmd.Flags().StringVar(&databaseName, "database", "", "Store name (defaults to the configured prefix plus the subdomain)")

	return cmd
}

func newDropCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drop <subdomain>",
		Short: "Drop a tenant's store and deactivate the tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("dropping %s destroys its data; rerun with --yes", args[0])
			}

			app, err := bootstrap.NewApp(*flags)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := withTimeout(cmd, app.Config.TenantStore.ProvisionTimeout())
			defer cancel()

			t, err := app.Container.TenantAdmin().Drop.Execute(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tenant %s dropped (store %s), status %s\n", t.Subdomain, t.DatabaseName, t.Status)
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm the drop")

	return cmd
}

func newMigrateCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate [subdomain]",
		Short: "Apply pending tenant store migrations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if migrateAll == (len(args) == 1) {
				return fmt.Errorf("pass either a subdomain or --all")
			}

			app, err := bootstrap.NewApp(*flags)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := withTimeout(cmd, app.Config.TenantStore.ProvisionTimeout())
			defer cancel()

			uc := app.Container.TenantAdmin().Migrate
			if !migrateAll {
				res, err := uc.Execute(ctx, args[0])
				if err != nil {
					return err
				}
				writeMigrateResults(cmd.OutOrStdout(), []*tenantUsecases.MigrateTenantResult{res})
				return nil
			}

			results, err := uc.ExecuteAll(ctx)
			writeMigrateResults(cmd.OutOrStdout(), results)
			if err != nil {
				return err
			}
			for _, r := range results {
				if r.Err != nil {
					return fmt.Errorf("one or more tenant migrations failed")
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&migrateAll, "all", false, "Migrate every active tenant")

	return cmd
}

func newStatusCommand(flags *bootstrap.Flags, use string, status tenant.Status) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <subdomain>",
		Short: fmt.Sprintf("Set a tenant's status to %s", status),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.NewApp(*flags)
			if err != nil {
				return err
			}
			defer app.Close()

			t, err := app.Container.TenantAdmin().SetStatus.Execute(cmd.Context(), args[0], status)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tenant %s is %s\n", t.Subdomain, t.Status)
			return nil
		},
	}
}

func newListCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tenants",
		RunE: func(cmd *cobra.Command, args []string) error {
			var status tenant.Status
			if statusFilter != "" {
				s, err := tenant.ParseStatus(statusFilter)
				if err != nil {
					return err
				}
				status = s
			}

			app, err := bootstrap.NewApp(*flags)
			if err != nil {
				return err
			}
			defer app.Close()

			tenants, err := app.Container.TenantAdmin().List.Execute(cmd.Context(), status)
			if err != nil {
				return err
			}
			return writeTenants(cmd.OutOrStdout(), output, tenants)
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Only tenants with this status (active, inactive, suspended)")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, yaml or json")

	return cmd
}
