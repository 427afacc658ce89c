package user

import (
	"fmt"

	"github.com/spf13/cobra"

	userUsecases "bizhub/internal/application/user/usecases"
	"bizhub/internal/infrastructure/tenancy"
	"bizhub/internal/interfaces/cli/bootstrap"
)

var (
	tenantKey string
	email     string
	name      string
	password  string
	role      string
)

func NewCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users inside a tenant store",
	}

	cmd.AddCommand(newAddCommand(flags))

	return cmd
}

func newAddCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a login account in one tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.NewApp(*flags)
			if err != nil {
				return err
			}
			defer app.Close()

			admin := app.Container.TenantAdmin()
			tc, err := admin.Resolve.Execute(cmd.Context(), tenantKey)
			if err != nil {
				return fmt.Errorf("tenant %s: %w", tenantKey, err)
			}
			defer tc.Release()

			u, err := admin.AddUser.Execute(tenancy.NewContext(cmd.Context(), tc), userUsecases.CreateUserCommand{
				Email:    email,
				Name:     name,
				Password: password,
				Role:     role,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "user %s (%s) created in %s with id %d\n", u.Email, u.Role, tc.Tenant.Subdomain, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&tenantKey, "tenant", "t", "", "Tenant subdomain (required)")
	cmd.Flags().StringVar(&email, "email", "", "Login e-mail (required)")
	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&password, "password", "", "Initial password, at least 8 characters (required)")
	cmd.Flags().StringVar(&role, "role", "", "Role: owner, admin, member or viewer (default member)")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
