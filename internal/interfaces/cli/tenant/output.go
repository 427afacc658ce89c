package tenant

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	tenantUsecases "bizhub/internal/application/tenant/usecases"
	"bizhub/internal/domain/tenant"
)

type tenantView struct {
	ID             uint       `json:"id" yaml:"id"`
	Name           string     `json:"name" yaml:"name"`
	Subdomain      string     `json:"subdomain" yaml:"subdomain"`
	DatabaseName   string     `json:"database_name" yaml:"database_name"`
	Status         string     `json:"status" yaml:"status"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty" yaml:"last_accessed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at" yaml:"created_at"`
}

func toView(t *tenant.Tenant) tenantView {
	return tenantView{
		ID:             t.ID,
		Name:           t.Name,
		Subdomain:      t.Subdomain,
		DatabaseName:   t.DatabaseName,
		Status:         string(t.Status),
		LastAccessedAt: t.LastAccessedAt,
		CreatedAt:      t.CreatedAt,
	}
}

func writeTenants(out io.Writer, format string, tenants []*tenant.Tenant) error {
	views := make([]tenantView, 0, len(tenants))
	for _, t := range tenants {
		views = append(views, toView(t))
	}

	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(views); err != nil {
			return fmt.Errorf("failed to encode tenants: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	case "table", "":
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSUBDOMAIN\tNAME\tSTORE\tSTATUS\tLAST ACCESSED")
		for _, v := range views {
			last := "-"
			if v.LastAccessedAt != nil {
				last = v.LastAccessedAt.Format(time.DateTime)
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", v.ID, v.Subdomain, v.Name, v.DatabaseName, v.Status, last)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeMigrateResults(out io.Writer, results []*tenantUsecases.MigrateTenantResult) {
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(out, "%s\tFAILED\t%v\n", r.Tenant.Subdomain, r.Err)
			continue
		}
		fmt.Fprintf(out, "%s\t%d -> %d\t%d applied\n",
			r.Tenant.Subdomain, r.Migration.FromVersion, r.Migration.ToVersion, r.Migration.Applied)
	}
}

func withTimeout(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), d)
}
