// Package migration applies the embedded goose migration sets. The directory set
// builds the shared tenant directory; the tenant set builds one tenant store.
package migration

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"bizhub/internal/shared/logger"
)

//go:embed scripts
var scripts embed.FS

type Set string

const (
	SetDirectory Set = "directory"
	SetTenant    Set = "tenant"
)

// Result reports what a run changed.
type Result struct {
	FromVersion int64
	ToVersion   int64
	Applied     int
}

// Status is the state of one migration file in a store.
type Status struct {
	Version int64
	Path    string
	Applied bool
}

// Runner applies one migration set with the goose provider API. A provider is
// built per call and bound to the store it is given, so one Runner serves any
// number of stores.
type Runner struct {
	set    Set
	logger logger.Interface
}

func NewRunner(set Set, log logger.Interface) *Runner {
	return &Runner{
		set:    set,
		logger: log.With("component", "migration.goose", "set", string(set)),
	}
}

// Up applies every pending migration. Already applied migrations are skipped.
func (r *Runner) Up(ctx context.Context, db *gorm.DB) (*Result, error) {
	p, err := r.provider(db)
	if err != nil {
		return nil, err
	}

	from, err := p.GetDBVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current version: %w", err)
	}

	results, err := p.Up(ctx)
	if err != nil {
		r.logger.Errorw("migration failed", "from_version", from, "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	to, err := p.GetDBVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get final version: %w", err)
	}

	r.logger.Infow("migration completed successfully",
		"from_version", from,
		"to_version", to,
		"applied", len(results))

	return &Result{FromVersion: from, ToVersion: to, Applied: len(results)}, nil
}

// Down rolls back the given number of migrations, stopping early at version 0.
func (r *Runner) Down(ctx context.Context, db *gorm.DB, steps int) error {
	p, err := r.provider(db)
	if err != nil {
		return err
	}

	for i := 0; i < steps; i++ {
		current, err := p.GetDBVersion(ctx)
		if err != nil {
			return fmt.Errorf("failed to get current version: %w", err)
		}
		if current == 0 {
			break
		}
		if _, err := p.Down(ctx); err != nil {
			r.logger.Errorw("down migration failed", "error", err)
			return fmt.Errorf("failed to run down migration: %w", err)
		}
	}

	r.logger.Infow("down migration completed successfully", "steps", steps)
	return nil
}

// Version returns the applied version and the newest embedded version.
func (r *Runner) Version(ctx context.Context, db *gorm.DB) (current, latest int64, err error) {
	p, err := r.provider(db)
	if err != nil {
		return 0, 0, err
	}

	current, err = p.GetDBVersion(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get current version: %w", err)
	}

	sources := p.ListSources()
	if len(sources) > 0 {
		latest = sources[len(sources)-1].Version
	}
	return current, latest, nil
}

func (r *Runner) Status(ctx context.Context, db *gorm.DB) ([]Status, error) {
	p, err := r.provider(db)
	if err != nil {
		return nil, err
	}

	states, err := p.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get migration status: %w", err)
	}

	out := make([]Status, 0, len(states))
	for _, s := range states {
		out = append(out, Status{
			Version: s.Source.Version,
			Path:    s.Source.Path,
			Applied: s.State == goose.StateApplied,
		})
	}
	return out, nil
}

func (r *Runner) provider(db *gorm.DB) (*goose.Provider, error) {
	dialect, dir, err := dialectFor(db)
	if err != nil {
		return nil, err
	}

	fsys, err := fs.Sub(scripts, "scripts/"+string(r.set)+"/"+dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s migrations: %w", r.set, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	p, err := goose.NewProvider(dialect, sqlDB, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create goose provider: %w", err)
	}
	return p, nil
}

func dialectFor(db *gorm.DB) (goose.Dialect, string, error) {
	switch name := db.Dialector.Name(); name {
	case "mysql":
		return goose.DialectMySQL, "mysql", nil
	case "sqlite":
		return goose.DialectSQLite3, "sqlite3", nil
	default:
		return "", "", fmt.Errorf("no migrations for dialect %q", name)
	}
}
