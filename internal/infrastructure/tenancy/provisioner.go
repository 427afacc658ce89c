package tenancy

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"bizhub/internal/domain/tenant"
	"bizhub/internal/infrastructure/migration"
	"bizhub/internal/shared/config"
	"bizhub/internal/shared/errors"
	"bizhub/internal/shared/logger"
	"bizhub/internal/shared/utils"
)

// MySQL server error numbers for CREATE/DROP DATABASE on an existing or missing
// schema.
const (
	mysqlErrDatabaseExists  = 1007
	mysqlErrDatabaseMissing = 1008
)

// StoreAdmin creates and drops whole tenant stores. It never touches a store
// other than the one it is named.
type StoreAdmin interface {
	Exists(ctx context.Context, databaseName string) (bool, error)
	Create(ctx context.Context, databaseName string) error
	Drop(ctx context.Context, databaseName string) error
}

// NewStoreAdmin picks the admin for the configured driver. server is a MySQL
// connection without a default schema and is ignored for sqlite.
func NewStoreAdmin(base config.TenantStoreConfig, server *gorm.DB) StoreAdmin {
	if base.Driver == config.DriverSQLite {
		return &sqliteAdmin{base: base}
	}
	return &mysqlAdmin{server: server}
}

type mysqlAdmin struct {
	server *gorm.DB
}

func (a *mysqlAdmin) Exists(ctx context.Context, databaseName string) (bool, error) {
	var count int64
	err := a.server.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM information_schema.schemata WHERE schema_name = ?", databaseName).
		Scan(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check database %s: %w", databaseName, err)
	}
	return count > 0, nil
}

// Create and Drop interpolate the name; callers validate it first.
func (a *mysqlAdmin) Create(ctx context.Context, databaseName string) error {
	stmt := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", databaseName)
	if err := a.server.WithContext(ctx).Exec(stmt).Error; err != nil && !isMySQLError(err, mysqlErrDatabaseExists) {
		return fmt.Errorf("failed to create database %s: %w", databaseName, err)
	}
	return nil
}

func (a *mysqlAdmin) Drop(ctx context.Context, databaseName string) error {
	stmt := fmt.Sprintf("DROP DATABASE IF EXISTS `%s`", databaseName)
	if err := a.server.WithContext(ctx).Exec(stmt).Error; err != nil && !isMySQLError(err, mysqlErrDatabaseMissing) {
		return fmt.Errorf("failed to drop database %s: %w", databaseName, err)
	}
	return nil
}

func isMySQLError(err error, number uint16) bool {
	var myErr *mysql.MySQLError
	return stderrors.As(err, &myErr) && myErr.Number == number
}

type sqliteAdmin struct {
	base config.TenantStoreConfig
}

func (a *sqliteAdmin) Exists(_ context.Context, databaseName string) (bool, error) {
	_, err := os.Stat(SQLitePath(a.base, databaseName))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check database %s: %w", databaseName, err)
}

func (a *sqliteAdmin) Create(_ context.Context, databaseName string) error {
	if err := os.MkdirAll(a.base.DataDir, 0o750); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	f, err := os.OpenFile(SQLitePath(a.base, databaseName), os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return fmt.Errorf("failed to create database %s: %w", databaseName, err)
	}
	return f.Close()
}

func (a *sqliteAdmin) Drop(_ context.Context, databaseName string) error {
	path := SQLitePath(a.base, databaseName)
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to drop database %s: %w", databaseName, err)
		}
	}
	return nil
}

// Provisioner runs the administrative store operations for one tenant at a
// time. Each operation is bounded by the provision timeout and is safe to retry.
type Provisioner struct {
	admin    StoreAdmin
	registry *Registry
	runner   *migration.Runner
	base     config.TenantStoreConfig
	logger   logger.Interface
}

func NewProvisioner(admin StoreAdmin, registry *Registry, base config.TenantStoreConfig, log logger.Interface) *Provisioner {
	return &Provisioner{
		admin:    admin,
		registry: registry,
		runner:   migration.NewRunner(migration.SetTenant, log),
		base:     base,
		logger:   log.With("component", "tenancy.provisioner"),
	}
}

// CreateStore creates the tenant store if it is absent. An existing store is
// logged and reported as success.
func (p *Provisioner) CreateStore(ctx context.Context, t *tenant.Tenant) error {
	if err := validateDatabaseName(t); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, p.base.ProvisionTimeout())
	defer cancel()

	exists, err := p.admin.Exists(ctx, t.DatabaseName)
	if err != nil {
		return errors.NewConnectionUnavailableError().WithCause(err)
	}
	if exists {
		p.logger.Infow("tenant store already exists",
			"tenant_id", t.ID,
			"database_name", t.DatabaseName)
		return nil
	}

	if err := p.admin.Create(ctx, t.DatabaseName); err != nil {
		p.logger.Errorw("failed to create tenant store",
			"tenant_id", t.ID,
			"database_name", t.DatabaseName,
			"error", err)
		return errors.NewConnectionUnavailableError().WithCause(err)
	}

	p.logger.Infow("tenant store created",
		"tenant_id", t.ID,
		"database_name", t.DatabaseName)
	return nil
}

// DropStore is destructive. It closes the cached handle first.
func (p *Provisioner) DropStore(ctx context.Context, t *tenant.Tenant) error {
	if err := validateDatabaseName(t); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, p.base.ProvisionTimeout())
	defer cancel()

	p.registry.Purge(t.ID)

	exists, err := p.admin.Exists(ctx, t.DatabaseName)
	if err != nil {
		return errors.NewConnectionUnavailableError().WithCause(err)
	}
	if !exists {
		p.logger.Infow("tenant store already absent",
			"tenant_id", t.ID,
			"database_name", t.DatabaseName)
		return nil
	}

	if err := p.admin.Drop(ctx, t.DatabaseName); err != nil {
		return errors.NewConnectionUnavailableError().WithCause(err)
	}

	p.logger.Warnw("tenant store dropped",
		"tenant_id", t.ID,
		"database_name", t.DatabaseName)
	return nil
}

// Migrate applies every pending tenant migration to the tenant's store.
func (p *Provisioner) Migrate(ctx context.Context, t *tenant.Tenant) (*migration.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.base.ProvisionTimeout())
	defer cancel()

	h, err := p.registry.Get(ctx, t)
	if err != nil {
		return nil, err
	}
	defer h.Release()

	result, err := p.runner.Up(ctx, h.DB())
	if err != nil {
		return nil, fmt.Errorf("failed to migrate tenant %d: %w", t.ID, err)
	}
	return result, nil
}

// Verify checks that the store exists, is reachable and is at the newest
// migration version.
func (p *Provisioner) Verify(ctx context.Context, t *tenant.Tenant) error {
	ctx, cancel := context.WithTimeout(ctx, p.base.ProvisionTimeout())
	defer cancel()

	exists, err := p.admin.Exists(ctx, t.DatabaseName)
	if err != nil {
		return errors.NewConnectionUnavailableError().WithCause(err)
	}
	if !exists {
		return fmt.Errorf("tenant store %s does not exist", t.DatabaseName)
	}

	h, err := p.registry.Get(ctx, t)
	if err != nil {
		return err
	}
	defer h.Release()

	current, latest, err := p.runner.Version(ctx, h.DB())
	if err != nil {
		return fmt.Errorf("failed to read tenant store version: %w", err)
	}
	if current != latest {
		return fmt.Errorf("tenant store %s is at version %d, want %d", t.DatabaseName, current, latest)
	}
	return nil
}

func validateDatabaseName(t *tenant.Tenant) error {
	if !utils.IsValidDatabaseName(t.DatabaseName) {
		return errors.NewValidationError("Validation failed", "invalid database name "+t.DatabaseName)
	}
	return nil
}
