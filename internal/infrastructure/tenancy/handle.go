// Package tenancy binds requests to tenant stores. The registry owns one handle
// per tenant id; a request reaches a handle only through the Context attached
// by tenant resolution.
package tenancy

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"bizhub/internal/domain/tenant"
	"bizhub/internal/infrastructure/database"
	"bizhub/internal/shared/config"
	"bizhub/internal/shared/db"
)

// Handle is an open connection pool to one tenant store. Every Get from the
// registry holds a reference until Release; a handle the registry drops while
// referenced is closed by its last Release.
type Handle struct {
	tenantID uint
	config   database.StoreConfig
	db       *gorm.DB
	txMgr    *db.TransactionManager
	lastUsed atomic.Int64
	onClose  func(*Handle)

	mu      sync.Mutex
	refs    int
	retired bool
	closed  bool
}

func newHandle(tenantID uint, cfg database.StoreConfig, store *gorm.DB, now time.Time, onClose func(*Handle)) *Handle {
	h := &Handle{
		tenantID: tenantID,
		config:   cfg,
		db:       store,
		txMgr:    db.NewTransactionManager(store),
		onClose:  onClose,
	}
	h.touch(now)
	return h
}

func (h *Handle) TenantID() uint {
	return h.tenantID
}

func (h *Handle) Config() database.StoreConfig {
	return h.config
}

func (h *Handle) DB() *gorm.DB {
	return h.db
}

func (h *Handle) Transactions() *db.TransactionManager {
	return h.txMgr
}

// Release drops a reference taken by Registry.Get. It is safe to call on a
// nil handle.
func (h *Handle) Release() {
	if h == nil {
		return
	}
	h.mu.Lock()
	if h.refs > 0 {
		h.refs--
	}
	closeNow := h.refs == 0 && h.retired && !h.closed
	if closeNow {
		h.closed = true
	}
	h.mu.Unlock()

	if closeNow {
		h.onClose(h)
	}
}

// acquire takes a reference. It fails once the handle is retired.
func (h *Handle) acquire(now time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.retired {
		return false
	}
	h.refs++
	h.touch(now)
	return true
}

// retire marks the handle as dropped by the registry and reports whether the
// caller must close it now. force closes it even while referenced.
func (h *Handle) retire(force bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.retired = true
	if h.closed || (h.refs > 0 && !force) {
		return false
	}
	h.closed = true
	return true
}

func (h *Handle) inUse() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.refs > 0
}

func (h *Handle) touch(now time.Time) {
	h.lastUsed.Store(now.UnixNano())
}

func (h *Handle) idleSince() time.Time {
	return time.Unix(0, h.lastUsed.Load())
}

// StoreConfigFor builds the store configuration of a tenant from the tenant
// record and the shared driver parameters. The result depends only on its
// inputs, so two lookups of the same tenant always agree.
func StoreConfigFor(base config.TenantStoreConfig, t *tenant.Tenant) database.StoreConfig {
	cfg := database.StoreConfig{
		Name:            fmt.Sprintf("tenant:%d", t.ID),
		Driver:          base.Driver,
		DatabaseName:    t.DatabaseName,
		MaxIdleConns:    base.MaxIdleConns,
		MaxOpenConns:    base.MaxOpenConns,
		ConnMaxLifetime: time.Duration(base.ConnMaxLifetime) * time.Minute,
	}

	switch base.Driver {
	case config.DriverSQLite:
		cfg.DSN = database.SQLiteDSN(SQLitePath(base, t.DatabaseName))
	default:
		cfg.Driver = config.DriverMySQL
		cfg.DSN = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", base.Username, base.Password, base.Host, base.Port, t.DatabaseName)
		if base.Params != "" {
			cfg.DSN += "?" + base.Params
		}
	}
	return cfg
}

// SQLitePath is the file backing a sqlite tenant store.
func SQLitePath(base config.TenantStoreConfig, databaseName string) string {
	return filepath.Join(base.DataDir, databaseName+".db")
}

// AdminStoreConfig is a MySQL connection without a default schema, used to
// create and drop tenant databases. It has no meaning for sqlite.
func AdminStoreConfig(base config.TenantStoreConfig) database.StoreConfig {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/", base.Username, base.Password, base.Host, base.Port)
	if base.Params != "" {
		dsn += "?" + base.Params
	}
	return database.StoreConfig{
		Name:         "tenant-admin",
		Driver:       config.DriverMySQL,
		DSN:          dsn,
		MaxIdleConns: 1,
		MaxOpenConns: 2,
	}
}
