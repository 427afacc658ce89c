package http

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"bizhub/internal/infrastructure/config"
	"bizhub/internal/infrastructure/pubsub"
	"bizhub/internal/shared/biztime"
	"bizhub/internal/shared/goroutine"
	"bizhub/internal/shared/logger"
)

// Container holds all infrastructure components, repositories, use cases,
// handlers and background services. It wires everything together and owns the
// shutdown order.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client
	clock  biztime.Clock

	repos *repositories
	svcs  *services
	ucs   *allUseCases
	hdlrs *allHandlers
	mws   *allMiddlewares

	// Cross-instance tenant change subscription
	subscriberCancel   context.CancelFunc
	subscriberCancelMu sync.Mutex
}

// Option customizes a Container before it is wired.
type Option func(*Container)

// WithClock pins the clock used by sessions, tenant stores and anomaly checks.
func WithClock(clock biztime.Clock) Option {
	return func(c *Container) { c.clock = clock }
}

// NewContainer wires the application on top of an open tenant directory. A nil
// redisClient disables the directory cache, throttling, rate limiting and
// cross-instance events.
func NewContainer(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface, opts ...Option) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
		redis:  redisClient,
		clock:  biztime.NowUTC,
	}
	for _, opt := range opts {
		opt(c)
	}

	// Section 1: Infrastructure - directory, tenant stores, auth, Redis-backed services
	if err := c.initInfrastructure(); err != nil {
		c.Shutdown()
		return nil, err
	}

	// Section 2: Tenancy - resolution and administration
	c.initTenancy()

	// Section 3: Sessions - lifecycle, timeout, anomaly detection
	c.initSessions()

	// Section 4: Handlers and middlewares
	c.initHandlers()

	return c, nil
}

// Engine returns the Gin engine.
func (c *Container) Engine() *gin.Engine {
	return c.engine
}

// TenantAdmin exposes the administrative tenant use cases to the CLI.
func (c *Container) TenantAdmin() *TenantAdmin {
	return &TenantAdmin{
		Provision: c.ucs.provisionTenantUC,
		Drop:      c.ucs.dropTenantUC,
		Migrate:   c.ucs.migrateTenantUC,
		SetStatus: c.ucs.setTenantStatusUC,
		List:      c.ucs.listTenantsUC,
		Resolve:   c.ucs.resolveTenantUC,
		AddUser:   c.ucs.createUserUC,
	}
}

// CleanupJob returns the job that logs out idle sessions in every tenant.
func (c *Container) CleanupJob() *CleanupJob {
	return &CleanupJob{uc: c.ucs.cleanupAllTenantsUC}
}

// StartBackground starts the scheduler and, when Redis is configured, the
// subscription that keeps this instance's handles and cache in step with
// tenant changes made elsewhere.
func (c *Container) StartBackground(ctx context.Context) error {
	if err := c.registerJobs(); err != nil {
		return err
	}
	c.svcs.scheduler.Start()

	if c.svcs.tenantEvents == nil {
		return nil
	}

	subCtx, cancel := context.WithCancel(ctx)
	c.subscriberCancelMu.Lock()
	c.subscriberCancel = cancel
	c.subscriberCancelMu.Unlock()

	goroutine.SafeGo(c.log, "tenant-event-subscriber", func() {
		if err := c.svcs.tenantEvents.Subscribe(subCtx, c.onTenantChange); err != nil && subCtx.Err() == nil {
			c.log.Errorw("tenant event subscription stopped", "error", err)
		}
	})
	return nil
}

func (c *Container) onTenantChange(ctx context.Context, event pubsub.TenantChangeEvent) {
	c.svcs.registry.Purge(event.TenantID)
	if err := c.svcs.tenantCache.Invalidate(ctx, event.Subdomain); err != nil {
		c.log.Warnw("failed to invalidate tenant cache", "tenant", event.Subdomain, "error", err)
	}
	c.log.Infow("applied remote tenant change",
		"tenant", event.Subdomain,
		"tenant_id", event.TenantID,
		"change", event.ChangeType,
	)
}

// Shutdown stops background work and closes every tenant store and the admin
// connection. The directory and Redis belong to the caller.
func (c *Container) Shutdown() {
	c.subscriberCancelMu.Lock()
	if c.subscriberCancel != nil {
		c.subscriberCancel()
		c.subscriberCancel = nil
	}
	c.subscriberCancelMu.Unlock()

	if c.svcs == nil {
		return
	}
	if c.svcs.scheduler != nil && c.svcs.scheduler.IsStarted() {
		if err := c.svcs.scheduler.Stop(); err != nil {
			c.log.Errorw("failed to stop scheduler", "error", err)
		}
	}
	if c.svcs.registry != nil {
		c.svcs.registry.Close()
	}
	if c.svcs.adminDB != nil {
		closeAdminDB(c.svcs.adminDB, c.log)
	}
}
