package http

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"bizhub/internal/infrastructure/auth"
	"bizhub/internal/infrastructure/cache"
	"bizhub/internal/infrastructure/database"
	"bizhub/internal/infrastructure/email"
	"bizhub/internal/infrastructure/permission"
	"bizhub/internal/infrastructure/pubsub"
	"bizhub/internal/infrastructure/ratelimit"
	"bizhub/internal/infrastructure/scheduler"
	"bizhub/internal/infrastructure/tenancy"
	"bizhub/internal/shared/config"
	"bizhub/internal/shared/logger"
)

// services holds infrastructure services shared by use cases and middlewares.
type services struct {
	registry    *tenancy.Registry
	adminDB     *gorm.DB
	provisioner *tenancy.Provisioner

	jwtSvc   *auth.JWTService
	hasher   *auth.BcryptPasswordHasher
	enforcer *permission.Enforcer

	// Redis-backed; tenantEvents, anomalyEvents and loginLimiter stay nil
	// without Redis.
	tenantCache   *cache.TenantCache
	throttle      *cache.AccessThrottle
	tenantEvents  *pubsub.RedisTenantEventBus
	anomalyEvents *pubsub.RedisAnomalyEventBus
	loginLimiter  *ratelimit.RedisRateLimiter

	mailer    *email.SMTPEmailService
	scheduler *scheduler.SchedulerManager
}

func (c *Container) initInfrastructure() error {
	c.repos = newRepositories(c.db, c.log)
	c.svcs = &services{}

	storeCfg := c.cfg.TenantStore
	c.svcs.registry = tenancy.NewRegistry(storeCfg, c.log.Named("tenancy"), tenancy.WithClock(c.clock))

	if storeCfg.Driver != config.DriverSQLite {
		ctx, cancel := context.WithTimeout(context.Background(), storeCfg.ConnectTimeout())
		adminDB, err := database.Open(ctx, tenancy.AdminStoreConfig(storeCfg))
		cancel()
		if err != nil {
			return fmt.Errorf("failed to open tenant store server: %w", err)
		}
		c.svcs.adminDB = adminDB
	}
	c.svcs.provisioner = tenancy.NewProvisioner(
		tenancy.NewStoreAdmin(storeCfg, c.svcs.adminDB),
		c.svcs.registry,
		storeCfg,
		c.log.Named("provisioner"),
	)

	c.svcs.jwtSvc = auth.NewJWTService(c.cfg.Auth.JWT.Secret, c.cfg.Auth.JWT.AccessExpMinutes)
	c.svcs.hasher = auth.NewBcryptPasswordHasher(c.cfg.Auth.BcryptCost)

	enforcer, err := permission.NewEnforcer(c.db, c.log.Named("permission"))
	if err != nil {
		return fmt.Errorf("failed to create permission enforcer: %w", err)
	}
	if err := enforcer.SeedDefaults(); err != nil {
		return fmt.Errorf("failed to seed default policies: %w", err)
	}
	c.svcs.enforcer = enforcer

	cacheTTL := time.Duration(c.cfg.Tenancy.DirectoryCacheTTLSeconds) * time.Second
	c.svcs.tenantCache = cache.NewTenantCache(c.redis, c.repos.tenantDirectory, cacheTTL, c.log)
	c.svcs.throttle = cache.NewAccessThrottle(c.redis, time.Duration(c.cfg.Tenancy.TouchIntervalSeconds)*time.Second)
	if c.redis != nil {
		c.svcs.tenantEvents = pubsub.NewRedisTenantEventBus(c.redis, c.log)
		c.svcs.anomalyEvents = pubsub.NewRedisAnomalyEventBus(c.redis, c.log)
		if c.cfg.Auth.LoginRateLimit > 0 {
			c.svcs.loginLimiter = ratelimit.NewRedisRateLimiter(c.redis, "login",
				ratelimit.Window{Limit: c.cfg.Auth.LoginRateLimit, Duration: time.Minute})
		}
	}

	c.svcs.mailer = email.NewSMTPEmailService(email.SMTPConfig{
		Host:        c.cfg.Email.SMTPHost,
		Port:        c.cfg.Email.SMTPPort,
		Username:    c.cfg.Email.SMTPUser,
		Password:    c.cfg.Email.SMTPPassword,
		FromAddress: c.cfg.Email.FromAddress,
		FromName:    c.cfg.Email.FromName,
	})

	sched, err := scheduler.NewSchedulerManager(c.log.Named("scheduler"))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	c.svcs.scheduler = sched

	return nil
}

// registerJobs schedules idle session cleanup and handle sweeping. The sweep
// is skipped when no idle TTL is configured.
func (c *Container) registerJobs() error {
	if c.svcs.scheduler.IsStarted() {
		return nil
	}

	interval := time.Duration(c.cfg.Session.CleanupIntervalMinutes) * time.Minute
	if interval > 0 {
		if err := c.svcs.scheduler.RegisterSessionCleanupJob(interval, c.ucs.cleanupAllTenantsUC); err != nil {
			return fmt.Errorf("failed to register session cleanup job: %w", err)
		}
	}

	idle := c.cfg.TenantStore.HandleIdleTTL()
	if idle > 0 {
		sweep := scheduler.BatchJobFunc(func(context.Context) (int, error) {
			return c.svcs.registry.Sweep(idle), nil
		})
		if err := c.svcs.scheduler.RegisterHandleSweepJob(idle/2, sweep); err != nil {
			return fmt.Errorf("failed to register handle sweep job: %w", err)
		}
	}
	return nil
}

func closeAdminDB(db *gorm.DB, log logger.Interface) {
	if err := database.CloseDB(db); err != nil {
		log.Warnw("failed to close tenant store server connection", "error", err)
	}
}
