package http

import (
	"time"

	sessionUsecases "bizhub/internal/application/session/usecases"
	tenantUsecases "bizhub/internal/application/tenant/usecases"
	userUsecases "bizhub/internal/application/user/usecases"
	"bizhub/internal/infrastructure/pubsub"
)

// allUseCases holds all use case instances used by the application.
type allUseCases struct {
	// Tenancy
	resolveTenantUC   *tenantUsecases.ResolveTenantUseCase
	changes           *tenantUsecases.ChangeBroadcaster
	provisionTenantUC *tenantUsecases.ProvisionTenantUseCase
	dropTenantUC      *tenantUsecases.DropTenantUseCase
	migrateTenantUC   *tenantUsecases.MigrateTenantUseCase
	setTenantStatusUC *tenantUsecases.SetTenantStatusUseCase
	listTenantsUC     *tenantUsecases.ListTenantsUseCase

	// Users
	createUserUC *userUsecases.CreateUserUseCase

	// Sessions
	sessionManager      *sessionUsecases.SessionManager
	timeoutEnforcer     *sessionUsecases.TimeoutEnforcer
	anomalyDetector     *sessionUsecases.AnomalyDetector
	inspectLoginUC      *sessionUsecases.InspectLoginUseCase
	loginUC             *sessionUsecases.LoginUseCase
	cleanupAllTenantsUC *sessionUsecases.CleanupAllTenantsUseCase
}

// TenantAdmin groups the use cases behind the tenant and user CLI commands.
type TenantAdmin struct {
	Provision *tenantUsecases.ProvisionTenantUseCase
	Drop      *tenantUsecases.DropTenantUseCase
	Migrate   *tenantUsecases.MigrateTenantUseCase
	SetStatus *tenantUsecases.SetTenantStatusUseCase
	List      *tenantUsecases.ListTenantsUseCase
	Resolve   *tenantUsecases.ResolveTenantUseCase
	AddUser   *userUsecases.CreateUserUseCase
}

func (c *Container) initTenancy() {
	c.ucs = &allUseCases{}
	log := c.log.Named("tenant")

	c.ucs.resolveTenantUC = tenantUsecases.NewResolveTenantUseCase(
		c.svcs.tenantCache,
		c.svcs.registry,
		c.repos.tenantDirectory,
		c.svcs.throttle,
		c.clock,
		log,
	)

	var events pubsub.TenantEventPublisher
	if c.svcs.tenantEvents != nil {
		events = c.svcs.tenantEvents
	}
	c.ucs.changes = tenantUsecases.NewChangeBroadcaster(c.svcs.registry, c.svcs.tenantCache, events, log)

	directory := c.repos.tenantDirectory
	c.ucs.provisionTenantUC = tenantUsecases.NewProvisionTenantUseCase(
		directory,
		c.svcs.provisioner,
		c.ucs.changes,
		c.cfg.TenantStore.DatabasePrefix,
		log,
	)
	c.ucs.dropTenantUC = tenantUsecases.NewDropTenantUseCase(directory, c.svcs.provisioner, c.ucs.changes, log)
	c.ucs.migrateTenantUC = tenantUsecases.NewMigrateTenantUseCase(directory, c.svcs.provisioner, c.ucs.changes, log)
	c.ucs.setTenantStatusUC = tenantUsecases.NewSetTenantStatusUseCase(directory, c.svcs.provisioner, c.ucs.changes, log)
	c.ucs.listTenantsUC = tenantUsecases.NewListTenantsUseCase(directory)
}

func (c *Container) initSessions() {
	log := c.log.Named("session")
	stores := c.repos.tenantStores

	c.ucs.createUserUC = userUsecases.NewCreateUserUseCase(stores, c.svcs.hasher, c.log.Named("user"))

	c.ucs.sessionManager = sessionUsecases.NewSessionManager(stores, c.clock, log)
	c.ucs.timeoutEnforcer = sessionUsecases.NewTimeoutEnforcer(stores, c.cfg.Session.TimeoutMinutes, c.clock, log)

	c.ucs.anomalyDetector = sessionUsecases.NewAnomalyDetector(stores, sessionUsecases.AnomalyDetectorConfig{
		LookbackLimit:     c.cfg.Anomaly.LookbackLimit,
		LookbackDays:      c.cfg.Anomaly.LookbackDays,
		RapidChangeWindow: time.Duration(c.cfg.Anomaly.RapidChangeWindowMinutes) * time.Minute,
	}, c.clock)

	notifiers := sessionUsecases.MultiNotifier{sessionUsecases.NewLogNotifier(log)}
	if c.svcs.anomalyEvents != nil {
		notifiers = append(notifiers, sessionUsecases.NewPubSubNotifier(c.svcs.anomalyEvents))
	}
	if c.cfg.Anomaly.NotifyEmail {
		notifiers = append(notifiers, sessionUsecases.NewEmailNotifier(c.svcs.mailer, log))
	}
	c.ucs.inspectLoginUC = sessionUsecases.NewInspectLoginUseCase(c.ucs.anomalyDetector, notifiers, c.clock, log)

	c.ucs.loginUC = sessionUsecases.NewLoginUseCase(stores, c.ucs.sessionManager, c.svcs.hasher, c.svcs.jwtSvc, log)

	c.ucs.cleanupAllTenantsUC = sessionUsecases.NewCleanupAllTenantsUseCase(
		c.repos.tenantDirectory,
		c.svcs.registry,
		c.ucs.sessionManager,
		c.cfg.Session.TimeoutMinutes,
		log,
	)
}
