// Package bootstrap loads configuration and opens the shared connections for
// every command.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"bizhub/internal/infrastructure/config"
	"bizhub/internal/infrastructure/database"
	httpRouter "bizhub/internal/interfaces/http"
	"bizhub/internal/shared/biztime"
	"bizhub/internal/shared/constants"
	"bizhub/internal/shared/logger"
)

// Flags are the persistent flags shared by all commands.
type Flags struct {
	Env        string
	ConfigPath string
}

// Env is a loaded configuration with an initialized logger and directory.
type Env struct {
	Config *config.Config
	Log    logger.Interface
}

// App is an Env with Redis and the wired container.
type App struct {
	*Env
	Redis     *redis.Client
	Container *httpRouter.Container
}

// Load reads configuration, initializes logging and the business timezone,
// and opens the tenant directory.
func Load(flags Flags) (*Env, error) {
	cfg, err := config.Load(flags.Env, flags.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Server.Mode = GinMode(cfg.Server.Mode)

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode == gin.DebugMode); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return nil, fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	if err := database.Init(&cfg.Directory); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Env{Config: cfg, Log: logger.NewLogger()}, nil
}

// Close releases the directory connection and flushes the logger.
func (e *Env) Close() {
	if err := database.Close(); err != nil {
		e.Log.Warnw("failed to close directory database", "error", err)
	}
	_ = logger.Sync()
}

// NewApp loads the environment and wires the container. An unreachable Redis
// is logged and the app runs without it.
func NewApp(flags Flags) (*App, error) {
	env, err := Load(flags)
	if err != nil {
		return nil, err
	}

	rdb := ConnectRedis(env.Config, env.Log)
	container, err := httpRouter.NewContainer(database.Get(), rdb, env.Config, env.Log)
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		env.Close()
		return nil, fmt.Errorf("failed to build application: %w", err)
	}

	return &App{Env: env, Redis: rdb, Container: container}, nil
}

// Close shuts the container down before the connections it depends on.
func (a *App) Close() {
	a.Container.Shutdown()
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warnw("failed to close redis client", "error", err)
		}
	}
	a.Env.Close()
}

// ConnectRedis returns nil when Redis does not answer a ping.
func ConnectRedis(cfg *config.Config, log logger.Interface) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warnw("redis unavailable, continuing without it", "address", cfg.Redis.GetAddr(), "error", err)
		_ = client.Close()
		return nil
	}

	log.Infow("redis connection established", "address", cfg.Redis.GetAddr())
	return client
}

// GinMode maps an environment name to a gin mode.
func GinMode(environment string) string {
	switch environment {
	case constants.EnvProduction, "prod", gin.ReleaseMode:
		return gin.ReleaseMode
	case constants.EnvTest, "testing":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
