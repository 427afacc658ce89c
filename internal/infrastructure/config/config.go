package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "bizhub/internal/shared/config"
)

type Config struct {
	Server      sharedConfig.ServerConfig      `mapstructure:"server"`
	Directory   sharedConfig.DatabaseConfig    `mapstructure:"directory"`
	TenantStore sharedConfig.TenantStoreConfig `mapstructure:"tenant_store"`
	Tenancy     sharedConfig.TenancyConfig     `mapstructure:"tenancy"`
	Session     sharedConfig.SessionConfig     `mapstructure:"session"`
	Anomaly     sharedConfig.AnomalyConfig     `mapstructure:"anomaly"`
	Logger      sharedConfig.LoggerConfig      `mapstructure:"logger"`
	Auth        sharedConfig.AuthConfig        `mapstructure:"auth"`
	Email       sharedConfig.EmailConfig       `mapstructure:"email"`
	Redis       sharedConfig.RedisConfig       `mapstructure:"redis"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables.
// An explicit configPath takes precedence over the search paths.
func Load(env string, configPath ...string) (*Config, error) {
	v := viper.New()

	if len(configPath) > 0 && configPath[0] != "" {
		v.SetConfigFile(configPath[0])
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix("BIZHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Defaults and environment variables are enough to boot.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.timezone", "UTC")
	v.SetDefault("server.login_path", "/login")

	// Tenant directory defaults
	v.SetDefault("directory.driver", sharedConfig.DriverMySQL)
	v.SetDefault("directory.path", "./data/directory.db")
	v.SetDefault("directory.host", "localhost")
	v.SetDefault("directory.port", 3306)
	v.SetDefault("directory.username", "root")
	v.SetDefault("directory.password", "password")
	v.SetDefault("directory.database", "bizhub_directory")
	v.SetDefault("directory.max_idle_conns", 10)
	v.SetDefault("directory.max_open_conns", 50)
	v.SetDefault("directory.conn_max_lifetime", 60)

	// Tenant store defaults
	v.SetDefault("tenant_store.driver", sharedConfig.DriverMySQL)
	v.SetDefault("tenant_store.host", "localhost")
	v.SetDefault("tenant_store.port", 3306)
	v.SetDefault("tenant_store.username", "root")
	v.SetDefault("tenant_store.password", "password")
	v.SetDefault("tenant_store.params", "charset=utf8mb4&parseTime=True&loc=UTC")
	v.SetDefault("tenant_store.data_dir", "./data/tenants")
	v.SetDefault("tenant_store.database_prefix", "tenant_")
	v.SetDefault("tenant_store.max_idle_conns", 2)
	v.SetDefault("tenant_store.max_open_conns", 10)
	v.SetDefault("tenant_store.conn_max_lifetime", 30)
	v.SetDefault("tenant_store.connect_timeout_seconds", 5)
	v.SetDefault("tenant_store.provision_timeout_seconds", 120)
	v.SetDefault("tenant_store.handle_idle_ttl_minutes", 30)

	// Tenancy defaults
	v.SetDefault("tenancy.override_header", "X-Tenant-Subdomain")
	v.SetDefault("tenancy.local_root_domains", []string{"localhost"})
	v.SetDefault("tenancy.skip_paths", []string{"/healthz", "/readyz", "/platform/*"})
	v.SetDefault("tenancy.touch_interval_seconds", 60)
	v.SetDefault("tenancy.directory_cache_ttl_seconds", 30)

	// Session defaults
	v.SetDefault("session.timeout_minutes", 120)
	v.SetDefault("session.bypass", false)
	v.SetDefault("session.cleanup_interval_minutes", 15)

	// Anomaly defaults
	v.SetDefault("anomaly.lookback_limit", 10)
	v.SetDefault("anomaly.lookback_days", 30)
	v.SetDefault("anomaly.rapid_change_window_minutes", 60)
	v.SetDefault("anomaly.login_paths", []string{"/api/auth/login"})
	v.SetDefault("anomaly.notify_email", false)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	// Auth defaults
	v.SetDefault("auth.jwt.secret", "change-me-in-production")
	v.SetDefault("auth.jwt.access_exp_minutes", 240)
	v.SetDefault("auth.cookie.path", "/")
	v.SetDefault("auth.cookie.secure", false)
	v.SetDefault("auth.cookie.same_site", "Lax")
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.login_rate_limit", 10)

	// Email defaults
	v.SetDefault("email.smtp_host", "localhost")
	v.SetDefault("email.smtp_port", 1025)
	v.SetDefault("email.smtp_user", "")
	v.SetDefault("email.smtp_password", "")
	v.SetDefault("email.from_address", "security@bizhub.local")
	v.SetDefault("email.from_name", "BizHub Security")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}
