package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	Timezone       string   `mapstructure:"timezone"`
	LoginPath      string   `mapstructure:"login_path"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig describes the shared tenant directory store. Driver sqlite
// reads Path and ignores the network settings.
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Path            string `mapstructure:"path"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

// Supported tenant store drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// TenantStoreConfig holds the driver parameters shared by every tenant store.
// The database name is never part of it; it comes from the tenant record.
type TenantStoreConfig struct {
	Driver                  string `mapstructure:"driver"`
	Host                    string `mapstructure:"host"`
	Port                    int    `mapstructure:"port"`
	Username                string `mapstructure:"username"`
	Password                string `mapstructure:"password"`
	Params                  string `mapstructure:"params"`
	DataDir                 string `mapstructure:"data_dir"`
	DatabasePrefix          string `mapstructure:"database_prefix"`
	MaxIdleConns            int    `mapstructure:"max_idle_conns"`
	MaxOpenConns            int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime         int    `mapstructure:"conn_max_lifetime"`
	ConnectTimeoutSeconds   int    `mapstructure:"connect_timeout_seconds"`
	ProvisionTimeoutSeconds int    `mapstructure:"provision_timeout_seconds"`
	HandleIdleTTLMinutes    int    `mapstructure:"handle_idle_ttl_minutes"`
}

func (t *TenantStoreConfig) ConnectTimeout() time.Duration {
	if t.ConnectTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(t.ConnectTimeoutSeconds) * time.Second
}

func (t *TenantStoreConfig) ProvisionTimeout() time.Duration {
	if t.ProvisionTimeoutSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(t.ProvisionTimeoutSeconds) * time.Second
}

func (t *TenantStoreConfig) HandleIdleTTL() time.Duration {
	return time.Duration(t.HandleIdleTTLMinutes) * time.Minute
}

// TenancyConfig controls how requests are routed to tenants.
type TenancyConfig struct {
	OverrideHeader           string   `mapstructure:"override_header"`
	LocalRootDomains         []string `mapstructure:"local_root_domains"`
	SkipPaths                []string `mapstructure:"skip_paths"`
	TouchIntervalSeconds     int      `mapstructure:"touch_interval_seconds"`
	DirectoryCacheTTLSeconds int      `mapstructure:"directory_cache_ttl_seconds"`
}

type SessionConfig struct {
	TimeoutMinutes         int  `mapstructure:"timeout_minutes"`
	Bypass                 bool `mapstructure:"bypass"`
	CleanupIntervalMinutes int  `mapstructure:"cleanup_interval_minutes"`
}

type AnomalyConfig struct {
	LookbackLimit            int      `mapstructure:"lookback_limit"`
	LookbackDays             int      `mapstructure:"lookback_days"`
	RapidChangeWindowMinutes int      `mapstructure:"rapid_change_window_minutes"`
	LoginPaths               []string `mapstructure:"login_paths"`
	NotifyEmail              bool     `mapstructure:"notify_email"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
}

type CookieConfig struct {
	Domain   string `mapstructure:"domain"`
	Path     string `mapstructure:"path"`
	Secure   bool   `mapstructure:"secure"`
	SameSite string `mapstructure:"same_site"`
}

type AuthConfig struct {
	JWT        JWTConfig    `mapstructure:"jwt"`
	Cookie     CookieConfig `mapstructure:"cookie"`
	BcryptCost int          `mapstructure:"bcrypt_cost"`
	// LoginRateLimit is the number of login attempts allowed per tenant and IP per minute.
	LoginRateLimit int `mapstructure:"login_rate_limit"`
}

type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
