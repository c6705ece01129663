package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host           string
	Port           int
	MetricsPort    int
	AllowedOrigins []string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
	AutoMigrate     bool
}

type AuthConfig struct {
	AccessSecret string
	// ProviderURL is the base URL of the hosted auth service, e.g. https://xyz.supabase.co/auth/v1.
	ProviderURL  string
	ServiceKey   string
	RoleCacheTTL time.Duration
}

type CacheConfig struct {
	RedisURL string
}

type PricingConfig struct {
	FallbackPrice float64
	Currency      string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Cache       CacheConfig
	Pricing     PricingConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host:           v.GetString("HTTP_HOST"),
			Port:           v.GetInt("HTTP_PORT"),
			MetricsPort:    v.GetInt("METRICS_PORT"),
			AllowedOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
			AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
			ProviderURL:  strings.TrimRight(v.GetString("AUTH_URL"), "/"),
			ServiceKey:   v.GetString("AUTH_SERVICE_KEY"),
			RoleCacheTTL: v.GetDuration("ROLE_CACHE_TTL"),
		},
		Cache: CacheConfig{
			RedisURL: v.GetString("REDIS_URL"),
		},
		Pricing: PricingConfig{
			FallbackPrice: v.GetFloat64("PRICING_FALLBACK_PRICE"),
			Currency:      v.GetString("REPORT_CURRENCY"),
		},
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.HTTP.MetricsPort == 0 {
		cfg.HTTP.MetricsPort = 9091
	}
	if len(cfg.HTTP.AllowedOrigins) == 0 {
		cfg.HTTP.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if cfg.Auth.RoleCacheTTL <= 0 {
		cfg.Auth.RoleCacheTTL = 5 * time.Minute
	}
	if cfg.Pricing.FallbackPrice <= 0 {
		cfg.Pricing.FallbackPrice = 10.00
	}
	if cfg.Pricing.Currency == "" {
		cfg.Pricing.Currency = "R"
	}
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.HTTP.Port == cfg.HTTP.MetricsPort {
		return fmt.Errorf("METRICS_PORT must differ from HTTP_PORT")
	}
	return nil
}

// ConnMaxLifetimeDuration parses DB_CONN_MAX_LIFETIME, falling back to 30 minutes.
func (c DBConfig) ConnMaxLifetimeDuration() time.Duration {
	if c.ConnMaxLifetime == "" {
		return 30 * time.Minute
	}
	d, err := time.ParseDuration(c.ConnMaxLifetime)
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
