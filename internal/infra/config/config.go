package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Postgres  PostgresSettings  `mapstructure:"postgres"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Kafka     KafkaSettings     `mapstructure:"kafka"`
	Session   SessionSettings   `mapstructure:"session"`
	Locale    LocaleSettings    `mapstructure:"locale"`
	Gateway   GatewaySettings   `mapstructure:"gateway"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
	Telemetry TelemetrySettings `mapstructure:"telemetry"`
}

type AppSettings struct {
	Name           string   `mapstructure:"name"`
	Env            string   `mapstructure:"env"`
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures Redis connection and TLS.
type RedisSettings struct {
	Host             string `mapstructure:"host"`
	Port             int    `mapstructure:"port"`
	DB               int    `mapstructure:"db"`
	Password         string `mapstructure:"password"`
	TLSEnabled       bool   `mapstructure:"tls_enabled"`
	RevocationPrefix string `mapstructure:"revocation_prefix"`
}

// KafkaSettings configures the decision-audit producer.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

// SessionSettings configures session-token reading and rotation.
type SessionSettings struct {
	KeyDirectory  string        `mapstructure:"key_directory"`
	SigningKeyID  string        `mapstructure:"signing_key_id"`
	Issuer        string        `mapstructure:"issuer"`
	CookieName    string        `mapstructure:"cookie_name"`
	CookieDomain  string        `mapstructure:"cookie_domain"`
	CookieSecure  bool          `mapstructure:"cookie_secure"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	RefreshWindow time.Duration `mapstructure:"refresh_window"`
}

// LocaleSettings configures the locale-prefix rewrite.
type LocaleSettings struct {
	Default   string   `mapstructure:"default"`
	Supported []string `mapstructure:"supported"`
}

// GatewaySettings bounds the data-store reads issued per request.
type GatewaySettings struct {
	StoreTimeout time.Duration `mapstructure:"store_timeout"`
}

// RateLimitSettings configures the role-switch endpoint limiter.
type RateLimitSettings struct {
	WindowDuration        time.Duration `mapstructure:"window_duration"`
	RoleSwitchMaxAttempts int           `mapstructure:"role_switch_max_attempts"`
}

type TelemetrySettings struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("GATEWAY")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"app.allowed_origins",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.revocation_prefix",
		"kafka.brokers",
		"kafka.topic_prefix",
		"session.key_directory",
		"session.signing_key_id",
		"session.issuer",
		"session.cookie_name",
		"session.cookie_domain",
		"session.cookie_secure",
		"session.token_ttl",
		"session.refresh_window",
		"locale.default",
		"locale.supported",
		"gateway.store_timeout",
		"rate_limit.window_duration",
		"rate_limit.role_switch_max_attempts",
		"telemetry.otlp_endpoint",
		"telemetry.service_name",
		"telemetry.sampling_rate",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "platform-gateway")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.allowed_origins", []string{"*"})

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "gateway")
	v.SetDefault("postgres.password", "gateway")
	v.SetDefault("postgres.database", "travel")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "30m")
	v.SetDefault("postgres.max_conn_idle_time", "5m")
	v.SetDefault("postgres.health_check_period", "1m")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.revocation_prefix", "gateway:sess:revoked")

	v.SetDefault("kafka.topic_prefix", "gateway")

	v.SetDefault("session.key_directory", "./keys")
	v.SetDefault("session.signing_key_id", "v1")
	v.SetDefault("session.issuer", "wisatahub-id")
	v.SetDefault("session.cookie_name", "wh_session")
	v.SetDefault("session.cookie_secure", true)
	v.SetDefault("session.token_ttl", "12h")
	v.SetDefault("session.refresh_window", "30m")

	v.SetDefault("locale.default", "id")
	v.SetDefault("locale.supported", []string{"id", "en"})

	v.SetDefault("gateway.store_timeout", "2s")

	v.SetDefault("rate_limit.window_duration", "1m")
	v.SetDefault("rate_limit.role_switch_max_attempts", 10)

	v.SetDefault("telemetry.service_name", "platform-gateway")
	v.SetDefault("telemetry.sampling_rate", 1.0)
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "GATEWAY_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
