package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/Kilat-Rental/service-reservation/internal/platform/database"
	"github.com/spf13/viper"
)

const envPrefix = "RENTAL"

// RedisConfig holds catalog cache settings.
type RedisConfig struct {
	URL      string
	CacheTTL time.Duration
}

// KafkaConfig holds event bus settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// JWTConfig holds access-token settings.
type JWTConfig struct {
	Secret    string
	AccessTTL time.Duration
}

// WorkflowConfig tunes the reservation workflow.
type WorkflowConfig struct {
	SubmissionTimeout       time.Duration
	SessionIdleTTL          time.Duration
	SweepInterval           time.Duration
	TreatUnknownAsAvailable bool
}

// ServiceConfig holds all configuration for the reservation service.
type ServiceConfig struct {
	Port          string
	AppEnv        string
	CORSOrigins   []string
	MigrationsDir string
	DBConfig      database.PostgresConfig
	RedisConfig   RedisConfig
	KafkaConfig   KafkaConfig
	JWTConfig     JWTConfig
	Workflow      WorkflowConfig
}

// Load reads configuration from RENTAL_* environment variables and an optional .env file.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return &ServiceConfig{
		Port:          normalizePort(v.GetString("service_port")),
		AppEnv:        v.GetString("app_env"),
		CORSOrigins:   splitCSV(v.GetString("cors_origins")),
		MigrationsDir: v.GetString("migrations_dir"),
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("db_host"),
			Port:     v.GetString("db_port"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			DBName:   v.GetString("db_name"),
			SSLMode:  v.GetString("db_sslmode"),
		},
		RedisConfig: RedisConfig{
			URL:      v.GetString("redis_url"),
			CacheTTL: v.GetDuration("catalog_cache_ttl"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     splitCSV(v.GetString("kafka_brokers")),
			GroupPrefix: v.GetString("kafka_group_prefix"),
		},
		JWTConfig: JWTConfig{
			Secret:    v.GetString("jwt_secret"),
			AccessTTL: v.GetDuration("jwt_access_ttl"),
		},
		Workflow: WorkflowConfig{
			SubmissionTimeout:       v.GetDuration("submission_timeout"),
			SessionIdleTTL:          v.GetDuration("session_idle_ttl"),
			SweepInterval:           v.GetDuration("session_sweep_interval"),
			TreatUnknownAsAvailable: v.GetBool("unknown_availability_bookable"),
		},
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_port", "8080")
	v.SetDefault("app_env", "production")
	v.SetDefault("cors_origins", "")
	v.SetDefault("migrations_dir", "migrations")

	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "rental")
	v.SetDefault("db_password", "rental")
	v.SetDefault("db_name", "rental_reservations")
	v.SetDefault("db_sslmode", "disable")

	v.SetDefault("redis_url", "redis://localhost:6379/0")
	v.SetDefault("catalog_cache_ttl", "5m")

	v.SetDefault("kafka_brokers", "localhost:9092")
	v.SetDefault("kafka_group_prefix", "rental-")

	v.SetDefault("jwt_secret", "change-me")
	v.SetDefault("jwt_access_ttl", "15m")

	v.SetDefault("submission_timeout", "15s")
	v.SetDefault("session_idle_ttl", "30m")
	v.SetDefault("session_sweep_interval", "1m")
	// Unreported availability is bookable unless product decides otherwise.
	v.SetDefault("unknown_availability_bookable", true)
}

func normalizePort(port string) string {
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
