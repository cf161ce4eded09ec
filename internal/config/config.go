package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all service configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	JWT          JWTConfig          `yaml:"jwt"`
	Logger       LoggerConfig       `yaml:"logger"`
	S3           S3Config           `yaml:"s3"`
	Notification NotificationConfig `yaml:"notification"`
	Lock         LockConfig         `yaml:"lock"`
	Tracing      TracingConfig      `yaml:"tracing"`
	Jobs         JobsConfig         `yaml:"jobs"`
	Cache        CacheConfig        `yaml:"cache"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Mode            string        `yaml:"mode"`
	BasePath        string        `yaml:"base_path"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite"
	Driver          string        `yaml:"driver"`
	URL             string        `yaml:"url"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	DBName          string        `yaml:"dbname"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// GetDSN returns the connection string for the configured driver.
// An explicit URL always wins.
func (d DatabaseConfig) GetDSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == "sqlite" {
		return "campus_events.db"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Enabled reports whether any redis endpoint is configured
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Addr != ""
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

type NotificationConfig struct {
	BaseURL        string        `yaml:"base_url"`
	InternalAPIKey string        `yaml:"internal_api_key"`
	Timeout        time.Duration `yaml:"timeout"`
}

// LockConfig bounds how long a request may wait for the per-event lock
// and how long a distributed lock is leased before it expires on its own.
type LockConfig struct {
	WaitTimeout   time.Duration `yaml:"wait_timeout"`
	LeaseTime     time.Duration `yaml:"lease_time"`
	RetryInterval time.Duration `yaml:"retry_interval"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"`
	ServiceName  string  `yaml:"service_name"`
}

type JobsConfig struct {
	MetricsSchedule      string `yaml:"metrics_schedule"`
	ImageCleanupSchedule string `yaml:"image_cleanup_schedule"`
}

type CacheConfig struct {
	EventTTL        time.Duration `yaml:"event_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// Default returns the configuration used when no file or env overrides exist
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Mode:            "debug",
			BasePath:        "/api",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "campus_events",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Logger: LoggerConfig{Level: "info"},
		Notification: NotificationConfig{
			Timeout: 3 * time.Second,
		},
		Lock: LockConfig{
			WaitTimeout:   10 * time.Second,
			LeaseTime:     30 * time.Second,
			RetryInterval: 50 * time.Millisecond,
		},
		Tracing: TracingConfig{
			Exporter:     "stdout",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
			ServiceName:  "campus-events-api",
		},
		Jobs: JobsConfig{
			MetricsSchedule:      "@every 60s",
			ImageCleanupSchedule: "@every 10m",
		},
		Cache: CacheConfig{
			EventTTL:        30 * time.Second,
			CleanupInterval: 5 * time.Minute,
		},
	}
}

// Load reads the yaml file at path (if present) on top of the defaults,
// then applies environment variable overrides
func Load(path string) (*Config, error) {
	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings the service cannot start without
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Lock.WaitTimeout <= 0 {
		return fmt.Errorf("lock wait timeout must be positive")
	}
	if c.Lock.LeaseTime <= 0 {
		return fmt.Errorf("lock lease time must be positive")
	}
	return nil
}

func applyEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		cfg.Server.Mode = mode
	}
	if env := os.Getenv("ENV"); env == "production" {
		cfg.Server.Mode = "release"
	}
	if basePath := os.Getenv("SERVER_BASE_PATH"); basePath != "" {
		cfg.Server.BasePath = basePath
	}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = splitList(origins)
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.Logger.Level = logLevel
	}

	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		cfg.Database.Driver = driver
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Database.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.DBName = name
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Redis.URL = redisURL
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		cfg.Redis.Addr = redisAddr
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		cfg.Redis.Password = redisPassword
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}

	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		cfg.S3.Bucket = bucket
	}
	if region := os.Getenv("S3_REGION"); region != "" {
		cfg.S3.Region = region
	}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		cfg.S3.Endpoint = endpoint
	}
	if accessKey := os.Getenv("S3_ACCESS_KEY"); accessKey != "" {
		cfg.S3.AccessKey = accessKey
	}
	if secretKey := os.Getenv("S3_SECRET_KEY"); secretKey != "" {
		cfg.S3.SecretKey = secretKey
	}

	if notiURL := os.Getenv("NOTI_SERVICE_URL"); notiURL != "" {
		cfg.Notification.BaseURL = notiURL
	}
	if apiKey := os.Getenv("INTERNAL_API_KEY"); apiKey != "" {
		cfg.Notification.InternalAPIKey = apiKey
	}

	if schedule := os.Getenv("IMAGE_CLEANUP_SCHEDULE"); schedule != "" {
		cfg.Jobs.ImageCleanupSchedule = schedule
	}

	if wait := os.Getenv("LOCK_WAIT_TIMEOUT"); wait != "" {
		if d, err := time.ParseDuration(wait); err == nil {
			cfg.Lock.WaitTimeout = d
		}
	}
	if lease := os.Getenv("LOCK_LEASE_TIME"); lease != "" {
		if d, err := time.ParseDuration(lease); err == nil {
			cfg.Lock.LeaseTime = d
		}
	}

	if enabled := os.Getenv("TRACING_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			cfg.Tracing.Enabled = b
		}
	}
	if exporter := os.Getenv("TRACING_EXPORTER"); exporter != "" {
		cfg.Tracing.Exporter = exporter
	}
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		cfg.Tracing.OTLPEndpoint = endpoint
	}
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
