// Package config loads service configuration: built-in defaults, then an
// optional YAML file named by FRAUDGATE_CONFIG, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	strutil "fraudgate/pkg/platform/strings"
)

// ConfigFileEnv names the optional YAML overlay.
const ConfigFileEnv = "FRAUDGATE_CONFIG"

type Config struct {
	Server       Server       `yaml:"server"`
	Access       Access       `yaml:"access"`
	Verification Verification `yaml:"verification"`
	Postgres     Postgres     `yaml:"postgres"`
	Redis        RedisConfig  `yaml:"redis"`
	AWS          AWS          `yaml:"aws"`
	Telegram     Telegram     `yaml:"telegram"`
	Kafka        Kafka        `yaml:"kafka"`
	Admin        Admin        `yaml:"admin"`
	CORS         CORS         `yaml:"cors"`
	Audit        Audit        `yaml:"audit"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `yaml:"addr"`
	Environment     string        `yaml:"environment"`
	TrustProxy      bool          `yaml:"trust_proxy"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Access configures the access gate and its origin cache.
type Access struct {
	CacheSize        int           `yaml:"cache_size"`
	CacheTTL         time.Duration `yaml:"cache_ttl"`
	RedirectURL      string        `yaml:"redirect_url"`
	BreakerThreshold int           `yaml:"breaker_threshold"`
	BreakerCooldown  time.Duration `yaml:"breaker_cooldown"`
}

// Verification configures the claim pipeline.
type Verification struct {
	FraudThreshold    float64       `yaml:"fraud_threshold"`
	ClassifierTimeout time.Duration `yaml:"classifier_timeout"`
	MaxUploadBytes    int64         `yaml:"max_upload_bytes"`
	OriginHashKey     string        `yaml:"origin_hash_key"`
	BanRetryAttempts  int           `yaml:"ban_retry_attempts"`
	BanRetryBackoff   time.Duration `yaml:"ban_retry_backoff"`
	// PaymentAddresses maps a network label ("btc", "ton") to the only
	// destination address a genuine payment may show.
	PaymentAddresses map[string]string `yaml:"payment_addresses"`
}

// Postgres is optional; without a DSN the in-memory stores are used.
type Postgres struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

// RedisConfig is optional; when set it backs the ban store.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// AWS groups the S3 artifact bucket, the Bedrock model and SES alerts.
type AWS struct {
	Region         string   `yaml:"region"`
	Bucket         string   `yaml:"bucket"`
	ArtifactPrefix string   `yaml:"artifact_prefix"`
	ModelID        string   `yaml:"model_id"`
	SESFrom        string   `yaml:"ses_from"`
	SESTo          []string `yaml:"ses_to"`
}

type Telegram struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
	APIBase  string `yaml:"api_base"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type Admin struct {
	Token         string        `yaml:"token"`
	JWTSigningKey string        `yaml:"jwt_signing_key"`
	JWTIssuer     string        `yaml:"jwt_issuer"`
	JWTAudience   string        `yaml:"jwt_audience"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
	Emails        []string      `yaml:"emails"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Audit struct {
	BufferSize    int           `yaml:"buffer_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			Environment:     "development",
			ShutdownTimeout: 15 * time.Second,
		},
		Access: Access{
			CacheSize:        5000,
			CacheTTL:         time.Hour,
			RedirectURL:      "https://www.google.com",
			BreakerThreshold: 5,
			BreakerCooldown:  10 * time.Second,
		},
		Verification: Verification{
			FraudThreshold:    0.8,
			ClassifierTimeout: 15 * time.Second,
			MaxUploadBytes:    5 << 20,
			BanRetryAttempts:  3,
			BanRetryBackoff:   100 * time.Millisecond,
		},
		Postgres: Postgres{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
		AWS: AWS{
			Region:         "us-east-1",
			ArtifactPrefix: "screenshots/",
		},
		Telegram: Telegram{
			APIBase: "https://api.telegram.org",
		},
		Kafka: Kafka{
			Topic: "fraudgate.audit",
		},
		Admin: Admin{
			JWTIssuer:   "fraudgate",
			JWTAudience: "fraudgate-admin",
			TokenTTL:    12 * time.Hour,
		},
		Audit: Audit{
			BufferSize:    10000,
			FlushInterval: time.Second,
		},
	}
}

// Load builds the configuration from defaults, the YAML overlay and the environment.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.normalizeLists()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// normalizeLists applies the env list rules to values that came from YAML.
func (c *Config) normalizeLists() {
	c.AWS.SESTo = strutil.DedupeAndTrim(c.AWS.SESTo)
	c.Kafka.Brokers = strutil.DedupeAndTrim(c.Kafka.Brokers)
	c.Admin.Emails = strutil.DedupeAndTrim(c.Admin.Emails)
	c.CORS.AllowedOrigins = strutil.DedupeAndTrim(c.CORS.AllowedOrigins)
}

// Validate rejects values the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server addr is required"))
	}
	if c.Access.CacheSize <= 0 {
		errs = append(errs, errors.New("access cache size must be positive"))
	}
	if c.Access.CacheTTL <= 0 {
		errs = append(errs, errors.New("access cache ttl must be positive"))
	}
	if c.Access.RedirectURL == "" {
		errs = append(errs, errors.New("access redirect url is required"))
	}
	if c.Verification.FraudThreshold <= 0 || c.Verification.FraudThreshold > 1 {
		errs = append(errs, errors.New("fraud threshold must be in (0,1]"))
	}
	if c.Verification.ClassifierTimeout <= 0 {
		errs = append(errs, errors.New("classifier timeout must be positive"))
	}
	if c.Verification.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("max upload bytes must be positive"))
	}
	if c.Verification.BanRetryAttempts <= 0 {
		errs = append(errs, errors.New("ban retry attempts must be positive"))
	}
	if len(c.Verification.OriginHashKey) > 64 {
		errs = append(errs, errors.New("origin hash key must be at most 64 bytes"))
	}
	if c.Audit.BufferSize <= 0 {
		errs = append(errs, errors.New("audit buffer size must be positive"))
	}
	if c.Server.Environment == "production" {
		if c.Verification.OriginHashKey == "" {
			errs = append(errs, errors.New("origin hash key is required in production"))
		}
		if c.Admin.Token == "" && c.Admin.JWTSigningKey == "" {
			errs = append(errs, errors.New("admin token or jwt signing key is required in production"))
		}
	}
	return errors.Join(errs...)
}
