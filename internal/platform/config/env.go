package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	strutil "fraudgate/pkg/platform/strings"
)

// applyEnv overrides cfg with any variables that are set.
func applyEnv(cfg *Config) error {
	p := envParser{}

	p.str("FRAUDGATE_ADDR", &cfg.Server.Addr)
	p.str("ENVIRONMENT", &cfg.Server.Environment)
	p.boolean("TRUST_PROXY", &cfg.Server.TrustProxy)
	p.duration("SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	p.integer("ACCESS_CACHE_SIZE", &cfg.Access.CacheSize)
	p.duration("ACCESS_CACHE_TTL", &cfg.Access.CacheTTL)
	p.str("ACCESS_REDIRECT_URL", &cfg.Access.RedirectURL)
	p.integer("ACCESS_BREAKER_THRESHOLD", &cfg.Access.BreakerThreshold)
	p.duration("ACCESS_BREAKER_COOLDOWN", &cfg.Access.BreakerCooldown)

	p.float("FRAUD_THRESHOLD", &cfg.Verification.FraudThreshold)
	p.duration("CLASSIFIER_TIMEOUT", &cfg.Verification.ClassifierTimeout)
	p.int64("MAX_UPLOAD_BYTES", &cfg.Verification.MaxUploadBytes)
	p.str("ORIGIN_HASH_KEY", &cfg.Verification.OriginHashKey)
	p.integer("BAN_RETRY_ATTEMPTS", &cfg.Verification.BanRetryAttempts)
	p.duration("BAN_RETRY_BACKOFF", &cfg.Verification.BanRetryBackoff)
	p.pairs("PAYMENT_ADDRESSES", &cfg.Verification.PaymentAddresses)

	p.str("DATABASE_URL", &cfg.Postgres.DSN)
	p.integer("DATABASE_MAX_OPEN_CONNS", &cfg.Postgres.MaxOpenConns)
	p.integer("DATABASE_MAX_IDLE_CONNS", &cfg.Postgres.MaxIdleConns)
	p.boolean("DATABASE_AUTO_MIGRATE", &cfg.Postgres.AutoMigrate)

	p.str("REDIS_URL", &cfg.Redis.URL)
	p.integer("REDIS_POOL_SIZE", &cfg.Redis.PoolSize)

	p.str("AWS_REGION", &cfg.AWS.Region)
	p.str("S3_BUCKET_NAME", &cfg.AWS.Bucket)
	p.str("S3_ARTIFACT_PREFIX", &cfg.AWS.ArtifactPrefix)
	p.str("BEDROCK_MODEL_ID", &cfg.AWS.ModelID)
	p.str("SES_FROM", &cfg.AWS.SESFrom)
	p.list("SES_TO", &cfg.AWS.SESTo)

	p.str("TELEGRAM_BOT_TOKEN", &cfg.Telegram.BotToken)
	p.str("TELEGRAM_CHAT_ID", &cfg.Telegram.ChatID)
	p.str("TELEGRAM_API_BASE", &cfg.Telegram.APIBase)

	p.list("KAFKA_BROKERS", &cfg.Kafka.Brokers)
	p.str("KAFKA_AUDIT_TOPIC", &cfg.Kafka.Topic)

	p.str("ADMIN_TOKEN", &cfg.Admin.Token)
	p.str("ADMIN_JWT_SIGNING_KEY", &cfg.Admin.JWTSigningKey)
	p.str("ADMIN_JWT_ISSUER", &cfg.Admin.JWTIssuer)
	p.list("ADMIN_EMAILS", &cfg.Admin.Emails)

	p.list("CORS_ALLOWED_ORIGINS", &cfg.CORS.AllowedOrigins)

	p.integer("AUDIT_BUFFER_SIZE", &cfg.Audit.BufferSize)
	p.duration("AUDIT_FLUSH_INTERVAL", &cfg.Audit.FlushInterval)

	return p.err
}

// envParser records the first malformed variable and ignores the rest.
type envParser struct {
	err error
}

func (p *envParser) lookup(key string) (string, bool) {
	if p.err != nil {
		return "", false
	}
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (p *envParser) fail(key string, err error) {
	p.err = fmt.Errorf("invalid %s: %w", key, err)
}

func (p *envParser) str(key string, dst *string) {
	if v, ok := p.lookup(key); ok {
		*dst = v
	}
}

func (p *envParser) boolean(key string, dst *bool) {
	if v, ok := p.lookup(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			p.fail(key, err)
			return
		}
		*dst = b
	}
}

func (p *envParser) integer(key string, dst *int) {
	if v, ok := p.lookup(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			p.fail(key, err)
			return
		}
		*dst = n
	}
}

func (p *envParser) int64(key string, dst *int64) {
	if v, ok := p.lookup(key); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			p.fail(key, err)
			return
		}
		*dst = n
	}
}

func (p *envParser) float(key string, dst *float64) {
	if v, ok := p.lookup(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			p.fail(key, err)
			return
		}
		*dst = f
	}
}

func (p *envParser) duration(key string, dst *time.Duration) {
	if v, ok := p.lookup(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			p.fail(key, err)
			return
		}
		*dst = d
	}
}

func (p *envParser) list(key string, dst *[]string) {
	if v, ok := p.lookup(key); ok {
		*dst = strutil.SplitList(v)
	}
}

// pairs parses "k1=v1,k2=v2" into a map.
func (p *envParser) pairs(key string, dst *map[string]string) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	out := make(map[string]string)
	for _, part := range strings.Split(v, ",") {
		k, val, found := strings.Cut(part, "=")
		k, val = strings.TrimSpace(k), strings.TrimSpace(val)
		if !found || k == "" || val == "" {
			p.fail(key, fmt.Errorf("expected key=value, got %q", part))
			return
		}
		out[k] = val
	}
	*dst = out
}
