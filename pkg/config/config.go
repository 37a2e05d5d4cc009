package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "DEALHAVEN"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv = "DEALHAVEN_APP_ENV"
	EnvDBDSN  = "DEALHAVEN_DB_DSN"
	EnvDBHost = "DEALHAVEN_DB_HOST"
	EnvDBUser = "DEALHAVEN_DB_USER"
	EnvDBName = "DEALHAVEN_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Webhooks     WebhooksConfig
	LiqPay       LiqPayConfig
	EasyPay      EasyPayConfig
	Outbox       OutboxConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DEALHAVEN_APP_ENV" required:"true"`
	Port         string `envconfig:"DEALHAVEN_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DEALHAVEN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DEALHAVEN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DEALHAVEN_DB_DSN"`
	Driver string `envconfig:"DEALHAVEN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DEALHAVEN_DB_HOST"`
	LegacyPort     int    `envconfig:"DEALHAVEN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DEALHAVEN_DB_USER"`
	LegacyPassword string `envconfig:"DEALHAVEN_DB_PASSWORD"`
	LegacyName     string `envconfig:"DEALHAVEN_DB_NAME"`
	LegacySSLMode  string `envconfig:"DEALHAVEN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DEALHAVEN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DEALHAVEN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DEALHAVEN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DEALHAVEN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DEALHAVEN_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DEALHAVEN_REDIS_ADDR"`
	Password     string        `envconfig:"DEALHAVEN_REDIS_PASSWORD"`
	DB           int           `envconfig:"DEALHAVEN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DEALHAVEN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DEALHAVEN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DEALHAVEN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DEALHAVEN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DEALHAVEN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"DEALHAVEN_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"DEALHAVEN_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"DEALHAVEN_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DEALHAVEN_AUTO_MIGRATE" default:"false"`
}

// WebhooksConfig carries the inbound notification policy per provider.
// StrictParse controls whether a malformed top-level body surfaces a 400 or
// is acknowledged with a 200; the two gateways retry on different signals.
type WebhooksConfig struct {
	IdempotencyTTL  time.Duration `envconfig:"DEALHAVEN_WEBHOOK_IDEMPOTENCY_TTL" default:"72h"`
	LiqPayStrict    bool          `envconfig:"DEALHAVEN_WEBHOOK_LIQPAY_STRICT_PARSE" default:"true"`
	EasyPayStrict   bool          `envconfig:"DEALHAVEN_WEBHOOK_EASYPAY_STRICT_PARSE" default:"false"`
	VerifySignature bool          `envconfig:"DEALHAVEN_WEBHOOK_VERIFY_SIGNATURE" default:"true"`
}

type LiqPayConfig struct {
	BaseURL    string `envconfig:"DEALHAVEN_LIQPAY_BASE_URL" default:"https://www.liqpay.ua/api"`
	PublicKey  string `envconfig:"DEALHAVEN_LIQPAY_PUBLIC_KEY"`
	PrivateKey string `envconfig:"DEALHAVEN_LIQPAY_PRIVATE_KEY"`
}

type EasyPayConfig struct {
	BaseURL    string `envconfig:"DEALHAVEN_EASYPAY_BASE_URL" default:"https://api.easypay.ua"`
	MerchantID string `envconfig:"DEALHAVEN_EASYPAY_MERCHANT_ID"`
	SecretKey  string `envconfig:"DEALHAVEN_EASYPAY_SECRET_KEY"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"DEALHAVEN_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"DEALHAVEN_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"DEALHAVEN_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"DEALHAVEN_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"DEALHAVEN_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"DEALHAVEN_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"DEALHAVEN_PUBSUB_DOMAIN_TOPIC" default:"dh-domain-events"`
	DomainSubscription string `envconfig:"DEALHAVEN_PUBSUB_DOMAIN_SUBSCRIPTION" default:"dh-domain-events-worker"`
}

type BigQueryConfig struct {
	Dataset            string `envconfig:"DEALHAVEN_BIGQUERY_DATASET" default:"dealhaven"`
	PaymentEventsTable string `envconfig:"DEALHAVEN_BIGQUERY_PAYMENT_EVENTS_TABLE" default:"payment_events"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
