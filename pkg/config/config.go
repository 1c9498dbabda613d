package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every environment variable the app reads.
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "GEARMART_DB_DSN"
	EnvDBHost = "GEARMART_DB_HOST"
	EnvDBUser = "GEARMART_DB_USER"
	EnvDBName = "GEARMART_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Cart         CartConfig
	Checkout     CheckoutConfig
	Paystack     PaystackConfig
	Mail         MailConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"GEARMART_APP_ENV" required:"true"`
	Port         string `envconfig:"GEARMART_APP_PORT" default:"8080"`
	BaseURL      string `envconfig:"GEARMART_APP_BASE_URL" default:"http://localhost:8080"`
	LogLevel     string `envconfig:"GEARMART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GEARMART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GEARMART_DB_DSN"`
	Driver string `envconfig:"GEARMART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GEARMART_DB_HOST"`
	LegacyPort     int    `envconfig:"GEARMART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GEARMART_DB_USER"`
	LegacyPassword string `envconfig:"GEARMART_DB_PASSWORD"`
	LegacyName     string `envconfig:"GEARMART_DB_NAME"`
	LegacySSLMode  string `envconfig:"GEARMART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GEARMART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GEARMART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GEARMART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GEARMART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GEARMART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GEARMART_REDIS_ADDR"`
	Password     string        `envconfig:"GEARMART_REDIS_PASSWORD"`
	DB           int           `envconfig:"GEARMART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GEARMART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GEARMART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GEARMART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GEARMART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GEARMART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"GEARMART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GEARMART_JWT_ISSUER" default:"gearmart"`
	ExpirationMinutes int    `envconfig:"GEARMART_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GEARMART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GEARMART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GEARMART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GEARMART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GEARMART_ARGON_KEY_LEN" default:"32"`
}

type CartConfig struct {
	CookieName string        `envconfig:"GEARMART_CART_COOKIE_NAME" default:"cart_session"`
	SessionTTL time.Duration `envconfig:"GEARMART_CART_SESSION_TTL" default:"168h"`
}

type CheckoutConfig struct {
	OrderNumberPrefix string `envconfig:"GEARMART_ORDER_NUMBER_PREFIX" default:"GM"`
	Currency          string `envconfig:"GEARMART_CURRENCY" default:"NGN"`
}

type PaystackConfig struct {
	SecretKey   string        `envconfig:"GEARMART_PAYSTACK_SECRET_KEY" required:"true"`
	PublicKey   string        `envconfig:"GEARMART_PAYSTACK_PUBLIC_KEY"`
	BaseURL     string        `envconfig:"GEARMART_PAYSTACK_BASE_URL" default:"https://api.paystack.co"`
	CallbackURL string        `envconfig:"GEARMART_PAYSTACK_CALLBACK_URL"`
	HTTPTimeout time.Duration `envconfig:"GEARMART_PAYSTACK_HTTP_TIMEOUT" default:"30s"`
}

type MailConfig struct {
	Host     string `envconfig:"GEARMART_SMTP_HOST"`
	Port     int    `envconfig:"GEARMART_SMTP_PORT" default:"587"`
	Username string `envconfig:"GEARMART_SMTP_USERNAME"`
	Password string `envconfig:"GEARMART_SMTP_PASSWORD"`
	From     string `envconfig:"GEARMART_SMTP_FROM"`
}

// Enabled reports whether the mail transport has enough config to send.
func (m MailConfig) Enabled() bool {
	return m.Host != "" && m.From != ""
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GEARMART_AUTO_MIGRATE" default:"false"`
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
