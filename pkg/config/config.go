package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Cache        CacheConfig
	Session      SessionConfig
	JWT          JWTConfig
	Checkout     CheckoutConfig
	Stripe       StripeConfig
	Import       ImportConfig
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
	Env          string `envconfig:"MEGANO_APP_ENV" required:"true"`
	Port         string `envconfig:"MEGANO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MEGANO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MEGANO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MEGANO_DB_DSN"`
	Driver string `envconfig:"MEGANO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MEGANO_DB_HOST"`
	LegacyPort     int    `envconfig:"MEGANO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MEGANO_DB_USER"`
	LegacyPassword string `envconfig:"MEGANO_DB_PASSWORD"`
	LegacyName     string `envconfig:"MEGANO_DB_NAME"`
	LegacySSLMode  string `envconfig:"MEGANO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MEGANO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MEGANO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MEGANO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEGANO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MEGANO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MEGANO_REDIS_ADDR"`
	Password     string        `envconfig:"MEGANO_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEGANO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEGANO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEGANO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEGANO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEGANO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEGANO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CacheConfig holds the TTLs of the read-through caches. Staleness window
// equals the TTL; writes invalidate the owning key explicitly.
type CacheConfig struct {
	CategoriesTTL      time.Duration `envconfig:"MEGANO_CACHE_CATEGORIES_TTL" default:"1h"`
	BannersTTL         time.Duration `envconfig:"MEGANO_CACHE_BANNERS_TTL" default:"10m"`
	ProductTTL         time.Duration `envconfig:"MEGANO_CACHE_PRODUCT_TTL" default:"24h"`
	SellerListingsTTL  time.Duration `envconfig:"MEGANO_CACHE_SELLER_LISTINGS_TTL" default:"24h"`
	PopularProductsTTL time.Duration `envconfig:"MEGANO_CACHE_POPULAR_PRODUCTS_TTL" default:"1h"`
}

// SessionConfig controls the anonymous storefront session (cart, comparison
// list, checkout order data).
type SessionConfig struct {
	CookieName string        `envconfig:"MEGANO_SESSION_COOKIE" default:"megano_sid"`
	TTL        time.Duration `envconfig:"MEGANO_SESSION_TTL" default:"336h"`
	Secure     bool          `envconfig:"MEGANO_SESSION_SECURE" default:"false"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"MEGANO_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"MEGANO_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"MEGANO_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"MEGANO_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

// CheckoutConfig carries the payment redirect targets and currency.
type CheckoutConfig struct {
	SuccessURL string `envconfig:"MEGANO_CHECKOUT_SUCCESS_URL" required:"true"`
	CancelURL  string `envconfig:"MEGANO_CHECKOUT_CANCEL_URL" required:"true"`
	Currency   string `envconfig:"MEGANO_CHECKOUT_CURRENCY" default:"usd"`
}

type StripeConfig struct {
	APIKey        string `envconfig:"MEGANO_STRIPE_API_KEY"`
	WebhookSecret string `envconfig:"MEGANO_STRIPE_WEBHOOK_SECRET"`
	Env           string `envconfig:"MEGANO_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// ImportConfig drives the seller listing JSON importer.
type ImportConfig struct {
	InboxDir     string        `envconfig:"MEGANO_IMPORT_INBOX_DIR" default:"import/inbox"`
	SuccessDir   string        `envconfig:"MEGANO_IMPORT_SUCCESS_DIR" default:"import/success"`
	FailureDir   string        `envconfig:"MEGANO_IMPORT_FAILURE_DIR" default:"import/failure"`
	PollInterval time.Duration `envconfig:"MEGANO_IMPORT_POLL_INTERVAL" default:"30s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MEGANO_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MEGANO_AUTO_MIGRATE" default:"false"`
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
