package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "VRI"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "VRI_DB_DSN"
	EnvDBHost = "VRI_DB_HOST"
	EnvDBUser = "VRI_DB_USER"
	EnvDBName = "VRI_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	Retail  RetailConfig
	Verkada VerkadaConfig
	Ingest  IngestConfig
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
	Env          string `envconfig:"VRI_APP_ENV" required:"true"`
	Port         string `envconfig:"VRI_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"VRI_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VRI_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"VRI_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VRI_DB_DSN"`
	Driver string `envconfig:"VRI_DB_DRIVER" default:"postgres"`

	// SQLitePath backs the sqlite driver used for local development.
	SQLitePath string `envconfig:"VRI_SQLITE_PATH" default:"jdsports.db"`

	LegacyHost     string `envconfig:"VRI_DB_HOST"`
	LegacyPort     int    `envconfig:"VRI_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VRI_DB_USER"`
	LegacyPassword string `envconfig:"VRI_DB_PASSWORD"`
	LegacyName     string `envconfig:"VRI_DB_NAME"`
	LegacySSLMode  string `envconfig:"VRI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VRI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VRI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VRI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VRI_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// UsesSQLite reports whether the sqlite driver was selected.
func (db DBConfig) UsesSQLite() bool {
	return strings.EqualFold(db.Driver, "sqlite")
}

type RedisConfig struct {
	URL          string        `envconfig:"VRI_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VRI_REDIS_ADDR"`
	Password     string        `envconfig:"VRI_REDIS_PASSWORD"`
	DB           int           `envconfig:"VRI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VRI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VRI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VRI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VRI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VRI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// RetailConfig points at the retail backend's read APIs.
type RetailConfig struct {
	SalesURL     string        `envconfig:"VRI_RETAIL_SALES_URL" default:"https://api.jdsports.com/sales/v1/transactions"`
	InventoryURL string        `envconfig:"VRI_RETAIL_INVENTORY_URL" default:"https://api.jdsports.com/inventory/v1/items"`
	POSURL       string        `envconfig:"VRI_RETAIL_POS_URL" default:"https://api.jdsports.com/pos/v1/pos"`
	StoreURL     string        `envconfig:"VRI_RETAIL_STORE_URL" default:"https://api.jdsports.com/store/v1/stores"`
	APIKey       string        `envconfig:"VRI_RETAIL_API_KEY"`
	Timeout      time.Duration `envconfig:"VRI_RETAIL_TIMEOUT" default:"10s"`
}

// VerkadaConfig carries the video platform credential and endpoints.
type VerkadaConfig struct {
	BaseURL         string        `envconfig:"VRI_VERKADA_BASE_URL" default:"https://api.verkada.com"`
	APIKey          string        `envconfig:"VRI_VERKADA_API_KEY" required:"true"`
	OrgID           string        `envconfig:"VRI_VERKADA_ORG_ID" required:"true"`
	ThumbnailExpiry time.Duration `envconfig:"VRI_VERKADA_THUMBNAIL_EXPIRY" default:"24h"`
	Timeout         time.Duration `envconfig:"VRI_VERKADA_TIMEOUT" default:"10s"`
}

// IngestConfig tunes the ingestion pipeline.
type IngestConfig struct {
	Window        time.Duration `envconfig:"VRI_INGEST_WINDOW" default:"1h"`
	EventTypeName string        `envconfig:"VRI_INGEST_EVENT_TYPE_NAME" default:"Sales Transactions"`
	LockTTL       time.Duration `envconfig:"VRI_INGEST_LOCK_TTL" default:"15m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.UsesSQLite() {
		if db.SQLitePath == "" {
			return fmt.Errorf("%s is required when the sqlite driver is selected", "VRI_SQLITE_PATH")
		}
		return nil
	}
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
