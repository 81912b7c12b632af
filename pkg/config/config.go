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
	Storage      StorageConfig
	Password     PasswordConfig
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
	Env          string `envconfig:"GCMNLIB_APP_ENV" required:"true"`
	Port         string `envconfig:"GCMNLIB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GCMNLIB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GCMNLIB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GCMNLIB_DB_DSN"`
	Driver string `envconfig:"GCMNLIB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GCMNLIB_DB_HOST"`
	LegacyPort     int    `envconfig:"GCMNLIB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GCMNLIB_DB_USER"`
	LegacyPassword string `envconfig:"GCMNLIB_DB_PASSWORD"`
	LegacyName     string `envconfig:"GCMNLIB_DB_NAME"`
	LegacySSLMode  string `envconfig:"GCMNLIB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GCMNLIB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GCMNLIB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GCMNLIB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GCMNLIB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// StorageConfig points at the hosted object store. ServiceKey is the backend
// secret attached to every storage call; it is required with no default so a
// misconfigured process fails at boot instead of running with a guessable
// fallback.
type StorageConfig struct {
	URL            string        `envconfig:"GCMNLIB_STORAGE_URL" required:"true"`
	ServiceKey     string        `envconfig:"GCMNLIB_STORAGE_SERVICE_KEY" required:"true"`
	RequestTimeout time.Duration `envconfig:"GCMNLIB_STORAGE_REQUEST_TIMEOUT" default:"30s"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GCMNLIB_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GCMNLIB_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GCMNLIB_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GCMNLIB_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GCMNLIB_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GCMNLIB_AUTO_MIGRATE" default:"false"`
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
