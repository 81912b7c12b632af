package config

// EnvPrefix is the envconfig prefix shared by every binary.
const EnvPrefix = "GCMNLIB"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv            = "GCMNLIB_APP_ENV"
	EnvPort              = "GCMNLIB_APP_PORT"
	EnvDBDSN             = "GCMNLIB_DB_DSN"
	EnvDBHost            = "GCMNLIB_DB_HOST"
	EnvDBUser            = "GCMNLIB_DB_USER"
	EnvDBName            = "GCMNLIB_DB_NAME"
	EnvStorageURL        = "GCMNLIB_STORAGE_URL"
	EnvStorageServiceKey = "GCMNLIB_STORAGE_SERVICE_KEY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
