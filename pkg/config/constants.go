package config

// EnvPrefix scopes every environment variable read by envconfig.
const EnvPrefix = "LABSTOCK"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv = "LABSTOCK_APP_ENV"
	EnvPort   = "LABSTOCK_APP_PORT"

	EnvDBDSN  = "LABSTOCK_DB_DSN"
	EnvDBHost = "LABSTOCK_DB_HOST"
	EnvDBUser = "LABSTOCK_DB_USER"
	EnvDBName = "LABSTOCK_DB_NAME"

	EnvRedisURL  = "LABSTOCK_REDIS_URL"
	EnvJWTSecret = "LABSTOCK_JWT_SECRET"
	EnvJWTIssuer = "LABSTOCK_JWT_ISSUER"
	EnvJWTExpiry = "LABSTOCK_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
