package config

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "HACKFEST"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv    = "HACKFEST_APP_ENV"
	EnvPort      = "HACKFEST_APP_PORT"
	EnvDBDSN     = "HACKFEST_DB_DSN"
	EnvDBHost    = "HACKFEST_DB_HOST"
	EnvDBUser    = "HACKFEST_DB_USER"
	EnvDBName    = "HACKFEST_DB_NAME"
	EnvRedisURL  = "HACKFEST_REDIS_URL"
	EnvJWTSecret = "HACKFEST_JWT_SECRET"
	EnvJWTIssuer = "HACKFEST_JWT_ISSUER"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
