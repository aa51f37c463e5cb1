package config

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "MEGANO"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "MEGANO_DB_DSN"
	EnvDBHost = "MEGANO_DB_HOST"
	EnvDBUser = "MEGANO_DB_USER"
	EnvDBName = "MEGANO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
