package config

const (
	EnvPrefix = "FARMFRESH"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "FARMFRESH_DB_DSN"
	EnvDBHost = "FARMFRESH_DB_HOST"
	EnvDBUser = "FARMFRESH_DB_USER"
	EnvDBName = "FARMFRESH_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
