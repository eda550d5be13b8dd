package config

const (
	// EnvPrefix namespaces every environment variable read by Load.
	EnvPrefix = "NEWSWIRE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "NEWSWIRE_APP_ENV"
	EnvPort     = "NEWSWIRE_APP_PORT"
	EnvDBDSN    = "NEWSWIRE_DB_DSN"
	EnvDBHost   = "NEWSWIRE_DB_HOST"
	EnvDBUser   = "NEWSWIRE_DB_USER"
	EnvDBName   = "NEWSWIRE_DB_NAME"
	EnvRedisURL = "NEWSWIRE_REDIS_URL"

	EnvBearerToken = "NEWSWIRE_BEARER_TOKEN"
	EnvAWSRegion   = "NEWSWIRE_AWS_REGION"
	EnvS3Bucket    = "NEWSWIRE_S3_BUCKET_NAME"
)

var componentDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
