package config

// EnvPrefix namespaces every environment variable read by envconfig.
const EnvPrefix = "STOCKROOM"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv            = "STOCKROOM_APP_ENV"
	EnvPort              = "STOCKROOM_APP_PORT"
	EnvDBDSN             = "STOCKROOM_DB_DSN"
	EnvDBHost            = "STOCKROOM_DB_HOST"
	EnvDBUser            = "STOCKROOM_DB_USER"
	EnvDBName            = "STOCKROOM_DB_NAME"
	EnvRedisURL          = "STOCKROOM_REDIS_URL"
	EnvJWTSecret         = "STOCKROOM_JWT_SECRET"
	EnvJWTIssuer         = "STOCKROOM_JWT_ISSUER"
	EnvJWTExpMins        = "STOCKROOM_JWT_EXPIRATION_MINUTES"
	EnvSessionTTLMinutes = "STOCKROOM_SESSION_TTL_MINUTES"
	EnvS3Region          = "STOCKROOM_S3_REGION"
	EnvS3Bucket          = "STOCKROOM_S3_BUCKET"
	EnvS3UploadExpiry    = "STOCKROOM_S3_UPLOAD_URL_EXPIRY"
)

// legacyDBEnvVars are the discrete connection vars accepted in place of a DSN.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
