package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	Password PasswordConfig
	Auth     AuthConfig
	S3       S3Config
	Media    MediaConfig
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
	Env          string `envconfig:"NEWSWIRE_APP_ENV" required:"true"`
	Port         string `envconfig:"NEWSWIRE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"NEWSWIRE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"NEWSWIRE_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"NEWSWIRE_AUTO_MIGRATE" default:"false"`

	CORSOrigins []string `envconfig:"NEWSWIRE_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"NEWSWIRE_DB_DSN"`
	Driver string `envconfig:"NEWSWIRE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"NEWSWIRE_DB_HOST"`
	Port     int    `envconfig:"NEWSWIRE_DB_PORT" default:"5432"`
	User     string `envconfig:"NEWSWIRE_DB_USER"`
	Password string `envconfig:"NEWSWIRE_DB_PASSWORD"`
	Name     string `envconfig:"NEWSWIRE_DB_NAME"`
	SSLMode  string `envconfig:"NEWSWIRE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"NEWSWIRE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"NEWSWIRE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"NEWSWIRE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"NEWSWIRE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"NEWSWIRE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"NEWSWIRE_REDIS_ADDR"`
	Password     string        `envconfig:"NEWSWIRE_REDIS_PASSWORD"`
	DB           int           `envconfig:"NEWSWIRE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NEWSWIRE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NEWSWIRE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NEWSWIRE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NEWSWIRE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NEWSWIRE_REDIS_WRITE_TIMEOUT" default:"5s"`

	ConnectAttempts uint64        `envconfig:"NEWSWIRE_REDIS_CONNECT_ATTEMPTS" default:"5"`
	ConnectBackoff  time.Duration `envconfig:"NEWSWIRE_REDIS_CONNECT_BACKOFF" default:"500ms"`
}

// PasswordConfig carries the Argon2id cost parameters for login-grade hashes.
// The Provision* fields hold the minimal cost used when hashing generated
// secrets for auto-provisioned accounts; those credentials exist only so the
// record has a non-empty hash and are never expected at login.
type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"NEWSWIRE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"NEWSWIRE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"NEWSWIRE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"NEWSWIRE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"NEWSWIRE_ARGON_KEY_LEN" default:"32"`

	ProvisionMemoryKB int `envconfig:"NEWSWIRE_ARGON_PROVISION_MEMORY_KB" default:"8"`
	ProvisionTime     int `envconfig:"NEWSWIRE_ARGON_PROVISION_TIME" default:"1"`
}

// Provision returns the low-cost parameter set for generated credentials.
func (p PasswordConfig) Provision() PasswordConfig {
	cfg := p
	cfg.ArgonMemoryKB = p.ProvisionMemoryKB
	cfg.ArgonTime = p.ProvisionTime
	cfg.ArgonParallelism = 1
	return cfg
}

// AuthConfig holds the flat shared secret checked by the access gate.
type AuthConfig struct {
	BearerToken string `envconfig:"NEWSWIRE_BEARER_TOKEN" required:"true"`
}

type S3Config struct {
	Region          string `envconfig:"NEWSWIRE_AWS_REGION" required:"true"`
	AccessKeyID     string `envconfig:"NEWSWIRE_AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"NEWSWIRE_AWS_SECRET_ACCESS_KEY"`
	Bucket          string `envconfig:"NEWSWIRE_S3_BUCKET_NAME" required:"true"`
	BaseEndpoint    string `envconfig:"NEWSWIRE_S3_BASE_ENDPOINT"`
}

type MediaConfig struct {
	MaxUploadMB   int           `envconfig:"NEWSWIRE_MAX_UPLOAD_MB" default:"20"`
	KeyPrefix     string        `envconfig:"NEWSWIRE_MEDIA_KEY_PREFIX" default:"banner-image-new"`
	CacheControl  string        `envconfig:"NEWSWIRE_MEDIA_CACHE_CONTROL" default:"public, max-age=31536000, immutable"`
	UploadTimeout time.Duration `envconfig:"NEWSWIRE_MEDIA_UPLOAD_TIMEOUT" default:"30s"`
	RandomNameLen int           `envconfig:"NEWSWIRE_MEDIA_RANDOM_NAME_LEN" default:"16"`
}

func (m MediaConfig) MaxUploadBytes() int64 {
	return int64(m.MaxUploadMB) * 1024 * 1024
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range componentDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
