package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Razorpay      RazorpayConfig
	AuthRateLimit AuthRateLimitConfig
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
	Env          string `envconfig:"FARMFRESH_APP_ENV" required:"true"`
	Port         string `envconfig:"FARMFRESH_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FARMFRESH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FARMFRESH_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FARMFRESH_DB_DSN"`
	Driver string `envconfig:"FARMFRESH_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FARMFRESH_DB_HOST"`
	LegacyPort     int    `envconfig:"FARMFRESH_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FARMFRESH_DB_USER"`
	LegacyPassword string `envconfig:"FARMFRESH_DB_PASSWORD"`
	LegacyName     string `envconfig:"FARMFRESH_DB_NAME"`
	LegacySSLMode  string `envconfig:"FARMFRESH_DB_SSLMODE" default:"disable"`

	// Transactions selects the settlement execution strategy once, at
	// startup. Set false when the backing store cannot provide
	// multi-statement transactions; settlement then runs step-by-step and
	// accepts partial application on mid-workflow failure.
	Transactions bool `envconfig:"FARMFRESH_DB_TRANSACTIONS" default:"true"`

	AutoMigrate bool `envconfig:"FARMFRESH_AUTO_MIGRATE" default:"false"`
	UseSQLite   bool `envconfig:"FARMFRESH_USE_SQLITE" default:"false"`

	MaxOpenConns    int           `envconfig:"FARMFRESH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FARMFRESH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FARMFRESH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FARMFRESH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FARMFRESH_REDIS_URL"`
	Address      string        `envconfig:"FARMFRESH_REDIS_ADDR"`
	Password     string        `envconfig:"FARMFRESH_REDIS_PASSWORD"`
	DB           int           `envconfig:"FARMFRESH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FARMFRESH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FARMFRESH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FARMFRESH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FARMFRESH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FARMFRESH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"FARMFRESH_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FARMFRESH_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"FARMFRESH_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FARMFRESH_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FARMFRESH_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FARMFRESH_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FARMFRESH_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FARMFRESH_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"FARMFRESH_AUTH_LOGIN_WINDOW" default:"15m"`
	LoginIPLimit       int           `envconfig:"FARMFRESH_AUTH_LOGIN_IP_LIMIT" default:"20"`
	LoginEmailLimit    int           `envconfig:"FARMFRESH_AUTH_LOGIN_EMAIL_LIMIT" default:"10"`
	RegisterWindow     time.Duration `envconfig:"FARMFRESH_AUTH_REGISTER_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"FARMFRESH_AUTH_REGISTER_IP_LIMIT" default:"10"`
	RegisterEmailLimit int           `envconfig:"FARMFRESH_AUTH_REGISTER_EMAIL_LIMIT" default:"5"`
}

type RazorpayConfig struct {
	KeyID     string        `envconfig:"FARMFRESH_RAZORPAY_KEY_ID"`
	KeySecret string        `envconfig:"FARMFRESH_RAZORPAY_KEY_SECRET"`
	BaseURL   string        `envconfig:"FARMFRESH_RAZORPAY_BASE_URL" default:"https://api.razorpay.com/v1"`
	Timeout   time.Duration `envconfig:"FARMFRESH_RAZORPAY_TIMEOUT" default:"15s"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" || db.UseSQLite {
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
