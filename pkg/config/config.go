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
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	SMTP          SMTPConfig
	Event         EventConfig
	AdminSeed     AdminSeedConfig
	Reset         PasswordResetConfig
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
	Env          string `envconfig:"HACKFEST_APP_ENV" required:"true"`
	Port         string `envconfig:"HACKFEST_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"HACKFEST_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HACKFEST_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"HACKFEST_DB_DSN"`
	Driver string `envconfig:"HACKFEST_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HACKFEST_DB_HOST"`
	LegacyPort     int    `envconfig:"HACKFEST_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HACKFEST_DB_USER"`
	LegacyPassword string `envconfig:"HACKFEST_DB_PASSWORD"`
	LegacyName     string `envconfig:"HACKFEST_DB_NAME"`
	LegacySSLMode  string `envconfig:"HACKFEST_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HACKFEST_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HACKFEST_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HACKFEST_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HACKFEST_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HACKFEST_REDIS_URL"`
	Address      string        `envconfig:"HACKFEST_REDIS_ADDR"`
	Password     string        `envconfig:"HACKFEST_REDIS_PASSWORD"`
	DB           int           `envconfig:"HACKFEST_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HACKFEST_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HACKFEST_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HACKFEST_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HACKFEST_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HACKFEST_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"HACKFEST_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"HACKFEST_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"HACKFEST_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"HACKFEST_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	MinLength        int `envconfig:"HACKFEST_PASSWORD_MIN_LENGTH" default:"6"`
	ArgonMemoryKB    int `envconfig:"HACKFEST_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"HACKFEST_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"HACKFEST_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"HACKFEST_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"HACKFEST_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"HACKFEST_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"HACKFEST_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"HACKFEST_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"HACKFEST_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"HACKFEST_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"HACKFEST_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"HACKFEST_AUTO_MIGRATE" default:"false"`
}

// SMTPConfig carries the transactional mail relay credentials. Supplied via
// environment only; the account password never lives in source.
type SMTPConfig struct {
	Host        string        `envconfig:"HACKFEST_SMTP_HOST" default:"smtp.gmail.com"`
	Port        int           `envconfig:"HACKFEST_SMTP_PORT" default:"587"`
	Username    string        `envconfig:"HACKFEST_SMTP_USER"`
	Password    string        `envconfig:"HACKFEST_SMTP_PASS"`
	FromAddress string        `envconfig:"HACKFEST_SMTP_FROM"`
	SendTimeout time.Duration `envconfig:"HACKFEST_SMTP_SEND_TIMEOUT" default:"15s"`
}

// Enabled reports whether outbound mail is configured at all.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.Username != ""
}

// From returns the sender address, defaulting to the relay username.
func (s SMTPConfig) From() string {
	if s.FromAddress != "" {
		return s.FromAddress
	}
	return s.Username
}

// EventConfig holds the display metadata interpolated into notification
// templates.
type EventConfig struct {
	Name     string `envconfig:"HACKFEST_EVENT_NAME" default:"BUILD THE FUTURE Hackathon"`
	Dates    string `envconfig:"HACKFEST_EVENT_DATES" default:"December 6-8"`
	Location string `envconfig:"HACKFEST_EVENT_LOCATION" default:"AI Center"`
	Contact  string `envconfig:"HACKFEST_EVENT_CONTACT"`
}

// AdminSeedConfig bootstraps a dashboard operator account at startup when
// both values are present.
type AdminSeedConfig struct {
	Email    string `envconfig:"HACKFEST_ADMIN_EMAIL"`
	Password string `envconfig:"HACKFEST_ADMIN_PASSWORD"`
}

func (a AdminSeedConfig) Enabled() bool {
	return a.Email != "" && a.Password != ""
}

type PasswordResetConfig struct {
	TokenTTL time.Duration `envconfig:"HACKFEST_RESET_TOKEN_TTL" default:"30m"`
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
