// Package config loads runtime settings from the environment. A .env file in
// the working directory is read first when present.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environments
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config carries every setting the server and gymctl need.
type Config struct {
	Env  string `validate:"oneof=development production test"`
	Addr string `validate:"required"`

	DBPath string `validate:"required"`

	// CSRFKey is 32 raw bytes decoded from GYM_CSRF_KEY. Empty outside
	// production means a random per-process key.
	CSRFKey []byte `validate:"omitempty,len=32"`

	AdminEmail    string `validate:"omitempty,email"`
	AdminPassword string `validate:"omitempty,min=12"`

	ResendKey string
	EmailFrom string `validate:"required"`

	RedisAddr     string `validate:"omitempty,hostname_port"`
	RedisPassword string

	LogLevel string `validate:"oneof=debug info warn error"`
	LogFile  string

	CORSOrigins []string `validate:"dive,url"`

	SlowQuery   time.Duration `validate:"gt=0"`
	SlowRequest time.Duration `validate:"gt=0"`

	WorkerInterval time.Duration `validate:"gte=1s"`
}

// IsProduction reports whether the server runs in production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads .env (if present) and the GYM_* environment variables.
// PRE: none
// POST: Returns a validated Config or an error naming the bad variable
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup, which has the signature of os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		Env:           get("GYM_ENV", EnvDevelopment),
		Addr:          get("GYM_ADDR", ":8080"),
		DBPath:        get("GYM_DB_PATH", "data/gymhub.db"),
		AdminEmail:    get("GYM_ADMIN_EMAIL", ""),
		AdminPassword: get("GYM_ADMIN_PASSWORD", ""),
		ResendKey:     get("GYM_RESEND_KEY", ""),
		EmailFrom:     get("GYM_EMAIL_FROM", "GymHub <noreply@gymhub.local>"),
		RedisAddr:     get("GYM_REDIS_ADDR", ""),
		RedisPassword: get("GYM_REDIS_PASSWORD", ""),
		LogLevel:      strings.ToLower(get("GYM_LOG_LEVEL", "info")),
		LogFile:       get("GYM_LOG_FILE", ""),
	}

	if keyHex := get("GYM_CSRF_KEY", ""); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, fmt.Errorf("GYM_CSRF_KEY must be hex encoded: %w", err)
		}
		cfg.CSRFKey = key
	}

	if origins := get("GYM_CORS_ORIGINS", ""); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	var err error
	if cfg.SlowQuery, err = millis(get("GYM_SLOW_QUERY_MS", "50")); err != nil {
		return nil, fmt.Errorf("GYM_SLOW_QUERY_MS: %w", err)
	}
	if cfg.SlowRequest, err = millis(get("GYM_SLOW_REQUEST_MS", "500")); err != nil {
		return nil, fmt.Errorf("GYM_SLOW_REQUEST_MS: %w", err)
	}
	if cfg.WorkerInterval, err = time.ParseDuration(get("GYM_WORKER_INTERVAL", "1m")); err != nil {
		return nil, fmt.Errorf("GYM_WORKER_INTERVAL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and the production-only requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			var msgs []string
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.IsProduction() && len(c.CSRFKey) == 0 {
		return errors.New("GYM_CSRF_KEY is required in production")
	}
	if c.IsProduction() && c.AdminPassword == "" && c.AdminEmail != "" {
		return errors.New("GYM_ADMIN_PASSWORD is required with GYM_ADMIN_EMAIL in production")
	}
	return nil
}

func millis(s string) (time.Duration, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Millisecond, nil
}
