// Package config assembles runtime settings for authcore from defaults, a
// dotenv file and AUTHCORE_* environment variables, an optional JSON file
// and finally command-line flags. Later layers win.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authcore/internal/lockout"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"

	NotifierLog = "log"
	NotifierS3  = "s3"
)

// Config holds runtime settings for authcore.
//
// Fields:
//   - DatabaseDriver / DatabaseDSN: "sqlite" (DSN is a file path) or "postgres" (pgx DSN).
//   - StorageTimeout: deadline applied to every storage call.
//   - FailureWindow / FailureThreshold / LockDuration / MaxTries: lockout policy.
//   - Hasher / BcryptCost: password hashing capability.
//   - ActivationSecret / ActivationTTL / ActivationBaseURL: signed activation links.
//   - Notifier and S3*: where registration notifications go.
//   - SentryDSN / Environment: error reporting, disabled when the DSN is empty.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	DatabaseDriver string
	DatabaseDSN    string
	StorageTimeout time.Duration

	FailureWindow    time.Duration
	FailureThreshold int
	LockDuration     time.Duration
	MaxTries         int

	Hasher     string
	BcryptCost int

	ActivationSecret  string
	ActivationTTL     time.Duration
	ActivationBaseURL string

	Notifier       string
	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string

	SentryDSN   string
	Environment string
	LogLevel    string
}

// LoadDefaults populates Config with development defaults.
// NOTE: ActivationSecret must be overridden outside of development.
func (c *Config) LoadDefaults() {
	p := lockout.DefaultPolicy()

	c.DatabaseDriver = DriverSQLite
	c.DatabaseDSN = "src/users.db"
	c.StorageTimeout = 5 * time.Second

	c.FailureWindow = p.FailureWindow
	c.FailureThreshold = p.FailureThreshold
	c.LockDuration = p.LockDuration
	c.MaxTries = p.MaxTries

	c.Hasher = HasherBcrypt
	c.BcryptCost = 10

	c.ActivationSecret = "secretKey"
	c.ActivationTTL = 24 * time.Hour
	c.ActivationBaseURL = "http://localhost:8080/activate"

	c.Notifier = NotifierLog
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "outbox"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"

	c.Environment = "development"
	c.LogLevel = "info"
}

// Policy returns the lockout policy described by the config.
func (c *Config) Policy() lockout.Policy {
	return lockout.Policy{
		FailureWindow:    c.FailureWindow,
		FailureThreshold: c.FailureThreshold,
		LockDuration:     c.LockDuration,
		MaxTries:         c.MaxTries,
	}
}

// Validate checks enumerated settings and the lockout policy.
func (c *Config) Validate() error {
	var errs []error

	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.DatabaseDriver))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database dsn is empty"))
	}
	if c.StorageTimeout <= 0 {
		errs = append(errs, errors.New("storage timeout must be positive"))
	}

	switch c.Hasher {
	case HasherBcrypt, HasherArgon2id:
	default:
		errs = append(errs, fmt.Errorf("unknown hasher %q", c.Hasher))
	}

	switch c.Notifier {
	case NotifierLog, NotifierS3:
	default:
		errs = append(errs, fmt.Errorf("unknown notifier %q", c.Notifier))
	}

	if c.ActivationSecret == "" {
		errs = append(errs, errors.New("activation secret is empty"))
	}

	if err := c.Policy().Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment, an optional JSON file and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
