package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/authcore/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "AUTHCORE_"

// parseEnv loads a dotenv file into the process environment and then copies
// every AUTHCORE_* variable that is set into config.
//
// The dotenv path comes from -env; without it ".env" in the working
// directory is tried and silently skipped when missing. Variables already
// present in the environment are never overwritten by the file.
// Malformed numbers or durations panic, as do unreadable explicit files.
func parseEnv(config *Config) {
	if path := flagx.EnvFileFlag(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	envString(&config.DatabaseDriver, "DB_DRIVER")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envDuration(&config.StorageTimeout, "STORAGE_TIMEOUT")

	envDuration(&config.FailureWindow, "FAILURE_WINDOW")
	envInt(&config.FailureThreshold, "FAILURE_THRESHOLD")
	envDuration(&config.LockDuration, "LOCK_DURATION")
	envInt(&config.MaxTries, "MAX_TRIES")

	envString(&config.Hasher, "HASHER")
	envInt(&config.BcryptCost, "BCRYPT_COST")

	envString(&config.ActivationSecret, "ACTIVATION_SECRET")
	envDuration(&config.ActivationTTL, "ACTIVATION_TTL")
	envString(&config.ActivationBaseURL, "ACTIVATION_BASE_URL")

	envString(&config.Notifier, "NOTIFIER")
	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")

	envString(&config.SentryDSN, "SENTRY_DSN")
	envString(&config.Environment, "ENVIRONMENT")
	envString(&config.LogLevel, "LOG_LEVEL")
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(err)
	}
	*dst = n
}

func envDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}
