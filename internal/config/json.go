package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/authcore/internal/flagx"
	"github.com/dmitrijs2005/authcore/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations use timex.Duration so
// both "10m" and integer nanoseconds are accepted.
type JsonConfig struct {
	DatabaseDriver string         `json:"database_driver"`
	DatabaseDSN    string         `json:"database_dsn"`
	StorageTimeout timex.Duration `json:"storage_timeout"`

	FailureWindow    timex.Duration `json:"failure_window"`
	FailureThreshold *int           `json:"failure_threshold"`
	LockDuration     timex.Duration `json:"lock_duration"`
	MaxTries         int            `json:"max_tries"`

	Hasher     string `json:"hasher"`
	BcryptCost int    `json:"bcrypt_cost"`

	ActivationSecret  string         `json:"activation_secret"`
	ActivationTTL     timex.Duration `json:"activation_ttl"`
	ActivationBaseURL string         `json:"activation_base_url"`

	Notifier       string `json:"notifier"`
	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`

	SentryDSN   string `json:"sentry_dsn"`
	Environment string `json:"environment"`
	LogLevel    string `json:"log_level"`
}

// parseJson overlays values from the JSON file named by -c or -config.
// Keys that are absent (zero) leave the current value alone; the failure
// threshold is a pointer because zero is a legal threshold.
// An unreadable file or invalid JSON panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setDuration(&config.StorageTimeout, c.StorageTimeout)

	setDuration(&config.FailureWindow, c.FailureWindow)
	if c.FailureThreshold != nil {
		config.FailureThreshold = *c.FailureThreshold
	}
	setDuration(&config.LockDuration, c.LockDuration)
	setInt(&config.MaxTries, c.MaxTries)

	setString(&config.Hasher, c.Hasher)
	setInt(&config.BcryptCost, c.BcryptCost)

	setString(&config.ActivationSecret, c.ActivationSecret)
	setDuration(&config.ActivationTTL, c.ActivationTTL)
	setString(&config.ActivationBaseURL, c.ActivationBaseURL)

	setString(&config.Notifier, c.Notifier)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	setString(&config.SentryDSN, c.SentryDSN)
	setString(&config.Environment, c.Environment)
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
