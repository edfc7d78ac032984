package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, DriverSQLite, c.DatabaseDriver)
	assert.Equal(t, "src/users.db", c.DatabaseDSN)
	assert.Equal(t, 5*time.Second, c.StorageTimeout)
	assert.Equal(t, 10*time.Minute, c.FailureWindow)
	assert.Equal(t, 4, c.FailureThreshold)
	assert.Equal(t, 30*time.Minute, c.LockDuration)
	assert.Equal(t, 3, c.MaxTries)
	assert.Equal(t, HasherBcrypt, c.Hasher)
	assert.Equal(t, NotifierLog, c.Notifier)
	assert.Equal(t, "info", c.LogLevel)
	assert.Empty(t, c.SentryDSN)
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}
	t.Chdir(t.TempDir())

	c := LoadConfig()
	require.NotNil(t, c, "LoadConfig must not return nil")

	var want Config
	want.LoadDefaults()
	assert.Equal(t, want, *c)
}

func TestLoadConfig_LayerPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	jsonPath := writeTempJSON(t, dir, "cfg.json", map[string]any{
		"database_dsn": "from-json.db",
		"max_tries":    7,
	})

	t.Setenv("AUTHCORE_DATABASE_DSN", "from-env.db")
	t.Setenv("AUTHCORE_MAX_TRIES", "5")
	t.Setenv("AUTHCORE_HASHER", "argon2id")
	os.Args = []string{"testbin", "-c", jsonPath, "-m", "9"}
	t.Chdir(dir)

	c := LoadConfig()

	assert.Equal(t, "from-json.db", c.DatabaseDSN, "json beats env")
	assert.Equal(t, 9, c.MaxTries, "flags beat json")
	assert.Equal(t, HasherArgon2id, c.Hasher, "env beats defaults")
}

func TestPolicy(t *testing.T) {
	c := Config{
		FailureWindow:    time.Minute,
		FailureThreshold: 2,
		LockDuration:     time.Hour,
		MaxTries:         5,
	}

	p := c.Policy()
	assert.Equal(t, time.Minute, p.FailureWindow)
	assert.Equal(t, 2, p.FailureThreshold)
	assert.Equal(t, time.Hour, p.LockDuration)
	assert.Equal(t, 5, p.MaxTries)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"postgres", func(c *Config) { c.DatabaseDriver = DriverPostgres }, true},
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mysql" }, false},
		{"empty dsn", func(c *Config) { c.DatabaseDSN = "" }, false},
		{"zero timeout", func(c *Config) { c.StorageTimeout = 0 }, false},
		{"unknown hasher", func(c *Config) { c.Hasher = "md5" }, false},
		{"unknown notifier", func(c *Config) { c.Notifier = "smtp" }, false},
		{"empty secret", func(c *Config) { c.ActivationSecret = "" }, false},
		{"zero tries", func(c *Config) { c.MaxTries = 0 }, false},
		{"negative threshold", func(c *Config) { c.FailureThreshold = -1 }, false},
		{"zero threshold", func(c *Config) { c.FailureThreshold = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)

			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
