package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/authcore/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-b string     database driver (sqlite or postgres)
//	-d string     database DSN or SQLite file path
//	-t duration   storage timeout
//	-w duration   failure window
//	-n int        failure threshold
//	-l duration   lock duration
//	-m int        max tries per interactive operation
//	-x string     password hasher (bcrypt or argon2id)
//	-k string     activation token secret
//	-o string     notifier (log or s3)
//	-v string     log level
//
// os.Args is first filtered down to these flags with flagx.FilterArgs so
// that -c, -config and -env are left to the other layers.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-b", "-d", "-t", "-w", "-n", "-l", "-m", "-x", "-k", "-o", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDriver, "b", config.DatabaseDriver, "database driver: sqlite or postgres")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.DurationVar(&config.StorageTimeout, "t", config.StorageTimeout, "storage call timeout")

	fs.DurationVar(&config.FailureWindow, "w", config.FailureWindow, "window for counting failed logins")
	fs.IntVar(&config.FailureThreshold, "n", config.FailureThreshold, "failed logins tolerated inside the window")
	fs.DurationVar(&config.LockDuration, "l", config.LockDuration, "account lock duration")
	fs.IntVar(&config.MaxTries, "m", config.MaxTries, "tries per register/login")

	fs.StringVar(&config.Hasher, "x", config.Hasher, "password hasher: bcrypt or argon2id")
	fs.StringVar(&config.ActivationSecret, "k", config.ActivationSecret, "activation token secret")
	fs.StringVar(&config.Notifier, "o", config.Notifier, "notifier: log or s3")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
