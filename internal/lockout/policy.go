// Package lockout decides when repeated failed logins lock an account and
// for how long. It holds no state: the failure count comes from the attempt
// ledger and the lock deadline lives on the account record.
package lockout

import (
	"errors"
	"time"
)

// Policy defines the parameters for account lockout behavior.
type Policy struct {
	// FailureWindow is how far back failed attempts are counted.
	FailureWindow time.Duration

	// FailureThreshold is the number of failures tolerated inside the
	// window. One more than this locks the account.
	FailureThreshold int

	// LockDuration is how long a lock lasts once set.
	LockDuration time.Duration

	// MaxTries bounds the interactive retry loops of register and login.
	MaxTries int
}

// DefaultPolicy locks for 30 minutes after the fifth failure inside 10
// minutes and allows three tries per interactive operation.
func DefaultPolicy() Policy {
	return Policy{
		FailureWindow:    10 * time.Minute,
		FailureThreshold: 4,
		LockDuration:     30 * time.Minute,
		MaxTries:         3,
	}
}

// Validate rejects policies that could never lock or never let anyone try.
func (p Policy) Validate() error {
	var errs []error
	if p.FailureWindow <= 0 {
		errs = append(errs, errors.New("failure window must be positive"))
	}
	if p.FailureThreshold < 0 {
		errs = append(errs, errors.New("failure threshold must not be negative"))
	}
	if p.LockDuration <= 0 {
		errs = append(errs, errors.New("lock duration must be positive"))
	}
	if p.MaxTries <= 0 {
		errs = append(errs, errors.New("max tries must be positive"))
	}
	return errors.Join(errs...)
}

// WindowStart returns the earliest timestamp still counted at now.
func (p Policy) WindowStart(now time.Time) time.Time {
	return now.Add(-p.FailureWindow)
}

// ShouldLock reports whether failuresInWindow exceeds the threshold.
func (p Policy) ShouldLock(failuresInWindow int) bool {
	return failuresInWindow > p.FailureThreshold
}

// LockUntil returns the lock deadline for a lock set at now.
func (p Policy) LockUntil(now time.Time) time.Time {
	return now.Add(p.LockDuration)
}

// IsLocked reports whether an account whose lock ends at lockedUntil is
// still locked at now. The deadline itself is already unlocked.
func IsLocked(lockedUntil, now time.Time) bool {
	return lockedUntil.After(now)
}
