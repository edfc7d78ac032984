// Package models holds the persistent records shared by repositories and
// services.
package models

import "time"

// Account is a registered user. ID never changes; Email may.
// LockedUntil equals CreatedAt for an account that was never locked.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	LockedUntil  time.Time
}

// AttemptRecord is one login attempt against an account. ID is the
// insertion sequence and orders history.
type AttemptRecord struct {
	ID        int64
	AccountID string
	Timestamp time.Time
	Success   bool
}
