// Package services contains the authentication business logic. This file
// implements AccountService, which owns the credential store and the
// attempt ledger and applies the lockout policy on failed logins.
//
// Every storage call runs under the configured storage timeout. Storage
// failures come back wrapped in common.ErrStorageUnavailable; the domain
// sentinels of package common are returned unwrapped.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/dmitrijs2005/authcore/internal/common"
	"github.com/dmitrijs2005/authcore/internal/dbx"
	"github.com/dmitrijs2005/authcore/internal/hashing"
	"github.com/dmitrijs2005/authcore/internal/lockout"
	"github.com/dmitrijs2005/authcore/internal/logging"
	"github.com/dmitrijs2005/authcore/internal/models"
	"github.com/dmitrijs2005/authcore/internal/repositories/repomanager"
	"github.com/dmitrijs2005/authcore/internal/timex"
	"github.com/google/uuid"
)

var emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

var (
	ErrInvalidEmail  = fmt.Errorf("%w: invalid email address", common.ErrValidation)
	ErrEmptyPassword = fmt.Errorf("%w: empty password", common.ErrValidation)
)

// newAccountID is a seam for tests.
var newAccountID = func() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ValidateEmail reports common.ErrValidation unless email has the shape
// local@domain.tld. Nothing else about the address is checked.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// Options configures an AccountService. Zero fields take defaults:
// bcrypt, the system clock, lockout.DefaultPolicy and a 5s timeout.
type Options struct {
	Hasher         hashing.Hasher
	Clock          timex.Clock
	Policy         lockout.Policy
	StorageTimeout time.Duration
	Logger         logging.Logger
}

type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      hashing.Hasher
	clock       timex.Clock
	policy      lockout.Policy
	timeout     time.Duration
	logger      logging.Logger
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, opts Options) *AccountService {
	s := &AccountService{
		db:          db,
		repomanager: m,
		hasher:      opts.Hasher,
		clock:       opts.Clock,
		policy:      opts.Policy,
		timeout:     opts.StorageTimeout,
		logger:      opts.Logger,
	}
	if s.hasher == nil {
		s.hasher = hashing.NewBcrypt(0)
	}
	if s.clock == nil {
		s.clock = timex.SystemClock{}
	}
	if s.policy == (lockout.Policy{}) {
		s.policy = lockout.DefaultPolicy()
	}
	if s.timeout <= 0 {
		s.timeout = 5 * time.Second
	}
	if s.logger == nil {
		s.logger = logging.NewJSONLogger(io.Discard, "error")
	}
	s.logger = s.logger.With("module", "services")
	return s
}

// Policy returns the lockout policy in force.
func (s *AccountService) Policy() lockout.Policy { return s.policy }

// Now returns the service clock's current time.
func (s *AccountService) Now() time.Time { return s.clock.Now() }

// CheckEmailAvailable validates the address and fails with
// common.ErrDuplicateEmail when an account already uses it.
func (s *AccountService) CheckEmailAvailable(ctx context.Context, email string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.repomanager.Accounts(s.db).FindByEmail(ctx, email)
	switch {
	case err == nil:
		return common.ErrDuplicateEmail
	case errors.Is(err, common.ErrNotFound):
		return nil
	default:
		return storageErr(err)
	}
}

// Register hashes password and creates the account. Two concurrent calls
// with the same email produce exactly one account; the other call gets
// common.ErrDuplicateEmail.
func (s *AccountService) Register(ctx context.Context, email string, password []byte) (*models.Account, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if len(password) == 0 {
		return nil, ErrEmptyPassword
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	id, err := newAccountID()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	account := &models.Account{
		ID:           id,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		LockedUntil:  now,
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repomanager.Accounts(s.db).Create(ctx, account); err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, storageErr(err)
	}

	s.logger.Info(ctx, "account created", "account_id", account.ID)
	return account, nil
}

// LookupForLogin finds the account behind email and refuses locked ones.
// It never touches the ledger.
func (s *AccountService) LookupForLogin(ctx context.Context, email string) (*models.Account, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	account, err := s.repomanager.Accounts(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrAccountNotFound
		}
		return nil, storageErr(err)
	}

	if lockout.IsLocked(account.LockedUntil, s.clock.Now()) {
		return nil, common.ErrAccountLocked
	}

	return account, nil
}

// VerifyLogin checks password for accountID and appends the outcome to the
// ledger. A failure is counted against the policy window inside the same
// transaction, holding the account row, and locks the account when the
// count exceeds the threshold and no lock is already running.
//
// It returns the account on success and common.ErrWrongPassword on
// mismatch. An account locked since LookupForLogin yields
// common.ErrAccountLocked without a ledger entry.
func (s *AccountService) VerifyLogin(ctx context.Context, accountID string, password []byte) (*models.Account, error) {
	account, err := s.findByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var locked bool
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		accounts := s.repomanager.Accounts(tx)
		attempts := s.repomanager.Attempts(tx)

		current, err := accounts.FindByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if ok && lockout.IsLocked(current.LockedUntil, now) {
			return common.ErrAccountLocked
		}

		if err := attempts.Record(ctx, &models.AttemptRecord{AccountID: accountID, Timestamp: now, Success: ok}); err != nil {
			return err
		}
		if ok {
			return nil
		}

		failures, err := attempts.CountFailuresSince(ctx, accountID, s.policy.WindowStart(now))
		if err != nil {
			return err
		}
		if !s.policy.ShouldLock(failures) || lockout.IsLocked(current.LockedUntil, now) {
			return nil
		}

		locked = true
		return accounts.Lock(ctx, accountID, s.policy.LockUntil(now))
	})

	switch {
	case err == nil:
	case errors.Is(err, common.ErrAccountLocked):
		return nil, err
	case errors.Is(err, common.ErrNotFound):
		return nil, common.ErrAccountNotFound
	default:
		return nil, storageErr(err)
	}

	if locked {
		s.logger.Warn(ctx, "account locked", "account_id", accountID, "until", s.policy.LockUntil(s.clock.Now()))
	}
	if !ok {
		return nil, common.ErrWrongPassword
	}

	return account, nil
}

// Authenticate re-checks the password of a logged-in account. It does not
// write to the ledger and never locks.
func (s *AccountService) Authenticate(ctx context.Context, accountID string, password []byte) (*models.Account, error) {
	account, err := s.findByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrWrongPassword
	}
	return account, nil
}

// ChangeEmail moves the account to newEmail. The account ID is unchanged.
func (s *AccountService) ChangeEmail(ctx context.Context, accountID, newEmail string) error {
	if err := ValidateEmail(newEmail); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.repomanager.Accounts(s.db).UpdateEmail(ctx, accountID, newEmail)
	switch {
	case err == nil:
		s.logger.Info(ctx, "email changed", "account_id", accountID)
		return nil
	case errors.Is(err, common.ErrDuplicateEmail):
		return err
	case errors.Is(err, common.ErrNotFound):
		return common.ErrAccountNotFound
	default:
		return storageErr(err)
	}
}

// ChangePassword replaces the stored hash.
func (s *AccountService) ChangePassword(ctx context.Context, accountID string, newPassword []byte) error {
	if len(newPassword) == 0 {
		return ErrEmptyPassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err = s.repomanager.Accounts(s.db).UpdatePassword(ctx, accountID, hash)
	switch {
	case err == nil:
		s.logger.Info(ctx, "password changed", "account_id", accountID)
		return nil
	case errors.Is(err, common.ErrNotFound):
		return common.ErrAccountNotFound
	default:
		return storageErr(err)
	}
}

// DeleteAccount removes the account and its ledger in one transaction.
func (s *AccountService) DeleteAccount(ctx context.Context, accountID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Attempts(tx).DeleteFor(ctx, accountID); err != nil {
			return err
		}
		return s.repomanager.Accounts(tx).Delete(ctx, accountID)
	})

	switch {
	case err == nil:
		s.logger.Info(ctx, "account deleted", "account_id", accountID)
		return nil
	case errors.Is(err, common.ErrNotFound):
		return common.ErrAccountNotFound
	default:
		return storageErr(err)
	}
}

// History returns the account's login attempts in insertion order.
func (s *AccountService) History(ctx context.Context, accountID string) ([]models.AttemptRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	records, err := s.repomanager.Attempts(s.db).History(ctx, accountID)
	if err != nil {
		return nil, storageErr(err)
	}
	return records, nil
}

// Lock sets the account's lock deadline to now plus d.
func (s *AccountService) Lock(ctx context.Context, accountID string, d time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.repomanager.Accounts(s.db).Lock(ctx, accountID, s.clock.Now().Add(d))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrNotFound):
		return common.ErrAccountNotFound
	default:
		return storageErr(err)
	}
}

// IsLocked reports whether the account is locked now.
func (s *AccountService) IsLocked(ctx context.Context, accountID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	locked, err := s.repomanager.Accounts(s.db).IsLocked(ctx, accountID, s.clock.Now())
	switch {
	case err == nil:
		return locked, nil
	case errors.Is(err, common.ErrNotFound):
		return false, common.ErrAccountNotFound
	default:
		return false, storageErr(err)
	}
}

func (s *AccountService) findByID(ctx context.Context, accountID string) (*models.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	account, err := s.repomanager.Accounts(s.db).FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrAccountNotFound
		}
		return nil, storageErr(err)
	}
	return account, nil
}

// storageErr folds any repository failure into ErrStorageUnavailable.
func storageErr(err error) error {
	if err = dbx.Classify(err); errors.Is(err, common.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
}
