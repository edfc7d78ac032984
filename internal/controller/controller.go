// Package controller drives one interactive session against the account
// services: it owns the logged-in/logged-out state, runs the retry loops
// of register and login, and re-checks the password before any change to
// a logged-in account.
//
// Input comes from a Prompter so each retry collects fresh values.
// Expected outcomes are returned as the sentinel errors of package common.
package controller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/authcore/internal/auth"
	"github.com/dmitrijs2005/authcore/internal/common"
	"github.com/dmitrijs2005/authcore/internal/logging"
	"github.com/dmitrijs2005/authcore/internal/models"
	"github.com/dmitrijs2005/authcore/internal/notify"
)

// ErrPasswordMismatch is a validation failure: the confirmation differs.
var ErrPasswordMismatch = fmt.Errorf("%w: passwords do not match", common.ErrValidation)

// Prompter collects input for one attempt and shows recoverable failures.
// An error from Email or Password aborts the operation as is.
type Prompter interface {
	Email(ctx context.Context, prompt string) (string, error)
	Password(ctx context.Context, prompt string) ([]byte, error)
	Report(ctx context.Context, err error)
}

// Accounts is the part of services.AccountService the controller uses.
type Accounts interface {
	CheckEmailAvailable(ctx context.Context, email string) error
	Register(ctx context.Context, email string, password []byte) (*models.Account, error)
	LookupForLogin(ctx context.Context, email string) (*models.Account, error)
	VerifyLogin(ctx context.Context, accountID string, password []byte) (*models.Account, error)
	Authenticate(ctx context.Context, accountID string, password []byte) (*models.Account, error)
	ChangeEmail(ctx context.Context, accountID, newEmail string) error
	ChangePassword(ctx context.Context, accountID string, newPassword []byte) error
	DeleteAccount(ctx context.Context, accountID string) error
	History(ctx context.Context, accountID string) ([]models.AttemptRecord, error)
	Now() time.Time
}

// Options configures a Controller. Zero MaxTries means 3; a nil Notifier
// disables notifications; a nil Issuer sends them without a link.
type Options struct {
	MaxTries      int
	Notifier      notify.Notifier
	Issuer        *auth.Issuer
	NotifyTimeout time.Duration
	Logger        logging.Logger
}

// Controller is not safe for concurrent use; run one per session.
type Controller struct {
	accounts      Accounts
	maxTries      int
	notifier      notify.Notifier
	issuer        *auth.Issuer
	notifyTimeout time.Duration
	logger        logging.Logger

	session Session
	wg      sync.WaitGroup
}

func New(accounts Accounts, opts Options) *Controller {
	c := &Controller{
		accounts:      accounts,
		maxTries:      opts.MaxTries,
		notifier:      opts.Notifier,
		issuer:        opts.Issuer,
		notifyTimeout: opts.NotifyTimeout,
		logger:        opts.Logger,
	}
	if c.maxTries <= 0 {
		c.maxTries = 3
	}
	if c.notifyTimeout <= 0 {
		c.notifyTimeout = 10 * time.Second
	}
	if c.logger == nil {
		c.logger = logging.NewJSONLogger(io.Discard, "error")
	}
	c.logger = c.logger.With("module", "controller")
	return c
}

// Session returns a copy of the current session.
func (c *Controller) Session() Session { return c.session }

// Options lists the operations valid in the current state, in menu order.
func (c *Controller) Options() []Operation {
	if c.session.LoggedIn() {
		return append([]Operation(nil), loggedInOptions...)
	}
	return append([]Operation(nil), loggedOutOptions...)
}

// Dispatch runs op. Operations not valid in the current state fail with
// common.ErrInvalidAction.
func (c *Controller) Dispatch(ctx context.Context, op Operation, p Prompter) (Result, error) {
	switch op {
	case OpRegister:
		return c.Register(ctx, p)
	case OpLogin:
		return c.Login(ctx, p)
	case OpLogout:
		return c.Logout(ctx)
	case OpViewHistory:
		return c.ViewHistory(ctx, p)
	case OpChangeEmail:
		return c.ChangeEmail(ctx, p)
	case OpChangePassword:
		return c.ChangePassword(ctx, p)
	case OpDeleteAccount:
		return c.DeleteAccount(ctx, p)
	default:
		return Result{}, common.ErrInvalidAction
	}
}

// Close waits for pending registration notifications.
func (c *Controller) Close() {
	c.wg.Wait()
}

// Register creates an account. The session stays logged out.
func (c *Controller) Register(ctx context.Context, p Prompter) (Result, error) {
	if c.session.LoggedIn() {
		return Result{}, common.ErrInvalidAction
	}

	account, err := withRetries(ctx, c.maxTries, p, func() (*models.Account, error) {
		return c.registerOnce(ctx, p)
	})
	if err != nil {
		return Result{}, err
	}

	c.notifyRegistration(ctx, account)
	return Result{Message: MsgAccountCreated}, nil
}

func (c *Controller) registerOnce(ctx context.Context, p Prompter) (*models.Account, error) {
	email, err := p.Email(ctx, PromptEmail)
	if err != nil {
		return nil, err
	}
	if err := c.accounts.CheckEmailAvailable(ctx, email); err != nil {
		return nil, err
	}

	password, err := c.newPassword(ctx, p, PromptPassword)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(password)

	return c.accounts.Register(ctx, email, password)
}

// Login authenticates and moves the session to logged in.
func (c *Controller) Login(ctx context.Context, p Prompter) (Result, error) {
	if c.session.LoggedIn() {
		return Result{}, common.ErrInvalidAction
	}

	account, err := withRetries(ctx, c.maxTries, p, func() (*models.Account, error) {
		return c.loginOnce(ctx, p)
	})
	if err != nil {
		return Result{}, err
	}

	c.session = Session{AccountID: account.ID, Email: account.Email}
	c.logger.Info(ctx, "logged in", "account_id", account.ID)
	return Result{Message: MsgLoggedIn}, nil
}

func (c *Controller) loginOnce(ctx context.Context, p Prompter) (*models.Account, error) {
	email, err := p.Email(ctx, PromptEmail)
	if err != nil {
		return nil, err
	}

	account, err := c.accounts.LookupForLogin(ctx, email)
	if err != nil {
		return nil, err
	}

	password, err := p.Password(ctx, PromptPassword)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(password)

	return c.accounts.VerifyLogin(ctx, account.ID, password)
}

func (c *Controller) Logout(ctx context.Context) (Result, error) {
	if !c.session.LoggedIn() {
		return Result{}, common.ErrInvalidAction
	}
	c.logger.Info(ctx, "logged out", "account_id", c.session.AccountID)
	c.session = Session{}
	return Result{Message: MsgLoggedOut}, nil
}

func (c *Controller) ViewHistory(ctx context.Context, p Prompter) (Result, error) {
	if err := c.reauthenticate(ctx, p); err != nil {
		return Result{}, err
	}

	records, err := c.accounts.History(ctx, c.session.AccountID)
	if err != nil {
		return Result{}, c.loggedInErr(err)
	}
	return Result{History: records}, nil
}

func (c *Controller) ChangeEmail(ctx context.Context, p Prompter) (Result, error) {
	if err := c.reauthenticate(ctx, p); err != nil {
		return Result{}, err
	}

	email, err := p.Email(ctx, PromptNewEmail)
	if err != nil {
		return Result{}, err
	}
	if err := c.accounts.ChangeEmail(ctx, c.session.AccountID, email); err != nil {
		return Result{}, c.loggedInErr(err)
	}

	c.session.Email = email
	return Result{Message: MsgEmailChanged}, nil
}

func (c *Controller) ChangePassword(ctx context.Context, p Prompter) (Result, error) {
	if err := c.reauthenticate(ctx, p); err != nil {
		return Result{}, err
	}

	password, err := c.newPassword(ctx, p, PromptNewPassword)
	if err != nil {
		return Result{}, err
	}
	defer common.WipeByteArray(password)

	if err := c.accounts.ChangePassword(ctx, c.session.AccountID, password); err != nil {
		return Result{}, c.loggedInErr(err)
	}
	return Result{Message: MsgPasswordChanged}, nil
}

// DeleteAccount removes the account with its history and logs out.
func (c *Controller) DeleteAccount(ctx context.Context, p Prompter) (Result, error) {
	if err := c.reauthenticate(ctx, p); err != nil {
		return Result{}, err
	}

	if err := c.accounts.DeleteAccount(ctx, c.session.AccountID); err != nil {
		return Result{}, c.loggedInErr(err)
	}

	c.session = Session{}
	return Result{Message: MsgAccountDeleted}, nil
}

// reauthenticate asks once for the current password of the logged-in
// account. It neither retries nor writes to the ledger.
func (c *Controller) reauthenticate(ctx context.Context, p Prompter) error {
	if !c.session.LoggedIn() {
		return common.ErrInvalidAction
	}

	password, err := p.Password(ctx, PromptCurrentPassword)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := c.accounts.Authenticate(ctx, c.session.AccountID, password); err != nil {
		return c.loggedInErr(err)
	}
	return nil
}

// loggedInErr ends a session whose account no longer exists.
func (c *Controller) loggedInErr(err error) error {
	if errors.Is(err, common.ErrAccountNotFound) {
		c.session = Session{}
	}
	return err
}

// newPassword prompts for a password and its confirmation.
func (c *Controller) newPassword(ctx context.Context, p Prompter, prompt string) ([]byte, error) {
	password, err := p.Password(ctx, prompt)
	if err != nil {
		return nil, err
	}

	confirm, err := p.Password(ctx, PromptRetypePassword)
	if err != nil {
		common.WipeByteArray(password)
		return nil, err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(password, confirm) {
		common.WipeByteArray(password)
		return nil, ErrPasswordMismatch
	}
	return password, nil
}

// notifyRegistration sends the registration message in the background.
// Failures are logged and never reach the caller.
func (c *Controller) notifyRegistration(ctx context.Context, account *models.Account) {
	if c.notifier == nil {
		return
	}

	reg := notify.Registration{
		AccountID:    account.ID,
		Email:        account.Email,
		RegisteredAt: account.CreatedAt,
	}
	if c.issuer != nil {
		link, err := c.issuer.Link(account.ID, account.Email, c.accounts.Now())
		if err != nil {
			c.logger.Error(ctx, "activation link failed", "account_id", account.ID, "error", err)
		}
		reg.ActivationLink = link
	}

	ctx = context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error(ctx, "registration notification panicked", "account_id", reg.AccountID, "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(ctx, c.notifyTimeout)
		defer cancel()

		if err := c.notifier.NotifyRegistration(ctx, reg); err != nil {
			c.logger.Error(ctx, "registration notification failed", "account_id", reg.AccountID, "error", err)
		}
	}()
}

// recoverable errors are reported and consume one try.
func recoverable(err error) bool {
	return errors.Is(err, common.ErrValidation) ||
		errors.Is(err, common.ErrDuplicateEmail) ||
		errors.Is(err, common.ErrAccountNotFound) ||
		errors.Is(err, common.ErrWrongPassword) ||
		errors.Is(err, common.ErrAccountLocked)
}

func withRetries[T any](ctx context.Context, tries int, p Prompter, attempt func() (T, error)) (T, error) {
	var zero T
	for i := 0; i < tries; i++ {
		v, err := attempt()
		if err == nil {
			return v, nil
		}
		if !recoverable(err) {
			return zero, err
		}
		p.Report(ctx, err)
	}
	return zero, common.ErrMaxTriesExceeded
}
