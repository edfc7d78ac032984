package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/authcore/internal/common"
	"github.com/dmitrijs2005/authcore/internal/controller"
	"github.com/dmitrijs2005/authcore/internal/hashing"
	"github.com/dmitrijs2005/authcore/internal/models"
	"github.com/dmitrijs2005/authcore/internal/services"
)

const timeLayout = "2006-01-02 15:04:05"

// Message returns the line shown to the user for err. Order matters: the
// specific validation errors wrap common.ErrValidation.
func Message(err error) string {
	switch {
	case errors.Is(err, controller.ErrPasswordMismatch):
		return "Passwords do not match."
	case errors.Is(err, services.ErrInvalidEmail):
		return "Invalid email address."
	case errors.Is(err, services.ErrEmptyPassword):
		return "Password must not be empty."
	case errors.Is(err, common.ErrValidation):
		return "Invalid input."
	case errors.Is(err, common.ErrDuplicateEmail):
		return "Email already in use."
	case errors.Is(err, common.ErrAccountNotFound):
		return "Email Address not found."
	case errors.Is(err, common.ErrWrongPassword):
		return "Wrong password."
	case errors.Is(err, common.ErrAccountLocked):
		return "Account locked, please try again later."
	case errors.Is(err, common.ErrMaxTriesExceeded):
		return "Max attempts exceeded, please try again later."
	case errors.Is(err, common.ErrInvalidAction):
		return "That action is not available right now."
	case errors.Is(err, common.ErrStorageUnavailable):
		return "Service temporarily unavailable, please try again later."
	case errors.Is(err, hashing.ErrUnknownFormat):
		return "Stored credentials are unreadable, contact support."
	default:
		return "Something went wrong."
	}
}

// OperationLabel is the menu text for op.
func OperationLabel(op controller.Operation) string {
	switch op {
	case controller.OpRegister:
		return "Register"
	case controller.OpLogin:
		return "Login"
	case controller.OpViewHistory:
		return "View login history"
	case controller.OpChangeEmail:
		return "Change email"
	case controller.OpChangePassword:
		return "Change password"
	case controller.OpLogout:
		return "Logout"
	case controller.OpDeleteAccount:
		return "Delete account"
	default:
		return op.String()
	}
}

// FormatHistory renders login attempts oldest first, one per line.
func FormatHistory(records []models.AttemptRecord) string {
	if len(records) == 0 {
		return "No login attempts recorded."
	}

	var b strings.Builder
	b.WriteString("Login history:\n")
	for _, r := range records {
		outcome := "failed"
		if r.Success {
			outcome = "success"
		}
		fmt.Fprintf(&b, "  %s  %s\n", r.Timestamp.Local().Format(timeLayout), outcome)
	}
	return strings.TrimRight(b.String(), "\n")
}
