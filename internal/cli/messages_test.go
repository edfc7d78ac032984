package cli

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/authcore/internal/common"
	"github.com/dmitrijs2005/authcore/internal/controller"
	"github.com/dmitrijs2005/authcore/internal/models"
	"github.com/dmitrijs2005/authcore/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{controller.ErrPasswordMismatch, "Passwords do not match."},
		{services.ErrInvalidEmail, "Invalid email address."},
		{services.ErrEmptyPassword, "Password must not be empty."},
		{common.ErrValidation, "Invalid input."},
		{common.ErrDuplicateEmail, "Email already in use."},
		{common.ErrAccountNotFound, "Email Address not found."},
		{common.ErrWrongPassword, "Wrong password."},
		{common.ErrAccountLocked, "Account locked, please try again later."},
		{common.ErrMaxTriesExceeded, "Max attempts exceeded, please try again later."},
		{common.ErrInvalidAction, "That action is not available right now."},
		{fmt.Errorf("%w: %w", common.ErrStorageUnavailable, errors.New("busy")), "Service temporarily unavailable, please try again later."},
		{errors.New("other"), "Something went wrong."},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.err))
		})
	}
}

func TestOperationLabel(t *testing.T) {
	assert.Equal(t, "Register", OperationLabel(controller.OpRegister))
	assert.Equal(t, "Delete account", OperationLabel(controller.OpDeleteAccount))
	assert.Equal(t, "unknown", OperationLabel(controller.Operation(42)))
}

func TestFormatHistory(t *testing.T) {
	assert.Equal(t, "No login attempts recorded.", FormatHistory(nil))

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	got := FormatHistory([]models.AttemptRecord{
		{ID: 1, Timestamp: ts, Success: false},
		{ID: 2, Timestamp: ts.Add(time.Minute), Success: true},
	})

	want := "Login history:\n" +
		"  " + ts.Local().Format(timeLayout) + "  failed\n" +
		"  " + ts.Add(time.Minute).Local().Format(timeLayout) + "  success"
	assert.Equal(t, want, got)
}
