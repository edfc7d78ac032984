package controller

import "github.com/dmitrijs2005/authcore/internal/models"

// Operation is one user intent the controller can dispatch.
type Operation int

const (
	OpRegister Operation = iota + 1
	OpLogin
	OpViewHistory
	OpChangeEmail
	OpChangePassword
	OpLogout
	OpDeleteAccount
)

func (o Operation) String() string {
	switch o {
	case OpRegister:
		return "register"
	case OpLogin:
		return "login"
	case OpViewHistory:
		return "view_history"
	case OpChangeEmail:
		return "change_email"
	case OpChangePassword:
		return "change_password"
	case OpLogout:
		return "logout"
	case OpDeleteAccount:
		return "delete_account"
	default:
		return "unknown"
	}
}

var (
	loggedOutOptions = []Operation{OpRegister, OpLogin}
	loggedInOptions  = []Operation{OpViewHistory, OpChangeEmail, OpChangePassword, OpLogout, OpDeleteAccount}
)

// Session is the controller's authentication state. The zero value is
// logged out.
type Session struct {
	AccountID string
	Email     string
}

func (s Session) LoggedIn() bool { return s.AccountID != "" }

// Result is what a successful operation hands back to the presentation
// layer.
type Result struct {
	Message string
	History []models.AttemptRecord
}

const (
	MsgAccountCreated  = "Your account has been created."
	MsgLoggedIn        = "You are logged in."
	MsgLoggedOut       = "You are logged out."
	MsgEmailChanged    = "Your email address has been changed."
	MsgPasswordChanged = "Your password has been changed."
	MsgAccountDeleted  = "Your account has been deleted."
)

const (
	PromptEmail           = "Please enter a valid email address: "
	PromptPassword        = "Please enter your password: "
	PromptRetypePassword  = "Please retype your password: "
	PromptCurrentPassword = "Please enter your current password: "
	PromptNewEmail        = "Please enter your new email address: "
	PromptNewPassword     = "Please enter your new password: "
)
