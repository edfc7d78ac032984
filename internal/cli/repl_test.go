package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/authcore/internal/common"
	"github.com/dmitrijs2005/authcore/internal/controller"
	"github.com/dmitrijs2005/authcore/internal/hashing"
	"github.com/dmitrijs2005/authcore/internal/repositories/repomanager"
	"github.com/dmitrijs2005/authcore/internal/repositories/repotest"
	"github.com/dmitrijs2005/authcore/internal/services"
	"github.com/dmitrijs2005/authcore/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeDispatcher struct {
	session controller.Session
	result  controller.Result
	err     error
	calls   []controller.Operation
}

func (f *fakeDispatcher) Options() []controller.Operation {
	if f.session.LoggedIn() {
		return []controller.Operation{controller.OpViewHistory, controller.OpLogout}
	}
	return []controller.Operation{controller.OpRegister, controller.OpLogin}
}

func (f *fakeDispatcher) Session() controller.Session { return f.session }

func (f *fakeDispatcher) Dispatch(_ context.Context, op controller.Operation, _ controller.Prompter) (controller.Result, error) {
	f.calls = append(f.calls, op)
	return f.result, f.err
}

func run(t *testing.T, d dispatcher, input string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, RunREPL(context.Background(), d, NewTerminal(strings.NewReader(input), &out)))
	return out.String()
}

func TestRunREPL_MenuAndExit(t *testing.T) {
	d := &fakeDispatcher{}
	out := run(t, d, "0\n")

	assert.Equal(t, "What would you like to do?\n"+
		"0 - Exit system\n"+
		"1 - Register\n"+
		"2 - Login\n"+
		"Choice: Farewell!\n", out)
	assert.Empty(t, d.calls)
}

func TestRunREPL_GreetsLoggedInUser(t *testing.T) {
	d := &fakeDispatcher{session: controller.Session{AccountID: "id", Email: "user@example.com"}}
	out := run(t, d, "0\n")

	assert.Contains(t, out, "What would you like to do, user@example.com?\n")
	assert.Contains(t, out, "1 - View login history\n2 - Logout\n")
}

func TestRunREPL_Unrecognized(t *testing.T) {
	d := &fakeDispatcher{}
	out := run(t, d, "abc\n7\n-1\n0\n")

	assert.Equal(t, 3, strings.Count(out, "Unrecognized command."))
	assert.Empty(t, d.calls)
}

func TestRunREPL_DispatchesByPosition(t *testing.T) {
	d := &fakeDispatcher{result: controller.Result{Message: "done"}}
	out := run(t, d, "2\n1\n0\n")

	assert.Equal(t, []controller.Operation{controller.OpLogin, controller.OpRegister}, d.calls)
	assert.Equal(t, 2, strings.Count(out, "done\n"))
}

func TestRunREPL_PrintsErrors(t *testing.T) {
	d := &fakeDispatcher{err: common.ErrMaxTriesExceeded}
	out := run(t, d, "1\n0\n")

	assert.Contains(t, out, "Max attempts exceeded, please try again later.\n")
}

func TestRunREPL_EndOfInput(t *testing.T) {
	d := &fakeDispatcher{}
	out := run(t, d, "")
	assert.True(t, strings.HasSuffix(out, "Farewell!\n"))
}

func TestRunREPL_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	d := &fakeDispatcher{}
	require.NoError(t, RunREPL(ctx, d, NewTerminal(strings.NewReader("1\n"), &out)))
	assert.Equal(t, "Farewell!\n", out.String())
	assert.Empty(t, d.calls)
}

func TestRunREPL_Session(t *testing.T) {
	db := repotest.NewSQLiteDB(t)
	svc := services.NewAccountService(db, repomanager.NewSQLiteRepositoryManager(), services.Options{
		Hasher: hashing.NewBcrypt(bcrypt.MinCost),
		Clock:  timex.NewManualClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)),
	})
	ctl := controller.New(svc, controller.Options{})

	input := strings.Join([]string{
		"1", "bad-email", "user@example.com", "pw", "pw",
		"2", "user@example.com", "nope", "user@example.com", "pw",
		"1", "pw",
		"4",
		"9",
		"0",
	}, "\n") + "\n"

	out := run(t, ctl, input)

	assert.Contains(t, out, "Invalid email address.\n")
	assert.Contains(t, out, controller.MsgAccountCreated+"\n")
	assert.Contains(t, out, "Wrong password.\n")
	assert.Contains(t, out, controller.MsgLoggedIn+"\n")
	assert.Contains(t, out, "What would you like to do, user@example.com?\n")
	assert.Contains(t, out, "Login history:\n")
	assert.Equal(t, 1, strings.Count(out, "  failed\n"))
	assert.Contains(t, out, controller.MsgLoggedOut+"\n")
	assert.Contains(t, out, "Unrecognized command.\n")
	assert.True(t, strings.HasSuffix(out, "Farewell!\n"))
	assert.False(t, ctl.Session().LoggedIn())
}
