package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Terminal seams, replaced in tests.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// GetSimpleText prints prompt to w and reads one line from reader with the
// surrounding whitespace trimmed. A final line without a newline is still
// returned.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword prints prompt to w and reads a password without echo from
// the terminal behind fd. The caller wipes the returned slice.
func GetPassword(fd int, prompt string, w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// Terminal is a controller.Prompter reading from in and writing to out.
// When in is an interactive terminal passwords are read without echo;
// otherwise they are read as plain lines, which keeps piped input working.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
	tty bool
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{in: bufio.NewReader(in), out: out}
	if f, ok := in.(*os.File); ok && isTerminal(int(f.Fd())) {
		t.fd, t.tty = int(f.Fd()), true
	}
	return t
}

func (t *Terminal) Email(_ context.Context, prompt string) (string, error) {
	return GetSimpleText(t.in, prompt, t.out)
}

func (t *Terminal) Password(_ context.Context, prompt string) ([]byte, error) {
	if t.tty {
		return GetPassword(t.fd, prompt, t.out)
	}
	line, err := GetSimpleText(t.in, prompt, t.out)
	if err != nil {
		return nil, err
	}
	return []byte(line), nil
}

// Report prints the message for a failed attempt inside a retry loop.
func (t *Terminal) Report(_ context.Context, err error) {
	fmt.Fprintln(t.out, Message(err))
	fmt.Fprintln(t.out)
}

func (t *Terminal) choice() (string, error) {
	return GetSimpleText(t.in, "Choice: ", t.out)
}
