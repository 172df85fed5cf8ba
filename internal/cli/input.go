package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// prompter reads answers from the user. Passwords are read without echo when
// the input is a terminal and as a plain line otherwise.
type prompter struct {
	in       *bufio.Reader
	out      io.Writer
	fd       int
	terminal bool
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	p := &prompter{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.terminal = true
	}
	return p
}

// line reads one line, trimmed. A final line without newline is returned as is.
func (p *prompter) line() (string, error) {
	s, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(s) > 0 {
			return strings.TrimSpace(s), nil
		}
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// text prints prompt and reads a line.
func (p *prompter) text(prompt string) (string, error) {
	if _, err := fmt.Fprint(p.out, prompt+": "); err != nil {
		return "", err
	}
	return p.line()
}

// password prints prompt and reads a password. The caller wipes the result.
func (p *prompter) password(prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(p.out, prompt+": "); err != nil {
		return nil, err
	}
	if !p.terminal {
		s, err := p.in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && len(s) > 0) {
			return nil, err
		}
		return []byte(strings.TrimRight(s, "\r\n")), nil
	}
	pw, err := readPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
