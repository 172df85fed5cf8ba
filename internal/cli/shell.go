// Package cli implements the interactive shell and one-shot commands of the vault program.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/and161185/secure-vault/internal/service"
	"github.com/and161185/secure-vault/internal/session"
)

// errQuit ends the shell loop.
var errQuit = errors.New("quit")

type command struct {
	usage     string
	help      string
	needLogin bool
	run       Handler
}

// Shell dispatches commands against the registry and the vault.
// It holds at most one logged-in session at a time.
type Shell struct {
	registry service.Registry
	vault    service.Vault
	sess     session.Context
	prompt   *prompter
	out      io.Writer
	log      *zap.Logger

	// oneShot makes session commands ask for credentials when nobody is logged in.
	oneShot bool

	commands map[string]command
}

// NewShell builds a shell reading from in and writing to out. A nil logger disables logging.
func NewShell(registry service.Registry, vault service.Vault, in io.Reader, out io.Writer, log *zap.Logger) *Shell {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Shell{
		registry: registry,
		vault:    vault,
		prompt:   newPrompter(in, out),
		out:      out,
		log:      log,
	}
	s.commands = s.table(Recover(log), Logging(log))
	return s
}

// Run reads commands until quit, end of input or ctx cancellation.
func (s *Shell) Run(ctx context.Context) error {
	s.println("Secure vault. Type 'help' for commands.")
	defer s.sess.Clear()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if _, err := fmt.Fprintf(s.out, "%s> ", s.status()); err != nil {
			return err
		}
		line, err := s.prompt.line()
		if errors.Is(err, io.EOF) {
			s.println()
			return nil
		}
		if err != nil {
			return err
		}
		name, rest, _ := strings.Cut(line, " ")
		if name == "" {
			continue
		}
		if err := s.dispatch(ctx, name, rest); errors.Is(err, errQuit) {
			return nil
		}
	}
}

// Exec runs a single command given as program arguments and reports its error.
// Commands that need a session prompt for credentials first.
func (s *Shell) Exec(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return s.dispatch(ctx, "help", "")
	}
	s.oneShot = true
	defer s.sess.Clear()

	err := s.dispatch(ctx, args[0], strings.Join(args[1:], " "))
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}

// dispatch runs one command and prints the user-facing message for its error.
func (s *Shell) dispatch(ctx context.Context, name, rest string) error {
	cmd, ok := s.commands[name]
	if !ok {
		s.printf("Unknown command %q. Type 'help' for commands.\n", name)
		return fmt.Errorf("unknown command %q", name)
	}
	rest = strings.TrimSpace(rest)
	err := cmd.run(ctx, Request{Args: strings.Fields(rest), Raw: rest})
	if err != nil && !errors.Is(err, errQuit) {
		s.println(message(err))
	}
	return err
}

// bind returns ctx carrying the current session. In one-shot mode it logs in first.
func (s *Shell) bind(ctx context.Context) (context.Context, error) {
	if _, err := s.sess.Current(); err != nil && s.oneShot {
		if err := s.login(ctx, ""); err != nil {
			return ctx, err
		}
	}
	return s.sess.Bind(ctx)
}

func (s *Shell) status() string {
	cur, err := s.sess.Current()
	if err != nil {
		return "vault"
	}
	return "vault (" + cur.Username + ")"
}

func (s *Shell) printHelp() {
	names := make([]string, 0, len(s.commands))
	for n := range s.commands {
		if n != "exit" {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	s.println("Commands:")
	for _, n := range names {
		c := s.commands[n]
		help := c.help
		if c.needLogin {
			help += " (login required)"
		}
		s.printf("  %-32s %s\n", c.usage, help)
	}
}

func (s *Shell) println(a ...any)               { _, _ = fmt.Fprintln(s.out, a...) }
func (s *Shell) printf(format string, a ...any) { _, _ = fmt.Fprintf(s.out, format, a...) }
