package cli

import (
	"context"
	"flag"
	"io"

	"github.com/and161185/secure-vault/internal/crypto/codec"
	"github.com/and161185/secure-vault/internal/session"
)

// table builds the command set, wrapping every handler with mws.
func (s *Shell) table(mws ...Middleware) map[string]command {
	cmds := map[string]command{
		"register": {
			usage: "register [username] [email]",
			help:  "create an account; the password is prompted",
			run:   s.cmdRegister,
		},
		"login": {
			usage: "login [email]",
			help:  "log in; the password is prompted",
			run:   s.cmdLogin,
		},
		"logout": {
			usage: "logout [-wipe]",
			help:  "log out; -wipe also deletes your stored secret",
			run:   s.cmdLogout,
		},
		"store-secret": {
			usage:     "store-secret [text]",
			help:      "encrypt and save text, replacing the stored secret",
			needLogin: true,
			run:       s.cmdStore,
		},
		"get-secret": {
			usage:     "get-secret",
			help:      "decrypt and show the stored secret",
			needLogin: true,
			run:       s.cmdGet,
		},
		"delete-secret": {
			usage:     "delete-secret",
			help:      "delete the stored secret",
			needLogin: true,
			run:       s.cmdDelete,
		},
		"list-registered-emails": {
			usage: "list-registered-emails",
			help:  "show the emails of all registered users",
			run:   s.cmdListEmails,
		},
		"whoami": {
			usage: "whoami",
			help:  "show the logged-in user",
			run:   s.cmdWhoami,
		},
		"help": {
			usage: "help",
			help:  "show this list",
			run: func(context.Context, Request) error {
				s.printHelp()
				return nil
			},
		},
		"quit": {
			usage: "quit | exit",
			help:  "leave the program",
			run:   func(context.Context, Request) error { return errQuit },
		},
	}
	cmds["exit"] = cmds["quit"]

	for name, c := range cmds {
		c.run = Chain(name, c.run, mws...)
		cmds[name] = c
	}
	return cmds
}

func (s *Shell) cmdRegister(ctx context.Context, req Request) error {
	username, email := arg(req, 0), arg(req, 1)
	var err error
	if username == "" {
		if username, err = s.prompt.text("Username"); err != nil {
			return err
		}
	}
	if email == "" {
		if email, err = s.prompt.text("Email"); err != nil {
			return err
		}
	}
	pw, err := s.prompt.password("Password")
	if err != nil {
		return err
	}
	defer wipe(pw)
	if username == "" || email == "" || len(pw) == 0 {
		return errRegisterIncomplete
	}

	if _, err := s.registry.Register(ctx, username, email, string(pw)); err != nil {
		return err
	}
	s.println(msgRegistered)
	return nil
}

func (s *Shell) cmdLogin(ctx context.Context, req Request) error {
	return s.login(ctx, arg(req, 0))
}

// login authenticates and makes the identity current, replacing any previous session.
func (s *Shell) login(ctx context.Context, email string) error {
	var err error
	if email == "" {
		if email, err = s.prompt.text("Email"); err != nil {
			return err
		}
	}
	pw, err := s.prompt.password("Password")
	if err != nil {
		return err
	}
	defer wipe(pw)
	if email == "" || len(pw) == 0 {
		return errLoginIncomplete
	}

	id, err := s.registry.Authenticate(ctx, email, string(pw))
	if err != nil {
		return err
	}
	s.sess.Set(session.FromIdentity(id))
	wipe(id.Key)
	s.printf("Good to see you, %s! Time to safeguard your secrets.\n", id.Username)
	return nil
}

func (s *Shell) cmdLogout(ctx context.Context, req Request) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	wipeVault := fs.Bool("wipe", false, "delete the stored secret before logging out")
	if err := fs.Parse(req.Args); err != nil {
		s.println("usage: logout [-wipe]")
		return nil
	}

	if *wipeVault {
		bound, err := s.bind(ctx)
		if err != nil {
			return err
		}
		if _, err := s.vault.Delete(bound); err != nil {
			return err
		}
	}
	if _, had := s.sess.Clear(); !had {
		s.println(msgNotLoggedIn)
		return nil
	}
	if *wipeVault {
		s.println(msgLoggedOutWiped)
	} else {
		s.println(msgLoggedOut)
	}
	return nil
}

func (s *Shell) cmdStore(ctx context.Context, req Request) error {
	ctx, err := s.bind(ctx)
	if err != nil {
		return err
	}
	text := req.Raw
	if text == "" {
		if text, err = s.prompt.text("Data to encrypt"); err != nil {
			return err
		}
	}
	blob, err := s.vault.Store(ctx, []byte(text))
	if err != nil {
		return err
	}
	s.println(msgStored)
	s.println(codec.EncodeText(blob))
	return nil
}

func (s *Shell) cmdGet(ctx context.Context, _ Request) error {
	ctx, err := s.bind(ctx)
	if err != nil {
		return err
	}
	pt, ok, err := s.vault.Retrieve(ctx)
	if err != nil {
		return err
	}
	if !ok {
		s.println(msgNoData)
		return nil
	}
	s.println(msgRevealed)
	s.println(string(pt))
	return nil
}

func (s *Shell) cmdDelete(ctx context.Context, _ Request) error {
	ctx, err := s.bind(ctx)
	if err != nil {
		return err
	}
	removed, err := s.vault.Delete(ctx)
	if err != nil {
		return err
	}
	if !removed {
		s.println(msgNoData)
		return nil
	}
	s.println(msgDeleted)
	return nil
}

func (s *Shell) cmdListEmails(ctx context.Context, _ Request) error {
	emails, err := s.registry.ListEmails(ctx)
	if err != nil {
		return err
	}
	if len(emails) == 0 {
		s.println(msgNoUsers)
		return nil
	}
	for _, e := range emails {
		s.println(e)
	}
	return nil
}

func (s *Shell) cmdWhoami(context.Context, Request) error {
	cur, err := s.sess.Current()
	if err != nil {
		s.println(msgNotLoggedIn)
		return nil
	}
	s.printf("%s <%s>\n", cur.Username, cur.Email)
	return nil
}

func arg(req Request, i int) string {
	if i < len(req.Args) {
		return req.Args[i]
	}
	return ""
}
