package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	pkgcrypto "github.com/and161185/secure-vault/internal/crypto"
	"github.com/and161185/secure-vault/internal/crypto/codec"
	"github.com/and161185/secure-vault/internal/errs"
	"github.com/and161185/secure-vault/internal/persist"
	"github.com/and161185/secure-vault/internal/repository/collection"
	"github.com/and161185/secure-vault/internal/service"
)

var testKDF = pkgcrypto.KDF{Time: 1, MemoryKiB: 8 * 1024, Threads: 1}

type env struct {
	dir      string
	registry *service.RegistryImpl
	vault    *service.VaultImpl
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	store, err := persist.NewFile(dir)
	require.NoError(t, err)
	log := zaptest.NewLogger(t)
	registry, err := service.NewRegistry(collection.NewUserRepo(store), testKDF, log)
	require.NoError(t, err)
	return env{
		dir:      dir,
		registry: registry,
		vault:    service.NewVault(collection.NewVaultRepo(store), log),
	}
}

// run feeds input lines to a fresh shell and returns its output.
func (e env) run(t *testing.T, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	sh := NewShell(e.registry, e.vault, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out, zaptest.NewLogger(t))
	require.NoError(t, sh.Run(context.Background()))
	return out.String()
}

// exec runs one command non-interactively with input for its prompts.
func (e env) exec(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	sh := NewShell(e.registry, e.vault, strings.NewReader(input), &out, zaptest.NewLogger(t))
	err := sh.Exec(context.Background(), args)
	return out.String(), err
}

func TestShell_FullSession(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	out := e.run(t,
		"register alice alice@x.com", "secret1",
		"login alice@x.com", "secret1",
		"whoami",
		"store-secret top secret",
		"get-secret",
		"delete-secret",
		"get-secret",
		"logout",
		"get-secret",
		"quit",
		"help",
	)

	require.Contains(t, out, msgRegistered)
	require.Contains(t, out, "Good to see you, alice!")
	require.Contains(t, out, "alice <alice@x.com>")
	require.Contains(t, out, msgStored)
	require.Contains(t, out, msgRevealed+"\ntop secret\n")
	require.Contains(t, out, msgDeleted)
	require.Contains(t, out, msgNoData)
	require.Contains(t, out, msgLoggedOut)
	require.Contains(t, out, "Please login first.")
	require.NotContains(t, out, "Commands:", "nothing runs after quit")
	require.Contains(t, out, "vault (alice)> ")
}

func TestShell_StorePrintsCiphertext(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	out := e.run(t,
		"register bob bob@x.com", "bobpass",
		"login bob@x.com", "bobpass",
		"store-secret   keep  spacing  ",
	)
	lines := strings.Split(out, "\n")
	var cipherLine string
	for i, l := range lines {
		if strings.HasSuffix(l, msgStored) && i+1 < len(lines) {
			cipherLine = lines[i+1]
		}
	}
	require.NotEmpty(t, cipherLine)
	blob, err := codec.DecodeText(cipherLine)
	require.NoError(t, err)
	require.NotContains(t, string(blob), "keep")

	id, err := e.registry.Authenticate(context.Background(), "bob@x.com", "bobpass")
	require.NoError(t, err)
	pt, err := codec.Decrypt(id.Key, blob)
	require.NoError(t, err)
	require.Equal(t, "keep  spacing", string(pt))
}

func TestShell_RegistrationMessages(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	out := e.run(t,
		"register carol carol.x.com", "secret1",
		"register carol carol@x.com", "abc",
		"register carol carol@x.com", "secret1",
		"register carol other@x.com", "secret2",
		"register carol2 carol@x.com", "secret2",
		"register", "", "", "",
	)
	require.Contains(t, out, "Please enter a valid email address.")
	require.Contains(t, out, "Password must be at least 6 characters long.")
	require.Contains(t, out, "Username already exists. Try a new one.")
	require.Contains(t, out, "Email is already registered.")
	require.Contains(t, out, msgAllRequired)
	require.Equal(t, 1, strings.Count(out, msgRegistered))
}

func TestShell_LoginFailures(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	_, err := e.registry.Register(context.Background(), "dan", "dan@x.com", "danpass")
	require.NoError(t, err)

	out := e.run(t,
		"login dan@x.com", "wrongpass",
		"login ghost@x.com", "danpass",
		"login dan.x.com", "danpass",
		"login", "", "",
		"whoami",
	)
	require.Equal(t, 2, strings.Count(out, "Invalid email or password."))
	require.Contains(t, out, "Please enter a valid email address.")
	require.Contains(t, out, msgBothRequired)
	require.Contains(t, out, msgNotLoggedIn)
}

func TestShell_LoginReplacesSession(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.registry.Register(ctx, "erin", "erin@x.com", "erinpass")
	require.NoError(t, err)
	_, err = e.registry.Register(ctx, "frank", "frank@x.com", "frankpass")
	require.NoError(t, err)

	out := e.run(t,
		"login erin@x.com", "erinpass",
		"store-secret erin data",
		"login frank@x.com", "frankpass",
		"whoami",
		"get-secret",
	)
	require.Contains(t, out, "frank <frank@x.com>")
	require.Contains(t, out, msgNoData)
	require.NotContains(t, out, "erin data\n")
}

func TestShell_LogoutWipe(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	_, err := e.registry.Register(context.Background(), "gina", "gina@x.com", "ginapass")
	require.NoError(t, err)

	out := e.run(t,
		"logout",
		"login gina@x.com", "ginapass",
		"store-secret gone soon",
		"logout -wipe",
		"logout -bogus",
		"login gina@x.com", "ginapass",
		"get-secret",
	)
	require.Contains(t, out, msgNotLoggedIn)
	require.Contains(t, out, msgLoggedOutWiped)
	require.Contains(t, out, "usage: logout [-wipe]")
	require.Contains(t, out, msgNoData)
}

func TestShell_EmptySecretAndUnknownCommand(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	_, err := e.registry.Register(context.Background(), "hal", "hal@x.com", "halpass")
	require.NoError(t, err)

	out := e.run(t,
		"store-secret",
		"login hal@x.com", "halpass",
		"store-secret", "",
		"frobnicate",
		"",
		"help",
	)
	require.Contains(t, out, "Please login first.")
	require.Contains(t, out, "Please enter some data to encrypt.")
	require.Contains(t, out, `Unknown command "frobnicate"`)
	require.Contains(t, out, "store-secret [text]")
	require.Contains(t, out, "(login required)")
}

func TestShell_ListEmails(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	out := e.run(t, "list-registered-emails")
	require.Contains(t, out, msgNoUsers)

	ctx := context.Background()
	for _, n := range []string{"zed", "amy"} {
		_, err := e.registry.Register(ctx, n, n+"@x.com", "password")
		require.NoError(t, err)
	}
	out = e.run(t, "list-registered-emails")
	require.Less(t, strings.Index(out, "amy@x.com"), strings.Index(out, "zed@x.com"))
}

func TestShell_CorruptedEntry(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.registry.Register(ctx, "ivy", "ivy@x.com", "ivypass")
	require.NoError(t, err)

	// a blob sealed under some other key
	other, err := codec.GenerateKey()
	require.NoError(t, err)
	blob, err := codec.Encrypt(other, []byte("x"))
	require.NoError(t, err)
	require.NoError(t, collection.NewVaultRepo(mustFile(t, e.dir)).Put(ctx, "ivy", blob))

	out := e.run(t, "login ivy@x.com", "ivypass", "get-secret")
	require.Contains(t, out, "Unable to decrypt. Data might be corrupted.")
}

func TestShell_DeleteUndecodableEntry(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.registry.Register(ctx, "ivy", "ivy@x.com", "ivypass")
	require.NoError(t, err)

	store := mustFile(t, e.dir)
	require.NoError(t, store.SaveCollection(ctx, persist.Vault, map[string]json.RawMessage{
		"ivy": json.RawMessage(`"!!!not base64!!!"`),
	}))

	out := e.run(t, "login ivy@x.com", "ivypass", "delete-secret", "get-secret")
	require.Contains(t, out, msgDeleted)
	require.Contains(t, out, msgNoData)
	require.NotContains(t, out, "Unable to decrypt.")

	all, err := store.LoadCollection(ctx, persist.Vault)
	require.NoError(t, err)
	require.NotContains(t, all, "ivy")
}

func TestShell_StoreOverNullVaultFile(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	_, err := e.registry.Register(context.Background(), "jay", "jay@x.com", "jaypass")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(e.dir, "vault.json"), []byte("null"), 0o600))

	out := e.run(t, "login jay@x.com", "jaypass", "store-secret hello", "get-secret")
	require.NotContains(t, out, "Internal error.")
	require.Contains(t, out, msgStored)
	require.Contains(t, out, msgRevealed+"\nhello\n")
}

func TestShell_ExecRegister(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	out, err := e.exec(t, "jon@x.com\njonpass\n", "register", "jon")
	require.NoError(t, err)
	require.Contains(t, out, msgRegistered)

	_, err = e.exec(t, "jonpass\n", "register", "jon", "jon2@x.com")
	require.ErrorIs(t, err, errs.ErrUsernameTaken)

	// input ends before the password prompt
	_, err = e.exec(t, "", "register", "lee", "lee@x.com")
	require.Error(t, err)

	emails, err := e.registry.ListEmails(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"jon@x.com"}, emails)
}

func TestShell_ExecSessionCommandsPromptForLogin(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	_, err := e.registry.Register(context.Background(), "kim", "kim@x.com", "kimpass")
	require.NoError(t, err)

	out, err := e.exec(t, "kim@x.com\nkimpass\n", "store-secret", "one", "shot")
	require.NoError(t, err)
	require.Contains(t, out, msgStored)

	out, err = e.exec(t, "kim@x.com\nkimpass\n", "get-secret")
	require.NoError(t, err)
	require.Contains(t, out, "one shot")

	_, err = e.exec(t, "kim@x.com\nnope-nope\n", "get-secret")
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	_, err = e.exec(t, "", "no-such-command")
	require.Error(t, err)

	out, err = e.exec(t, "")
	require.NoError(t, err)
	require.Contains(t, out, "Commands:")
}

func mustFile(t *testing.T, dir string) *persist.File {
	t.Helper()
	f, err := persist.NewFile(dir)
	require.NoError(t, err)
	return f
}
