package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/and161185/secure-vault/internal/errs"
	"github.com/and161185/secure-vault/internal/model"
)

func testSession(name string) Session {
	return Session{UserID: uuid.Must(uuid.NewV4()), Username: name, Email: name + "@x.com", Key: []byte("0123456789abcdef0123456789abcdef")}
}

func TestWithSession_FromContext(t *testing.T) {
	t.Parallel()

	_, ok := FromContext(context.Background())
	require.False(t, ok)

	s := testSession("carol")
	ctx := WithSession(context.Background(), s)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, s, got)

	ctx = context.WithValue(context.Background(), sessionKey, "not-a-session")
	_, ok = FromContext(ctx)
	require.False(t, ok)

	ctx = WithSession(context.Background(), Session{Username: "nokey"})
	_, ok = FromContext(ctx)
	require.False(t, ok, "session without key is not valid")
}

func TestRequire(t *testing.T) {
	t.Parallel()

	_, err := Require(context.Background())
	require.ErrorIs(t, err, errs.ErrUnauthenticated)

	s := testSession("alice")
	got, err := Require(WithSession(context.Background(), s))
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
}

func TestFromIdentity_CopiesKey(t *testing.T) {
	t.Parallel()

	id := model.Identity{ID: uuid.Must(uuid.NewV4()), Username: "bob", Email: "bob@x.com", Key: []byte{1, 2, 3}}
	s := FromIdentity(id)
	require.Equal(t, id.ID, s.UserID)
	require.Equal(t, id.Key, s.Key)

	id.Key[0] = 9
	require.Equal(t, byte(1), s.Key[0])
}

func TestContext_Lifecycle(t *testing.T) {
	t.Parallel()

	var c Context
	_, err := c.Current()
	require.ErrorIs(t, err, errs.ErrUnauthenticated)
	_, had := c.Clear()
	require.False(t, had)

	_, err = c.Bind(context.Background())
	require.True(t, errors.Is(err, errs.ErrUnauthenticated))

	a := testSession("alice")
	c.Set(a)
	cur, err := c.Current()
	require.NoError(t, err)
	require.Equal(t, "alice", cur.Username)
	require.Equal(t, a.Key, cur.Key)

	ctx, err := c.Bind(context.Background())
	require.NoError(t, err)
	bound, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, "alice", bound.Username)

	// only one identity is current at a time
	c.Set(testSession("bob"))
	cur, err = c.Current()
	require.NoError(t, err)
	require.Equal(t, "bob", cur.Username)

	prev, had := c.Clear()
	require.True(t, had)
	require.Equal(t, "bob", prev.Username)
	require.Empty(t, prev.Key)

	_, err = c.Current()
	require.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestContext_KeyIsolation(t *testing.T) {
	t.Parallel()

	var c Context
	s := testSession("carol")
	c.Set(s)

	cur, _ := c.Current()
	c.Clear()

	// neither the caller's copy nor an earlier Current result is affected by Clear
	require.Equal(t, byte('0'), s.Key[0])
	require.Equal(t, byte('0'), cur.Key[0])
}

func TestContext_ConcurrentUse(t *testing.T) {
	t.Parallel()

	var c Context
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Set(testSession("u"))
			_, _ = c.Current()
			c.Clear()
		}()
	}
	wg.Wait()
}
