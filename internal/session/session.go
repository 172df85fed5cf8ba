// Package session tracks which identity is currently authenticated.
//
// A Session is the handle produced by a successful login. Services read it
// from a context.Context (WithSession / FromContext), so independent callers
// never share state. Context is the single "current user" slot used by an
// interactive front-end.
package session

import (
	"context"
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/secure-vault/internal/errs"
	"github.com/and161185/secure-vault/internal/model"
)

// Session is an authenticated identity together with its encryption key.
type Session struct {
	UserID   uuid.UUID
	Username string
	Email    string
	Key      []byte
}

// FromIdentity builds a session handle from a registry result.
func FromIdentity(id model.Identity) Session {
	return Session{
		UserID:   id.ID,
		Username: id.Username,
		Email:    id.Email,
		Key:      append([]byte(nil), id.Key...),
	}
}

// Valid reports whether s refers to an identity and carries a key.
func (s Session) Valid() bool {
	return s.Username != "" && len(s.Key) > 0
}

type ctxKey string

const sessionKey ctxKey = "vault.session"

// WithSession stores an authenticated session in ctx.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext fetches the session from ctx.
func FromContext(ctx context.Context) (Session, bool) {
	v := ctx.Value(sessionKey)
	if v == nil {
		return Session{}, false
	}
	s, ok := v.(Session)
	if !ok || !s.Valid() {
		return Session{}, false
	}
	return s, true
}

// Require returns the session in ctx or errs.ErrUnauthenticated.
func Require(ctx context.Context) (Session, error) {
	s, ok := FromContext(ctx)
	if !ok {
		return Session{}, errs.ErrUnauthenticated
	}
	return s, nil
}

// Context holds at most one current session. The zero value is empty and ready to use.
type Context struct {
	mu  sync.RWMutex
	cur *Session
}

// Set makes s the current session, replacing any previous one.
func (c *Context) Set(s Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wipe()
	s.Key = append([]byte(nil), s.Key...)
	c.cur = &s
}

// Current returns the current session or errs.ErrUnauthenticated.
func (c *Context) Current() (Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cur == nil {
		return Session{}, errs.ErrUnauthenticated
	}
	s := *c.cur
	s.Key = append([]byte(nil), c.cur.Key...)
	return s, nil
}

// Clear drops the current session and reports the one that was active, if any.
func (c *Context) Clear() (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil {
		return Session{}, false
	}
	prev := Session{UserID: c.cur.UserID, Username: c.cur.Username, Email: c.cur.Email}
	c.wipe()
	c.cur = nil
	return prev, true
}

// Bind returns ctx carrying the current session, or errs.ErrUnauthenticated.
func (c *Context) Bind(ctx context.Context) (context.Context, error) {
	s, err := c.Current()
	if err != nil {
		return ctx, err
	}
	return WithSession(ctx, s), nil
}

// wipe zeroes the key of the current session; caller holds mu.
func (c *Context) wipe() {
	if c.cur == nil {
		return
	}
	for i := range c.cur.Key {
		c.cur.Key[i] = 0
	}
}
