package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/secure-vault/internal/errs"
	"github.com/and161185/secure-vault/internal/model"
)

const emailConstraint = "users_email_key"

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new user row.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, username, email, pwd_hash, salt_auth, kek_salt, wrapped_key, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Pool.Exec(ctx, q, u.ID, u.Username, u.Email, u.PwdHash, u.SaltAuth, u.KekSalt, u.WrappedKey, u.CreatedAt)
	if constraint, ok := uniqueViolation(err); ok {
		if constraint == emailConstraint {
			return errs.ErrEmailTaken
		}
		return errs.ErrUsernameTaken
	}
	if err != nil {
		return ioErr("insert user", err)
	}
	return nil
}

// GetByUsername selects a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `
SELECT id, username, email, pwd_hash, salt_auth, kek_salt, wrapped_key, created_at
FROM users WHERE username=$1`
	return r.scanOne(r.db.Pool.QueryRow(ctx, q, username))
}

// GetByEmail selects a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `
SELECT id, username, email, pwd_hash, salt_auth, kek_salt, wrapped_key, created_at
FROM users WHERE email=$1 ORDER BY username LIMIT 1`
	return r.scanOne(r.db.Pool.QueryRow(ctx, q, email))
}

// ListEmails returns all emails ordered by username.
func (r *UserRepo) ListEmails(ctx context.Context) ([]string, error) {
	const q = `SELECT email FROM users ORDER BY username`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, ioErr("list emails", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, ioErr("scan email", err)
		}
		out = append(out, email)
	}
	if err := rows.Err(); err != nil {
		return nil, ioErr("list emails", err)
	}
	return out, nil
}

func (r *UserRepo) scanOne(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PwdHash, &u.SaltAuth, &u.KekSalt, &u.WrappedKey, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, ioErr("select user", err)
	}
	return &u, nil
}
