package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/and161185/secure-vault/internal/errs"
)

var (
	errRegisterIncomplete = fmt.Errorf("%w: missing registration field", errs.ErrValidation)
	errLoginIncomplete    = fmt.Errorf("%w: missing login field", errs.ErrValidation)
)

// User-facing text.
const (
	msgRegistered     = "Account created successfully!"
	msgAllRequired    = "All fields are required to register."
	msgBothRequired   = "Please enter both email and password."
	msgLoggedOut      = "You've been logged out."
	msgLoggedOutWiped = "You've been logged out. Your vault has been cleared!"
	msgStored         = "Your data has been securely locked away!"
	msgRevealed       = "Here's your unlocked secret message:"
	msgDeleted        = "Your vault entry has been removed."
	msgNoData         = "No data found for this user."
	msgNoUsers        = "No users registered yet."
	msgNotLoggedIn    = "Not logged in."
)

// message maps an error to the text shown to the user.
func message(err error) string {
	switch {
	case errors.Is(err, errRegisterIncomplete), errors.Is(err, errs.ErrEmptyUsername):
		return msgAllRequired
	case errors.Is(err, errLoginIncomplete):
		return msgBothRequired
	case errors.Is(err, errs.ErrInvalidEmail):
		return "Please enter a valid email address."
	case errors.Is(err, errs.ErrWeakPassword):
		return "Password must be at least 6 characters long."
	case errors.Is(err, errs.ErrEmptySecret):
		return "Please enter some data to encrypt."
	case errors.Is(err, errs.ErrUsernameTaken):
		return "Username already exists. Try a new one."
	case errors.Is(err, errs.ErrEmailTaken):
		return "Email is already registered. Try logging in."
	case errors.Is(err, errs.ErrUnauthorized):
		return "Invalid email or password."
	case errors.Is(err, errs.ErrUnauthenticated):
		return "Please login first."
	case errors.Is(err, errs.ErrInvalidToken):
		return "Unable to decrypt. Data might be corrupted."
	case errors.Is(err, errs.ErrPersistence):
		return "Storage failure. Your last action was not saved."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Interrupted."
	case errors.Is(err, ErrInternal):
		return "Internal error."
	default:
		return "Error: " + err.Error()
	}
}

// outcome classifies err for logs without leaking details.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errs.ErrValidation):
		return "invalid"
	case errors.Is(err, errs.ErrAlreadyExists):
		return "exists"
	case errors.Is(err, errs.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, errs.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, errs.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, errs.ErrPersistence):
		return "persistence"
	default:
		return "error"
	}
}
