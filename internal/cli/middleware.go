package cli

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
)

// ErrInternal is returned in place of a recovered panic.
var ErrInternal = errors.New("internal error")

// Request is a parsed command invocation.
type Request struct {
	// Args are the whitespace-separated arguments after the command name.
	Args []string
	// Raw is everything after the command name with surrounding space trimmed.
	Raw string
}

// Handler runs one command.
type Handler func(ctx context.Context, req Request) error

// Middleware wraps a named command handler.
type Middleware func(name string, next Handler) Handler

// Logging returns middleware that logs each command's outcome and duration. Arguments are never logged.
func Logging(log *zap.Logger) Middleware {
	return func(name string, next Handler) Handler {
		return func(ctx context.Context, req Request) error {
			start := time.Now()
			err := next(ctx, req)
			log.Info("command",
				zap.String("name", name),
				zap.String("result", outcome(err)),
				zap.Duration("dur", time.Since(start)),
			)
			return err
		}
	}
}

// Recover returns middleware that turns a panic into ErrInternal.
func Recover(log *zap.Logger) Middleware {
	return func(name string, next Handler) Handler {
		return func(ctx context.Context, req Request) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic",
						zap.Any("reason", r),
						zap.ByteString("stack", debug.Stack()),
						zap.String("command", name),
					)
					err = ErrInternal
				}
			}()
			return next(ctx, req)
		}
	}
}

// Chain applies mws so that the first one is outermost.
func Chain(name string, h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](name, h)
	}
	return h
}
