// Command vault is a per-user secret vault with an interactive shell.
//
// Usage:
//
//	vault [flags]                   start the shell
//	vault [flags] <command> [args]  run one command and exit
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/and161185/secure-vault/internal/cli"
	"github.com/and161185/secure-vault/internal/config"
	"github.com/and161185/secure-vault/internal/logging"
	"github.com/and161185/secure-vault/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, rest, err := config.Load(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "Usage: vault [flags] [command [args]]")
		config.Usage(os.Stderr)
		return 2
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("store", cfg.Store),
	)

	ctx := context.Background()
	if len(rest) > 0 {
		// the shell leaves SIGINT at its default so a blocked prompt can still be interrupted
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
	}

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("open store", zap.Error(err))
		fmt.Fprintln(os.Stderr, "Unable to open the vault store:", err)
		return 1
	}
	defer b.close()

	registry, err := service.NewRegistry(b.users, cfg.KDF, logger)
	if err != nil {
		logger.Error("init registry", zap.Error(err))
		fmt.Fprintln(os.Stderr, "Unable to start:", err)
		return 1
	}
	vault := service.NewVault(b.vault, logger)
	sh := cli.NewShell(registry, vault, os.Stdin, os.Stdout, logger)

	if len(rest) > 0 {
		if err := sh.Exec(ctx, rest); err != nil {
			return 1
		}
		return 0
	}
	if err := sh.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("shell", zap.Error(err))
		return 1
	}
	return 0
}
