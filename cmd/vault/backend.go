package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/and161185/secure-vault/internal/config"
	"github.com/and161185/secure-vault/internal/migrate"
	"github.com/and161185/secure-vault/internal/persist"
	"github.com/and161185/secure-vault/internal/repository"
	"github.com/and161185/secure-vault/internal/repository/collection"
	"github.com/and161185/secure-vault/internal/repository/postgres"
)

type backend struct {
	users repository.UserRepository
	vault repository.VaultRepository
	close func()
}

// openBackend builds the repositories for the configured store.
func openBackend(ctx context.Context, cfg *config.Config, log *zap.Logger) (*backend, error) {
	switch cfg.Store {
	case config.StoreFile:
		store, err := persist.NewFile(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		log.Debug("file store", zap.String("dir", cfg.DataDir))
		return &backend{
			users: collection.NewUserRepo(store),
			vault: collection.NewVaultRepo(store),
			close: func() {},
		}, nil

	case config.StorePostgres:
		if cfg.MigrateOnStart {
			if err := migrate.Up(ctx, cfg.DSN); err != nil {
				return nil, err
			}
		}
		db, err := postgres.New(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &backend{
			users: postgres.NewUserRepo(db),
			vault: postgres.NewVaultRepo(db),
			close: db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
