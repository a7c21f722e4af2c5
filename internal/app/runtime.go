package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/five82/roost/internal/config"
	"github.com/five82/roost/internal/host"
	"github.com/five82/roost/internal/kv"
	"github.com/five82/roost/internal/logging"
	"github.com/five82/roost/internal/state"
)

// Runtime is the set of long-lived components built at startup.
type Runtime struct {
	Config   config.Config
	Logger   *zap.Logger
	Client   *host.Client
	Store    *state.Store
	Listener *Listener
}

func provideLogger(cfg config.Config) (*zap.Logger, func(), error) {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func provideCache(cfg config.Config) (*kv.FileStore, error) {
	store, err := kv.NewFileStore(cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return store, nil
}

func provideClient(cfg config.Config) (*host.Client, error) {
	client, err := host.NewClient(cfg.HostAPIBind)
	if err != nil {
		return nil, fmt.Errorf("init host client: %w", err)
	}
	return client, nil
}

func provideStore(client *host.Client, cache *kv.FileStore, logger *zap.Logger) *state.Store {
	return state.NewStore(client, cache, logger.Named("state"))
}
