package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/roost/internal/config"
	"github.com/five82/roost/internal/ui"
	"github.com/five82/roost/internal/uiprefs"
)

// Options configure the roost application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses ~/.config/roost/ui.toml
	LogLevel   string // overrides log_level when set
}

// Run loads state from the host (or the local cache) and runs the TUI and
// the push listener until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	rt, cleanup, err := InitializeRuntime(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	rt.Logger.Info("starting", zap.String("host", cfg.HostAPIBind), zap.String("cache", cfg.CacheDir))

	if err := rt.Store.Load(ctx); err != nil {
		rt.Logger.Error("initial load failed", zap.Error(err))
		return fmt.Errorf("load state: %w", err)
	}

	userPrefs := uiprefs.Load(opts.PrefsPath)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return rt.Listener.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		return ui.Run(gctx, ui.Options{
			Store:       rt.Store,
			Commander:   rt.Client,
			Link:        rt.Listener,
			Logger:      rt.Logger.Named("ui"),
			ThemeName:   userPrefs.Theme,
			ShowSources: userPrefs.ShowSources,
			PrefsPath:   opts.PrefsPath,
			LogPath:     rt.Config.LogFile,
		})
	})

	err = g.Wait()
	rt.Logger.Info("stopped", zap.Error(err))
	return err
}
