// Package app composes the client with fx: config, logging, session
// lock, the chat core and the terminal shell.
package app

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/nidaan/mentorchat/internal/api"
	"github.com/nidaan/mentorchat/internal/bus"
	"github.com/nidaan/mentorchat/internal/chat"
	"github.com/nidaan/mentorchat/internal/config"
	"github.com/nidaan/mentorchat/internal/lock"
	"github.com/nidaan/mentorchat/internal/logging"
	"github.com/nidaan/mentorchat/internal/push"
	"github.com/nidaan/mentorchat/internal/session"
	"github.com/nidaan/mentorchat/internal/status"
	"github.com/nidaan/mentorchat/internal/tui"
)

// Params holds the resolved session configuration passed to the fx module.
type Params struct {
	SessionName string
}

// Module returns the fx module for the client, composing all providers
// and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("client",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideStateMachine,
			provideLock,
			provideAPIClient,
			provideConn,
			provideStore,
			providePipeline,
			provideTracker,
			provideService,
			provideApp,
		),
		fx.Invoke(registerLifecycle),
	)
}

// provideConfig loads the global config; a missing file means defaults.
func provideConfig() *config.Config {
	cfg, err := config.Load(session.ConfigPath())
	if err != nil {
		return nil // nil-safe accessors fall back to defaults
	}
	return cfg
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(session.LogPath(p.SessionName), p.SessionName)
}

func provideBus() *bus.Bus {
	return bus.NewBus()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := session.EnsureDir(p.SessionName); err != nil {
		return nil, err
	}
	logger.Info("acquiring session lock", zap.String("session", p.SessionName))
	l, err := lock.Acquire(session.Dir(p.SessionName))
	if err != nil {
		return nil, err
	}
	logger.Info("session lock acquired")
	return l, nil
}

func provideAPIClient(cfg *config.Config, logger *zap.Logger) (*api.Client, error) {
	return api.NewClient(cfg.BaseURL(), logger)
}

func provideConn(cfg *config.Config, logger *zap.Logger) *push.Conn {
	return push.NewConn(cfg.BaseURL(), logger)
}

func provideStore(client *api.Client, b *bus.Bus, logger *zap.Logger) *chat.Store {
	return chat.NewStore(client, b, logger)
}

func providePipeline(store *chat.Store, client *api.Client, conn *push.Conn, b *bus.Bus, logger *zap.Logger) *chat.Pipeline {
	return chat.NewPipeline(store, client, conn, b, logger)
}

func provideTracker(cfg *config.Config, store *chat.Store, conn *push.Conn, b *bus.Bus, logger *zap.Logger) *chat.Tracker {
	return chat.NewTracker(store, conn, b, logger, cfg.TypingIdle(), cfg.TypingDelay())
}

func provideService(client *api.Client, conn *push.Conn, store *chat.Store, pipe *chat.Pipeline, tracker *chat.Tracker, machine *status.Machine, logger *zap.Logger) *chat.Service {
	return chat.NewService(client, conn, store, pipe, tracker, machine, logger)
}

func provideApp(p Params, svc *chat.Service, machine *status.Machine, b *bus.Bus, logger *zap.Logger) *tui.App {
	return tui.NewApp(svc, machine, b, logger, p.SessionName)
}

func registerLifecycle(lc fx.Lifecycle, shutdowner fx.Shutdowner, app *tui.App, svc *chat.Service, machine *status.Machine, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			_ = machine.Transition(status.LoggedOut)

			// The tview event loop owns the terminal; run it off the fx
			// start path and shut the app down when the user quits.
			go func() {
				if err := app.Run(); err != nil {
					logger.Error("terminal shell error", zap.Error(err))
				}
				_ = shutdowner.Shutdown()
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			app.Stop()
			svc.Logout(ctx)
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("client stopped")
			return nil
		},
	})
}
