package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"ebikerent/internal/apiclient"
	"ebikerent/internal/cache"
	"ebikerent/internal/config"
	"ebikerent/internal/events"
	"ebikerent/internal/logging"
	"ebikerent/internal/query"
	"ebikerent/internal/service"
	"ebikerent/internal/session"
	"ebikerent/internal/storage"
	"ebikerent/internal/tracing"

	"github.com/rs/zerolog"
)

// App is what every command runs against.
type App struct {
	ctx    context.Context
	cfg    *config.Config
	logger *zerolog.Logger
	out    io.Writer

	session *session.Session
	query   *query.Client
	bus     *events.EventBus
	svc     *service.Services

	closers []io.Closer
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newApp(ctx context.Context, configPath string, out, errOut io.Writer) (*App, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	baseLogger, logCloser, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger := logging.Component(baseLogger, "ebikectl")

	app := &App{ctx: ctx, cfg: cfg, logger: logger, out: out}
	if logCloser != nil {
		app.closers = append(app.closers, logCloser)
	}

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, cfg.App)
	if err != nil {
		logger.Warn().Err(err).Msg("tracing disabled")
	} else {
		app.closers = append(app.closers, closerFunc(func() error {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return shutdownTracing(sctx)
		}))
	}

	kv, err := storage.Open(cfg.Session, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("open session storage: %w", err)
	}
	app.closers = append(app.closers, kv)

	app.session, err = session.New(ctx, kv, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("load session: %w", err)
	}

	store, storeCloser, err := cache.Open(ctx, cfg, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("open cache: %w", err)
	}
	app.closers = append(app.closers, storeCloser)

	app.bus = events.NewEventBus()
	app.bus.OnNotification(func(n events.Notification) {
		fmt.Fprintf(errOut, "[%s] %s: %s\n", n.Level, n.Title, n.Message)
	})

	app.query = query.New(store, app.bus, logger)
	api := apiclient.New(apiclient.Options{
		Root:    cfg.APIRoot(),
		Timeout: cfg.API.Timeout,
		RPS:     cfg.API.RateLimit.RPS,
		Burst:   cfg.API.RateLimit.Burst,
	}, app.session, logger)

	app.svc = service.New(service.Deps{
		API:     api,
		Query:   app.query,
		Session: app.session,
		Bus:     app.bus,
		Logger:  logger,
	})

	logger.Debug().Str("api_root", cfg.APIRoot()).Str("cache", cfg.Cache.Backend).Msg("client ready")
	return app, nil
}

// Close releases storage in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn().Err(err).Msg("close failed")
		}
	}
	a.closers = nil
}
