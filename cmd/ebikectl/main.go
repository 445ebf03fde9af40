package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ebikerent/internal/config"
	"ebikerent/internal/metrics"
	"ebikerent/internal/session"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const tokenLeeway = time.Minute

type CLI struct {
	Config string `name:"config" short:"c" env:"EBIKE_CONFIG" default:"configs/config.yaml" help:"Path to the YAML config file."`

	Login     LoginCmd     `cmd:"" help:"Log in and store the session tokens."`
	Logout    LogoutCmd    `cmd:"" help:"Forget the stored session."`
	Whoami    WhoamiCmd    `cmd:"" help:"Show the logged-in user."`
	Bikes     BikesCmd     `cmd:"" help:"Browse and manage bikes."`
	Bookings  BookingsCmd  `cmd:"" help:"List and manage bookings."`
	Book      BookCmd      `cmd:"" help:"Book a bike."`
	Favorites FavoritesCmd `cmd:"" help:"Manage favorite bikes."`
	Ratings   RatingsCmd   `cmd:"" help:"Read and write bike ratings."`
	Quote     QuoteCmd     `cmd:"" help:"Preview the price of a rental."`
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("ebikectl"),
		kong.Description("Command line client for the e-bike rental marketplace."),
		kong.UsageOnError(),
	)

	app, err := newApp(ctx, cli.Config, os.Stdout, os.Stderr)
	if err != nil {
		return err
	}
	defer app.Close()

	startMetrics(ctx, app.cfg, app.logger)

	if err := app.svc.Auth.EnsureFresh(ctx, tokenLeeway); err != nil {
		app.logger.Warn().Err(err).Msg("token refresh failed")
	}

	err = kctx.Run(app)
	if errors.Is(err, session.ErrNoSession) {
		return errors.New("not logged in, run `ebikectl login` first")
	}
	return err
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
