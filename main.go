package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/danielhkuo/pollboard/auth"
	"github.com/danielhkuo/pollboard/cliparse"
	"github.com/danielhkuo/pollboard/db"
	"github.com/danielhkuo/pollboard/handlers"
	"github.com/danielhkuo/pollboard/metrics"
	"github.com/danielhkuo/pollboard/revalidate"
	"github.com/danielhkuo/pollboard/router"
	"github.com/danielhkuo/pollboard/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := cliparse.LoadDotEnv(".env"); err != nil {
		logrus.WithError(err).Fatal("failed to load .env")
	}

	cmd := &cli.Command{
		Name:   "pollboard",
		Usage:  "polls with share links, live results and threaded discussion",
		Flags:  cliparse.Flags(),
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "apply database migrations and exit",
				Action: migrate,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logrus.WithError(err).Fatal("pollboard exited")
	}
}

func setup(ctx context.Context, cmd *cli.Command) (cliparse.Config, *db.DB, error) {
	cfg, err := cliparse.FromCommand(cmd)
	if err != nil {
		return cliparse.Config{}, nil, err
	}
	if err := configureLogging(cfg); err != nil {
		return cliparse.Config{}, nil, err
	}

	store, err := db.Open(ctx, cfg)
	if err != nil {
		return cliparse.Config{}, nil, err
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return cliparse.Config{}, nil, err
	}
	logrus.WithField("database", cfg.DatabaseType).Info("database schema ready")

	return cfg, store, nil
}

func configureLogging(cfg cliparse.Config) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logrus.SetLevel(level)

	if cfg.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func migrate(ctx context.Context, cmd *cli.Command) error {
	_, store, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	return store.Close()
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, store, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps := handlers.Deps{
		Services:    services.New(store, cfg),
		Config:      cfg,
		TokenAuth:   auth.NewTokenAuth(cfg.JWTSecret),
		Revalidator: revalidate.New(cfg.RevalidateURL, cfg.RevalidateSecret),
		Metrics:     metrics.New(registry),
	}

	server := &http.Server{
		Handler:      router.NewRouter(deps, registry),
		Addr:         ":" + strconv.Itoa(cfg.Port),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("port", cfg.Port).Info("listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logrus.Info("server closed")
	return nil
}
