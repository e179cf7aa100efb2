package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog"
	"github.com/gorilla/sessions"
	"github.com/marcelsud/book-manager/book"
	"github.com/marcelsud/book-manager/book/cover"
	"github.com/marcelsud/book-manager/config"
	"github.com/marcelsud/book-manager/internal/http/chi"
	"github.com/marcelsud/book-manager/internal/storage"
	"github.com/marcelsud/book-manager/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const TIMEOUT = 30 * time.Second

/*
 * main wires every package together: config, storage, the cover intake, metrics and the router.
 * Imports only go downward: cmd imports the business layer, which imports storage.
 */

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}
	logger := httplog.NewLogger("book-manager", httplog.Options{
		JSON: true,
	})
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	repo, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.DBDriver).Msg("opening repository")
		return err
	}
	defer repo.Close(ctx)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	exporter, err := metrics.NewOTelExporter(metrics.NewCatalogCollector(repo), registry)
	if err != nil {
		logger.Error().Err(err).Msg("creating metrics exporter")
		return err
	}
	defer exporter.Shutdown(context.Background())

	fs := afero.NewOsFs()
	intake, err := cover.NewIntake(fs, cfg.UploadDir, cfg.Naming())
	if err != nil {
		logger.Error().Err(err).Str("dir", cfg.UploadDir).Msg("preparing upload directory")
		return err
	}

	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode

	s := book.NewService(repo, intake)
	r := chi.Handlers(ctx, chi.Dependencies{
		Logger:   logger,
		Books:    s,
		Sessions: store,
		Uploads:  intake.FileSystem(),
		Metrics:  exporter.ServeHTTP(),
	})
	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         ":" + cfg.Port,
		Handler:      r,
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown)
	logger.Info().
		Str("port", cfg.Port).
		Str("driver", cfg.DBDriver).
		Str("upload_dir", cfg.UploadDir).
		Str("upload_naming", cfg.Naming().String()).
		Msg("listening")
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("serving http")
		return err
	}
	if err := <-errShutdown; err != nil {
		logger.Error().Err(err).Msg("shutting down")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		errShutdown <- nil
	case context.DeadlineExceeded:
		errShutdown <- fmt.Errorf("forcing closing the server: %w", err)
	default:
		errShutdown <- fmt.Errorf("forcing closing the server: %w", err)
	}
}
