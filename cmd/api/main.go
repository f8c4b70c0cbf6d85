package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"binrent/internal/api"
	"binrent/internal/buildinfo"
	"binrent/internal/config"
	"binrent/internal/logging"
	"binrent/internal/metrics"
	"binrent/internal/telemetry"
)

func main() {
	cfgPath := flag.String("config", os.Getenv("BINRENT_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		// logger config is not known yet
		logging.New("binrent-api", logging.Config{Level: "info", Format: "json"}).Error("load config", "err", err)
		os.Exit(1)
	}
	log := logging.New("binrent-api", cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, cfg.Tracing, "binrent-api", buildinfo.Version)
	if err != nil {
		log.Error("init tracing", "err", err)
		os.Exit(1)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown", "err", err)
		}
	}()
	metrics.RegisterDefault()

	s, err := api.NewServer(cfg, log)
	if err != nil {
		log.Error("failed to init server", "err", err)
		os.Exit(1)
	}

	worker := s.NewCallbackWorker()
	worker.Start()
	defer close(worker.Stop)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("API listening", "addr", cfg.Server.Addr, "version", buildinfo.Version, "auth", cfg.Auth.Mode)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "err", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Error("graceful shutdown", "err", err)
		}
	}
}
