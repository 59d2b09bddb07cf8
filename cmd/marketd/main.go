package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"hopemarket/config"
	"hopemarket/gateway"
	"hopemarket/native/market"
	"hopemarket/observability"
	"hopemarket/observability/logging"
	"hopemarket/services/histarchive"
	"hopemarket/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	memFlag := flag.Bool("mem", false, "DEV ONLY: keep the ledger in memory instead of on disk")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("HOPEMARKET_ENV"))

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	if env == "" {
		env = cfg.Env
	}
	logger := logging.Setup("marketd", env, cfg.LogFile)

	var db storage.Database
	if *memFlag {
		db = storage.NewMemDB()
	} else {
		ldb, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "market"))
		if err != nil {
			panic(fmt.Sprintf("Failed to open database: %v", err))
		}
		db = ldb
	}
	defer db.Close()

	engine := market.NewEngine(db)
	if err := engine.Bootstrap(cfg.Owner, cfg.Admin); err != nil {
		logger.Error("Failed to bootstrap market", slog.Any("error", err))
		os.Exit(1)
	}
	current, err := engine.GetConfig()
	if err != nil {
		logger.Error("Failed to read market config", slog.Any("error", err))
		os.Exit(1)
	}
	if current.BidLimit != cfg.BidLimit {
		if err := engine.SetBidLimit(current.Owner, cfg.BidLimit); err != nil {
			logger.Error("Failed to apply bid limit", slog.Any("error", err))
			os.Exit(1)
		}
	}

	archive, err := histarchive.Open(cfg.ArchivePath, logger)
	if err != nil {
		logger.Error("Failed to open sale archive", slog.Any("error", err))
		os.Exit(1)
	}
	defer archive.Close()
	engine.SetEmitter(observability.NewMarketObserver(archive))

	server := gateway.NewServer(engine, logger)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gateway listening", "addr", cfg.ListenAddress)
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("gateway stopped", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error("shutdown", slog.Any("error", err))
		}
	}
}
