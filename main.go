package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/usulan-gedung/cliparse"
	"github.com/danielhkuo/usulan-gedung/db"
	"github.com/danielhkuo/usulan-gedung/router"
	"github.com/danielhkuo/usulan-gedung/ttlstore"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// Login counters and verification locks
	var store ttlstore.Store
	if cfg.RedisURL != "" {
		rdb, err := ttlstore.NewRedis(ctx, cfg.RedisURL, "usulan:")
		if err != nil {
			slog.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		store = rdb
		slog.Info("Using Redis TTL store")
	} else {
		mem := ttlstore.NewMemory()
		go mem.RunSweeper(ctx, sweepInterval)
		store = mem
		slog.Warn("REDIS_URL not set; login counters are per process")
	}

	// Create router
	rt, err := router.NewRouter(dbConn, cfg, store)
	if err != nil {
		slog.Error("router setup failed", "error", err)
		os.Exit(1)
	}
	defer rt.Close()

	// Create server
	server := http.Server{
		Handler:           rt,
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		// Wait for Ctrl-C or SIGTERM
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "api", cfg.APIURL, "env", cfg.Environment)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed")
	}
}
