package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flowdash/internal/server"
	"flowdash/internal/storage"
	"flowdash/internal/storage/postgres"
	"flowdash/internal/storage/sqlite"
	"flowdash/internal/util"
)

func main() {
	addrFlag := flag.String("addr", util.EnvOrDefault("FLOW_ADDR", ":8080"), "HTTP listen address")
	dbFlag := flag.String("db", util.EnvOrDefault("FLOW_DB_PATH", "data/flowdash.db"), "Path to sqlite database file")
	dbURLFlag := flag.String("db-url", util.EnvOrDefault("FLOW_DB_URL", ""), "PostgreSQL URL; overrides the sqlite file when set")
	staticFlag := flag.String("static", util.EnvOrDefault("FLOW_STATIC_DIR", "web/dist"), "Directory with built frontend")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger.Info("flowdash starting")

	store, err := openStore(*dbURLFlag, *dbFlag, logger)
	if err != nil {
		logger.Error("unable to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	srv := server.New(store, logger, *staticFlag)

	httpServer := &http.Server{
		Addr:    *addrFlag,
		Handler: srv.Engine(),
	}

	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}

// openStore picks the backend: PostgreSQL when a URL is configured, the
// sqlite file otherwise.
func openStore(dbURL, dbPath string, logger *slog.Logger) (storage.Store, error) {
	if dbURL != "" {
		logger.Info("using postgres store")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return postgres.Open(ctx, dbURL, logger)
	}
	logger.Info("using sqlite store", slog.String("path", dbPath))
	return sqlite.Open(dbPath, logger)
}
