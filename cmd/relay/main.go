package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pongsant/Assignment-4-Collaboration/config"
	"github.com/pongsant/Assignment-4-Collaboration/hub"
	"github.com/pongsant/Assignment-4-Collaboration/metrics"
	"github.com/pongsant/Assignment-4-Collaboration/protocol"
	"github.com/pongsant/Assignment-4-Collaboration/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.NewLogger(os.Stdout))

	m := metrics.NewRelay()
	broadcaster := hub.New(hub.WithCapacity(cfg.MaxPlayers), hub.WithMetrics(m))
	handler := protocol.NewHandler(broadcaster, m)

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: server.NewRouter(broadcaster, handler, m, server.Options{
			StaticDir:  cfg.StaticDir,
			SendBuffer: cfg.SendBuffer,
			NoteRate:   cfg.NoteRate,
			NoteBurst:  cfg.NoteBurst,
		}),
	}

	go func() {
		slog.Info("relay starting", "addr", srv.Addr, "maxPlayers", cfg.MaxPlayers, "staticDir", cfg.StaticDir)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("relay shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
