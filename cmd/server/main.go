package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/foldline/internal/api"
	"github.com/dgallion1/foldline/internal/config"
	"github.com/dgallion1/foldline/internal/hostapi"
	"github.com/dgallion1/foldline/internal/menu"
	"github.com/dgallion1/foldline/internal/session"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the line provider client.
	host := hostapi.NewClient(cfg.HostAPIURL, cfg.HostAPIKey, cfg.HostAPITimeout, log)

	// Initialize the page manager and its event loop.
	mgr := session.NewManager(cfg, log)
	mgr.Start(ctx)

	// Register the page menu commands.
	reg := menu.NewRegistry()
	if err := mgr.RegisterMenu(reg); err != nil {
		log.Error("menu registration failed", "error", err)
		os.Exit(1)
	}

	// Initialize HTTP server.
	srv := api.NewServer(mgr, reg, host, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		mgr.Stop()
		host.Close()
	}()

	log.Info("starting foldline", "port", cfg.Port, "menu", reg.Names())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
