package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	appcfg "github.com/KylerCondran/4PlayerChess/internal/config"
	"github.com/KylerCondran/4PlayerChess/internal/events"
	"github.com/KylerCondran/4PlayerChess/internal/game"
	"github.com/KylerCondran/4PlayerChess/internal/httpapi"
	"github.com/KylerCondran/4PlayerChess/internal/layout"
	"github.com/KylerCondran/4PlayerChess/internal/msgcat"
	"github.com/KylerCondran/4PlayerChess/internal/obslog"
	"github.com/KylerCondran/4PlayerChess/internal/wsfeed"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		logger.Fatal("messages_load_failed", zap.String("dir", cfg.MessagesDir), zap.Error(err))
	}
	layouts, err := layout.Load(cfg.LayoutDir)
	if err != nil {
		logger.Fatal("layouts_load_failed", zap.String("dir", cfg.LayoutDir), zap.Error(err))
	}
	if _, err := layouts.Get(cfg.DefaultLayout); err != nil {
		logger.Fatal("default_layout_missing", obslog.FieldLayout(cfg.DefaultLayout), zap.Strings("available", layouts.Names()))
	}

	hub := events.NewHub(cfg.EventBuffer)
	mgr := game.NewManager(layouts, hub, events.NewBuilder(cat), game.Options{
		MaxSessions:   cfg.MaxSessions,
		TTL:           cfg.SessionTTL,
		SweepInterval: cfg.SweepInterval,
		DefaultLayout: cfg.DefaultLayout,
	})

	api := httpapi.NewServer(mgr, layouts, cat, cfg.DefaultLayout)
	feed := wsfeed.NewServer(mgr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() { errCh <- api.ListenAndServe(cfg.HTTPAddr) }()
	go func() { errCh <- feed.ListenAndServe(cfg.WSAddr) }()

	failed := false
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		_ = mgr.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown_signal")
	case err := <-errCh:
		if err == nil {
			err = errors.New("listener stopped")
		}
		logger.Error("listener_failed", zap.Error(err))
		failed = true
		stop()
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// sessions close first so subscribers receive the shutdown event
	<-sweepDone
	if err := feed.Shutdown(sctx); err != nil {
		logger.Warn("ws_shutdown_error", zap.Error(err))
	}
	if err := api.Shutdown(sctx); err != nil {
		logger.Warn("http_shutdown_error", zap.Error(err))
	}
	logger.Info("shutdown_complete", zap.Int("sessions", mgr.Len()))
	if failed {
		_ = logger.Sync()
		os.Exit(1)
	}
}
