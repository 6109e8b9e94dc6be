package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/viper"

	"github.com/comigor/lifelink-go/internal/auth"
	"github.com/comigor/lifelink-go/internal/config"
	"github.com/comigor/lifelink-go/internal/history"
	"github.com/comigor/lifelink-go/internal/intake"
	"github.com/comigor/lifelink-go/internal/journal"
	"github.com/comigor/lifelink-go/internal/lifecycle"
	"github.com/comigor/lifelink-go/internal/logger"
	"github.com/comigor/lifelink-go/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, v *viper.Viper, cfgFile string) error {
	// Load configuration
	cfg, err := config.LoadFrom(v, cfgFile)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger.Configure(os.Stdout, cfg.Log.Format, cfg.Log.Level)

	// Durable journal
	var sink journal.Sink = journal.Discard{}
	if cfg.Journal.Enabled {
		j, err := journal.Open(ctx, journal.Options{Path: cfg.Journal.Path, QueueSize: cfg.Journal.QueueSize})
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := j.Close(closeCtx); err != nil {
				logger.L.Warn("journal close", "error", err)
			}
		}()
		sink = j
	} else {
		logger.L.Info("journal disabled")
	}

	life := lifecycle.New(sink)
	store := history.New(history.WithCapacity(cfg.Store.Capacity))

	srv := server.New(ctx, server.Options{
		Store:  store,
		Intake: intake.New(store, sink),
		Guard: auth.Guard{
			Username: cfg.Auth.Username,
			Password: cfg.Auth.Password,
			Realm:    cfg.Auth.Realm,
		},
		Journal:       sink,
		Lifecycle:     life,
		MaxBodyBytes:  cfg.Server.MaxBodyBytes,
		RatePerMinute: cfg.RateLimit.PerMinute,
		RateBurst:     cfg.RateLimit.Burst,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
	}

	ln, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		_ = life.Fail(ctx, err)
		return fmt.Errorf("listen on %s: %w", httpServer.Addr, err)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(ln)
	}()

	// Start server
	if err := life.Ready(ctx); err != nil {
		return err
	}
	logger.L.Info("starting server", "address", httpServer.Addr, "capacity", store.Capacity())

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			_ = life.Fail(context.Background(), err)
			return fmt.Errorf("serve: %w", err)
		}
	}

	if err := life.Drain(context.Background()); err != nil {
		return err
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		_ = life.Fail(context.Background(), err)
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := life.Stop(context.Background()); err != nil {
		return err
	}
	logger.L.Info("server stopped")
	return nil
}
