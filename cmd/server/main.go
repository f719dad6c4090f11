package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/xtding233/loot-backend/internal/config"
	"github.com/xtding233/loot-backend/internal/logger"
	"github.com/xtding233/loot-backend/internal/rpc"
	"github.com/xtding233/loot-backend/internal/server"
	"github.com/xtding233/loot-backend/internal/service"
	"github.com/xtding233/loot-backend/internal/table"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logCfg, err := logger.LoadConfig(cfg.LogConfig)
	if err != nil {
		return fmt.Errorf("load logging config: %w", err)
	}
	closer := logger.Initialize(logCfg)
	defer closer.Close()

	loader := table.NewLoader(cfg.DataDir)
	svc, err := service.New(loader, service.Options{
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
		MaxTrials: cfg.MaxTrials,
		MaxStack:  cfg.MaxStack,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.WatchInterval > 0 {
		paths := loader.Paths()
		w := table.NewFileWatcher([]string{paths.CatalogDir(), paths.TableDir()}, cfg.WatchInterval, func(path string) {
			slog.Info("definition changed", "path", path)
			svc.Reload(ctx, "watch")
		})
		w.Start(ctx)
		defer w.Stop()
	}

	var lis net.Listener
	if cfg.GRPCAddr != "" {
		if lis, err = net.Listen("tcp", cfg.GRPCAddr); err != nil {
			return fmt.Errorf("listen on %s: %w", cfg.GRPCAddr, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.New(cfg.HTTPAddr, svc).Serve(gctx, cfg.ShutdownGrace)
	})
	if lis != nil {
		g.Go(func() error {
			return rpc.New(svc).Serve(gctx, lis)
		})
	}

	slog.Info("loot server started", "http", cfg.HTTPAddr, "grpc", cfg.GRPCAddr, "data_dir", cfg.DataDir)
	err = g.Wait()
	slog.Info("loot server stopped")
	return err
}
