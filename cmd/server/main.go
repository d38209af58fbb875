package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogurasousui/hr-employee-names/internal/app"
	"github.com/ogurasousui/hr-employee-names/internal/platform/config"
	pg "github.com/ogurasousui/hr-employee-names/internal/platform/db/postgres"
	"github.com/ogurasousui/hr-employee-names/internal/platform/logging"
	"github.com/ogurasousui/hr-employee-names/internal/platform/metrics"
	"github.com/ogurasousui/hr-employee-names/internal/platform/server"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logging.New("info").Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log.Level)

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to initialize database pool", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	reg := metrics.New()
	c := app.Build(dbPool, cfg.Names, logger, reg)

	grpcServer := server.New(cfg.Server.ListenAddr, server.Dependencies{
		Employees: c.Employees,
		Contacts:  c.Contacts,
		Settings:  c.Settings,
		Logger:    logger,
		Metrics:   reg,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return grpcServer.Run(gctx) })
	if cfg.Metrics.ListenAddr != "" {
		g.Go(func() error { return reg.Serve(gctx, cfg.Metrics.ListenAddr, logger) })
	}

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
