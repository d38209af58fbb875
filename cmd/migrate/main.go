package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/ogurasousui/hr-employee-names/internal/app"
	"github.com/ogurasousui/hr-employee-names/internal/platform/config"
	"github.com/ogurasousui/hr-employee-names/internal/platform/db/migration"
	pg "github.com/ogurasousui/hr-employee-names/internal/platform/db/postgres"
	"github.com/ogurasousui/hr-employee-names/internal/platform/logging"
)

func main() {
	var (
		configPath    = flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
		migrationsDir = flag.String("dir", "assets/migrations", "directory containing migration files")
		skipBackfill  = flag.Bool("skip-backfill", false, "do not backfill employee name parts after the first install")
	)
	flag.Parse()

	action := "up"
	if flag.NArg() > 0 {
		action = flag.Arg(0)
	}

	cfgPath := effectiveConfigPath(*configPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logging.New("info").Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log.Level)

	ctx := context.Background()
	var onInstall func(context.Context) error
	if !*skipBackfill {
		onInstall = func(ctx context.Context) error {
			return backfill(ctx, cfg, logger)
		}
	}

	if err := runMigration(ctx, action, *migrationsDir, cfg.Database.DSN(), onInstall, logger); err != nil {
		logger.Error("migration failed", "action", action, "error", err)
		os.Exit(1)
	}
	logger.Info("migration completed", "action", action)
}

func effectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "assets/local.yaml"
}

// runMigration は action を実行します。up で氏名の構成要素が導入された場合は onInstall を呼びます。
func runMigration(ctx context.Context, action, dir, dsn string, onInstall func(context.Context) error, logger *slog.Logger) error {
	m, err := migration.New(dir, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	switch action {
	case "up":
		installed, err := m.Up(ctx, onInstall)
		if installed {
			logger.Info("employee name parts installed", "version", migration.NamePartsVersion)
		}
		return err
	case "down":
		return m.Down()
	case "drop":
		return m.Drop()
	case "version":
		version, dirty, applied, err := m.Version()
		if err != nil {
			return err
		}
		if !applied {
			logger.Info("no migration applied")
			return nil
		}
		logger.Info("schema version", "version", version, "dirty", dirty)
		return nil
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}

func backfill(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	pool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	c := app.Build(pool, cfg.Names, logger, nil)
	result, err := c.Employees.Backfill(ctx)
	if err != nil {
		return err
	}
	logger.Info("employee names backfilled", "scanned", result.Scanned, "updated", result.Updated)
	return nil
}
