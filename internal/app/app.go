// Package app はリポジトリ・ユースケース・計測系を組み立てます。
package app

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/hr-employee-names/internal/adapters/repository/postgres"
	"github.com/ogurasousui/hr-employee-names/internal/core/contact"
	"github.com/ogurasousui/hr-employee-names/internal/core/employee"
	"github.com/ogurasousui/hr-employee-names/internal/core/nameformat"
	"github.com/ogurasousui/hr-employee-names/internal/core/settings"
	"github.com/ogurasousui/hr-employee-names/internal/platform/config"
	pgdb "github.com/ogurasousui/hr-employee-names/internal/platform/db/postgres"
	"github.com/ogurasousui/hr-employee-names/internal/platform/metrics"
)

// Pool は pgxpool.Pool が満たす接続プールの抽象です。
type Pool interface {
	pgdb.Queryer
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Container は組み立て済みのユースケースです。
type Container struct {
	Employees *employee.Service
	Contacts  *contact.Service
	Settings  *settings.Service
	Metrics   *metrics.Registry
	Logger    *slog.Logger
}

// Build は設定とプールからユースケースを構築します。reg が nil の場合は計測しません。
func Build(pool Pool, names config.NamesConfig, logger *slog.Logger, reg *metrics.Registry) *Container {
	if logger == nil {
		logger = slog.Default()
	}

	tx := pgdb.NewTransactionManager(pool)
	params := postgres.NewParameterRepository(pool)
	formatter := nameformat.NewFormatter(params)

	opts := []employee.Option{
		employee.WithLogger(logger.With("component", "employee")),
		employee.WithBatchSizes(names.BackfillBatchSize, names.RecomputeBatchSize),
	}
	if reg != nil {
		opts = append(opts, employee.WithRecorder(reg))
	}

	employees := employee.NewService(postgres.NewEmployeeRepository(pool), formatter, nil, tx, opts...)
	contacts := contact.NewService(postgres.NewContactRepository(pool), employees, nil, tx, logger.With("component", "contact"))

	return &Container{
		Employees: employees,
		Contacts:  contacts,
		Settings:  settings.NewService(params, tx),
		Metrics:   reg,
		Logger:    logger,
	}
}
