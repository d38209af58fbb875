package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	pgdb "github.com/ogurasousui/hr-employee-names/internal/platform/db/postgres"
)

// ParameterRepository は config_parameters テーブルによるキー・値設定ストアです。
type ParameterRepository struct {
	pool pgdb.Queryer
	now  func() time.Time
}

// NewParameterRepository は ParameterRepository を生成します。
func NewParameterRepository(pool pgdb.Queryer) *ParameterRepository {
	return &ParameterRepository{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

// Param はキーの値を返します。未設定の場合は空文字列です。
func (r *ParameterRepository) Param(ctx context.Context, key string) (string, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var value string
	if err := exec.QueryRow(ctx, `SELECT value FROM config_parameters WHERE key = $1`, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("postgres: read parameter %s: %w", key, err)
	}
	return value, nil
}

// SetParam はキーの値を登録または更新します。
func (r *ParameterRepository) SetParam(ctx context.Context, key, value string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	if _, err := exec.Exec(ctx, `
        INSERT INTO config_parameters (key, value, updated_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (key) DO UPDATE
           SET value = EXCLUDED.value,
               updated_at = EXCLUDED.updated_at
    `, key, value, r.now()); err != nil {
		return fmt.Errorf("postgres: write parameter %s: %w", key, err)
	}
	return nil
}
