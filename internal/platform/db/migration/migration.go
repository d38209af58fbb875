package migration

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// NamePartsVersion は社員テーブルへ氏名の構成要素を追加するマイグレーションのバージョンです。
const NamePartsVersion uint = 2

// Migrator は golang-migrate によるスキーマ操作をまとめます。
type Migrator struct {
	m *migrate.Migrate
}

// New は dir のマイグレーションファイルを dsn のデータベースへ適用する Migrator を生成します。
func New(dir, dsn string) (*Migrator, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve path for %s: %w", dir, err)
	}

	m, err := migrate.New("file://"+filepath.ToSlash(absDir), dsn)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return &Migrator{m: m}, nil
}

// Close はソースとデータベースの接続を閉じます。
func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}

// Up は未適用のマイグレーションをすべて適用します。
// この実行で NamePartsVersion を越えた場合は onInstall を呼び、installed を true で返します。
func (m *Migrator) Up(ctx context.Context, onInstall func(context.Context) error) (installed bool, err error) {
	before, err := m.current()
	if err != nil {
		return false, err
	}
	if err := m.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return false, err
	}
	after, err := m.current()
	if err != nil {
		return false, err
	}

	if !installs(before, after) {
		return false, nil
	}
	if onInstall != nil {
		if err := onInstall(ctx); err != nil {
			return true, fmt.Errorf("after name parts migration: %w", err)
		}
	}
	return true, nil
}

// To は指定したバージョンまで移行します。
func (m *Migrator) To(version uint) error {
	if err := m.m.Migrate(version); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Down はすべてのマイグレーションを巻き戻します。
func (m *Migrator) Down() error {
	if err := m.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Drop はデータベース内のすべてのテーブルを削除します。
func (m *Migrator) Drop() error {
	return m.m.Drop()
}

// Version は適用済みのバージョンを返します。未適用の場合は applied が false です。
func (m *Migrator) Version() (version uint, dirty, applied bool, err error) {
	version, dirty, err = m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, err
	}
	return version, dirty, true, nil
}

func (m *Migrator) current() (uint, error) {
	version, dirty, _, err := m.Version()
	if err != nil {
		return 0, err
	}
	if dirty {
		return 0, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, nil
}

func installs(before, after uint) bool {
	return before < NamePartsVersion && after >= NamePartsVersion
}
