package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/ogurasousui/hr-employee-names/internal/core/nameformat"
)

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// NameSettings は氏名フォーマットのシステム設定です。
type NameSettings struct {
	Format        nameformat.Format
	CustomPattern string
}

// UpdateNameSettingsInput は設定更新時の入力です。nil のフィールドは変更しません。
type UpdateNameSettingsInput struct {
	Format        *string
	CustomPattern *string
}

// UseCase は設定ユースケースの公開インターフェースです。
type UseCase interface {
	GetNameSettings(ctx context.Context) (*NameSettings, error)
	UpdateNameSettings(ctx context.Context, in UpdateNameSettingsInput) (*NameSettings, error)
}

// Service は氏名フォーマット設定を扱います。値はキャッシュしません。
type Service struct {
	repo Repository
	tx   TransactionManager
}

// NewService は Service を生成します。
func NewService(repo Repository, tx TransactionManager) *Service {
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, tx: tx}
}

// GetNameSettings は現在の設定を返します。未設定または未知のフォーマットは western です。
func (s *Service) GetNameSettings(ctx context.Context) (*NameSettings, error) {
	var out *NameSettings
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		current, err := s.read(txCtx)
		if err != nil {
			return err
		}
		out = current
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateNameSettings は設定を更新します。
func (s *Service) UpdateNameSettings(ctx context.Context, in UpdateNameSettingsInput) (*NameSettings, error) {
	var format nameformat.Format
	if in.Format != nil {
		format = nameformat.ParseFormat(*in.Format)
		if !format.IsSystemFormat() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, *in.Format)
		}
	}

	var pattern string
	if in.CustomPattern != nil {
		pattern = strings.TrimSpace(*in.CustomPattern)
		if err := nameformat.ValidatePattern(pattern); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}
	}

	var out *NameSettings
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if in.Format != nil {
			if err := s.repo.SetParam(txCtx, nameformat.ParamFormat, string(format)); err != nil {
				return err
			}
		}
		if in.CustomPattern != nil {
			if err := s.repo.SetParam(txCtx, nameformat.ParamCustomPattern, pattern); err != nil {
				return err
			}
		}

		current, err := s.read(txCtx)
		if err != nil {
			return err
		}
		out = current
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) read(ctx context.Context) (*NameSettings, error) {
	formatter := nameformat.NewFormatter(s.repo)
	format, err := formatter.SystemFormat(ctx)
	if err != nil {
		return nil, err
	}

	pattern, err := s.repo.Param(ctx, nameformat.ParamCustomPattern)
	if err != nil {
		return nil, err
	}
	return &NameSettings{Format: format, CustomPattern: pattern}, nil
}
