package employee

import (
	"context"

	"github.com/ogurasousui/hr-employee-names/internal/core/query"
)

// Repository は社員永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	Update(ctx context.Context, employee *Employee) (*Employee, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Employee, error)
	Search(ctx context.Context, filter query.Expr, opts SearchOptions) ([]*Employee, error)
}

// Order は検索結果の並び順です。
type Order int

const (
	// OrderByName は氏名順 (同名は ID 順) です。
	OrderByName Order = iota
	// OrderByID は ID 昇順です。バッチ処理のキーセットページングに使います。
	OrderByID
)

// SearchOptions は検索時のオプションです。Limit が 0 以下の場合は全件です。
type SearchOptions struct {
	Limit int
	Order Order
}
