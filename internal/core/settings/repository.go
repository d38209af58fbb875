package settings

import "context"

// Repository はシステム設定パラメータ (キー・値) の永続化抽象です。
// 未設定のキーは空文字列で返します。
type Repository interface {
	Param(ctx context.Context, key string) (string, error)
	SetParam(ctx context.Context, key, value string) error
}
