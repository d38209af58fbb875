package contact

import "context"

// Repository は連絡先永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, contact *Contact) (*Contact, error)
	Update(ctx context.Context, contact *Contact) (*Contact, error)
	FindByID(ctx context.Context, id string) (*Contact, error)
}
