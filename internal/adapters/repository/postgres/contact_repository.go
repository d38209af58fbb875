package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/hr-employee-names/internal/core/contact"
	pgdb "github.com/ogurasousui/hr-employee-names/internal/platform/db/postgres"
)

// ContactRepository は PostgreSQL を利用した連絡先永続化の実装です。
type ContactRepository struct {
	pool pgdb.Queryer
}

// NewContactRepository は ContactRepository を生成します。
func NewContactRepository(pool pgdb.Queryer) *ContactRepository {
	return &ContactRepository{pool: pool}
}

// Create は連絡先を新規作成します。
func (r *ContactRepository) Create(ctx context.Context, c *contact.Contact) (*contact.Contact, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO contacts (id, name, created_at, updated_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id, name, created_at, updated_at
    `, c.ID, c.Name, c.CreatedAt, c.UpdatedAt)

	created, err := scanContact(row)
	if err != nil {
		return nil, translateContactPgError(err)
	}
	return created, nil
}

// Update は連絡先を更新します。
func (r *ContactRepository) Update(ctx context.Context, c *contact.Contact) (*contact.Contact, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE contacts
           SET name = $1,
               updated_at = $2
         WHERE id = $3
        RETURNING id, name, created_at, updated_at
    `, c.Name, c.UpdatedAt, c.ID)

	updated, err := scanContact(row)
	if err != nil {
		return nil, translateContactPgError(err)
	}
	return updated, nil
}

// FindByID は ID で連絡先を取得します。
func (r *ContactRepository) FindByID(ctx context.Context, id string) (*contact.Contact, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT id, name, created_at, updated_at FROM contacts WHERE id = $1 LIMIT 1`, id)

	found, err := scanContact(row)
	if err != nil {
		return nil, translateContactPgError(err)
	}
	return found, nil
}

func scanContact(row pgx.Row) (*contact.Contact, error) {
	var (
		c         contact.Contact
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&c.ID, &c.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	c.CreatedAt = createdAt
	c.UpdatedAt = updatedAt
	return &c, nil
}

func translateContactPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return contact.ErrContactNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == invalidTextCode {
		return contact.ErrInvalidID
	}
	return err
}
