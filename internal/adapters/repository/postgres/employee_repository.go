package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/hr-employee-names/internal/core/employee"
	"github.com/ogurasousui/hr-employee-names/internal/core/nameformat"
	"github.com/ogurasousui/hr-employee-names/internal/core/query"
	pgdb "github.com/ogurasousui/hr-employee-names/internal/platform/db/postgres"
)

const (
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	invalidTextCode         = "22P02"
)

const employeeColumns = `id, work_contact_id, first_name, last_name, nick_name, name_format, name, created_at, updated_at`

var employeeSearchColumns = map[string]column{
	employee.FieldID:            {name: "id", uuid: true},
	employee.FieldName:          {name: "name"},
	employee.FieldFirstName:     {name: "first_name"},
	employee.FieldLastName:      {name: "last_name"},
	employee.FieldNickName:      {name: "nick_name"},
	employee.FieldNameFormat:    {name: "name_format"},
	employee.FieldWorkContactID: {name: "work_contact_id", uuid: true, nullable: true},
}

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (id, work_contact_id, first_name, last_name, nick_name, name_format, name, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING `+employeeColumns,
		e.ID,
		e.WorkContactID,
		e.FirstName,
		e.LastName,
		e.NickName,
		string(e.NameFormat),
		e.Name,
		e.CreatedAt,
		e.UpdatedAt,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Update は社員情報を更新します。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE employees
           SET work_contact_id = $1,
               first_name = $2,
               last_name = $3,
               nick_name = $4,
               name_format = $5,
               name = $6,
               updated_at = $7
         WHERE id = $8
        RETURNING `+employeeColumns,
		e.WorkContactID,
		e.FirstName,
		e.LastName,
		e.NickName,
		string(e.NameFormat),
		e.Name,
		e.UpdatedAt,
		e.ID,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// Delete は社員を削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1 LIMIT 1`, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// Search は filter に一致する社員を取得します。
func (r *EmployeeRepository) Search(ctx context.Context, filter query.Expr, opts employee.SearchOptions) ([]*employee.Employee, error) {
	b := newWhereBuilder(employeeSearchColumns)
	where, err := b.where(filter)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + employeeColumns + ` FROM employees`)
	sb.WriteString(where)
	switch opts.Order {
	case employee.OrderByID:
		sb.WriteString(` ORDER BY id`)
	default:
		sb.WriteString(` ORDER BY name, id`)
	}
	if opts.Limit > 0 {
		sb.WriteString(` LIMIT ` + b.placeholder(opts.Limit))
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, sb.String(), b.args...)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, translateEmployeePgError(err)
	}
	return employees, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id            string
		workContactID sql.NullString
		firstName     string
		lastName      string
		nickName      string
		nameFormat    string
		name          string
		createdAt     time.Time
		updatedAt     time.Time
	)

	if err := row.Scan(
		&id,
		&workContactID,
		&firstName,
		&lastName,
		&nickName,
		&nameFormat,
		&name,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	var contactPtr *string
	if workContactID.Valid {
		v := workContactID.String
		contactPtr = &v
	}

	return &employee.Employee{
		ID:            id,
		WorkContactID: contactPtr,
		FirstName:     firstName,
		LastName:      lastName,
		NickName:      nickName,
		NameFormat:    nameformat.Format(nameFormat),
		Name:          name,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case foreignKeyViolationCode:
			if pgErr.ConstraintName == "employees_work_contact_id_fkey" {
				return employee.ErrContactNotFound
			}
			return err
		case checkViolationCode:
			return employee.ErrInvalidNameFormat
		case invalidTextCode:
			return employee.ErrInvalidID
		}
	}

	return err
}
