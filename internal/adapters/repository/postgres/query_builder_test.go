package postgres

import (
	"strings"
	"testing"

	"github.com/ogurasousui/hr-employee-names/internal/core/employee"
	"github.com/ogurasousui/hr-employee-names/internal/core/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhereBuilder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		expr     query.Expr
		want     string
		wantArgs []any
	}{
		{name: "nil", expr: nil, want: ""},
		{name: "eq", expr: query.Cond{Field: "name", Op: query.OpEq, Value: "Jane"}, want: " WHERE name = $1", wantArgs: []any{"Jane"}},
		{name: "nullable empty eq", expr: query.Cond{Field: "work_contact_id", Op: query.OpEq, Value: ""}, want: " WHERE work_contact_id IS NULL"},
		{name: "nullable empty ne", expr: query.Cond{Field: "work_contact_id", Op: query.OpNe, Value: ""}, want: " WHERE work_contact_id IS NOT NULL"},
		{name: "nullable ne keeps null rows", expr: query.Cond{Field: "work_contact_id", Op: query.OpNe, Value: "c-1"}, want: " WHERE (work_contact_id IS NULL OR work_contact_id::text != $1)", wantArgs: []any{"c-1"}},
		{name: "nullable ilike treats null as empty", expr: query.Cond{Field: "work_contact_id", Op: query.OpILike, Value: ""}, want: " WHERE COALESCE(work_contact_id::text, '') ILIKE '%' || $1 || '%'", wantArgs: []any{""}},
		{name: "nullable in with empty", expr: query.Cond{Field: "work_contact_id", Op: query.OpIn, Value: []string{"", "c-1"}}, want: " WHERE (work_contact_id IS NULL OR work_contact_id::text = ANY($1))", wantArgs: []any{[]string{"", "c-1"}}},
		{name: "nullable in", expr: query.Cond{Field: "work_contact_id", Op: query.OpIn, Value: []string{"c-1"}}, want: " WHERE work_contact_id::text = ANY($1)", wantArgs: []any{[]string{"c-1"}}},
		{name: "uuid eq compares text", expr: query.Cond{Field: "id", Op: query.OpEq, Value: "x"}, want: " WHERE id::text = $1", wantArgs: []any{"x"}},
		{name: "empty in", expr: query.Cond{Field: "id", Op: query.OpIn, Value: []string{}}, want: " WHERE FALSE"},
		{name: "empty or", expr: query.Or{}, want: " WHERE TRUE"},
		{
			name:     "nested",
			expr:     query.And{query.Cond{Field: "name", Op: query.OpNe, Value: "a"}, query.Or{query.Cond{Field: "name", Op: query.OpILike, Value: "b_"}}},
			want:     " WHERE (name != $1 AND (name ILIKE '%' || $2 || '%'))",
			wantArgs: []any{"a", `b\_`},
		},
	}

	columns := map[string]column{
		"id":              {name: "id", uuid: true},
		"name":            {name: "name"},
		"work_contact_id": {name: "work_contact_id", uuid: true, nullable: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := newWhereBuilder(columns)
			got, err := b.where(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.wantArgs == nil {
				assert.Empty(t, b.args)
			} else {
				assert.Equal(t, tt.wantArgs, b.args)
			}
		})
	}
}

func TestWhereBuilder_InRequiresList(t *testing.T) {
	t.Parallel()

	b := newWhereBuilder(map[string]column{"name": {name: "name"}})
	_, err := b.where(query.Cond{Field: "name", Op: query.OpIn, Value: 42})
	require.Error(t, err)
}

func TestWhereBuilder_NullContactMatchesInMemoryEvaluation(t *testing.T) {
	t.Parallel()

	unlinked := &employee.Employee{ID: "emp-1", Name: "Jane Doe"}

	tests := []struct {
		name      string
		expr      query.Cond
		matches   bool
		wantNulls bool
	}{
		{name: "ne", expr: query.Cond{Field: employee.FieldWorkContactID, Op: query.OpNe, Value: "c-1"}, matches: true, wantNulls: true},
		{name: "eq", expr: query.Cond{Field: employee.FieldWorkContactID, Op: query.OpEq, Value: "c-1"}, matches: false},
		{name: "in", expr: query.Cond{Field: employee.FieldWorkContactID, Op: query.OpIn, Value: []string{"c-1"}}, matches: false},
		{name: "in with empty", expr: query.Cond{Field: employee.FieldWorkContactID, Op: query.OpIn, Value: []string{""}}, matches: true, wantNulls: true},
		{name: "ilike empty", expr: query.Cond{Field: employee.FieldWorkContactID, Op: query.OpILike, Value: ""}, matches: true, wantNulls: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ok, err := query.Match(tt.expr, unlinked)
			require.NoError(t, err)
			assert.Equal(t, tt.matches, ok)

			where, err := newWhereBuilder(employeeSearchColumns).where(tt.expr)
			require.NoError(t, err)
			handlesNull := strings.Contains(where, "IS NULL") || strings.Contains(where, "COALESCE")
			assert.Equal(t, tt.wantNulls, handlesNull, where)
		})
	}
}
