package postgres

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/ogurasousui/hr-employee-names/internal/core/query"
)

// column は検索可能なカラムの定義です。
type column struct {
	name     string
	uuid     bool
	nullable bool
}

func (c column) text() string {
	if c.uuid {
		return c.name + "::text"
	}
	return c.name
}

// whereBuilder は query.Expr をプレースホルダ付きの WHERE 句へ変換します。
// 参照できるカラムは columns に登録されたものだけです。
// NULL 許容カラムの NULL は query.Match と同じく空文字列として評価します。
type whereBuilder struct {
	columns map[string]column
	args    []any
}

func newWhereBuilder(columns map[string]column, args ...any) *whereBuilder {
	return &whereBuilder{columns: columns, args: args}
}

func (b *whereBuilder) placeholder(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// where は expr が nil の場合は空文字列を返します。
func (b *whereBuilder) where(expr query.Expr) (string, error) {
	if expr == nil {
		return "", nil
	}
	clause, err := b.build(expr)
	if err != nil {
		return "", err
	}
	return " WHERE " + clause, nil
}

func (b *whereBuilder) build(expr query.Expr) (string, error) {
	switch e := expr.(type) {
	case query.Cond:
		return b.cond(e)
	case query.And:
		return b.join(e, " AND ")
	case query.Or:
		return b.join(e, " OR ")
	default:
		return "", fmt.Errorf("postgres: unsupported expression %T", expr)
	}
}

func (b *whereBuilder) join(children []query.Expr, sep string) (string, error) {
	if len(children) == 0 {
		return "TRUE", nil
	}
	parts := make([]string, 0, len(children))
	for _, child := range children {
		clause, err := b.build(child)
		if err != nil {
			return "", err
		}
		parts = append(parts, clause)
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

func (b *whereBuilder) cond(c query.Cond) (string, error) {
	col, ok := b.columns[c.Field]
	if !ok {
		return "", fmt.Errorf("%w: %s", query.ErrUnknownField, c.Field)
	}

	switch c.Op {
	case query.OpEq, query.OpNe, query.OpGt:
		value := fmt.Sprint(c.Value)
		if col.nullable && value == "" {
			switch c.Op {
			case query.OpEq:
				return col.name + " IS NULL", nil
			case query.OpNe:
				return col.name + " IS NOT NULL", nil
			}
		}
		if c.Op == query.OpGt {
			return col.name + " > " + b.placeholder(value), nil
		}
		// UUID カラムは文字列として比較し、不正な値でもエラーにしない。
		clause := col.text() + " " + string(c.Op) + " " + b.placeholder(value)
		if col.nullable && c.Op == query.OpNe {
			return "(" + col.name + " IS NULL OR " + clause + ")", nil
		}
		return clause, nil
	case query.OpILike:
		target := col.text()
		if col.nullable {
			target = "COALESCE(" + target + ", '')"
		}
		return target + " ILIKE '%' || " + b.placeholder(query.EscapeLike(fmt.Sprint(c.Value))) + " || '%'", nil
	case query.OpIn:
		values, err := query.StringValues(c.Value)
		if err != nil {
			return "", err
		}
		if len(values) == 0 {
			return "FALSE", nil
		}
		clause := col.text() + " = ANY(" + b.placeholder(values) + ")"
		if col.nullable && slices.Contains(values, "") {
			return "(" + col.name + " IS NULL OR " + clause + ")", nil
		}
		return clause, nil
	default:
		return "", fmt.Errorf("%w: %s", query.ErrUnsupportedOp, c.Op)
	}
}
