// Package query はレコード検索条件 (フィールド・演算子・値の組と AND/OR 結合) を表現します。
package query

import (
	"errors"
	"fmt"
	"strings"
)

// Op は比較演算子です。
type Op string

const (
	OpEq    Op = "="
	OpNe    Op = "!="
	OpILike Op = "ilike"
	OpIn    Op = "in"
	OpGt    Op = ">"
)

// ErrUnsupportedOp は未対応の演算子が指定された場合に返却されます。
var ErrUnsupportedOp = errors.New("query: unsupported operator")

// ErrUnknownField は未知のフィールドが指定された場合に返却されます。
var ErrUnknownField = errors.New("query: unknown field")

// Expr は検索条件式です。nil はすべてに一致します。
type Expr interface {
	isExpr()
}

// Cond は単一のフィールド条件です。
type Cond struct {
	Field string
	Op    Op
	Value any
}

// And はすべての子条件に一致します。
type And []Expr

// Or はいずれかの子条件に一致します。
type Or []Expr

func (Cond) isExpr() {}
func (And) isExpr()  {}
func (Or) isExpr()   {}

// Record は条件評価の対象となるレコードです。
type Record interface {
	Field(name string) (any, bool)
}

// Join は nil を除いた条件を AND で結合します。
func Join(exprs ...Expr) Expr {
	var out And
	for _, e := range exprs {
		if e == nil {
			continue
		}
		out = append(out, e)
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	default:
		return out
	}
}

// Match はレコードが条件に一致するかを評価します。
func Match(expr Expr, rec Record) (bool, error) {
	switch e := expr.(type) {
	case nil:
		return true, nil
	case Cond:
		return matchCond(e, rec)
	case And:
		for _, child := range e {
			ok, err := Match(child, rec)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case Or:
		for _, child := range e {
			ok, err := Match(child, rec)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return len(e) == 0, nil
	default:
		return false, fmt.Errorf("query: unsupported expression %T", expr)
	}
}

func matchCond(c Cond, rec Record) (bool, error) {
	actual, ok := rec.Field(c.Field)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownField, c.Field)
	}

	switch c.Op {
	case OpEq:
		return fmt.Sprint(actual) == fmt.Sprint(c.Value), nil
	case OpNe:
		return fmt.Sprint(actual) != fmt.Sprint(c.Value), nil
	case OpGt:
		return fmt.Sprint(actual) > fmt.Sprint(c.Value), nil
	case OpILike:
		return strings.Contains(strings.ToLower(fmt.Sprint(actual)), strings.ToLower(fmt.Sprint(c.Value))), nil
	case OpIn:
		values, err := StringValues(c.Value)
		if err != nil {
			return false, err
		}
		s := fmt.Sprint(actual)
		for _, v := range values {
			if v == s {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("%w: %s", ErrUnsupportedOp, c.Op)
	}
}

// StringValues は in 演算子の値を文字列スライスへ変換します。
func StringValues(v any) ([]string, error) {
	switch vals := v.(type) {
	case []string:
		return vals, nil
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			out = append(out, fmt.Sprint(item))
		}
		return out, nil
	case string:
		return []string{vals}, nil
	default:
		return nil, fmt.Errorf("query: in operator requires a list, got %T", v)
	}
}

// EscapeLike は LIKE パターンのメタ文字をエスケープします。
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
