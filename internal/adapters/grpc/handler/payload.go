package handler

import (
	"fmt"
	"math"
	"time"

	"github.com/ogurasousui/hr-employee-names/internal/core/query"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// payload は structpb.Struct のリクエストから型付きで値を取り出します。
// 最初に発生した型エラーを保持し、err で InvalidArgument として返します。
type payload struct {
	fields map[string]*structpb.Value
	bad    error
}

func newPayload(req *structpb.Struct) (*payload, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	return &payload{fields: req.GetFields()}, nil
}

func (p *payload) fail(key, want string) {
	if p.bad == nil {
		p.bad = status.Error(codes.InvalidArgument, fmt.Sprintf("%s must be %s", key, want))
	}
}

func (p *payload) err() error {
	return p.bad
}

// has はキーが存在するかを返します。null 値も存在として扱います。
func (p *payload) has(key string) bool {
	_, ok := p.fields[key]
	return ok
}

func (p *payload) isNull(key string) bool {
	v, ok := p.fields[key]
	if !ok {
		return false
	}
	_, null := v.GetKind().(*structpb.Value_NullValue)
	return null
}

func (p *payload) str(key string) string {
	s := p.optionalString(key)
	if s == nil {
		return ""
	}
	return *s
}

// optionalString は未指定または null の場合に nil を返します。
func (p *payload) optionalString(key string) *string {
	v, ok := p.fields[key]
	if !ok {
		return nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return nil
	case *structpb.Value_StringValue:
		s := kind.StringValue
		return &s
	default:
		p.fail(key, "a string")
		return nil
	}
}

func (p *payload) flag(key string) bool {
	v, ok := p.fields[key]
	if !ok {
		return false
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return false
	case *structpb.Value_BoolValue:
		return kind.BoolValue
	default:
		p.fail(key, "a boolean")
		return false
	}
}

func (p *payload) integer(key string) int {
	v, ok := p.fields[key]
	if !ok {
		return 0
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return 0
	case *structpb.Value_NumberValue:
		n := kind.NumberValue
		if n != math.Trunc(n) || n > math.MaxInt32 || n < math.MinInt32 {
			p.fail(key, "an integer")
			return 0
		}
		return int(n)
	default:
		p.fail(key, "a number")
		return 0
	}
}

// filter は {field, op, value} の配列を AND で結合した検索条件に変換します。
func (p *payload) filter(key string) query.Expr {
	v, ok := p.fields[key]
	if !ok {
		return nil
	}
	if _, null := v.GetKind().(*structpb.Value_NullValue); null {
		return nil
	}

	list := v.GetListValue()
	if list == nil {
		p.fail(key, "a list of conditions")
		return nil
	}

	conds := make([]query.Expr, 0, len(list.GetValues()))
	for i, item := range list.GetValues() {
		fields := item.GetStructValue().GetFields()
		field := fields["field"].GetStringValue()
		op := fields["op"].GetStringValue()
		if field == "" || op == "" {
			p.fail(fmt.Sprintf("%s[%d]", key, i), "a condition with field and op")
			return nil
		}
		conds = append(conds, query.Cond{Field: field, Op: query.Op(op), Value: conditionValue(fields["value"])})
	}
	return query.Join(conds...)
}

func conditionValue(v *structpb.Value) any {
	if v == nil {
		return ""
	}
	if list := v.GetListValue(); list != nil {
		out := make([]string, 0, len(list.GetValues()))
		for _, item := range list.GetValues() {
			out = append(out, fmt.Sprint(item.AsInterface()))
		}
		return out
	}
	if _, null := v.GetKind().(*structpb.Value_NullValue); null {
		return ""
	}
	return fmt.Sprint(v.AsInterface())
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func toResponse(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return out, nil
}
