package handler

import (
	"context"

	"github.com/ogurasousui/hr-employee-names/internal/core/employee"
	"github.com/ogurasousui/hr-employee-names/internal/core/nameformat"
	"github.com/ogurasousui/hr-employee-names/internal/core/query"
	"google.golang.org/protobuf/types/known/structpb"
)

// EmployeeGrpcHandler は EmployeeService の gRPC 実装です。
type EmployeeGrpcHandler struct {
	svc employee.UseCase
}

var _ EmployeeServiceServer = (*EmployeeGrpcHandler)(nil)

// NewEmployeeGrpcHandler は EmployeeGrpcHandler を生成します。
func NewEmployeeGrpcHandler(svc employee.UseCase) *EmployeeGrpcHandler {
	return &EmployeeGrpcHandler{svc: svc}
}

// CreateEmployee は社員を作成します。
func (h *EmployeeGrpcHandler) CreateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := newPayload(req)
	if err != nil {
		return nil, err
	}

	in := employee.CreateEmployeeInput{
		FirstName:     p.str("first_name"),
		LastName:      p.str("last_name"),
		NickName:      p.optionalString("nick_name"),
		NameFormat:    nameformat.Format(p.str("name_format")),
		WorkContactID: p.optionalString("work_contact_id"),
	}
	if err := p.err(); err != nil {
		return nil, err
	}

	created, err := h.svc.CreateEmployee(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return h.employeeResponse(ctx, created)
}

// UpdateEmployee は社員情報を更新します。
// name と構造化フィールドを同時に指定した場合は構造化フィールドが優先されます。
func (h *EmployeeGrpcHandler) UpdateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := newPayload(req)
	if err != nil {
		return nil, err
	}

	in := employee.UpdateEmployeeInput{
		ID:        p.str("id"),
		FirstName: p.optionalString("first_name"),
		LastName:  p.optionalString("last_name"),
		NickName:  p.optionalString("nick_name"),
		Name:      p.optionalString("name"),
	}
	if raw := p.optionalString("name_format"); raw != nil {
		format := nameformat.Format(*raw)
		in.NameFormat = &format
	}
	if p.has("work_contact_id") {
		in.WorkContactIDSet = true
		in.WorkContactID = p.optionalString("work_contact_id")
	}
	opts := employee.WriteOptions{SkipNameSync: p.flag("skip_name_sync")}
	if err := p.err(); err != nil {
		return nil, err
	}

	updated, err := h.svc.UpdateEmployee(ctx, in, opts)
	if err != nil {
		return nil, toStatusError(err)
	}
	return h.employeeResponse(ctx, updated)
}

// GetEmployee は社員を取得します。
func (h *EmployeeGrpcHandler) GetEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := newPayload(req)
	if err != nil {
		return nil, err
	}

	id := p.str("id")
	if err := p.err(); err != nil {
		return nil, err
	}

	found, err := h.svc.GetEmployee(ctx, employee.GetEmployeeInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return h.employeeResponse(ctx, found)
}

// DeleteEmployee は社員を削除します。
func (h *EmployeeGrpcHandler) DeleteEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := newPayload(req)
	if err != nil {
		return nil, err
	}

	id := p.str("id")
	if err := p.err(); err != nil {
		return nil, err
	}

	if err := h.svc.DeleteEmployee(ctx, employee.DeleteEmployeeInput{ID: id}); err != nil {
		return nil, toStatusError(err)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{}}, nil
}

// SearchEmployees は氏名で社員を検索し、ID と表示名の組を返します。
func (h *EmployeeGrpcHandler) SearchEmployees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := newPayload(req)
	if err != nil {
		return nil, err
	}

	in := employee.SearchByNameInput{
		Query:    p.str("query"),
		Operator: query.Op(p.str("operator")),
		Filter:   p.filter("filter"),
		Limit:    p.integer("limit"),
	}
	if err := p.err(); err != nil {
		return nil, err
	}

	matches, err := h.svc.SearchByName(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	results := make([]any, 0, len(matches))
	for _, m := range matches {
		results = append(results, map[string]any{"id": m.ID, "display_name": m.DisplayName})
	}
	return toResponse(map[string]any{"results": results})
}

// GetEmployeeDefaults は新規社員の既定値を返します。
func (h *EmployeeGrpcHandler) GetEmployeeDefaults(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	format, err := h.svc.DefaultNameFormat(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}
	return toResponse(map[string]any{"name_format": string(format)})
}

// BackfillNames は欠けている名・姓・ニックネームを補完します。
func (h *EmployeeGrpcHandler) BackfillNames(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	result, err := h.svc.Backfill(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}
	return batchResponse(result)
}

// RecomputeNames は全社員の氏名を現在の設定で再合成します。
func (h *EmployeeGrpcHandler) RecomputeNames(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	result, err := h.svc.RecomputeNames(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}
	return batchResponse(result)
}

func (h *EmployeeGrpcHandler) employeeResponse(ctx context.Context, e *employee.Employee) (*structpb.Struct, error) {
	display, err := h.svc.DisplayName(ctx, e)
	if err != nil {
		return nil, toStatusError(err)
	}

	fields := toEmployeeFields(e)
	fields["display_name"] = display
	return toResponse(map[string]any{"employee": fields})
}

func toEmployeeFields(e *employee.Employee) map[string]any {
	if e == nil {
		return map[string]any{}
	}

	var contactID any
	if e.WorkContactID != nil {
		contactID = *e.WorkContactID
	}

	return map[string]any{
		"id":              e.ID,
		"first_name":      e.FirstName,
		"last_name":       e.LastName,
		"nick_name":       e.NickName,
		"name_format":     string(e.NameFormat),
		"name":            e.Name,
		"work_contact_id": contactID,
		"created_at":      timestamp(e.CreatedAt),
		"updated_at":      timestamp(e.UpdatedAt),
	}
}

func batchResponse(result *employee.BatchResult) (*structpb.Struct, error) {
	if result == nil {
		result = &employee.BatchResult{}
	}
	return toResponse(map[string]any{"scanned": result.Scanned, "updated": result.Updated})
}
