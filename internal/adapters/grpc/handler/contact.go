package handler

import (
	"context"

	"github.com/ogurasousui/hr-employee-names/internal/core/contact"
	"google.golang.org/protobuf/types/known/structpb"
)

// ContactGrpcHandler は ContactService の gRPC 実装です。
type ContactGrpcHandler struct {
	svc contact.UseCase
}

var _ ContactServiceServer = (*ContactGrpcHandler)(nil)

// NewContactGrpcHandler は ContactGrpcHandler を生成します。
func NewContactGrpcHandler(svc contact.UseCase) *ContactGrpcHandler {
	return &ContactGrpcHandler{svc: svc}
}

// CreateContact は連絡先を作成します。
func (h *ContactGrpcHandler) CreateContact(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := newPayload(req)
	if err != nil {
		return nil, err
	}

	name := p.str("name")
	if err := p.err(); err != nil {
		return nil, err
	}

	created, err := h.svc.CreateContact(ctx, contact.CreateContactInput{Name: name})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toResponse(map[string]any{"contact": toContactFields(created)})
}

// GetContact は連絡先を取得します。
func (h *ContactGrpcHandler) GetContact(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := newPayload(req)
	if err != nil {
		return nil, err
	}

	id := p.str("id")
	if err := p.err(); err != nil {
		return nil, err
	}

	found, err := h.svc.GetContact(ctx, contact.GetContactInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toResponse(map[string]any{"contact": toContactFields(found)})
}

// UpdateContact は連絡先を更新します。allow_employee_sync が true の場合のみ社員へ伝播します。
func (h *ContactGrpcHandler) UpdateContact(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := newPayload(req)
	if err != nil {
		return nil, err
	}

	in := contact.UpdateContactInput{ID: p.str("id"), Name: p.optionalString("name")}
	opts := contact.SyncOptions{
		AllowEmployeeSync: p.flag("allow_employee_sync"),
		SkipEmployeeSync:  p.flag("skip_employee_sync"),
	}
	if err := p.err(); err != nil {
		return nil, err
	}

	result, err := h.svc.UpdateContact(ctx, in, opts)
	if err != nil {
		return nil, toStatusError(err)
	}
	return toResponse(map[string]any{
		"contact":          toContactFields(result.Contact),
		"employees_synced": result.EmployeesSynced,
		"propagation_ran":  result.PropagationRan,
	})
}

func toContactFields(c *contact.Contact) map[string]any {
	if c == nil {
		return map[string]any{}
	}
	return map[string]any{
		"id":         c.ID,
		"name":       c.Name,
		"created_at": timestamp(c.CreatedAt),
		"updated_at": timestamp(c.UpdatedAt),
	}
}
