package handler

import (
	"context"

	"github.com/ogurasousui/hr-employee-names/internal/core/settings"
	"google.golang.org/protobuf/types/known/structpb"
)

// NameSettingsGrpcHandler は NameSettingsService の gRPC 実装です。
type NameSettingsGrpcHandler struct {
	svc settings.UseCase
}

var _ NameSettingsServiceServer = (*NameSettingsGrpcHandler)(nil)

// NewNameSettingsGrpcHandler は NameSettingsGrpcHandler を生成します。
func NewNameSettingsGrpcHandler(svc settings.UseCase) *NameSettingsGrpcHandler {
	return &NameSettingsGrpcHandler{svc: svc}
}

// GetNameSettings は氏名フォーマット設定を返します。
func (h *NameSettingsGrpcHandler) GetNameSettings(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	current, err := h.svc.GetNameSettings(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}
	return settingsResponse(current)
}

// UpdateNameSettings は氏名フォーマット設定を更新します。既存社員の氏名は再合成しません。
func (h *NameSettingsGrpcHandler) UpdateNameSettings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := newPayload(req)
	if err != nil {
		return nil, err
	}

	in := settings.UpdateNameSettingsInput{
		Format:        p.optionalString("format"),
		CustomPattern: p.optionalString("custom_pattern"),
	}
	if err := p.err(); err != nil {
		return nil, err
	}

	updated, err := h.svc.UpdateNameSettings(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return settingsResponse(updated)
}

func settingsResponse(s *settings.NameSettings) (*structpb.Struct, error) {
	return toResponse(map[string]any{
		"format":         string(s.Format),
		"custom_pattern": s.CustomPattern,
	})
}
