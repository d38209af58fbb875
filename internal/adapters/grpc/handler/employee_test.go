package handler

import (
	"context"
	"testing"
	"time"

	"github.com/ogurasousui/hr-employee-names/internal/core/employee"
	"github.com/ogurasousui/hr-employee-names/internal/core/nameformat"
	"github.com/ogurasousui/hr-employee-names/internal/core/query"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type stubEmployeeUseCase struct {
	createInput employee.CreateEmployeeInput
	createOut   *employee.Employee
	createErr   error

	updateInput employee.UpdateEmployeeInput
	updateOpts  employee.WriteOptions
	updateOut   *employee.Employee
	updateErr   error

	deleteInput employee.DeleteEmployeeInput
	deleteErr   error

	getInput employee.GetEmployeeInput
	getOut   *employee.Employee
	getErr   error

	searchInput employee.SearchByNameInput
	searchOut   []employee.NameMatch
	searchErr   error

	display       string
	defaultFormat nameformat.Format
	batchOut      *employee.BatchResult
	batchErr      error
	backfillCalls int
	recomputeCall int
}

func (s *stubEmployeeUseCase) CreateEmployee(_ context.Context, in employee.CreateEmployeeInput) (*employee.Employee, error) {
	s.createInput = in
	return s.createOut, s.createErr
}

func (s *stubEmployeeUseCase) GetEmployee(_ context.Context, in employee.GetEmployeeInput) (*employee.Employee, error) {
	s.getInput = in
	return s.getOut, s.getErr
}

func (s *stubEmployeeUseCase) UpdateEmployee(_ context.Context, in employee.UpdateEmployeeInput, opts employee.WriteOptions) (*employee.Employee, error) {
	s.updateInput = in
	s.updateOpts = opts
	return s.updateOut, s.updateErr
}

func (s *stubEmployeeUseCase) DeleteEmployee(_ context.Context, in employee.DeleteEmployeeInput) error {
	s.deleteInput = in
	return s.deleteErr
}

func (s *stubEmployeeUseCase) DisplayName(_ context.Context, e *employee.Employee) (string, error) {
	if s.display != "" {
		return s.display, nil
	}
	return e.Name, nil
}

func (s *stubEmployeeUseCase) SearchByName(_ context.Context, in employee.SearchByNameInput) ([]employee.NameMatch, error) {
	s.searchInput = in
	return s.searchOut, s.searchErr
}

func (s *stubEmployeeUseCase) DefaultNameFormat(context.Context) (nameformat.Format, error) {
	return s.defaultFormat, nil
}

func (s *stubEmployeeUseCase) Backfill(context.Context) (*employee.BatchResult, error) {
	s.backfillCalls++
	return s.batchOut, s.batchErr
}

func (s *stubEmployeeUseCase) RecomputeNames(context.Context) (*employee.BatchResult, error) {
	s.recomputeCall++
	return s.batchOut, s.batchErr
}

func mustStruct(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()

	s, err := structpb.NewStruct(fields)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	return s
}

func TestEmployeeGrpcHandler_CreateEmployee_Success(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	contactID := "contact-1"
	stub := &stubEmployeeUseCase{
		createOut: &employee.Employee{
			ID:            "emp-1",
			FirstName:     "Taro",
			LastName:      "Yamada",
			NickName:      "Taro",
			NameFormat:    nameformat.FormatAsian,
			Name:          "Yamada Taro",
			WorkContactID: &contactID,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}

	handler := NewEmployeeGrpcHandler(stub)
	resp, err := handler.CreateEmployee(context.Background(), mustStruct(t, map[string]any{
		"first_name":      "Taro",
		"last_name":       "Yamada",
		"name_format":     "asian",
		"work_contact_id": "contact-1",
	}))
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	if stub.createInput.FirstName != "Taro" || stub.createInput.LastName != "Yamada" {
		t.Errorf("expected names to pass through, got %+v", stub.createInput)
	}
	if stub.createInput.NickName != nil {
		t.Errorf("expected absent nick name to stay nil, got %v", *stub.createInput.NickName)
	}
	if stub.createInput.NameFormat != nameformat.FormatAsian {
		t.Errorf("expected asian format, got %q", stub.createInput.NameFormat)
	}
	if stub.createInput.WorkContactID == nil || *stub.createInput.WorkContactID != "contact-1" {
		t.Errorf("expected work contact id, got %+v", stub.createInput.WorkContactID)
	}

	emp := resp.GetFields()["employee"].GetStructValue().GetFields()
	if emp["id"].GetStringValue() != "emp-1" || emp["name"].GetStringValue() != "Yamada Taro" {
		t.Fatalf("unexpected employee payload: %v", emp)
	}
	if emp["work_contact_id"].GetStringValue() != "contact-1" {
		t.Fatalf("expected work contact in response, got %v", emp["work_contact_id"])
	}
	if emp["display_name"].GetStringValue() != "Yamada Taro" {
		t.Fatalf("expected display name, got %v", emp["display_name"])
	}
}

func TestEmployeeGrpcHandler_CreateEmployee_InvalidPayload(t *testing.T) {
	t.Parallel()

	handler := NewEmployeeGrpcHandler(&stubEmployeeUseCase{})

	_, err := handler.CreateEmployee(context.Background(), mustStruct(t, map[string]any{"first_name": 42}))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}

	_, err = handler.CreateEmployee(context.Background(), nil)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument for nil request, got %v", err)
	}
}

func TestEmployeeGrpcHandler_CreateEmployee_DomainError(t *testing.T) {
	t.Parallel()

	handler := NewEmployeeGrpcHandler(&stubEmployeeUseCase{createErr: employee.ErrNameRequired})

	_, err := handler.CreateEmployee(context.Background(), mustStruct(t, map[string]any{}))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestEmployeeGrpcHandler_UpdateEmployee(t *testing.T) {
	t.Parallel()

	stub := &stubEmployeeUseCase{updateOut: &employee.Employee{ID: "emp-1", Name: "Jane Doe"}}
	handler := NewEmployeeGrpcHandler(stub)

	_, err := handler.UpdateEmployee(context.Background(), mustStruct(t, map[string]any{
		"id":              "emp-1",
		"name":            "Jane Doe",
		"name_format":     "western",
		"work_contact_id": nil,
		"skip_name_sync":  true,
	}))
	if err != nil {
		t.Fatalf("UpdateEmployee returned error: %v", err)
	}

	in := stub.updateInput
	if in.ID != "emp-1" || in.Name == nil || *in.Name != "Jane Doe" {
		t.Fatalf("unexpected update input: %+v", in)
	}
	if in.FirstName != nil || in.LastName != nil {
		t.Fatalf("expected absent structured fields to stay nil: %+v", in)
	}
	if in.NameFormat == nil || *in.NameFormat != nameformat.FormatWestern {
		t.Fatalf("expected name format, got %+v", in.NameFormat)
	}
	if !in.WorkContactIDSet || in.WorkContactID != nil {
		t.Fatalf("expected null work contact to clear the link: %+v", in)
	}
	if !stub.updateOpts.SkipNameSync {
		t.Fatalf("expected skip_name_sync to pass through")
	}
}

func TestEmployeeGrpcHandler_UpdateEmployee_NotFound(t *testing.T) {
	t.Parallel()

	handler := NewEmployeeGrpcHandler(&stubEmployeeUseCase{updateErr: employee.ErrEmployeeNotFound})

	_, err := handler.UpdateEmployee(context.Background(), mustStruct(t, map[string]any{"id": "missing"}))
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestEmployeeGrpcHandler_SearchEmployees(t *testing.T) {
	t.Parallel()

	stub := &stubEmployeeUseCase{searchOut: []employee.NameMatch{{ID: "emp-1", DisplayName: "JD (Jane Doe)"}}}
	handler := NewEmployeeGrpcHandler(stub)

	resp, err := handler.SearchEmployees(context.Background(), mustStruct(t, map[string]any{
		"query":    "jane",
		"operator": "=",
		"limit":    10,
		"filter": []any{
			map[string]any{"field": "work_contact_id", "op": "in", "value": []any{"contact-1", "contact-2"}},
		},
	}))
	if err != nil {
		t.Fatalf("SearchEmployees returned error: %v", err)
	}

	in := stub.searchInput
	if in.Query != "jane" || in.Operator != query.OpEq || in.Limit != 10 {
		t.Fatalf("unexpected search input: %+v", in)
	}
	cond, ok := in.Filter.(query.Cond)
	if !ok || cond.Field != "work_contact_id" || cond.Op != query.OpIn {
		t.Fatalf("unexpected filter: %#v", in.Filter)
	}
	if ids, _ := query.StringValues(cond.Value); len(ids) != 2 {
		t.Fatalf("expected two filter values, got %#v", cond.Value)
	}

	results := resp.GetFields()["results"].GetListValue().GetValues()
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	first := results[0].GetStructValue().GetFields()
	if first["id"].GetStringValue() != "emp-1" || first["display_name"].GetStringValue() != "JD (Jane Doe)" {
		t.Fatalf("unexpected result: %v", first)
	}
}

func TestEmployeeGrpcHandler_SearchEmployees_InvalidInput(t *testing.T) {
	t.Parallel()

	handler := NewEmployeeGrpcHandler(&stubEmployeeUseCase{})

	tests := map[string]map[string]any{
		"fractional limit": {"limit": 1.5},
		"filter not list":  {"filter": "name"},
		"condition no op":  {"filter": []any{map[string]any{"field": "name"}}},
	}
	for name, fields := range tests {
		fields := fields
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := handler.SearchEmployees(context.Background(), mustStruct(t, fields))
			if status.Code(err) != codes.InvalidArgument {
				t.Fatalf("expected InvalidArgument, got %v", err)
			}
		})
	}

	handler = NewEmployeeGrpcHandler(&stubEmployeeUseCase{searchErr: employee.ErrInvalidOperator})
	_, err := handler.SearchEmployees(context.Background(), mustStruct(t, map[string]any{"operator": "like"}))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument from domain error, got %v", err)
	}
}

func TestEmployeeGrpcHandler_BatchOperations(t *testing.T) {
	t.Parallel()

	stub := &stubEmployeeUseCase{batchOut: &employee.BatchResult{Scanned: 5, Updated: 3}}
	handler := NewEmployeeGrpcHandler(stub)

	resp, err := handler.BackfillNames(context.Background(), &structpb.Struct{})
	if err != nil {
		t.Fatalf("BackfillNames returned error: %v", err)
	}
	if resp.GetFields()["updated"].GetNumberValue() != 3 || resp.GetFields()["scanned"].GetNumberValue() != 5 {
		t.Fatalf("unexpected backfill response: %v", resp)
	}

	if _, err := handler.RecomputeNames(context.Background(), &structpb.Struct{}); err != nil {
		t.Fatalf("RecomputeNames returned error: %v", err)
	}
	if stub.backfillCalls != 1 || stub.recomputeCall != 1 {
		t.Fatalf("expected one call each, got backfill=%d recompute=%d", stub.backfillCalls, stub.recomputeCall)
	}
}

func TestEmployeeGrpcHandler_GetEmployeeDefaults(t *testing.T) {
	t.Parallel()

	handler := NewEmployeeGrpcHandler(&stubEmployeeUseCase{defaultFormat: nameformat.FormatAsian})

	resp, err := handler.GetEmployeeDefaults(context.Background(), &structpb.Struct{})
	if err != nil {
		t.Fatalf("GetEmployeeDefaults returned error: %v", err)
	}
	if resp.GetFields()["name_format"].GetStringValue() != "asian" {
		t.Fatalf("unexpected defaults: %v", resp)
	}
}

func TestEmployeeGrpcHandler_GetAndDelete(t *testing.T) {
	t.Parallel()

	stub := &stubEmployeeUseCase{
		getOut:  &employee.Employee{ID: "emp-1", Name: "Jane Doe", NickName: "JD", FirstName: "Jane"},
		display: "JD (Jane Doe)",
	}
	handler := NewEmployeeGrpcHandler(stub)

	resp, err := handler.GetEmployee(context.Background(), mustStruct(t, map[string]any{"id": "emp-1"}))
	if err != nil {
		t.Fatalf("GetEmployee returned error: %v", err)
	}
	emp := resp.GetFields()["employee"].GetStructValue().GetFields()
	if emp["display_name"].GetStringValue() != "JD (Jane Doe)" {
		t.Fatalf("unexpected display name: %v", emp["display_name"])
	}
	if _, isNull := emp["work_contact_id"].GetKind().(*structpb.Value_NullValue); !isNull {
		t.Fatalf("expected null work contact, got %v", emp["work_contact_id"])
	}

	if _, err := handler.DeleteEmployee(context.Background(), mustStruct(t, map[string]any{"id": "emp-1"})); err != nil {
		t.Fatalf("DeleteEmployee returned error: %v", err)
	}
	if stub.deleteInput.ID != "emp-1" {
		t.Fatalf("expected delete id to pass through, got %s", stub.deleteInput.ID)
	}
}
