package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// サービス名は hrnames.v1 パッケージに属します。
const (
	EmployeeServiceName     = "hrnames.v1.EmployeeService"
	ContactServiceName      = "hrnames.v1.ContactService"
	NameSettingsServiceName = "hrnames.v1.NameSettingsService"
)

// EmployeeServiceServer は EmployeeService のサーバー実装です。
type EmployeeServiceServer interface {
	CreateEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SearchEmployees(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetEmployeeDefaults(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BackfillNames(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecomputeNames(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ContactServiceServer は ContactService のサーバー実装です。
type ContactServiceServer interface {
	CreateContact(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetContact(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateContact(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// NameSettingsServiceServer は NameSettingsService のサーバー実装です。
type NameSettingsServiceServer interface {
	GetNameSettings(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateNameSettings(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// EmployeeServiceDesc は EmployeeService の grpc.ServiceDesc です。
var EmployeeServiceDesc = grpc.ServiceDesc{
	ServiceName: EmployeeServiceName,
	HandlerType: (*EmployeeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(EmployeeServiceName, "CreateEmployee", EmployeeServiceServer.CreateEmployee),
		unaryMethod(EmployeeServiceName, "UpdateEmployee", EmployeeServiceServer.UpdateEmployee),
		unaryMethod(EmployeeServiceName, "GetEmployee", EmployeeServiceServer.GetEmployee),
		unaryMethod(EmployeeServiceName, "DeleteEmployee", EmployeeServiceServer.DeleteEmployee),
		unaryMethod(EmployeeServiceName, "SearchEmployees", EmployeeServiceServer.SearchEmployees),
		unaryMethod(EmployeeServiceName, "GetEmployeeDefaults", EmployeeServiceServer.GetEmployeeDefaults),
		unaryMethod(EmployeeServiceName, "BackfillNames", EmployeeServiceServer.BackfillNames),
		unaryMethod(EmployeeServiceName, "RecomputeNames", EmployeeServiceServer.RecomputeNames),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hrnames/v1/employee.proto",
}

// ContactServiceDesc は ContactService の grpc.ServiceDesc です。
var ContactServiceDesc = grpc.ServiceDesc{
	ServiceName: ContactServiceName,
	HandlerType: (*ContactServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(ContactServiceName, "CreateContact", ContactServiceServer.CreateContact),
		unaryMethod(ContactServiceName, "GetContact", ContactServiceServer.GetContact),
		unaryMethod(ContactServiceName, "UpdateContact", ContactServiceServer.UpdateContact),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hrnames/v1/contact.proto",
}

// NameSettingsServiceDesc は NameSettingsService の grpc.ServiceDesc です。
var NameSettingsServiceDesc = grpc.ServiceDesc{
	ServiceName: NameSettingsServiceName,
	HandlerType: (*NameSettingsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(NameSettingsServiceName, "GetNameSettings", NameSettingsServiceServer.GetNameSettings),
		unaryMethod(NameSettingsServiceName, "UpdateNameSettings", NameSettingsServiceServer.UpdateNameSettings),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hrnames/v1/settings.proto",
}

// RegisterEmployeeServiceServer は EmployeeService を登録します。
func RegisterEmployeeServiceServer(s grpc.ServiceRegistrar, srv EmployeeServiceServer) {
	s.RegisterService(&EmployeeServiceDesc, srv)
}

// RegisterContactServiceServer は ContactService を登録します。
func RegisterContactServiceServer(s grpc.ServiceRegistrar, srv ContactServiceServer) {
	s.RegisterService(&ContactServiceDesc, srv)
}

// RegisterNameSettingsServiceServer は NameSettingsService を登録します。
func RegisterNameSettingsServiceServer(s grpc.ServiceRegistrar, srv NameSettingsServiceServer) {
	s.RegisterService(&NameSettingsServiceDesc, srv)
}

func unaryMethod[S any](service, method string, call func(S, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
