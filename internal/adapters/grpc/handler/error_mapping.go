package handler

import (
	"errors"

	"github.com/ogurasousui/hr-employee-names/internal/core/contact"
	"github.com/ogurasousui/hr-employee-names/internal/core/employee"
	"github.com/ogurasousui/hr-employee-names/internal/core/query"
	"github.com/ogurasousui/hr-employee-names/internal/core/settings"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidFirstName),
		errors.Is(err, employee.ErrInvalidLastName),
		errors.Is(err, employee.ErrInvalidNickName),
		errors.Is(err, employee.ErrNameRequired),
		errors.Is(err, employee.ErrInvalidNameFormat),
		errors.Is(err, employee.ErrInvalidOperator),
		errors.Is(err, employee.ErrInvalidLimit),
		errors.Is(err, contact.ErrInvalidID),
		errors.Is(err, contact.ErrInvalidName),
		errors.Is(err, settings.ErrInvalidFormat),
		errors.Is(err, settings.ErrInvalidPattern),
		errors.Is(err, query.ErrUnknownField),
		errors.Is(err, query.ErrUnsupportedOp):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, employee.ErrContactNotFound),
		errors.Is(err, contact.ErrContactNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
