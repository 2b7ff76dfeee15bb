package club

import (
	"errors"
	"fmt"
)

// Domain-level error values returned by the club service.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrRoomUnavailable    = errors.New("room unavailable")
	ErrInvalidTransition  = errors.New("invalid order transition")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrDuplicateUsername  = errors.New("duplicate username")

	ErrUnknownCustomer = errors.New("unknown customer")
	ErrUnknownRoom     = errors.New("unknown room")
	ErrUnknownOrder    = errors.New("unknown order")

	ErrInvalidCustomerID     = errors.New("invalid customer id")
	ErrInvalidRoomID         = errors.New("invalid room id")
	ErrInvalidOrderID        = errors.New("invalid order id")
	ErrInvalidStaffID        = errors.New("invalid staff id")
	ErrInvalidDay            = errors.New("invalid day")
	ErrInvalidRole           = errors.New("invalid role")
	ErrInvalidMembershipTier = errors.New("invalid membership tier")
	ErrInvalidRoomType       = errors.New("invalid room type")
	ErrInvalidOrderStatus    = errors.New("invalid order status")
	ErrInvalidOrderAction    = errors.New("invalid order action")
	ErrInvalidMetadataJSON   = errors.New("invalid metadata json")
	ErrInvalidCustomerName   = errors.New("invalid customer name")
	ErrInvalidCustomerPhone  = errors.New("invalid customer phone")
	ErrInvalidGridWindow     = errors.New("invalid grid window")
	ErrInvalidServiceConfig  = errors.New("invalid service config")
)

// OperationError wraps a failure with a stable operation code.
type OperationError struct {
	operation string
	subject   string
	code      string
	err       error
}

// Error returns the formatted error message.
func (operationError OperationError) Error() string {
	return fmt.Sprintf("%s.%s.%s: %v", operationError.operation, operationError.subject, operationError.code, operationError.err)
}

// Unwrap returns the underlying error.
func (operationError OperationError) Unwrap() error {
	return operationError.err
}

// Operation returns the operation segment.
func (operationError OperationError) Operation() string {
	return operationError.operation
}

// Subject returns the subject segment.
func (operationError OperationError) Subject() string {
	return operationError.subject
}

// Code returns the stable error code segment.
func (operationError OperationError) Code() string {
	return operationError.code
}

// WrapError wraps an error with operation, subject, and code metadata.
func WrapError(operation string, subject string, code string, err error) error {
	if err == nil {
		return nil
	}
	return OperationError{
		operation: operation,
		subject:   subject,
		code:      code,
		err:       err,
	}
}
