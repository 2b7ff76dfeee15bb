package club

import "context"

// ServiceOption configures a Service instance.
type ServiceOption func(*Service)

// OperationLogger records domain-level events emitted by Service operations.
type OperationLogger interface {
	LogOperation(ctx context.Context, entry OperationLog)
}

// OperationLog describes a state-changing club operation.
type OperationLog struct {
	Operation  string
	Actor      StaffID
	Role       Role
	CustomerID string
	RoomID     string
	OrderID    string
	Day        string
	Amount     AmountCents
	Status     string
	Error      error
}

// WithOperationLogger wires a logger that receives callbacks for every operation.
func WithOperationLogger(logger OperationLogger) ServiceOption {
	return func(service *Service) {
		service.logger = logger
	}
}
