package club

import (
	"context"
	"testing"
)

type recorderLogger struct {
	entries []OperationLog
}

func (logger *recorderLogger) LogOperation(_ context.Context, entry OperationLog) {
	logger.entries = append(logger.entries, entry)
}

func TestServiceLogsRechargeOperation(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	logger := &recorderLogger{}
	service := mustNewService(test, store, WithOperationLogger(logger))
	actor := staffActor(test, "S001")

	if _, err := service.Recharge(context.Background(), actor, mustCustomerID(test, "C001"), mustAmount(test, 500), mustMetadata(test, "")); err != nil {
		test.Fatalf("recharge: %v", err)
	}
	if len(logger.entries) != 1 {
		test.Fatalf("expected one log entry, got %d", len(logger.entries))
	}
	entry := logger.entries[0]
	if entry.Operation != operationRecharge || entry.CustomerID != "C001" || entry.Amount != 500 {
		test.Fatalf("unexpected log entry: %+v", entry)
	}
	if entry.Error != nil || entry.Status != operationStatusOK {
		test.Fatalf("expected successful log entry, got %+v", entry)
	}
}

func TestServiceLogsErrorStatus(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	logger := &recorderLogger{}
	service := mustNewService(test, store, WithOperationLogger(logger))
	actor := staffActor(test, "S001")

	_, err := service.CreateOrder(context.Background(), actor, mustRoomID(test, "R999"), mustCustomerID(test, "C001"), mustDay(test, bookingDayValue))
	if err == nil {
		test.Fatalf("expected error")
	}
	if len(logger.entries) != 1 {
		test.Fatalf("expected one log entry, got %d", len(logger.entries))
	}
	if logger.entries[0].Status != operationStatusError || logger.entries[0].Error == nil {
		test.Fatalf("expected error log entry, got %+v", logger.entries[0])
	}
}
