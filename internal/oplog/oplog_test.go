package oplog

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MarkoPoloResearchLab/clubdesk/pkg/club"
)

func TestZapLoggerRecordsOperationFields(t *testing.T) {
	t.Parallel()
	core, observed := observer.New(zap.InfoLevel)
	logger := NewZapLogger(zap.New(core))

	logger.LogOperation(context.Background(), club.OperationLog{
		Operation:  "customer.recharge",
		CustomerID: "C001",
		Amount:     500,
		Status:     "ok",
	})
	logger.LogOperation(context.Background(), club.OperationLog{
		Operation: "order.create",
		Status:    "error",
		Error:     errors.New("room unavailable"),
	})

	entries := observed.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Level != zap.InfoLevel || entries[1].Level != zap.WarnLevel {
		t.Fatalf("unexpected levels: %v %v", entries[0].Level, entries[1].Level)
	}
	fields := entries[0].ContextMap()
	if fields["operation"] != "customer.recharge" || fields["customer_id"] != "C001" {
		t.Fatalf("unexpected fields: %v", fields)
	}
	if fields["amount_cents"] != int64(500) {
		t.Fatalf("unexpected amount field: %v", fields["amount_cents"])
	}
}

type countingLogger struct {
	calls int
}

func (logger *countingLogger) LogOperation(context.Context, club.OperationLog) {
	logger.calls++
}

func TestTeeFansOutAndSkipsNilLoggers(t *testing.T) {
	t.Parallel()
	first := &countingLogger{}
	second := &countingLogger{}
	tee := Tee(first, nil, second)

	tee.LogOperation(context.Background(), club.OperationLog{Operation: "order.approve"})
	if first.calls != 1 || second.calls != 1 {
		t.Fatalf("expected one call each, got %d and %d", first.calls, second.calls)
	}
}
