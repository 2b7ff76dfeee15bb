package oplog

import (
	"context"

	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/clubdesk/pkg/club"
)

// ZapLogger writes every club operation to a structured zap log.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger wraps a zap logger as a club.OperationLogger.
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{logger: logger}
}

func (zapLogger *ZapLogger) LogOperation(_ context.Context, entry club.OperationLog) {
	fields := []zap.Field{
		zap.String("operation", entry.Operation),
		zap.String("actor", entry.Actor.String()),
		zap.String("role", entry.Role.String()),
		zap.String("status", entry.Status),
	}
	if entry.CustomerID != "" {
		fields = append(fields, zap.String("customer_id", entry.CustomerID))
	}
	if entry.RoomID != "" {
		fields = append(fields, zap.String("room_id", entry.RoomID))
	}
	if entry.OrderID != "" {
		fields = append(fields, zap.String("order_id", entry.OrderID))
	}
	if entry.Day != "" {
		fields = append(fields, zap.String("day", entry.Day))
	}
	if entry.Amount != 0 {
		fields = append(fields, zap.Int64("amount_cents", entry.Amount.Int64()))
	}
	if entry.Error != nil {
		fields = append(fields, zap.Error(entry.Error))
		zapLogger.logger.Warn("club operation failed", fields...)
		return
	}
	zapLogger.logger.Info("club operation", fields...)
}

// Tee fans one operation entry out to every wired logger.
func Tee(loggers ...club.OperationLogger) club.OperationLogger {
	active := make([]club.OperationLogger, 0, len(loggers))
	for _, logger := range loggers {
		if logger != nil {
			active = append(active, logger)
		}
	}
	return teeLogger{loggers: active}
}

type teeLogger struct {
	loggers []club.OperationLogger
}

func (tee teeLogger) LogOperation(ctx context.Context, entry club.OperationLog) {
	for _, logger := range tee.loggers {
		logger.LogOperation(ctx, entry)
	}
}
