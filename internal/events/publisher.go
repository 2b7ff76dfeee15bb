package events

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/clubdesk/pkg/club"
)

const (
	exchangeName = "club.operations"
	exchangeKind = "topic"
)

// operationEvent is the wire form of a published operation.
type operationEvent struct {
	Operation   string `json:"operation"`
	Actor       string `json:"actor"`
	Role        string `json:"role"`
	CustomerID  string `json:"customer_id,omitempty"`
	RoomID      string `json:"room_id,omitempty"`
	OrderID     string `json:"order_id,omitempty"`
	Day         string `json:"day,omitempty"`
	AmountCents int64  `json:"amount_cents,omitempty"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}

// Publisher mirrors club operations onto a RabbitMQ topic exchange. The
// routing key is the operation name, so consumers can bind to
// "order.*" or "customer.*" subsets.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *zap.Logger
}

// NewPublisher dials the broker and declares the operations exchange.
func NewPublisher(url string, logger *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := channel.ExchangeDeclare(exchangeName, exchangeKind, true, false, false, false, nil); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}
	return &Publisher{conn: conn, channel: channel, logger: logger}, nil
}

// LogOperation implements club.OperationLogger. Publish failures are logged
// and swallowed so broker trouble never fails a booking.
func (publisher *Publisher) LogOperation(ctx context.Context, entry club.OperationLog) {
	event := operationEvent{
		Operation:   entry.Operation,
		Actor:       entry.Actor.String(),
		Role:        entry.Role.String(),
		CustomerID:  entry.CustomerID,
		RoomID:      entry.RoomID,
		OrderID:     entry.OrderID,
		Day:         entry.Day,
		AmountCents: entry.Amount.Int64(),
		Status:      entry.Status,
	}
	if entry.Error != nil {
		event.Error = entry.Error.Error()
	}
	body, err := json.Marshal(event)
	if err != nil {
		publisher.logger.Warn("event marshal failed", zap.Error(err))
		return
	}
	err = publisher.channel.PublishWithContext(ctx, exchangeName, entry.Operation, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		publisher.logger.Warn("event publish failed",
			zap.String("operation", entry.Operation),
			zap.Error(err))
	}
}

// Close releases the channel and connection.
func (publisher *Publisher) Close() {
	if publisher.channel != nil {
		_ = publisher.channel.Close()
	}
	if publisher.conn != nil {
		_ = publisher.conn.Close()
	}
}
