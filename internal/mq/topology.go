package mq

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrNoChannel — AMQP канал не открыт (нет соединения).
var ErrNoChannel = errors.New("no channel available")

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges.
const (
	ExchangeBatches Exchange = "content_import.batches"
	ExchangeDLQ     Exchange = "content_import.dlq"
)

// Queues.
const (
	QueueBatchesPending Queue = "batches.pending"
	QueueDLQBatches     Queue = "dlq.batches"
)

// Routing keys.
const (
	RoutingKeyPending    RoutingKey = "pending"
	RoutingKeyDLQBatches RoutingKey = "batches"
)

// binding — очередь, её обменник и аргументы.
type binding struct {
	queue      Queue
	exchange   Exchange
	routingKey RoutingKey
	args       amqp.Table
}

// topology возвращает очереди и привязки ContentImport.
//
// batches.pending отправляет отклонённые сообщения в dlq.batches.
func topology() []binding {
	return []binding{
		{
			queue:      QueueBatchesPending,
			exchange:   ExchangeBatches,
			routingKey: RoutingKeyPending,
			args: amqp.Table{
				"x-dead-letter-exchange":    string(ExchangeDLQ),
				"x-dead-letter-routing-key": string(RoutingKeyDLQBatches),
			},
		},
		{
			queue:      QueueDLQBatches,
			exchange:   ExchangeDLQ,
			routingKey: RoutingKeyDLQBatches,
		},
	}
}

// SetupTopology объявляет exchanges, queues и bindings. Идемпотентна.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		for _, ex := range []Exchange{ExchangeBatches, ExchangeDLQ} {
			if err := ch.ExchangeDeclare(string(ex), amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
				return fmt.Errorf("declare exchange %s: %w", ex, err)
			}
		}

		for _, b := range topology() {
			if _, err := ch.QueueDeclare(string(b.queue), true, false, false, false, b.args); err != nil {
				return fmt.Errorf("declare queue %s: %w", b.queue, err)
			}
			if err := ch.QueueBind(string(b.queue), string(b.routingKey), string(b.exchange), false, nil); err != nil {
				return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
			}
		}
		return nil
	})
}
