package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeRuns   Exchange = "gatekeeper.runs"
	ExchangeEvents Exchange = "gatekeeper.events"
	ExchangeDLQ    Exchange = "gatekeeper.dlq"
)

// Queues — имена очередей.
const (
	QueueRunsRequested  Queue = "runs.requested"
	QueueRunsCompleted  Queue = "runs.completed"
	QueueStepsCompleted Queue = "steps.completed"
	QueueDLQRuns        Queue = "dlq.runs"
)

// Routing keys.
const (
	RoutingKeyRequested     RoutingKey = "requested"
	RoutingKeyCompleted     RoutingKey = "completed"
	RoutingKeyStepCompleted RoutingKey = "step.completed"
	RoutingKeyDLQRuns       RoutingKey = "runs"
)

func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		// 1. Создаём exchanges
		if err := declareExchanges(ch); err != nil {
			return err
		}

		// 2. Создаём queues
		if err := declareQueues(ch); err != nil {
			return err
		}

		// 3. Привязываем queues к exchanges
		if err := bindQueues(ch); err != nil {
			return err
		}

		return nil
	})
}

// declareExchanges создаёт обменники.
func declareExchanges(ch *amqp.Channel) error {
	exchanges := []struct {
		name Exchange
		kind string
	}{
		{ExchangeRuns, "direct"},
		{ExchangeEvents, "direct"},
		{ExchangeDLQ, "direct"},
	}

	for _, ex := range exchanges {
		err := ch.ExchangeDeclare(
			string(ex.name), // name
			ex.kind,         // type
			true,            // durable
			false,           // auto-deleted
			false,           // internal
			false,           // no-wait
			nil,             // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}

	return nil
}

// declareQueues создаёт очереди.
func declareQueues(ch *amqp.Channel) error {
	// Аргументы для очередей с DLQ
	dlqArgs := amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQRuns),
	}

	queues := []struct {
		name Queue
		args amqp.Table
	}{
		// runs.requested — с DLQ (запрос на запуск можно потерять только явно)
		{QueueRunsRequested, dlqArgs},

		// runs.completed — без DLQ (события завершения)
		{QueueRunsCompleted, nil},

		// steps.completed — без DLQ (поток событий по шагам)
		{QueueStepsCompleted, nil},

		// dlq.runs — сама DLQ очередь
		{QueueDLQRuns, nil},
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			string(q.name), // name
			true,           // durable
			false,          // delete when unused
			false,          // exclusive
			false,          // no-wait
			q.args,         // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}

	return nil
}

// bindQueues привязывает очереди к обменникам.
func bindQueues(ch *amqp.Channel) error {
	bindings := []struct {
		queue      Queue
		routingKey RoutingKey
		exchange   Exchange
	}{
		{QueueRunsRequested, RoutingKeyRequested, ExchangeRuns},
		{QueueRunsCompleted, RoutingKeyCompleted, ExchangeEvents},
		{QueueStepsCompleted, RoutingKeyStepCompleted, ExchangeEvents},
		{QueueDLQRuns, RoutingKeyDLQRuns, ExchangeDLQ},
	}

	for _, b := range bindings {
		err := ch.QueueBind(
			string(b.queue),      // queue name
			string(b.routingKey), // routing key
			string(b.exchange),   // exchange
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Gatekeeper RabbitMQ Topology:

    gatekeeper.runs (direct)
    └── runs.requested [routing: requested]
            Consumer: Runner
            DLQ: dlq.runs

    gatekeeper.events (direct)
    ├── runs.completed [routing: completed]
    │       Consumer: external subscribers
    └── steps.completed [routing: step.completed]
            Consumer: external subscribers

    gatekeeper.dlq (direct)
    └── dlq.runs [routing: runs]
            Manual processing
  `
}
