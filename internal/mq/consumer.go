package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler — обработчик одного доставленного сообщения.
// Ненулевая ошибка приводит к nack с возвратом в очередь.
type Handler func(ctx context.Context, msg *Delivery) error

// Delivery — доставленное сообщение вместе с сырой AMQP-доставкой.
type Delivery struct {
	// Message — конверт сообщения.
	Message Message

	// Raw — исходная AMQP-доставка (для ручного ack/nack).
	Raw amqp.Delivery
}

// Ack подтверждает обработку.
func (d *Delivery) Ack() error {
	return d.Raw.Ack(false)
}

// Nack отклоняет сообщение. requeue=false уводит его в DLQ,
// если очередь сконфигурирована с dead-letter exchange.
func (d *Delivery) Nack(requeue bool) error {
	return d.Raw.Nack(false, requeue)
}

// Consumer читает одну очередь и прогоняет каждое сообщение
// через Handler.
//
// Семантика доставки — at-least-once: после реконнекта брокер может
// передоставить неподтверждённые сообщения, поэтому обработчики
// обязаны быть идемпотентными (runner решает это проверкой статуса
// запуска перед выполнением).
type Consumer struct {
	conn     *Connection
	logger   *slog.Logger
	queue    string
	handler  Handler
	prefetch int

	cancel context.CancelFunc
}

// ConsumerConfig — конфигурация Consumer.
type ConsumerConfig struct {
	// Queue — имя потребляемой очереди.
	Queue string

	// Handler — обработчик сообщений.
	Handler Handler

	// Prefetch — сколько неподтверждённых сообщений брокер выдаёт
	// одновременно. Для запусков gate держится равным 1: выполнение
	// долгое, копить доставки на одном инстансе невыгодно.
	Prefetch int
}

// NewConsumer создаёт Consumer. Потребление начинается в Start.
func NewConsumer(conn *Connection, logger *slog.Logger, cfg ConsumerConfig) *Consumer {
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}

	return &Consumer{
		conn:     conn,
		logger:   logger,
		queue:    cfg.Queue,
		handler:  cfg.Handler,
		prefetch: prefetch,
	}
}

// Start блокирующе потребляет очередь до отмены контекста,
// переживая реконнекты соединения.
func (c *Consumer) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	for {
		deliveries, err := c.openStream()
		if err != nil {
			c.logger.Error("failed to open consume stream",
				"queue", c.queue,
				"error", err,
			)
			if err := c.awaitReconnect(ctx); err != nil {
				return err
			}
			continue
		}

		c.logger.Info("consuming", "queue", c.queue)

		err = c.drain(ctx, deliveries)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// Канал доставки закрылся (обрыв соединения) — ждём
		// восстановления и продолжаем с нового канала.
		c.logger.Warn("delivery stream closed",
			"queue", c.queue,
			"error", err,
		)
		if err := c.awaitReconnect(ctx); err != nil {
			return err
		}
	}
}

// Stop прекращает потребление.
func (c *Consumer) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
}

// openStream настраивает QoS и подписывается на очередь.
func (c *Consumer) openStream() (<-chan amqp.Delivery, error) {
	ch := c.conn.Channel()
	if ch == nil {
		return nil, fmt.Errorf("no channel available")
	}

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}

	// auto-ack выключен: подтверждаем только после обработчика.
	deliveries, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", c.queue, err)
	}

	return deliveries, nil
}

// awaitReconnect ждёт восстановления соединения или отмены контекста.
func (c *Consumer) awaitReconnect(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.conn.ReconnectNotify():
		c.logger.Info("connection restored, resuming consumer", "queue", c.queue)
		return nil
	}
}

// drain обрабатывает сообщения до закрытия канала доставки
// или отмены контекста.
func (c *Consumer) drain(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case raw, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.dispatch(ctx, raw)
		}
	}
}

// dispatch разбирает конверт и вызывает обработчик.
func (c *Consumer) dispatch(ctx context.Context, raw amqp.Delivery) {
	var msg Message
	if err := json.Unmarshal(raw.Body, &msg); err != nil {
		c.logger.Error("malformed message",
			"queue", c.queue,
			"error", err,
			"body", string(raw.Body),
		)
		// Битый конверт ретраить бессмысленно — сразу в DLQ.
		raw.Nack(false, false)
		return
	}

	c.logger.Debug("message received",
		"queue", c.queue,
		"message_id", msg.ID,
		"type", msg.Type,
	)

	if err := c.handler(ctx, &Delivery{Message: msg, Raw: raw}); err != nil {
		c.logger.Error("handler failed",
			"queue", c.queue,
			"message_id", msg.ID,
			"type", msg.Type,
			"error", err,
		)
		// Возврат в очередь; исчерпание ретраев разруливает DLQ
		// на уровне конфигурации очереди.
		raw.Nack(false, true)
		return
	}

	raw.Ack(false)
}

// ParsePayload приводит payload конверта к конкретному типу сообщения.
func ParsePayload[T any](msg *Message) (T, error) {
	var out T

	// Payload приходит как map после общего Unmarshal конверта;
	// прогон через JSON приводит его к целевой структуре.
	data, err := json.Marshal(msg.Payload)
	if err != nil {
		return out, fmt.Errorf("marshal payload: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("unmarshal payload: %w", err)
	}

	return out, nil
}
