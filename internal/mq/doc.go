// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация сообщений в очереди
//   - consumer.go   — потребление сообщений из очередей
//
// Типы сообщений:
//   - run.requested   — запрошено выполнение gate
//   - run.completed   — запуск завершён (с итоговым вердиктом)
//   - step.completed  — завершён отдельный шаг запуска
//
// Exchanges:
//   - gatekeeper.runs    — запросы на выполнение
//   - gatekeeper.events  — события о завершении
//   - gatekeeper.dlq     — dead letter queue
package mq
