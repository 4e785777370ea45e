// Package runner реализует сервис выполнения запусков gate.
//
// Runner потребляет запросы run.requested из RabbitMQ (с polling
// fallback по таблице runs), выполняет gate выбранным движком
// (sequential или waves), персистит результаты шагов и сводку,
// и публикует события step.completed и run.completed.
//
// Структура:
//   - runner.go   — жизненный цикл (Start/Stop, consumer, polling)
//   - handlers.go — обработка одного запуска (processRun, execute)
//   - errors.go   — ожидаемые ошибки обработки
//
// Гарантии доставки: at-least-once. Повторная доставка run.requested
// безопасна — запуск в статусе не-PENDING пропускается (ack).
package runner
