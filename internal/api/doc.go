// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go          — Handler с DI (реестр, репозитории, publisher, logger)
//   - routes.go           — регистрация маршрутов
//   - middleware.go       — middleware (logging, recovery)
//   - response.go         — унифицированные JSON-ответы и обработка ошибок
//   - dto.go              — Data Transfer Objects (request/response)
//   - plan_handler.go     — обработчики для /steps и /plan
//   - run_handler.go      — обработчики для /runs
//   - schedule_handler.go — обработчики для /schedules
//
// API предоставляет REST endpoints для просмотра реестра шагов,
// управления запусками gate и расписаниями.
package api
