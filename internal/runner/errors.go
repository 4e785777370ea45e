package runner

import "errors"

// Ошибки обработки запусков.
var (
	// ErrRunNotFound — запуск не найден в БД.
	ErrRunNotFound = errors.New("run not found")

	// ErrRunNotPending — запуск уже обрабатывается или завершён.
	ErrRunNotPending = errors.New("run is not pending")
)
