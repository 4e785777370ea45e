package orchestrator

import "errors"

var (
	// ErrInvalidRegistry — реестр не прошёл статическую валидацию;
	// запуск не стартовал.
	ErrInvalidRegistry = errors.New("registry failed validation")

	// ErrInvalidWaves — распределение по волнам не прошло валидацию;
	// запуск не стартовал.
	ErrInvalidWaves = errors.New("wave assignment failed validation")

	// ErrInvalidMode — неизвестный режим выполнения.
	ErrInvalidMode = errors.New("unknown execution mode")
)
