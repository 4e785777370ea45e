package engine

import "errors"

// Ошибки валидации реестра.
var (
	// ErrEmptyStepID — шаг не имеет ID.
	ErrEmptyStepID = errors.New("step has empty ID")

	// ErrEmptyCommand — шаг не имеет команды.
	ErrEmptyCommand = errors.New("step has empty command")

	// ErrInvalidTimeout — таймаут шага не положительный.
	ErrInvalidTimeout = errors.New("step timeout must be positive")

	// ErrInvalidTier — неизвестный tier шага.
	ErrInvalidTier = errors.New("unknown step tier")

	// ErrDuplicateStepID — несколько шагов с одинаковым ID.
	ErrDuplicateStepID = errors.New("duplicate step ID")

	// ErrMissingDependency — шаг зависит от несуществующего шага.
	ErrMissingDependency = errors.New("step depends on unknown step")

	// ErrSelfDependency — шаг зависит от самого себя.
	ErrSelfDependency = errors.New("step depends on itself")

	// ErrCyclicDependency — обнаружен цикл в зависимостях.
	ErrCyclicDependency = errors.New("cyclic dependency detected")
)

// Ошибки валидации распределения по волнам.
var (
	// ErrStepNotAssigned — шаг реестра не распределён ни в одну волну.
	ErrStepNotAssigned = errors.New("step not assigned to any wave")

	// ErrStepAssignedTwice — шаг распределён более чем в одну волну.
	ErrStepAssignedTwice = errors.New("step assigned to multiple waves")

	// ErrUnknownWaveStep — волна ссылается на несуществующий шаг.
	ErrUnknownWaveStep = errors.New("wave references unknown step")

	// ErrKernelWaveViolation — в волне 0 есть не-KERNEL шаг.
	ErrKernelWaveViolation = errors.New("wave 0 must contain only kernel steps")

	// ErrWaveOrderViolation — зависимость распределена не раньше зависимого.
	ErrWaveOrderViolation = errors.New("dependency wave must precede step wave")
)

// ValidationError — диагностика валидации с контекстом.
type ValidationError struct {
	StepID  string // ID шага, к которому относится диагностика
	Field   string // поле, вызвавшее диагностику
	Message string // описание
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.StepID != "" {
		return "step " + e.StepID + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую диагностику валидации.
func NewValidationError(stepID, field, message string, err error) *ValidationError {
	return &ValidationError{
		StepID:  stepID,
		Field:   field,
		Message: message,
		Err:     err,
	}
}
