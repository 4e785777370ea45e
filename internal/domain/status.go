package domain

// StepStatus — исход выполнения одного шага.
type StepStatus string

const (
	// StepStatusPass — команда завершилась с кодом 0.
	StepStatusPass StepStatus = "PASS"

	// StepStatusFail — команда завершилась с ненулевым кодом
	// или не смогла запуститься.
	StepStatusFail StepStatus = "FAIL"

	// StepStatusSkip — шаг не выполнялся (skip-set, зависимость, override).
	StepStatusSkip StepStatus = "SKIP"

	// StepStatusTimeout — команда превысила таймаут и была убита.
	StepStatusTimeout StepStatus = "TIMEOUT"
)

// IsFailure возвращает true, если статус считается падением
// (учитывается в tier-списках и вердикте).
func (s StepStatus) IsFailure() bool {
	return s == StepStatusFail || s == StepStatusTimeout
}

// ReasonCode — закрытое перечисление машинных причин исхода шага.
//
// Свободный текст (ID упавшей зависимости, текст ошибки запуска)
// живёт в StepResult.Detail, а не в самом коде причины.
type ReasonCode string

const (
	// ReasonNonzeroExit — команда вернула ненулевой код выхода.
	ReasonNonzeroExit ReasonCode = "nonzero_exit"

	// ReasonTimeout — команда убита по таймауту.
	ReasonTimeout ReasonCode = "timeout"

	// ReasonException — процесс не удалось запустить или собрать результат.
	ReasonException ReasonCode = "exception"

	// ReasonDependencyFailed — зависимость не завершилась с PASS.
	// Detail содержит ID зависимости.
	ReasonDependencyFailed ReasonCode = "dependency_failed"

	// ReasonSkippedByUser — шаг в skip-set вызывающей стороны.
	ReasonSkippedByUser ReasonCode = "skipped_by_user"

	// ReasonOverrideActive — внешний override пометил шаг пропускаемым.
	ReasonOverrideActive ReasonCode = "override_active"
)

// RunStatus — статус запуска gate как целого.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → PASSED
//	                  ↘ FAILED
//	          (или) → ERROR (реестр не прошёл валидацию)
type RunStatus string

const (
	// RunStatusPending — запуск создан, но ещё не начался.
	RunStatusPending RunStatus = "PENDING"

	// RunStatusRunning — запуск в процессе выполнения.
	RunStatusRunning RunStatus = "RUNNING"

	// RunStatusPassed — запуск завершён, вердикт положительный.
	RunStatusPassed RunStatus = "PASSED"

	// RunStatusFailed — запуск завершён, вердикт отрицательный.
	RunStatusFailed RunStatus = "FAILED"

	// RunStatusError — запуск не стартовал из-за структурных ошибок реестра.
	RunStatusError RunStatus = "ERROR"
)

// IsTerminal возвращает true, если статус финальный.
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusPassed, RunStatusFailed, RunStatusError:
		return true
	default:
		return false
	}
}

// Mode — режим выполнения последовательного движка.
type Mode string

const (
	// ModeStrict — любое падение (включая OPTIONAL) попадает
	// в failing-set и валит вердикт.
	ModeStrict Mode = "strict"

	// ModeDegraded — вердикт определяют только KERNEL-падения;
	// остальные записываются в degradation ledger.
	ModeDegraded Mode = "degraded"

	// ModeKernelOnly — реестр предварительно сужается до KERNEL-шагов.
	ModeKernelOnly Mode = "kernel-only"
)

// IsValid проверяет, что mode — одно из известных значений.
func (m Mode) IsValid() bool {
	switch m {
	case ModeStrict, ModeDegraded, ModeKernelOnly:
		return true
	default:
		return false
	}
}
