package domain

import (
	"fmt"
	"time"
)

// StepResult — результат одной попытки выполнения шага.
//
// Создаётся ровно один раз на шаг за запуск и после создания
// не мутируется.
type StepResult struct {
	// StepID — идентификатор шага.
	StepID string `json:"step_id"`

	// Status — исход: PASS, FAIL, SKIP, TIMEOUT.
	Status StepStatus `json:"status"`

	// Reason — машинный код причины исхода.
	Reason ReasonCode `json:"reason,omitempty"`

	// Detail — свободный текст к Reason: ID упавшей зависимости,
	// текст ошибки запуска и т.п.
	Detail string `json:"detail,omitempty"`

	// ExitCode — код выхода процесса. -1 для TIMEOUT и не-запустившихся.
	ExitCode int `json:"exit_code"`

	// Duration — длительность выполнения.
	Duration time.Duration `json:"duration"`

	// Stdout — захваченный stdout команды.
	Stdout string `json:"stdout,omitempty"`

	// Stderr — захваченный stderr команды.
	Stderr string `json:"stderr,omitempty"`

	// StartedAt — время запуска команды.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt — время завершения (или убийства) команды.
	FinishedAt time.Time `json:"finished_at"`
}

// ReasonTag возвращает причину в виде одного машинного тега.
// Для dependency_failed тег включает ID зависимости:
// "dependency_failed:build".
func (r *StepResult) ReasonTag() string {
	if r.Reason == ReasonDependencyFailed && r.Detail != "" {
		return fmt.Sprintf("%s:%s", r.Reason, r.Detail)
	}
	return string(r.Reason)
}

// SkipResult создаёт SKIP-результат без выполнения команды.
func SkipResult(stepID string, reason ReasonCode, detail string) *StepResult {
	now := time.Now()
	return &StepResult{
		StepID:     stepID,
		Status:     StepStatusSkip,
		Reason:     reason,
		Detail:     detail,
		ExitCode:   0,
		StartedAt:  now,
		FinishedAt: now,
	}
}

// RunSummary — сводка по запуску.
//
// Строится заново из накопленного набора StepResult в конце запуска;
// движок её не хранит и не персистит.
type RunSummary struct {
	// Total — общее количество шагов в запуске.
	Total int `json:"total"`

	// Passed, Failed, Skipped — счётчики по исходам.
	// TIMEOUT учитывается в Failed.
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`

	// KernelFailures, GovernanceFailures, OptionalFailures —
	// ID упавших шагов по tier.
	KernelFailures     []string `json:"kernel_failures,omitempty"`
	GovernanceFailures []string `json:"governance_failures,omitempty"`
	OptionalFailures   []string `json:"optional_failures,omitempty"`

	// Verdict — итоговый вердикт запуска: true = PASS.
	Verdict bool `json:"verdict"`

	// Duration — суммарная длительность запуска.
	Duration time.Duration `json:"duration"`
}

// DegradationRecord — запись о неблокирующем падении в degraded режиме.
//
// Предназначена для append-only внешнего ledger; ответственность
// движка заканчивается на формировании записи.
type DegradationRecord struct {
	// Timestamp — время фиксации падения.
	Timestamp time.Time `json:"timestamp"`

	// StepID — идентификатор упавшего шага.
	StepID string `json:"step_id"`

	// StepName — человекочитаемое имя шага.
	StepName string `json:"step_name"`

	// Tier — класс критичности шага.
	Tier Tier `json:"tier"`

	// Status — исход шага (FAIL или TIMEOUT).
	Status StepStatus `json:"status"`

	// Reason — машинный тег причины.
	Reason string `json:"reason"`

	// Message — человекочитаемое описание падения.
	Message string `json:"message"`

	// Severity — серьёзность шага.
	Severity Severity `json:"severity"`
}
