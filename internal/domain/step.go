package domain

import "strings"

// Tier — класс критичности шага.
//
// Tier определяет, как падение шага влияет на вердикт запуска:
// KERNEL-шаги обязаны проходить всегда, GOVERNANCE-шаги должны
// проходить, OPTIONAL-шаги носят информационный характер.
type Tier string

const (
	// TierKernel — шаг обязан пройти; падение блокирует запуск в любом режиме.
	TierKernel Tier = "KERNEL"

	// TierGovernance — шаг должен пройти; в degraded режиме падение
	// только записывается в ledger.
	TierGovernance Tier = "GOVERNANCE"

	// TierOptional — информационный шаг.
	TierOptional Tier = "OPTIONAL"
)

// IsValid проверяет, что tier — одно из известных значений.
func (t Tier) IsValid() bool {
	switch t {
	case TierKernel, TierGovernance, TierOptional:
		return true
	default:
		return false
	}
}

// Severity — серьёзность шага для отчётности.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
	SeverityInfo     Severity = "INFO"
)

// Category — предметная категория проверки.
type Category string

const (
	CategorySecurity    Category = "SECURITY"
	CategoryPerformance Category = "PERFORMANCE"
	CategoryCorrectness Category = "CORRECTNESS"
	CategoryGovernance  Category = "GOVERNANCE"
)

// CommandChain — оператор, которым склеиваются под-команды шага.
// Следующая под-команда выполняется только при успехе предыдущей.
const CommandChain = " && "

// JoinCommands склеивает упорядоченный список под-команд в одну
// исполняемую инструкцию через CommandChain.
func JoinCommands(cmds ...string) string {
	return strings.Join(cmds, CommandChain)
}

// Step — определение одной проверки в реестре.
//
// Step неизменяем после конструирования: движки читают реестр,
// но никогда его не модифицируют.
type Step struct {
	// ID — уникальный идентификатор шага в рамках реестра.
	// Используется в DependsOn, skip-set и override.
	ID string `json:"id"`

	// Name — человекочитаемое имя шага.
	Name string `json:"name,omitempty"`

	// Tier — класс критичности: KERNEL, GOVERNANCE, OPTIONAL.
	Tier Tier `json:"tier"`

	// Severity — серьёзность: CRITICAL, WARNING, INFO.
	Severity Severity `json:"severity"`

	// Category — категория: SECURITY, PERFORMANCE, CORRECTNESS, GOVERNANCE.
	Category Category `json:"category"`

	// Command — исполняемая инструкция (shell-команда).
	// Собирается из под-команд через JoinCommands.
	Command string `json:"command"`

	// Description — описание назначения проверки.
	Description string `json:"description,omitempty"`

	// TimeoutSec — жёсткий таймаут выполнения в секундах. Строго > 0.
	TimeoutSec int `json:"timeout_sec"`

	// DependsOn — список ID шагов, от которых зависит этот шаг.
	// Шаг выполняется только если все зависимости завершились с PASS.
	DependsOn []string `json:"depends_on,omitempty"`

	// Tags — непрозрачные метки трассируемости.
	// Движок передаёт их дальше без интерпретации.
	Tags []string `json:"tags,omitempty"`
}
