package orchestrator

import (
	"time"

	"github.com/shaiso/Gatekeeper/internal/domain"
	"github.com/shaiso/Gatekeeper/internal/registry"
)

// Report — результат одного запуска, отдаваемый вызывающей стороне.
//
// Вызывающие (CLI, report writer, metrics emitter) потребляют Report
// read-only; движок не переиспользует его между запусками.
type Report struct {
	// Results — результаты шагов в детерминированном порядке выполнения.
	Results []*domain.StepResult `json:"results"`

	// Summary — сводка с вердиктом.
	Summary *domain.RunSummary `json:"summary"`

	// Degradations — записи деградаций (только degraded режим).
	Degradations []*domain.DegradationRecord `json:"degradations,omitempty"`
}

// Verdict возвращает итоговый вердикт запуска.
func (r *Report) Verdict() bool {
	return r.Summary != nil && r.Summary.Verdict
}

// summarize строит RunSummary из накопленных результатов.
//
// Счётчики считаются по результатам; tier-списки падений и вердикт
// доставляет движок — у них разная семантика в разных режимах.
func summarize(reg *registry.Registry, results []*domain.StepResult, duration time.Duration) *domain.RunSummary {
	s := &domain.RunSummary{
		Total:    len(results),
		Duration: duration,
	}

	for _, res := range results {
		switch {
		case res.Status == domain.StepStatusPass:
			s.Passed++
		case res.Status == domain.StepStatusSkip:
			s.Skipped++
		case res.Status.IsFailure():
			s.Failed++
			if step, ok := reg.Get(res.StepID); ok {
				switch step.Tier {
				case domain.TierKernel:
					s.KernelFailures = append(s.KernelFailures, res.StepID)
				case domain.TierGovernance:
					s.GovernanceFailures = append(s.GovernanceFailures, res.StepID)
				case domain.TierOptional:
					s.OptionalFailures = append(s.OptionalFailures, res.StepID)
				}
			}
		}
	}

	return s
}
