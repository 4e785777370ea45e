package registry

import "github.com/shaiso/Gatekeeper/internal/domain"

// BuildPlan строит read-only план реестра.
//
// План детерминирован: порядок шагов — порядок объявления, счётчики
// считаются за один проход. Повторные вызовы для одного реестра дают
// идентичный результат.
func BuildPlan(r *Registry) *domain.Plan {
	steps := r.Steps()

	plan := &domain.Plan{
		Steps: make([]domain.PlanStep, 0, len(steps)),
	}

	for _, step := range steps {
		plan.Steps = append(plan.Steps, domain.PlanStep{
			ID:          step.ID,
			Name:        step.Name,
			Tier:        step.Tier,
			Severity:    step.Severity,
			Category:    step.Category,
			Description: step.Description,
			Tags:        step.Tags,
			DependsOn:   step.DependsOn,
		})

		switch step.Tier {
		case domain.TierKernel:
			plan.Summary.ByTier.Kernel++
		case domain.TierGovernance:
			plan.Summary.ByTier.Governance++
		case domain.TierOptional:
			plan.Summary.ByTier.Optional++
		}
	}

	plan.Summary.Total = len(steps)
	return plan
}
