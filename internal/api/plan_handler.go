package api

import (
	"net/http"

	"github.com/shaiso/Gatekeeper/internal/registry"
)

// ListSteps возвращает все шаги реестра в порядке объявления.
// GET /api/v1/steps
func (h *Handler) ListSteps(w http.ResponseWriter, r *http.Request) {
	steps := h.registry.Steps()

	result := make([]StepResponse, len(steps))
	for i, step := range steps {
		result[i] = StepFromDomain(step)
	}

	List(w, result, len(result))
}

// GetPlan возвращает детерминированный план реестра без выполнения.
// GET /api/v1/plan
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	Success(w, registry.BuildPlan(h.registry))
}
