package registry

import (
	"testing"

	"github.com/shaiso/Gatekeeper/internal/domain"
)

func regStep(id string, tier domain.Tier) domain.Step {
	return domain.Step{
		ID:         id,
		Name:       id,
		Tier:       tier,
		Severity:   domain.SeverityWarning,
		Category:   domain.CategoryCorrectness,
		Command:    "true",
		TimeoutSec: 60,
	}
}

func TestNew_PreservesDeclarationOrder(t *testing.T) {
	r := New([]domain.Step{
		regStep("c", domain.TierKernel),
		regStep("a", domain.TierGovernance),
		regStep("b", domain.TierOptional),
	})

	want := []string{"c", "a", "b"}
	steps := r.Steps()
	if len(steps) != len(want) {
		t.Fatalf("expected %d steps, got %d", len(want), len(steps))
	}
	for i, id := range want {
		if steps[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, steps[i].ID)
		}
	}
}

func TestNew_DuplicateKeepsFirst(t *testing.T) {
	// Дубликаты — не ошибка конструирования; в byID остаётся
	// первое вхождение.
	first := regStep("lint", domain.TierKernel)
	second := regStep("lint", domain.TierOptional)

	r := New([]domain.Step{first, second})

	if r.Len() != 2 {
		t.Errorf("expected len 2, got %d", r.Len())
	}
	got, ok := r.Get("lint")
	if !ok {
		t.Fatal("expected lint to be found")
	}
	if got.Tier != domain.TierKernel {
		t.Errorf("expected first occurrence (KERNEL), got %s", got.Tier)
	}
}

func TestRegistry_GetHas(t *testing.T) {
	r := New([]domain.Step{regStep("build", domain.TierKernel)})

	if !r.Has("build") {
		t.Error("expected Has(build) = true")
	}
	if r.Has("ghost") {
		t.Error("expected Has(ghost) = false")
	}
	if _, ok := r.Get("ghost"); ok {
		t.Error("expected Get(ghost) to miss")
	}
}

func TestRegistry_IsolatedFromCallerSlice(t *testing.T) {
	src := []domain.Step{regStep("build", domain.TierKernel)}
	r := New(src)

	// Мутация исходного слайса не должна трогать реестр.
	src[0].ID = "mutated"

	if !r.Has("build") {
		t.Error("registry must copy the step slice")
	}
}

func TestKernelOnly(t *testing.T) {
	r := New([]domain.Step{
		regStep("build", domain.TierKernel),
		regStep("lint", domain.TierGovernance),
		regStep("vet", domain.TierKernel),
		regStep("coverage", domain.TierOptional),
	})

	k := r.KernelOnly()

	want := []string{"build", "vet"}
	if k.Len() != len(want) {
		t.Fatalf("expected %d kernel steps, got %d", len(want), k.Len())
	}
	for i, id := range want {
		if k.Steps()[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, k.Steps()[i].ID)
		}
	}

	// Исходный реестр не изменился.
	if r.Len() != 4 {
		t.Errorf("source registry mutated: len %d", r.Len())
	}
}

func TestBuildPlan(t *testing.T) {
	r := New([]domain.Step{
		regStep("build", domain.TierKernel),
		regStep("lint", domain.TierGovernance),
		regStep("coverage", domain.TierOptional),
		regStep("bench", domain.TierOptional),
	})

	plan := BuildPlan(r)

	if plan.Summary.Total != 4 {
		t.Errorf("expected total 4, got %d", plan.Summary.Total)
	}
	if plan.Summary.ByTier.Kernel != 1 ||
		plan.Summary.ByTier.Governance != 1 ||
		plan.Summary.ByTier.Optional != 2 {
		t.Errorf("unexpected tier counters: %+v", plan.Summary.ByTier)
	}

	// Порядок шагов плана — порядок объявления.
	if plan.Steps[0].ID != "build" || plan.Steps[3].ID != "bench" {
		t.Errorf("unexpected plan order: %s .. %s", plan.Steps[0].ID, plan.Steps[3].ID)
	}
}

func TestBuildPlan_Deterministic(t *testing.T) {
	r := New(DefaultSteps())

	a := BuildPlan(r)
	b := BuildPlan(r)

	if len(a.Steps) != len(b.Steps) {
		t.Fatalf("plan lengths differ: %d vs %d", len(a.Steps), len(b.Steps))
	}
	for i := range a.Steps {
		if a.Steps[i].ID != b.Steps[i].ID {
			t.Errorf("position %d differs: %s vs %s", i, a.Steps[i].ID, b.Steps[i].ID)
		}
	}
}

func TestWaves_WaveOf(t *testing.T) {
	w := Waves{
		{"build"},
		{"vet", "lint"},
	}

	if got := w.WaveOf("build"); got != 0 {
		t.Errorf("expected wave 0 for build, got %d", got)
	}
	if got := w.WaveOf("lint"); got != 1 {
		t.Errorf("expected wave 1 for lint, got %d", got)
	}
	if got := w.WaveOf("ghost"); got != -1 {
		t.Errorf("expected -1 for unknown step, got %d", got)
	}
}

func TestWaves_Total(t *testing.T) {
	w := Waves{
		{"a"},
		{"b", "c"},
		{},
	}
	if got := w.Total(); got != 3 {
		t.Errorf("expected total 3, got %d", got)
	}
}

func TestDefaultConfiguration_Consistent(t *testing.T) {
	// Каждый встроенный шаг распределён во встроенных волнах,
	// и наоборот.
	r := New(DefaultSteps())
	w := DefaultWaves()

	if w.Total() != r.Len() {
		t.Fatalf("wave assignments (%d) != registry size (%d)", w.Total(), r.Len())
	}
	for _, step := range r.Steps() {
		if w.WaveOf(step.ID) == -1 {
			t.Errorf("step %s not assigned to any wave", step.ID)
		}
	}
	for _, wave := range w {
		for _, id := range wave {
			if !r.Has(id) {
				t.Errorf("wave references unknown step %s", id)
			}
		}
	}
}
