package engine

import (
	"errors"
	"testing"

	"github.com/shaiso/Gatekeeper/internal/domain"
	"github.com/shaiso/Gatekeeper/internal/registry"
)

// testStep создаёт валидный шаг с заданными ID и зависимостями.
func testStep(id string, deps ...string) domain.Step {
	return domain.Step{
		ID:         id,
		Name:       id,
		Tier:       domain.TierGovernance,
		Severity:   domain.SeverityWarning,
		Category:   domain.CategoryGovernance,
		Command:    "true",
		TimeoutSec: 60,
		DependsOn:  deps,
	}
}

// kernelStep создаёт валидный KERNEL-шаг.
func kernelStep(id string, deps ...string) domain.Step {
	s := testStep(id, deps...)
	s.Tier = domain.TierKernel
	s.Severity = domain.SeverityCritical
	return s
}

// countDiags считает диагностики с указанной базовой ошибкой.
func countDiags(diags []error, target error) int {
	n := 0
	for _, d := range diags {
		if errors.Is(d, target) {
			n++
		}
	}
	return n
}

func TestValidateRegistry_ValidGraph(t *testing.T) {
	r := registry.New([]domain.Step{
		kernelStep("build"),
		kernelStep("vet", "build"),
		testStep("lint", "build"),
		testStep("coverage", "vet", "lint"),
	})

	diags := ValidateRegistry(r)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %d: %v", len(diags), diags)
	}
}

func TestValidateRegistry_EmptyRegistry(t *testing.T) {
	// Пустой реестр — валидный DAG.
	diags := ValidateRegistry(registry.New(nil))
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics for empty registry, got %v", diags)
	}
}

func TestValidateRegistry_DuplicateID(t *testing.T) {
	r := registry.New([]domain.Step{
		testStep("lint"),
		testStep("lint"),
		testStep("lint"),
	})

	diags := ValidateRegistry(r)

	// Диагностика на каждый дубликат: два повторных вхождения.
	if got := countDiags(diags, ErrDuplicateStepID); got != 2 {
		t.Errorf("expected 2 duplicate diagnostics, got %d: %v", got, diags)
	}
	// Дубликат не должен порождать ложные висячие ссылки.
	if got := countDiags(diags, ErrMissingDependency); got != 0 {
		t.Errorf("expected no missing dependency diagnostics, got %d", got)
	}
}

func TestValidateRegistry_MissingDependency(t *testing.T) {
	r := registry.New([]domain.Step{
		testStep("lint", "build"),
	})

	diags := ValidateRegistry(r)
	if got := countDiags(diags, ErrMissingDependency); got != 1 {
		t.Fatalf("expected 1 missing dependency diagnostic, got %d: %v", got, diags)
	}

	// Диагностика должна нести контекст шага и поля.
	var verr *ValidationError
	if !errors.As(diags[0], &verr) {
		t.Fatalf("expected *ValidationError, got %T", diags[0])
	}
	if verr.StepID != "lint" {
		t.Errorf("expected step lint, got %s", verr.StepID)
	}
	if verr.Field != "depends_on" {
		t.Errorf("expected field depends_on, got %s", verr.Field)
	}
}

func TestValidateRegistry_SelfDependency(t *testing.T) {
	r := registry.New([]domain.Step{
		testStep("lint", "lint"),
	})

	diags := ValidateRegistry(r)
	if got := countDiags(diags, ErrSelfDependency); got != 1 {
		t.Errorf("expected 1 self dependency diagnostic, got %d: %v", got, diags)
	}
	// Самозависимость не должна дублироваться как висячая ссылка.
	if got := countDiags(diags, ErrMissingDependency); got != 0 {
		t.Errorf("expected no missing dependency diagnostics, got %d", got)
	}
}

func TestValidateRegistry_CyclicDependency(t *testing.T) {
	// a → b → c → a
	r := registry.New([]domain.Step{
		testStep("a", "c"),
		testStep("b", "a"),
		testStep("c", "b"),
	})

	diags := ValidateRegistry(r)
	if got := countDiags(diags, ErrCyclicDependency); got == 0 {
		t.Fatalf("expected cycle diagnostic, got none: %v", diags)
	}
}

func TestValidateRegistry_TwoNodeCycle(t *testing.T) {
	r := registry.New([]domain.Step{
		testStep("a", "b"),
		testStep("b", "a"),
		testStep("lone"),
	})

	diags := ValidateRegistry(r)
	if got := countDiags(diags, ErrCyclicDependency); got == 0 {
		t.Fatalf("expected cycle diagnostic, got none: %v", diags)
	}
}

func TestValidateRegistry_FieldViolations(t *testing.T) {
	bad := domain.Step{
		// Пустой ID, пустая команда, нулевой таймаут, неизвестный tier.
		Tier: domain.Tier("SUPREME"),
	}
	r := registry.New([]domain.Step{bad})

	diags := ValidateRegistry(r)

	for _, target := range []error{ErrEmptyStepID, ErrEmptyCommand, ErrInvalidTimeout, ErrInvalidTier} {
		if got := countDiags(diags, target); got != 1 {
			t.Errorf("expected 1 diagnostic for %v, got %d", target, got)
		}
	}
}

func TestValidateRegistry_NegativeTimeout(t *testing.T) {
	s := testStep("build")
	s.TimeoutSec = -5
	r := registry.New([]domain.Step{s})

	diags := ValidateRegistry(r)
	if got := countDiags(diags, ErrInvalidTimeout); got != 1 {
		t.Errorf("expected 1 timeout diagnostic, got %d: %v", got, diags)
	}
}

func TestValidateRegistry_CollectsAllDiagnostics(t *testing.T) {
	// Несколько независимых проблем в одном реестре: валидатор
	// не останавливается на первой.
	r := registry.New([]domain.Step{
		testStep("a", "ghost"),
		testStep("a"),
		testStep("b", "b"),
	})

	diags := ValidateRegistry(r)

	if got := countDiags(diags, ErrMissingDependency); got != 1 {
		t.Errorf("expected 1 missing dependency, got %d", got)
	}
	if got := countDiags(diags, ErrDuplicateStepID); got != 1 {
		t.Errorf("expected 1 duplicate, got %d", got)
	}
	if got := countDiags(diags, ErrSelfDependency); got != 1 {
		t.Errorf("expected 1 self dependency, got %d", got)
	}
}

func TestValidateWaves_ValidAssignment(t *testing.T) {
	r := registry.New([]domain.Step{
		kernelStep("build"),
		kernelStep("vet", "build"),
		testStep("lint", "build"),
		testStep("coverage", "vet"),
	})
	waves := registry.Waves{
		{"build"},
		{"vet", "lint"},
		{"coverage"},
	}

	diags := ValidateWaves(r, waves)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
}

func TestValidateWaves_StepNotAssigned(t *testing.T) {
	r := registry.New([]domain.Step{
		kernelStep("build"),
		testStep("lint"),
	})
	waves := registry.Waves{
		{"build"},
	}

	diags := ValidateWaves(r, waves)
	if got := countDiags(diags, ErrStepNotAssigned); got != 1 {
		t.Fatalf("expected 1 not-assigned diagnostic, got %d: %v", got, diags)
	}
}

func TestValidateWaves_StepAssignedTwice(t *testing.T) {
	r := registry.New([]domain.Step{
		kernelStep("build"),
		testStep("lint"),
	})
	waves := registry.Waves{
		{"build"},
		{"lint"},
		{"lint"},
	}

	diags := ValidateWaves(r, waves)
	if got := countDiags(diags, ErrStepAssignedTwice); got != 1 {
		t.Errorf("expected 1 assigned-twice diagnostic, got %d: %v", got, diags)
	}
}

func TestValidateWaves_UnknownStep(t *testing.T) {
	r := registry.New([]domain.Step{
		kernelStep("build"),
	})
	waves := registry.Waves{
		{"build"},
		{"ghost"},
	}

	diags := ValidateWaves(r, waves)
	if got := countDiags(diags, ErrUnknownWaveStep); got != 1 {
		t.Errorf("expected 1 unknown-step diagnostic, got %d: %v", got, diags)
	}
}

func TestValidateWaves_KernelWaveViolation(t *testing.T) {
	r := registry.New([]domain.Step{
		kernelStep("build"),
		testStep("lint"),
	})
	// GOVERNANCE-шаг в волне 0.
	waves := registry.Waves{
		{"build", "lint"},
	}

	diags := ValidateWaves(r, waves)
	if got := countDiags(diags, ErrKernelWaveViolation); got != 1 {
		t.Fatalf("expected 1 kernel-wave diagnostic, got %d: %v", got, diags)
	}
}

func TestValidateWaves_SameWaveDependency(t *testing.T) {
	// Зависимость в той же волне — нарушение строгого порядка,
	// хотя граф ацикличен.
	r := registry.New([]domain.Step{
		kernelStep("build"),
		testStep("lint", "helper"),
		testStep("helper"),
	})
	waves := registry.Waves{
		{"build"},
		{"lint", "helper"},
	}

	diags := ValidateWaves(r, waves)
	if got := countDiags(diags, ErrWaveOrderViolation); got != 1 {
		t.Fatalf("expected 1 order violation, got %d: %v", got, diags)
	}
}

func TestValidateWaves_DependencyInLaterWave(t *testing.T) {
	r := registry.New([]domain.Step{
		kernelStep("build"),
		testStep("lint", "helper"),
		testStep("helper"),
	})
	waves := registry.Waves{
		{"build"},
		{"lint"},
		{"helper"},
	}

	diags := ValidateWaves(r, waves)
	if got := countDiags(diags, ErrWaveOrderViolation); got != 1 {
		t.Fatalf("expected 1 order violation, got %d: %v", got, diags)
	}

	var verr *ValidationError
	if !errors.As(diags[0], &verr) {
		t.Fatalf("expected *ValidationError, got %T", diags[0])
	}
	if verr.StepID != "lint" {
		t.Errorf("expected diagnostic for lint, got %s", verr.StepID)
	}
}
