package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shaiso/Gatekeeper/internal/domain"
	"github.com/shaiso/Gatekeeper/internal/registry"
)

// fakeExecutor возвращает заранее заданные исходы по ID шага
// и записывает порядок выполнения. Не указанный шаг проходит.
type fakeExecutor struct {
	fail    map[string]bool
	timeout map[string]bool
	order   []string
}

func (f *fakeExecutor) Execute(ctx context.Context, step *domain.Step) *domain.StepResult {
	f.order = append(f.order, step.ID)
	now := time.Now()

	res := &domain.StepResult{
		StepID:     step.ID,
		Status:     domain.StepStatusPass,
		StartedAt:  now,
		FinishedAt: now,
	}

	if f.timeout[step.ID] {
		res.Status = domain.StepStatusTimeout
		res.Reason = domain.ReasonTimeout
		res.ExitCode = -1
		return res
	}
	if f.fail[step.ID] {
		res.Status = domain.StepStatusFail
		res.Reason = domain.ReasonNonzeroExit
		res.ExitCode = 1
	}
	return res
}

// memLedger накапливает записи деградаций в памяти.
type memLedger struct {
	records []*domain.DegradationRecord
	err     error
}

func (l *memLedger) Record(ctx context.Context, rec *domain.DegradationRecord) error {
	if l.err != nil {
		return l.err
	}
	l.records = append(l.records, rec)
	return nil
}

// fakeOverride помечает перечисленные шаги пропускаемыми.
type fakeOverride struct {
	active map[string]bool
	err    error
}

func (o *fakeOverride) IsOverrideActive(ctx context.Context, stepID string) (bool, error) {
	if o.err != nil {
		return false, o.err
	}
	return o.active[stepID], nil
}

func seqStep(id string, tier domain.Tier, deps ...string) domain.Step {
	return domain.Step{
		ID:         id,
		Name:       id,
		Tier:       tier,
		Severity:   domain.SeverityWarning,
		Category:   domain.CategoryCorrectness,
		Command:    "true",
		TimeoutSec: 60,
		DependsOn:  deps,
	}
}

func gateRegistry() *registry.Registry {
	return registry.New([]domain.Step{
		seqStep("build", domain.TierKernel),
		seqStep("vet", domain.TierKernel, "build"),
		seqStep("lint", domain.TierGovernance, "build"),
		seqStep("coverage", domain.TierOptional, "vet"),
	})
}

func resultByID(rep *Report, id string) *domain.StepResult {
	for _, res := range rep.Results {
		if res.StepID == id {
			return res
		}
	}
	return nil
}

func TestSequential_AllPass(t *testing.T) {
	exec := &fakeExecutor{}
	eng := NewSequential(SequentialConfig{
		Registry: gateRegistry(),
		Executor: exec,
	})

	rep, err := eng.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !rep.Verdict() {
		t.Error("expected verdict PASS")
	}
	if rep.Summary.Passed != 4 || rep.Summary.Failed != 0 || rep.Summary.Skipped != 0 {
		t.Errorf("unexpected summary: %+v", rep.Summary)
	}

	// Порядок выполнения — порядок объявления реестра.
	want := []string{"build", "vet", "lint", "coverage"}
	if len(exec.order) != len(want) {
		t.Fatalf("expected %d executions, got %d", len(want), len(exec.order))
	}
	for i, id := range want {
		if exec.order[i] != id {
			t.Errorf("position %d: expected %s, got %s", i, id, exec.order[i])
		}
	}
}

func TestSequential_StrictOptionalFailureBlocks(t *testing.T) {
	// strict: падение даже OPTIONAL-шага валит вердикт.
	exec := &fakeExecutor{fail: map[string]bool{"coverage": true}}
	eng := NewSequential(SequentialConfig{
		Registry: gateRegistry(),
		Executor: exec,
	})

	rep, err := eng.Run(context.Background(), RunOptions{Mode: domain.ModeStrict})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rep.Verdict() {
		t.Error("expected verdict FAIL")
	}
	if len(rep.Summary.OptionalFailures) != 1 || rep.Summary.OptionalFailures[0] != "coverage" {
		t.Errorf("unexpected optional failures: %v", rep.Summary.OptionalFailures)
	}
}

func TestSequential_NoEarlyAbortOnKernelFailure(t *testing.T) {
	// Падение KERNEL-шага не останавливает цикл: выполняются все шаги,
	// кроме структурно зависящих от упавшего.
	exec := &fakeExecutor{fail: map[string]bool{"vet": true}}
	eng := NewSequential(SequentialConfig{
		Registry: gateRegistry(),
		Executor: exec,
	})

	rep, err := eng.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rep.Verdict() {
		t.Error("expected verdict FAIL")
	}

	// lint не зависит от vet и должен был выполниться.
	lint := resultByID(rep, "lint")
	if lint == nil || lint.Status != domain.StepStatusPass {
		t.Errorf("expected lint to run and pass, got %+v", lint)
	}

	// coverage зависит от vet и должен быть пропущен.
	cov := resultByID(rep, "coverage")
	if cov == nil || cov.Status != domain.StepStatusSkip {
		t.Fatalf("expected coverage skipped, got %+v", cov)
	}
	if cov.Reason != domain.ReasonDependencyFailed || cov.Detail != "vet" {
		t.Errorf("unexpected skip reason: %s detail %s", cov.Reason, cov.Detail)
	}
	if cov.ReasonTag() != "dependency_failed:vet" {
		t.Errorf("unexpected reason tag: %s", cov.ReasonTag())
	}
}

func TestSequential_TransitiveDependencySkip(t *testing.T) {
	// a → b → c: падение a пропускает b, SKIP b пропускает c.
	r := registry.New([]domain.Step{
		seqStep("a", domain.TierGovernance),
		seqStep("b", domain.TierGovernance, "a"),
		seqStep("c", domain.TierGovernance, "b"),
	})
	exec := &fakeExecutor{fail: map[string]bool{"a": true}}
	eng := NewSequential(SequentialConfig{Registry: r, Executor: exec})

	rep, err := eng.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b := resultByID(rep, "b")
	if b.Status != domain.StepStatusSkip || b.ReasonTag() != "dependency_failed:a" {
		t.Errorf("unexpected b result: %+v", b)
	}
	c := resultByID(rep, "c")
	if c.Status != domain.StepStatusSkip || c.ReasonTag() != "dependency_failed:b" {
		t.Errorf("unexpected c result: %+v", c)
	}

	// Выполнен только a.
	if len(exec.order) != 1 || exec.order[0] != "a" {
		t.Errorf("expected only a executed, got %v", exec.order)
	}
}

func TestSequential_DegradedGovernanceFailure(t *testing.T) {
	exec := &fakeExecutor{fail: map[string]bool{"lint": true}}
	led := &memLedger{}
	eng := NewSequential(SequentialConfig{
		Registry: gateRegistry(),
		Executor: exec,
		Ledger:   led,
	})

	rep, err := eng.Run(context.Background(), RunOptions{Mode: domain.ModeDegraded})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Не-KERNEL падение в degraded режиме не валит вердикт.
	if !rep.Verdict() {
		t.Error("expected verdict PASS in degraded mode")
	}

	if len(rep.Degradations) != 1 {
		t.Fatalf("expected 1 degradation, got %d", len(rep.Degradations))
	}
	rec := rep.Degradations[0]
	if rec.StepID != "lint" || rec.Tier != domain.TierGovernance {
		t.Errorf("unexpected degradation record: %+v", rec)
	}

	// Запись ушла и во внешний ledger.
	if len(led.records) != 1 || led.records[0].StepID != "lint" {
		t.Errorf("unexpected ledger records: %+v", led.records)
	}

	// Падение при этом остаётся в счётчиках и tier-списках.
	if rep.Summary.Failed != 1 {
		t.Errorf("expected 1 failed, got %d", rep.Summary.Failed)
	}
	if len(rep.Summary.GovernanceFailures) != 1 {
		t.Errorf("expected governance failure recorded, got %v", rep.Summary.GovernanceFailures)
	}
}

func TestSequential_DegradedKernelFailureBlocks(t *testing.T) {
	exec := &fakeExecutor{fail: map[string]bool{"build": true}}
	led := &memLedger{}
	eng := NewSequential(SequentialConfig{
		Registry: gateRegistry(),
		Executor: exec,
		Ledger:   led,
	})

	rep, err := eng.Run(context.Background(), RunOptions{Mode: domain.ModeDegraded})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// KERNEL-падение блокирует вердикт и в degraded режиме.
	if rep.Verdict() {
		t.Error("expected verdict FAIL")
	}
	// KERNEL-падения не деградируют.
	if len(rep.Degradations) != 0 {
		t.Errorf("expected no degradations for kernel failure, got %d", len(rep.Degradations))
	}
	if len(led.records) != 0 {
		t.Errorf("expected empty ledger, got %d records", len(led.records))
	}
}

func TestSequential_DegradedTimeoutDegrades(t *testing.T) {
	// TIMEOUT не-KERNEL шага — тоже деградация.
	exec := &fakeExecutor{timeout: map[string]bool{"lint": true}}
	led := &memLedger{}
	eng := NewSequential(SequentialConfig{
		Registry: gateRegistry(),
		Executor: exec,
		Ledger:   led,
	})

	rep, err := eng.Run(context.Background(), RunOptions{Mode: domain.ModeDegraded})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !rep.Verdict() {
		t.Error("expected verdict PASS")
	}
	if len(led.records) != 1 {
		t.Fatalf("expected 1 ledger record, got %d", len(led.records))
	}
	if led.records[0].Status != domain.StepStatusTimeout {
		t.Errorf("expected TIMEOUT status in record, got %s", led.records[0].Status)
	}
}

func TestSequential_LedgerFailureDoesNotBlock(t *testing.T) {
	// Отказ ledger не влияет ни на вердикт, ни на ход запуска.
	exec := &fakeExecutor{fail: map[string]bool{"lint": true}}
	led := &memLedger{err: errors.New("disk full")}
	eng := NewSequential(SequentialConfig{
		Registry: gateRegistry(),
		Executor: exec,
		Ledger:   led,
	})

	rep, err := eng.Run(context.Background(), RunOptions{Mode: domain.ModeDegraded})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rep.Verdict() {
		t.Error("expected verdict PASS despite ledger failure")
	}
	if len(rep.Degradations) != 1 {
		t.Errorf("expected degradation in report, got %d", len(rep.Degradations))
	}
}

func TestSequential_KernelOnlyPrefilter(t *testing.T) {
	exec := &fakeExecutor{}
	eng := NewSequential(SequentialConfig{
		Registry: gateRegistry(),
		Executor: exec,
	})

	rep, err := eng.Run(context.Background(), RunOptions{Mode: domain.ModeKernelOnly})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Выполняются только KERNEL-шаги, в порядке объявления.
	want := []string{"build", "vet"}
	if len(exec.order) != len(want) {
		t.Fatalf("expected %d executions, got %d: %v", len(want), len(exec.order), exec.order)
	}
	for i, id := range want {
		if exec.order[i] != id {
			t.Errorf("position %d: expected %s, got %s", i, id, exec.order[i])
		}
	}
	if rep.Summary.Total != 2 {
		t.Errorf("expected total 2, got %d", rep.Summary.Total)
	}
}

func TestSequential_SkipSet(t *testing.T) {
	exec := &fakeExecutor{}
	eng := NewSequential(SequentialConfig{
		Registry: gateRegistry(),
		Executor: exec,
	})

	rep, err := eng.Run(context.Background(), RunOptions{
		Skip: map[string]struct{}{"vet": {}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vet := resultByID(rep, "vet")
	if vet.Status != domain.StepStatusSkip || vet.Reason != domain.ReasonSkippedByUser {
		t.Errorf("unexpected vet result: %+v", vet)
	}

	// SKIP зависимости — не PASS: coverage отсекается транзитивно.
	cov := resultByID(rep, "coverage")
	if cov.Status != domain.StepStatusSkip || cov.ReasonTag() != "dependency_failed:vet" {
		t.Errorf("unexpected coverage result: %+v", cov)
	}

	// SKIP не считается падением: вердикт остаётся PASS.
	if !rep.Verdict() {
		t.Error("expected verdict PASS")
	}
	if rep.Summary.Skipped != 2 {
		t.Errorf("expected 2 skipped, got %d", rep.Summary.Skipped)
	}
}

func TestSequential_OverrideActive(t *testing.T) {
	exec := &fakeExecutor{}
	eng := NewSequential(SequentialConfig{
		Registry: gateRegistry(),
		Executor: exec,
		Override: &fakeOverride{active: map[string]bool{"lint": true}},
	})

	rep, err := eng.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lint := resultByID(rep, "lint")
	if lint.Status != domain.StepStatusSkip || lint.Reason != domain.ReasonOverrideActive {
		t.Errorf("unexpected lint result: %+v", lint)
	}
	for _, id := range exec.order {
		if id == "lint" {
			t.Error("lint must not be executed when override is active")
		}
	}
}

func TestSequential_OverrideErrorTreatedInactive(t *testing.T) {
	exec := &fakeExecutor{}
	eng := NewSequential(SequentialConfig{
		Registry: gateRegistry(),
		Executor: exec,
		Override: &fakeOverride{err: errors.New("override service down")},
	})

	rep, err := eng.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Отказ коллаборатора не блокирует выполнение.
	if len(exec.order) != 4 {
		t.Errorf("expected all 4 steps executed, got %v", exec.order)
	}
	if !rep.Verdict() {
		t.Error("expected verdict PASS")
	}
}

func TestSequential_InvalidMode(t *testing.T) {
	eng := NewSequential(SequentialConfig{
		Registry: gateRegistry(),
		Executor: &fakeExecutor{},
	})

	_, err := eng.Run(context.Background(), RunOptions{Mode: domain.Mode("turbo")})
	if !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
}

func TestSequential_InvalidRegistry(t *testing.T) {
	// Цикл в реестре — структурная ошибка, запуск не стартует.
	r := registry.New([]domain.Step{
		seqStep("a", domain.TierKernel, "b"),
		seqStep("b", domain.TierKernel, "a"),
	})
	exec := &fakeExecutor{}
	eng := NewSequential(SequentialConfig{Registry: r, Executor: exec})

	_, err := eng.Run(context.Background(), RunOptions{})
	if !errors.Is(err, ErrInvalidRegistry) {
		t.Fatalf("expected ErrInvalidRegistry, got %v", err)
	}
	if len(exec.order) != 0 {
		t.Errorf("no step must execute on invalid registry, got %v", exec.order)
	}
}
