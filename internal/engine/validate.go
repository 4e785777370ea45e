package engine

import (
	"fmt"

	"github.com/shaiso/Gatekeeper/internal/domain"
	"github.com/shaiso/Gatekeeper/internal/registry"
)

// ValidateRegistry выполняет полную статическую валидацию реестра.
//
// Проверяет:
//   - инварианты полей шага (непустой ID и команда, таймаут > 0, tier)
//   - уникальность ID (диагностика на каждый дубликат)
//   - разрешимость зависимостей (диагностика на каждую висячую ссылку)
//   - отсутствие циклов (DFS с recursion stack)
//
// Никогда не паникует; возвращает пустой список iff граф — валидный DAG
// с разрешимыми ссылками. Решение о фатальности принимает вызывающая
// сторона (движки отказываются стартовать при непустом списке).
func ValidateRegistry(r *registry.Registry) []error {
	var diags []error

	steps := r.Steps()
	seen := make(map[string]bool, len(steps))

	for i := range steps {
		step := &steps[i]

		diags = append(diags, validateStepFields(step)...)

		if step.ID == "" {
			continue
		}
		if seen[step.ID] {
			diags = append(diags, NewValidationError(step.ID, "id",
				fmt.Sprintf("duplicate step id: %s", step.ID), ErrDuplicateStepID))
			continue
		}
		seen[step.ID] = true
	}

	// Зависимости проверяем по полному множеству ID,
	// чтобы один дубликат не порождал ложные висячие ссылки.
	for i := range steps {
		step := &steps[i]

		for _, dep := range step.DependsOn {
			if dep == step.ID {
				diags = append(diags, NewValidationError(step.ID, "depends_on",
					"step depends on itself", ErrSelfDependency))
				continue
			}
			if !seen[dep] {
				diags = append(diags, NewValidationError(step.ID, "depends_on",
					fmt.Sprintf("depends on unknown step: %s", dep), ErrMissingDependency))
			}
		}
	}

	diags = append(diags, detectCycles(steps, seen)...)

	return diags
}

// validateStepFields проверяет инварианты данных одного шага.
func validateStepFields(step *domain.Step) []error {
	var diags []error

	if step.ID == "" {
		diags = append(diags, NewValidationError("", "id",
			"step has empty id", ErrEmptyStepID))
	}
	if step.Command == "" {
		diags = append(diags, NewValidationError(step.ID, "command",
			fmt.Sprintf("step %s has empty command", step.ID), ErrEmptyCommand))
	}
	if step.TimeoutSec <= 0 {
		diags = append(diags, NewValidationError(step.ID, "timeout_sec",
			fmt.Sprintf("step %s has non-positive timeout: %d", step.ID, step.TimeoutSec),
			ErrInvalidTimeout))
	}
	if !step.Tier.IsValid() {
		diags = append(diags, NewValidationError(step.ID, "tier",
			fmt.Sprintf("step %s has unknown tier: %s", step.ID, step.Tier),
			ErrInvalidTier))
	}

	return diags
}

// Состояния узла при обходе в глубину.
const (
	colorWhite = iota // не посещён
	colorGray         // на recursion stack
	colorBlack        // обход завершён
)

// detectCycles ищет циклы обходом в глубину с recursion stack.
//
// Узел, встреченный повторно пока он ещё на стеке, означает цикл;
// диагностика именует такой узел. Висячие зависимости игнорируются —
// о них уже отчитались выше.
func detectCycles(steps []domain.Step, known map[string]bool) []error {
	deps := make(map[string][]string, len(steps))
	for i := range steps {
		deps[steps[i].ID] = steps[i].DependsOn
	}

	color := make(map[string]int, len(steps))
	var diags []error

	var visit func(id string)
	visit = func(id string) {
		color[id] = colorGray

		for _, dep := range deps[id] {
			if !known[dep] {
				continue
			}
			switch color[dep] {
			case colorWhite:
				visit(dep)
			case colorGray:
				diags = append(diags, NewValidationError(id, "depends_on",
					fmt.Sprintf("dependency cycle involving steps %s and %s", id, dep),
					ErrCyclicDependency))
			}
		}

		color[id] = colorBlack
	}

	// Обходим в порядке объявления, чтобы диагностики были детерминированы.
	for i := range steps {
		id := steps[i].ID
		if known[id] && color[id] == colorWhite {
			visit(id)
		}
	}

	return diags
}

// ValidateWaves проверяет распределение шагов реестра по волнам.
//
// Проверяет:
//   - каждый шаг распределён ровно один раз (диагностики "не распределён"
//     и "распределён дважды")
//   - каждый ID в волнах существует в реестре
//   - волна 0 содержит только KERNEL-шаги
//   - для каждой зависимости D шага S: wave(D) < wave(S) строго;
//     нарушение именует шаг, зависимость и оба индекса волн
//
// Проверка независима от поиска циклов: ацикличный граф может иметь
// невалидное распределение (зависимость в более поздней волне).
func ValidateWaves(r *registry.Registry, waves registry.Waves) []error {
	var diags []error

	waveOf := make(map[string]int, r.Len())

	for waveIdx, wave := range waves {
		for _, id := range wave {
			if !r.Has(id) {
				diags = append(diags, NewValidationError(id, "waves",
					fmt.Sprintf("wave %d references unknown step: %s", waveIdx, id),
					ErrUnknownWaveStep))
				continue
			}

			if prev, assigned := waveOf[id]; assigned {
				diags = append(diags, NewValidationError(id, "waves",
					fmt.Sprintf("step %s assigned to waves %d and %d", id, prev, waveIdx),
					ErrStepAssignedTwice))
				continue
			}
			waveOf[id] = waveIdx

			if waveIdx == 0 {
				if step, ok := r.Get(id); ok && step.Tier != domain.TierKernel {
					diags = append(diags, NewValidationError(id, "waves",
						fmt.Sprintf("wave 0 contains non-kernel step %s (tier %s)", id, step.Tier),
						ErrKernelWaveViolation))
				}
			}
		}
	}

	for _, step := range r.Steps() {
		stepWave, assigned := waveOf[step.ID]
		if !assigned {
			diags = append(diags, NewValidationError(step.ID, "waves",
				fmt.Sprintf("step %s not assigned to any wave", step.ID),
				ErrStepNotAssigned))
			continue
		}

		for _, dep := range step.DependsOn {
			depWave, depAssigned := waveOf[dep]
			if !depAssigned {
				// Либо зависимость не распределена (отдельная диагностика),
				// либо висячая ссылка — это ловит ValidateRegistry.
				continue
			}
			if depWave >= stepWave {
				diags = append(diags, NewValidationError(step.ID, "waves",
					fmt.Sprintf("step %s in wave %d depends on %s in wave %d",
						step.ID, stepWave, dep, depWave),
					ErrWaveOrderViolation))
			}
		}
	}

	return diags
}
