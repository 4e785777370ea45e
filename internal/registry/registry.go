// Package registry содержит статический реестр шагов gate
// и статическое распределение шагов по волнам.
//
// Реестр — это read-only вход движков: упорядоченный список
// неизменяемых шагов плюс карта для поиска по ID. Порядок объявления
// считается валидным топологическим порядком (это проверяет
// engine.ValidateRegistry, сам реестр пересортировку не делает).
package registry

import "github.com/shaiso/Gatekeeper/internal/domain"

// Registry — упорядоченный реестр шагов.
type Registry struct {
	steps []domain.Step
	byID  map[string]*domain.Step
}

// New создаёт реестр из списка шагов в порядке объявления.
//
// Дубликаты ID не являются ошибкой конструирования — их находит
// engine.ValidateRegistry. При дубликате в byID остаётся первое
// вхождение.
func New(steps []domain.Step) *Registry {
	r := &Registry{
		steps: make([]domain.Step, len(steps)),
		byID:  make(map[string]*domain.Step, len(steps)),
	}
	copy(r.steps, steps)

	for i := range r.steps {
		step := &r.steps[i]
		if _, exists := r.byID[step.ID]; !exists {
			r.byID[step.ID] = step
		}
	}

	return r
}

// Steps возвращает шаги в порядке объявления.
// Вызывающая сторона не должна модифицировать слайс.
func (r *Registry) Steps() []domain.Step {
	return r.steps
}

// Get возвращает шаг по ID.
func (r *Registry) Get(id string) (*domain.Step, bool) {
	step, ok := r.byID[id]
	return step, ok
}

// Has проверяет наличие шага с указанным ID.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// Len возвращает количество шагов.
func (r *Registry) Len() int {
	return len(r.steps)
}

// KernelOnly возвращает новый реестр, суженный до KERNEL-шагов.
// Порядок объявления сохраняется. Используется режимом kernel-only.
func (r *Registry) KernelOnly() *Registry {
	kernel := make([]domain.Step, 0, len(r.steps))
	for _, step := range r.steps {
		if step.Tier == domain.TierKernel {
			kernel = append(kernel, step)
		}
	}
	return New(kernel)
}
