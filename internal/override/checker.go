// Package override — внешний коллаборатор, способный пометить шаг
// принудительно пропускаемым.
//
// Движок опрашивает Checker один раз на шаг перед выполнением.
// Любая ошибка или недоступность трактуется как "override не активен":
// коллаборатор не может заблокировать выполнение своим отказом.
// Checker передаётся движку явно через конструктор, а не через
// глобальное состояние.
package override

import "context"

// Checker — интерфейс проверки активного override для шага.
type Checker interface {
	// IsOverrideActive возвращает true, если шаг помечен пропускаемым.
	IsOverrideActive(ctx context.Context, stepID string) (bool, error)
}

// CheckerFunc — адаптер функции к интерфейсу Checker.
type CheckerFunc func(ctx context.Context, stepID string) (bool, error)

// IsOverrideActive реализует Checker.
func (f CheckerFunc) IsOverrideActive(ctx context.Context, stepID string) (bool, error) {
	return f(ctx, stepID)
}

// Nop — Checker, у которого нет активных override.
type Nop struct{}

// IsOverrideActive всегда возвращает false.
func (Nop) IsOverrideActive(ctx context.Context, stepID string) (bool, error) {
	return false, nil
}
