// Package orchestrator содержит движки выполнения gate.
//
// Два движка:
//   - SequentialEngine — однопоточный проход по реестру в порядке
//     объявления с dependency-skip, skip-set, override и tier/mode
//     бухгалтерией (strict/degraded/kernel-only)
//   - WaveEngine — пошаговое выполнение волн; волна 0 (kernel)
//     выполняется отдельно и при падении прекращает запуск, поздние
//     волны выполняют свои шаги параллельно в ограниченном пуле
//
// Оба движка отказываются стартовать при непустой валидации
// (engine.ValidateRegistry / engine.ValidateWaves) и владеют
// собственной картой результатов на время одного запуска.
package orchestrator
