// Package engine содержит статические валидаторы графа шагов.
//
// Включает:
//   - validate.go — ValidateRegistry (дубликаты, висячие зависимости,
//     циклы) и ValidateWaves (распределение по волнам)
//
// Валидаторы — чистые функции над реестром: они не запускают
// выполнение и не паникуют, а возвращают список диагностик.
// Движки отказываются стартовать, пока список не пуст.
package engine
