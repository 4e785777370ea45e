// Package executor выполняет команду одного шага в изолированном
// дочернем процессе.
//
// Каждый шаг запускается в собственной process group, чтобы сигналы
// достигали всего поддерева процессов, а не только верхнего shell.
// По таймауту убивается вся группа. Все исходы — включая ошибку
// запуска — представлены в возвращаемом StepResult; Execute никогда
// не возвращает ошибку вызывающей стороне.
//
// Платформоспецифичное убийство группы изолировано в proc_unix.go
// и proc_windows.go.
package executor
