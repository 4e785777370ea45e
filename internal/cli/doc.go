// Package cli реализует инструмент командной строки Gatekeeper.
//
// # Обзор
//
// CLI работает в двух режимах:
//   - Локальный: gate выполняется прямо в процессе CLI (run, plan,
//     validate). Для CI достаточно одного бинарника, API не нужен.
//   - Remote: взаимодействие с Gatekeeper API через HTTP (runs, steps,
//     schedule).
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Gatekeeper API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	runs, err := client.ListRuns(cli.ListRunsOpts{})
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: gatekeeper runs list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - run: локальное выполнение gate, код выхода по вердикту
//   - plan, validate: локальный план и структурная валидация
//   - runs: list, start, show, results (через API)
//   - steps: list, plan (через API)
//   - schedule: list, create, show, update, delete, enable, disable
//
// Каждая группа создаётся через фабричную функцию (NewRunsCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
