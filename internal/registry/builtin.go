package registry

import "github.com/shaiso/Gatekeeper/internal/domain"

// DefaultSteps возвращает встроенный набор проверок для Go-репозитория.
//
// Порядок объявления — валидный топологический порядок зависимостей.
// Набор служит отправной точкой; проекты подменяют его собственным
// реестром через конфигурацию вызывающей стороны.
func DefaultSteps() []domain.Step {
	return []domain.Step{
		{
			ID:          "build",
			Name:        "Build",
			Tier:        domain.TierKernel,
			Severity:    domain.SeverityCritical,
			Category:    domain.CategoryCorrectness,
			Command:     "go build ./...",
			Description: "Компиляция всех пакетов",
			TimeoutSec:  300,
			Tags:        []string{"go", "compile"},
		},
		{
			ID:          "vet",
			Name:        "Go Vet",
			Tier:        domain.TierKernel,
			Severity:    domain.SeverityCritical,
			Category:    domain.CategoryCorrectness,
			Command:     "go vet ./...",
			Description: "Статический анализ go vet",
			TimeoutSec:  120,
			DependsOn:   []string{"build"},
			Tags:        []string{"go", "static-analysis"},
		},
		{
			ID:          "unit-tests",
			Name:        "Unit Tests",
			Tier:        domain.TierKernel,
			Severity:    domain.SeverityCritical,
			Category:    domain.CategoryCorrectness,
			Command:     "go test ./...",
			Description: "Юнит-тесты всех пакетов",
			TimeoutSec:  600,
			DependsOn:   []string{"build"},
			Tags:        []string{"go", "test"},
		},
		{
			ID:          "secrets-scan",
			Name:        "Secrets Scan",
			Tier:        domain.TierGovernance,
			Severity:    domain.SeverityCritical,
			Category:    domain.CategorySecurity,
			Command:     "gitleaks detect --no-banner --exit-code 1",
			Description: "Поиск секретов в рабочем дереве",
			TimeoutSec:  180,
			Tags:        []string{"security", "secrets"},
		},
		{
			ID:          "dep-audit",
			Name:        "Dependency Audit",
			Tier:        domain.TierGovernance,
			Severity:    domain.SeverityWarning,
			Category:    domain.CategorySecurity,
			Command:     "govulncheck ./...",
			Description: "Поиск уязвимых зависимостей",
			TimeoutSec:  300,
			DependsOn:   []string{"build"},
			Tags:        []string{"security", "dependencies"},
		},
		{
			ID:       "lint",
			Name:     "Lint",
			Tier:     domain.TierGovernance,
			Severity: domain.SeverityWarning,
			Category: domain.CategoryGovernance,
			Command: domain.JoinCommands(
				"test -z \"$(gofmt -l .)\"",
				"golangci-lint run",
			),
			Description: "Форматирование и линтеры",
			TimeoutSec:  300,
			DependsOn:   []string{"build"},
			Tags:        []string{"go", "lint"},
		},
		{
			ID:       "coverage",
			Name:     "Coverage",
			Tier:     domain.TierOptional,
			Severity: domain.SeverityInfo,
			Category: domain.CategoryCorrectness,
			Command: domain.JoinCommands(
				"go test -coverprofile=coverage.out ./...",
				"go tool cover -func=coverage.out",
			),
			Description: "Замер покрытия тестами",
			TimeoutSec:  600,
			DependsOn:   []string{"unit-tests"},
			Tags:        []string{"go", "coverage"},
		},
		{
			ID:          "bench-smoke",
			Name:        "Benchmark Smoke",
			Tier:        domain.TierOptional,
			Severity:    domain.SeverityInfo,
			Category:    domain.CategoryPerformance,
			Command:     "go test -bench=. -benchtime=1x -run=^$ ./...",
			Description: "Быстрый прогон бенчмарков на работоспособность",
			TimeoutSec:  300,
			DependsOn:   []string{"unit-tests"},
			Tags:        []string{"go", "bench"},
		},
	}
}

// DefaultWaves возвращает распределение встроенных шагов по волнам.
//
// Волна 0 — только KERNEL-шаги без зависимостей; дальше шаги
// расставлены так, что зависимость всегда в строго более ранней волне.
func DefaultWaves() Waves {
	return Waves{
		{"build"},
		{"vet", "unit-tests", "secrets-scan", "dep-audit", "lint"},
		{"coverage", "bench-smoke"},
	}
}
