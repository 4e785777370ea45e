// Package report рендерит результат запуска в JSON-артефакт для CI.
//
// Report потребляет результат движка read-only и никак не влияет
// на планирование или выполнение.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shaiso/Gatekeeper/internal/domain"
	"github.com/shaiso/Gatekeeper/internal/orchestrator"
)

// Document — корневой JSON-документ отчёта.
type Document struct {
	// Engine — движок, выполнивший запуск.
	Engine domain.EngineKind `json:"engine"`

	// Mode — режим выполнения (пустой для волнового движка).
	Mode domain.Mode `json:"mode,omitempty"`

	// Verdict — итоговый вердикт.
	Verdict bool `json:"verdict"`

	// Summary — сводка запуска.
	Summary *domain.RunSummary `json:"summary"`

	// Results — результаты шагов в порядке выполнения.
	Results []*domain.StepResult `json:"results"`

	// Degradations — записи деградаций (degraded режим).
	Degradations []*domain.DegradationRecord `json:"degradations,omitempty"`

	// GeneratedAt — время генерации отчёта.
	GeneratedAt time.Time `json:"generated_at"`
}

// Build собирает Document из результата движка.
func Build(engine domain.EngineKind, mode domain.Mode, rep *orchestrator.Report) *Document {
	return &Document{
		Engine:       engine,
		Mode:         mode,
		Verdict:      rep.Verdict(),
		Summary:      rep.Summary,
		Results:      rep.Results,
		Degradations: rep.Degradations,
		GeneratedAt:  time.Now(),
	}
}

// Render сериализует документ в JSON с отступами.
func Render(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteFile записывает отчёт в файл.
func WriteFile(path string, doc *Document) error {
	data, err := Render(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}
	return nil
}
