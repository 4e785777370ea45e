package domain

// Plan — read-only представление реестра для интроспекции.
//
// Plan детерминирован: повторные вызовы для неизменного реестра
// дают идентичный порядок шагов и счётчики. Выполнения не запускает.
type Plan struct {
	// Steps — шаги в порядке объявления в реестре.
	Steps []PlanStep `json:"steps"`

	// Summary — агрегированные счётчики.
	Summary PlanSummary `json:"summary"`
}

// PlanStep — один шаг в плане.
type PlanStep struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	Tier        Tier     `json:"tier"`
	Severity    Severity `json:"severity"`
	Category    Category `json:"category"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	DependsOn   []string `json:"depends_on,omitempty"`
}

// PlanSummary — счётчики плана.
type PlanSummary struct {
	// Total — общее количество шагов.
	Total int `json:"total"`

	// ByTier — количество шагов по каждому tier.
	ByTier TierCounts `json:"by_tier"`
}

// TierCounts — счётчики по tier.
type TierCounts struct {
	Kernel     int `json:"kernel"`
	Governance int `json:"governance"`
	Optional   int `json:"optional"`
}
