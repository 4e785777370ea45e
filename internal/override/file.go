package override

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Entry — одна запись в файле override.
type Entry struct {
	// StepID — шаг, который нужно пропустить.
	StepID string `json:"step_id"`

	// ExpiresAt — время истечения. Нулевое — бессрочный override.
	ExpiresAt time.Time `json:"expires_at,omitempty"`

	// Reason — обоснование (кем и зачем выдан override).
	Reason string `json:"reason,omitempty"`
}

// FileChecker читает override из JSON-файла при конструировании.
//
// Формат файла — массив Entry. Истёкшие записи игнорируются
// в момент опроса, а не при загрузке.
type FileChecker struct {
	entries map[string]Entry
	now     func() time.Time
}

// LoadFile загружает FileChecker из файла.
// Отсутствующий файл — валидное состояние без override.
func LoadFile(path string) (*FileChecker, error) {
	c := &FileChecker{
		entries: make(map[string]Entry),
		now:     time.Now,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("read override file: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse override file: %w", err)
	}

	for _, e := range entries {
		if e.StepID == "" {
			continue
		}
		c.entries[e.StepID] = e
	}

	return c, nil
}

// IsOverrideActive реализует Checker.
func (c *FileChecker) IsOverrideActive(ctx context.Context, stepID string) (bool, error) {
	e, ok := c.entries[stepID]
	if !ok {
		return false, nil
	}
	if !e.ExpiresAt.IsZero() && c.now().After(e.ExpiresAt) {
		return false, nil
	}
	return true, nil
}
