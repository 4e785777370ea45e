// Package ledger — append-only журнал деградаций.
//
// В degraded режиме каждое не-KERNEL падение порождает одну
// DegradationRecord. Обязанность движка заканчивается на передаче
// записи в Recorder; ротация и хранение файла — забота вызывающей
// стороны.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/shaiso/Gatekeeper/internal/domain"
)

// Recorder — приёмник записей о деградациях.
type Recorder interface {
	// Record добавляет одну запись в журнал.
	Record(ctx context.Context, rec *domain.DegradationRecord) error
}

// Nop — Recorder, отбрасывающий записи.
type Nop struct{}

// Record ничего не делает.
func (Nop) Record(ctx context.Context, rec *domain.DegradationRecord) error {
	return nil
}

// FileRecorder пишет записи в файл построчным JSON (одна запись — одна строка).
type FileRecorder struct {
	mu sync.Mutex
	f  *os.File
}

// OpenFile открывает journal-файл в режиме append.
func OpenFile(path string) (*FileRecorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open ledger file: %w", err)
	}
	return &FileRecorder{f: f}, nil
}

// Record сериализует запись в JSON и дописывает строку в файл.
func (r *FileRecorder) Record(ctx context.Context, rec *domain.DegradationRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal degradation record: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append degradation record: %w", err)
	}
	return nil
}

// Close закрывает файл журнала.
func (r *FileRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.f.Close()
}
