package override

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeOverrides(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overrides.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write override file: %v", err)
	}
	return path
}

func TestLoadFile_MissingFileIsEmpty(t *testing.T) {
	// Отсутствующий файл — валидное состояние без override.
	c, err := LoadFile(filepath.Join(t.TempDir(), "no-such-file.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	active, err := c.IsOverrideActive(context.Background(), "build")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if active {
		t.Error("expected no active overrides")
	}
}

func TestLoadFile_InvalidJSON(t *testing.T) {
	path := writeOverrides(t, "{not json")

	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFileChecker_ActiveEntry(t *testing.T) {
	path := writeOverrides(t, `[
		{"step_id": "lint", "reason": "known flaky linter"}
	]`)

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	active, err := c.IsOverrideActive(context.Background(), "lint")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !active {
		t.Error("expected lint override active")
	}

	// Незатронутый шаг не overridden.
	active, err = c.IsOverrideActive(context.Background(), "build")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if active {
		t.Error("expected build override inactive")
	}
}

func TestFileChecker_ExpiryCheckedAtQueryTime(t *testing.T) {
	// Истечение проверяется в момент опроса, а не при загрузке.
	path := writeOverrides(t, `[
		{"step_id": "lint", "expires_at": "2026-01-01T00:00:00Z"}
	]`)

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// До истечения — активен.
	c.now = func() time.Time {
		return time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	}
	active, _ := c.IsOverrideActive(context.Background(), "lint")
	if !active {
		t.Error("expected override active before expiry")
	}

	// После истечения — нет; запись при этом не удаляется.
	c.now = func() time.Time {
		return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	}
	active, _ = c.IsOverrideActive(context.Background(), "lint")
	if active {
		t.Error("expected override inactive after expiry")
	}
}

func TestFileChecker_ZeroExpiryNeverExpires(t *testing.T) {
	path := writeOverrides(t, `[
		{"step_id": "scan"}
	]`)

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.now = func() time.Time {
		return time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	active, _ := c.IsOverrideActive(context.Background(), "scan")
	if !active {
		t.Error("expected permanent override to stay active")
	}
}

func TestFileChecker_IgnoresEmptyStepID(t *testing.T) {
	path := writeOverrides(t, `[
		{"step_id": ""},
		{"step_id": "lint"}
	]`)

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	active, _ := c.IsOverrideActive(context.Background(), "")
	if active {
		t.Error("empty step id must not be overridable")
	}
}

func TestCheckerFunc_Adapter(t *testing.T) {
	f := CheckerFunc(func(ctx context.Context, stepID string) (bool, error) {
		return stepID == "lint", nil
	})

	active, err := f.IsOverrideActive(context.Background(), "lint")
	if err != nil || !active {
		t.Errorf("expected active, got %v err %v", active, err)
	}
}

func TestNop_NeverActive(t *testing.T) {
	active, err := Nop{}.IsOverrideActive(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if active {
		t.Error("Nop must report no overrides")
	}
}
