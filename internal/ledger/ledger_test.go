package ledger

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shaiso/Gatekeeper/internal/domain"
)

func degradation(stepID string) *domain.DegradationRecord {
	return &domain.DegradationRecord{
		Timestamp: time.Now(),
		StepID:    stepID,
		StepName:  stepID,
		Tier:      domain.TierGovernance,
		Status:    domain.StepStatusFail,
		Reason:    "nonzero_exit",
		Message:   "step " + stepID + " failed (exit 1)",
		Severity:  domain.SeverityWarning,
	}
}

// readLines разбирает journal-файл обратно в записи.
func readLines(t *testing.T, path string) []domain.DegradationRecord {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer f.Close()

	var recs []domain.DegradationRecord
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec domain.DegradationRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("invalid journal line %q: %v", sc.Text(), err)
		}
		recs = append(recs, rec)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan journal: %v", err)
	}
	return recs
}

func TestFileRecorder_AppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "degradations.jsonl")

	r, err := OpenFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.Close()

	ctx := context.Background()
	if err := r.Record(ctx, degradation("lint")); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := r.Record(ctx, degradation("scan")); err != nil {
		t.Fatalf("record: %v", err)
	}

	recs := readLines(t, path)
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].StepID != "lint" || recs[1].StepID != "scan" {
		t.Errorf("unexpected order: %s, %s", recs[0].StepID, recs[1].StepID)
	}
	if recs[0].Tier != domain.TierGovernance {
		t.Errorf("tier not round-tripped: %s", recs[0].Tier)
	}
}

func TestFileRecorder_AppendAcrossReopens(t *testing.T) {
	// Журнал append-only: повторное открытие не затирает историю.
	path := filepath.Join(t.TempDir(), "degradations.jsonl")
	ctx := context.Background()

	r1, err := OpenFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r1.Record(ctx, degradation("first")); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := r1.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	r2, err := OpenFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r2.Close()
	if err := r2.Record(ctx, degradation("second")); err != nil {
		t.Fatalf("record: %v", err)
	}

	recs := readLines(t, path)
	if len(recs) != 2 {
		t.Fatalf("expected 2 records after reopen, got %d", len(recs))
	}
}

func TestFileRecorder_ConcurrentRecords(t *testing.T) {
	// Параллельные записи не должны рвать строки журнала.
	path := filepath.Join(t.TempDir(), "degradations.jsonl")

	r, err := OpenFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.Close()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.Record(context.Background(), degradation("step")); err != nil {
				t.Errorf("record: %v", err)
			}
		}()
	}
	wg.Wait()

	recs := readLines(t, path)
	if len(recs) != n {
		t.Errorf("expected %d intact records, got %d", n, len(recs))
	}
}

func TestNop_DiscardsRecords(t *testing.T) {
	if err := (Nop{}).Record(context.Background(), degradation("any")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
