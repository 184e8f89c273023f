package archive

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
	"github.com/tanpawarit/trip-planner-agent/agent/eval"
)

func sampleItinerary(id string) *contractx.Itinerary {
	return &contractx.Itinerary{
		ID: id,
		Requirements: contractx.Requirements{
			Destination:  "Barcelona, Spain",
			Budget:       800,
			Travelers:    1,
			DurationDays: 3,
			Interests:    []string{"architecture"},
		},
		Budget:         contractx.BudgetBreakdown{Accommodation: 225, Activities: 135, Meals: 225, Transportation: 100, Total: 685, WithinBudget: true},
		CreatedAt:      time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
		IterationCount: 1,
		MaxIterations:  3,
	}
}

func TestFileArchiveRoundTrip(t *testing.T) {
	t.Parallel()

	a, err := NewFileArchive(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatalf("NewFileArchive() error = %v", err)
	}
	ctx := context.Background()
	it := sampleItinerary("abc-123")

	if err := a.SaveItinerary(ctx, it); err != nil {
		t.Fatalf("SaveItinerary() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(a.Dir(), "itinerary-abc-123.json")); err != nil {
		t.Fatalf("expected itinerary file: %v", err)
	}

	got, err := a.LoadItinerary(ctx, "abc-123")
	if err != nil {
		t.Fatalf("LoadItinerary() error = %v", err)
	}
	if got.Budget.Total != 685 || got.Requirements.Destination != "Barcelona, Spain" || !got.CreatedAt.Equal(it.CreatedAt) {
		t.Fatalf("unexpected itinerary: %+v", got)
	}

	entries, err := os.ReadDir(a.Dir())
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestFileArchiveOverwrites(t *testing.T) {
	t.Parallel()

	a, err := NewFileArchive(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileArchive() error = %v", err)
	}
	ctx := context.Background()
	it := sampleItinerary("same")
	if err := a.SaveItinerary(ctx, it); err != nil {
		t.Fatalf("first save: %v", err)
	}
	it.IterationCount = 2
	if err := a.SaveItinerary(ctx, it); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, err := a.LoadItinerary(ctx, "same")
	if err != nil {
		t.Fatalf("LoadItinerary() error = %v", err)
	}
	if got.IterationCount != 2 {
		t.Fatalf("iteration count = %d, want 2", got.IterationCount)
	}
}

func TestFileArchiveRejectsBadIDs(t *testing.T) {
	t.Parallel()

	a, err := NewFileArchive(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileArchive() error = %v", err)
	}
	for _, id := range []string{"", " ", "../escape", `a\b`, ".."} {
		if err := a.SaveItinerary(context.Background(), sampleItinerary(id)); !errors.Is(err, contractx.ErrValidation) {
			t.Fatalf("id %q: expected ErrValidation, got %v", id, err)
		}
	}
	if err := a.SaveItinerary(context.Background(), nil); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("nil itinerary: expected ErrValidation, got %v", err)
	}
}

func TestFileArchiveSaveEvaluation(t *testing.T) {
	t.Parallel()

	a, err := NewFileArchive(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileArchive() error = %v", err)
	}
	summary := eval.SuiteSummary{
		EvaluationDate: "2026-05-04",
		TotalScenarios: 1,
		Passed:         1,
		AverageScore:   0.95,
		Scenarios:      []eval.ScenarioResult{{Name: "Budget-Conscious Trip", Passed: true, OverallScore: 0.95}},
	}
	path, err := a.SaveEvaluation(context.Background(), summary)
	if err != nil {
		t.Fatalf("SaveEvaluation() error = %v", err)
	}
	if filepath.Base(path) != EvaluationFile {
		t.Fatalf("path = %s", path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var decoded eval.SuiteSummary
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Passed != 1 || len(decoded.Scenarios) != 1 || decoded.Scenarios[0].Name != "Budget-Conscious Trip" {
		t.Fatalf("unexpected summary: %+v", decoded)
	}
}

func TestFileArchiveHonoursContext(t *testing.T) {
	t.Parallel()

	a, err := NewFileArchive(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileArchive() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.SaveItinerary(ctx, sampleItinerary("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type recordingArchive struct {
	ids []string
	err error
}

func (r *recordingArchive) SaveItinerary(_ context.Context, it *contractx.Itinerary) error {
	r.ids = append(r.ids, it.ID)
	return r.err
}

func TestMultiSavesToEveryArchive(t *testing.T) {
	t.Parallel()

	ok := &recordingArchive{}
	broken := &recordingArchive{err: errors.New("db down")}
	err := Multi{broken, nil, ok}.SaveItinerary(context.Background(), sampleItinerary("m"))
	if err == nil || err.Error() != "db down" {
		t.Fatalf("expected joined error, got %v", err)
	}
	if len(ok.ids) != 1 || len(broken.ids) != 1 {
		t.Fatalf("every archive should be called: ok=%v broken=%v", ok.ids, broken.ids)
	}
}
