package archive

import (
	"context"
	"errors"
	"testing"
	"time"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
	statex "github.com/tanpawarit/trip-planner-agent/agent/state"
)

type fakeHistory struct {
	rows  []ItineraryRow
	err   error
	calls []string
	limit int
}

func (f *fakeHistory) RecentByDestination(_ context.Context, destination string, limit int) ([]ItineraryRow, error) {
	f.calls = append(f.calls, destination)
	f.limit = limit
	return f.rows, f.err
}

func TestHistoryMemoryMergesArchivedTrips(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := statex.NewMemoryBank()
	if err := base.RecordTrip(ctx, sampleItinerary("it-live")); err != nil {
		t.Fatalf("RecordTrip() error = %v", err)
	}

	history := &fakeHistory{rows: []ItineraryRow{
		NewItineraryRow(sampleItinerary("it-live")),
		NewItineraryRow(sampleItinerary("it-old")),
		{ID: "it-bare", Destination: "Barcelona, Spain", Budget: 600, TotalCost: 580, IterationCount: 2, CreatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)},
	}}
	mem, err := NewHistoryMemory(base, history, 0)
	if err != nil {
		t.Fatalf("NewHistoryMemory() error = %v", err)
	}

	trips, err := mem.SimilarTrips(ctx, "barcelona")
	if err != nil {
		t.Fatalf("SimilarTrips() error = %v", err)
	}
	if len(trips) != 3 {
		t.Fatalf("trips = %d, want 3: %+v", len(trips), trips)
	}
	if trips[0].ItineraryID != "it-live" || trips[1].ItineraryID != "it-old" || trips[2].ItineraryID != "it-bare" {
		t.Fatalf("unexpected order: %+v", trips)
	}
	if trips[1].TotalCost != 685 || len(trips[1].Interests) != 1 {
		t.Fatalf("document trip not decoded: %+v", trips[1])
	}
	if trips[2].Budget != 600 || trips[2].IterationCount != 2 {
		t.Fatalf("column fallback wrong: %+v", trips[2])
	}
	if history.limit != defaultHistoryLimit || len(history.calls) != 1 {
		t.Fatalf("history queried %v with limit %d", history.calls, history.limit)
	}
}

func TestHistoryMemoryKeepsLiveTripsOnFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := statex.NewMemoryBank()
	if err := base.RecordTrip(ctx, sampleItinerary("it-live")); err != nil {
		t.Fatalf("RecordTrip() error = %v", err)
	}
	boom := errors.New("connection refused")
	mem, err := NewHistoryMemory(base, &fakeHistory{err: boom}, 5)
	if err != nil {
		t.Fatalf("NewHistoryMemory() error = %v", err)
	}

	trips, err := mem.SimilarTrips(ctx, "Barcelona")
	if !errors.Is(err, boom) {
		t.Fatalf("expected history error, got %v", err)
	}
	if len(trips) != 1 || trips[0].ItineraryID != "it-live" {
		t.Fatalf("live trips lost: %+v", trips)
	}
}

func TestHistoryMemoryDelegatesWrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := statex.NewMemoryBank()
	history := &fakeHistory{}
	mem, err := NewHistoryMemory(base, history, 3)
	if err != nil {
		t.Fatalf("NewHistoryMemory() error = %v", err)
	}

	if err := mem.RecordTrip(ctx, sampleItinerary("it-1")); err != nil {
		t.Fatalf("RecordTrip() error = %v", err)
	}
	if err := mem.SetPreference(ctx, "lodging", "hostel"); err != nil {
		t.Fatalf("SetPreference() error = %v", err)
	}
	if base.Len() != 1 {
		t.Fatalf("base trips = %d, want 1", base.Len())
	}
	if v, ok, _ := base.Preference(ctx, "lodging"); !ok || v != "hostel" {
		t.Fatalf("preference not delegated: %q %v", v, ok)
	}
	if trips, _ := mem.SimilarTrips(ctx, " "); len(trips) != 0 || len(history.calls) != 0 {
		t.Fatalf("blank destination should not query history: %+v %v", trips, history.calls)
	}
}

func TestNewHistoryMemoryValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewHistoryMemory(nil, &fakeHistory{}, 1); err == nil {
		t.Fatal("expected error for nil base")
	}
	if _, err := NewHistoryMemory(statex.NewMemoryBank(), nil, 1); err == nil {
		t.Fatal("expected error for nil history")
	}
}
