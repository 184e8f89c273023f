package archive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
)

const defaultHistoryLimit = 10

// TripHistory is a durable source of past itineraries.
type TripHistory interface {
	RecentByDestination(ctx context.Context, destination string, limit int) ([]ItineraryRow, error)
}

var (
	_ TripHistory           = (*PostgresArchive)(nil)
	_ contractx.MemoryStore = (*HistoryMemory)(nil)
)

// HistoryMemory extends a memory store with trips archived by earlier runs.
// Writes and preferences go to the wrapped store only.
type HistoryMemory struct {
	contractx.MemoryStore
	history TripHistory
	limit   int
}

func NewHistoryMemory(base contractx.MemoryStore, history TripHistory, limit int) (*HistoryMemory, error) {
	if base == nil {
		return nil, errors.New("base memory store is required")
	}
	if history == nil {
		return nil, errors.New("trip history is required")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return &HistoryMemory{MemoryStore: base, history: history, limit: limit}, nil
}

// SimilarTrips returns the wrapped store's trips followed by archived trips
// it does not already hold. A history failure still returns the wrapped
// store's trips alongside the error.
func (m *HistoryMemory) SimilarTrips(ctx context.Context, destination string) ([]contractx.TripRecord, error) {
	trips, err := m.MemoryStore.SimilarTrips(ctx, destination)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(destination) == "" {
		return trips, nil
	}

	rows, err := m.history.RecentByDestination(ctx, destination, m.limit)
	if err != nil {
		return trips, fmt.Errorf("trip history: %w", err)
	}

	seen := make(map[string]bool, len(trips))
	for _, t := range trips {
		seen[t.ItineraryID] = true
	}
	for _, row := range rows {
		if seen[row.ID] {
			continue
		}
		seen[row.ID] = true
		trips = append(trips, row.TripRecord())
	}
	return trips, nil
}

// TripRecord prefers the stored document and falls back to the indexed
// columns.
func (r ItineraryRow) TripRecord() contractx.TripRecord {
	if r.Document != nil {
		rec := contractx.NewTripRecord(r.Document)
		rec.ItineraryID = r.ID
		return rec
	}
	return contractx.TripRecord{
		ItineraryID:    r.ID,
		Destination:    r.Destination,
		Budget:         r.Budget,
		TotalCost:      r.TotalCost,
		IterationCount: r.IterationCount,
		CreatedAt:      r.CreatedAt,
	}
}
