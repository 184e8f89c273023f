package state

import (
	"context"
	"errors"
	"strings"
	"sync"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
)

var ErrNilItinerary = errors.New("itinerary is nil")

var _ contractx.MemoryStore = (*MemoryBank)(nil)

// MemoryBank is the process-scoped, append-only trip log plus a preference
// map. Safe for concurrent use.
type MemoryBank struct {
	mu          sync.RWMutex
	trips       []contractx.TripRecord
	preferences map[string]string
}

func NewMemoryBank() *MemoryBank {
	return &MemoryBank{preferences: make(map[string]string)}
}

func (m *MemoryBank) RecordTrip(ctx context.Context, it *contractx.Itinerary) error {
	if it == nil {
		return ErrNilItinerary
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	rec := contractx.NewTripRecord(it)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips = append(m.trips, rec)
	return nil
}

// SimilarTrips scans the log for destinations containing destination,
// case-insensitively, oldest first.
func (m *MemoryBank) SimilarTrips(ctx context.Context, destination string) ([]contractx.TripRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return filterTrips(m.trips, destination), nil
}

func (m *MemoryBank) SetPreference(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("preference key is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.preferences[key] = value
	return nil
}

func (m *MemoryBank) Preference(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.preferences[strings.TrimSpace(key)]
	return v, ok, nil
}

// Len reports how many trips have been recorded.
func (m *MemoryBank) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.trips)
}

func filterTrips(trips []contractx.TripRecord, destination string) []contractx.TripRecord {
	var out []contractx.TripRecord
	for _, t := range trips {
		if t.MatchesDestination(destination) {
			t.Interests = append([]string(nil), t.Interests...)
			out = append(out, t)
		}
	}
	return out
}
