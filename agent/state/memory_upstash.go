package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
)

var _ contractx.MemoryStore = (*UpstashMemoryBank)(nil)

// UpstashMemoryBank keeps the trip log in a Redis list and preferences in a
// hash, so the memory outlives the process.
type UpstashMemoryBank struct {
	client *UpstashClient
}

func NewUpstashMemoryBank(client *UpstashClient) *UpstashMemoryBank {
	return &UpstashMemoryBank{client: client}
}

func (m *UpstashMemoryBank) RecordTrip(ctx context.Context, it *contractx.Itinerary) error {
	if it == nil {
		return ErrNilItinerary
	}
	payload, err := json.Marshal(contractx.NewTripRecord(it))
	if err != nil {
		return fmt.Errorf("marshal trip record: %w", err)
	}
	_, err = m.client.exec(ctx, "RPUSH", m.client.key("trips"), string(payload))
	return err
}

func (m *UpstashMemoryBank) SimilarTrips(ctx context.Context, destination string) ([]contractx.TripRecord, error) {
	raw, err := m.client.exec(ctx, "LRANGE", m.client.key("trips"), 0, -1)
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, nil
	}

	var encoded []string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, fmt.Errorf("decode trip list: %w", err)
	}
	trips := make([]contractx.TripRecord, 0, len(encoded))
	for i, item := range encoded {
		var rec contractx.TripRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal trip record %d: %w", i, err)
		}
		trips = append(trips, rec)
	}
	return filterTrips(trips, destination), nil
}

func (m *UpstashMemoryBank) SetPreference(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("preference key is empty")
	}
	_, err := m.client.exec(ctx, "HSET", m.client.key("preferences"), key, value)
	return err
}

func (m *UpstashMemoryBank) Preference(ctx context.Context, key string) (string, bool, error) {
	raw, err := m.client.exec(ctx, "HGET", m.client.key("preferences"), strings.TrimSpace(key))
	if err != nil {
		return "", false, err
	}
	if isNull(raw) {
		return "", false, nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false, fmt.Errorf("decode preference: %w", err)
	}
	return v, true, nil
}
