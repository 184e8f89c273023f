package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
)

// DefaultHistoryLimit is how many messages survive a compaction.
const DefaultHistoryLimit = 10

var (
	ErrNilSession     = errors.New("session is nil")
	ErrInvalidSession = errors.New("session id is empty")
)

type SessionStatus string

const (
	SessionRunning   SessionStatus = "running"
	SessionSucceeded SessionStatus = "succeeded"
	SessionFailed    SessionStatus = "failed"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

type Message struct {
	Role      Role      `json:"role"`
	Agent     string    `json:"agent,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Attempt is the intermediate result of one coordinator iteration.
type Attempt struct {
	Iteration  int      `json:"iteration"`
	Outcome    string   `json:"outcome"`
	Activities int      `json:"activities"`
	Options    int      `json:"options"`
	TotalCost  float64  `json:"total_cost,omitempty"`
	Missing    []string `json:"missing,omitempty"`
	Failures   []string `json:"failures,omitempty"`
}

// Session is the working state of one ProcessRequest call.
type Session struct {
	ID            string                 `json:"session_id"`
	Requirements  contractx.Requirements `json:"requirements"`
	Iteration     int                    `json:"current_iteration"`
	MaxIterations int                    `json:"max_iterations"`
	Status        SessionStatus          `json:"status"`
	Messages      []Message              `json:"messages,omitempty"`
	Attempts      []Attempt              `json:"attempts,omitempty"`
	ItineraryID   string                 `json:"itinerary_id,omitempty"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

func NewSession(id string, req contractx.Requirements, maxIterations int, now time.Time) *Session {
	s := &Session{
		ID:            id,
		Requirements:  req,
		MaxIterations: maxIterations,
		Status:        SessionRunning,
		UpdatedAt:     now.UTC(),
	}
	s.AddMessage(RoleUser, "", fmt.Sprintf(
		"Plan a %d-day trip to %s for %d traveler(s) with a budget of $%.2f",
		req.DurationDays, req.Destination, req.Travelers, req.Budget,
	), now)
	return s
}

func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

func (s *Session) AddMessage(role Role, agent, content string, now time.Time) {
	s.Messages = append(s.Messages, Message{
		Role:      role,
		Agent:     agent,
		Content:   content,
		CreatedAt: now.UTC(),
	})
	s.Touch(now)
}

func (s *Session) RecordAttempt(a Attempt, now time.Time) {
	s.Iteration = a.Iteration
	s.Attempts = append(s.Attempts, a)
	s.Touch(now)
}

// CompactHistory keeps the first message, which carries the request, and the
// most recent keep-1 messages.
func (s *Session) CompactHistory(keep int) {
	if keep <= 0 {
		keep = DefaultHistoryLimit
	}
	if len(s.Messages) <= keep {
		return
	}
	compacted := make([]Message, 0, keep)
	compacted = append(compacted, s.Messages[0])
	compacted = append(compacted, s.Messages[len(s.Messages)-(keep-1):]...)
	s.Messages = compacted
}

func (s *Session) Finish(status SessionStatus, itineraryID string, now time.Time) {
	s.Status = status
	s.ItineraryID = itineraryID
	s.Touch(now)
}

func (s *Session) Validate() error {
	if s == nil {
		return ErrNilSession
	}
	if strings.TrimSpace(s.ID) == "" {
		return ErrInvalidSession
	}
	if s.MaxIterations <= 0 {
		return fmt.Errorf("%w: max iterations must be positive", contractx.ErrValidation)
	}
	if s.Iteration < 0 || s.Iteration > s.MaxIterations {
		return fmt.Errorf("%w: iteration %d outside [0,%d]", contractx.ErrValidation, s.Iteration, s.MaxIterations)
	}
	switch s.Status {
	case SessionRunning, SessionSucceeded, SessionFailed:
	default:
		return fmt.Errorf("%w: unknown session status %q", contractx.ErrValidation, s.Status)
	}
	return nil
}
