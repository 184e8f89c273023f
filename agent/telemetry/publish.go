package telemetry

import (
	"context"

	"github.com/rs/zerolog"
	qstashx "github.com/tanpawarit/trip-planner-agent/pkg/qstash"
)

// Publisher is the subset of the QStash client the sink needs.
type Publisher interface {
	PublishJSON(ctx context.Context, destination string, payload any) (qstashx.PublishResponse, error)
}

// PublishSink forwards terminal events to a QStash destination. Failures are
// logged and dropped.
type PublishSink struct {
	pub         Publisher
	destination string
	log         zerolog.Logger
}

func NewPublishSink(pub Publisher, destination string, l zerolog.Logger) *PublishSink {
	return &PublishSink{pub: pub, destination: destination, log: l}
}

func (s *PublishSink) Emit(ctx context.Context, e Event) {
	if !e.Terminal() || s.destination == "" {
		return
	}
	resp, err := s.pub.PublishJSON(ctx, s.destination, e)
	if err != nil {
		s.log.Warn().Err(err).Str("request_id", e.RequestID).Str("kind", string(e.Kind)).Msg("publish event failed")
		return
	}
	s.log.Debug().Str("message_id", resp.MessageID).Str("request_id", e.RequestID).Msg("event published")
}
