package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
	openrouterx "github.com/tanpawarit/trip-planner-agent/pkg/openrouter"
)

// Config is read with the LLM prefix. Specialist overrides fall back to the
// shared model and temperature; a negative temperature means unset.
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	ItineraryModel       string  `envconfig:"ITINERARY_MODEL" split_words:"true"`
	BookingModel         string  `envconfig:"BOOKING_MODEL" split_words:"true"`
	ItineraryTemperature float32 `envconfig:"ITINERARY_TEMPERATURE" split_words:"true" default:"-1"`
	BookingTemperature   float32 `envconfig:"BOOKING_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// Enabled reports whether model-backed specialists can be built.
func (c Config) Enabled() bool {
	return c.Validate() == nil
}

func (c Config) OpenRouterFor(agentType contractx.AgentType) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch agentType {
	case contractx.AgentTypeItinerary:
		if v := strings.TrimSpace(c.ItineraryModel); v != "" {
			modelName = v
		}
		if c.ItineraryTemperature >= 0 {
			temp = c.ItineraryTemperature
		}
	case contractx.AgentTypeBooking:
		if v := strings.TrimSpace(c.BookingModel); v != "" {
			modelName = v
		}
		if c.BookingTemperature >= 0 {
			temp = c.BookingTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
