package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/itinerary.txt
	itineraryRaw string

	//go:embed template/booking.txt
	bookingRaw string

	//go:embed template/search.txt
	searchRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Itinerary string
	Booking   string
	Search    string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Itinerary: strings.TrimSpace(itineraryRaw),
		Booking:   strings.TrimSpace(bookingRaw),
		Search:    strings.TrimSpace(searchRaw),
	}
}
