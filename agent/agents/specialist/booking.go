package specialist

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
)

const bookingSearchResults = 5

var _ contractx.BookingHelper = (*toolBooking)(nil)

type toolBooking struct {
	provider contractx.ToolProvider
}

func newToolBooking(provider contractx.ToolProvider) *toolBooking {
	return &toolBooking{provider: provider}
}

func (b *toolBooking) FindOptions(ctx context.Context, req contractx.BookingRequest) ([]contractx.Accommodation, error) {
	r := req.Requirements
	if strings.TrimSpace(r.Destination) == "" {
		return nil, fmt.Errorf("%w: destination is required", contractx.ErrValidation)
	}
	pref := strings.TrimSpace(r.AccommodationPreference)
	if pref == "" {
		pref = contractx.DefaultAccommodationPreference
	}

	results, err := search(ctx, b.provider, contractx.SearchQuery{
		Query:      fmt.Sprintf("%s accommodation in %s", pref, r.Destination),
		MaxResults: bookingSearchResults,
	})
	if err != nil {
		return nil, err
	}

	options := make([]contractx.Accommodation, 0, len(results))
	for _, res := range results {
		kind := strings.ToLower(strings.TrimSpace(res.Category))
		if kind == "" {
			kind = "hotel"
		}
		opt := contractx.Accommodation{
			Name:   res.Title,
			Type:   kind,
			Price:  res.Cost,
			Rating: clampRating(res.Rating),
		}
		if s := strings.TrimSpace(res.Snippet); s != "" {
			opt.Features = []string{s}
		}
		options = append(options, opt)
	}

	RankOptions(options, pref, req.PreferCheapest)
	return options, nil
}

const maxRating = 5

func clampRating(r float64) float64 {
	switch {
	case math.IsNaN(r) || r < 0:
		return 0
	case r > maxRating:
		return maxRating
	}
	return r
}

// RankOptions orders lodging in place. Budget-minded preferences and
// preferCheapest sort by ascending price, luxury preferences by descending
// price; otherwise the search order is kept. Non-lodging options always
// follow lodging.
func RankOptions(options []contractx.Accommodation, preference string, preferCheapest bool) {
	pref := strings.ToLower(preference)
	cheapFirst := preferCheapest ||
		strings.Contains(pref, "hostel") ||
		strings.Contains(pref, "budget") ||
		strings.Contains(pref, "cheap")
	luxuryFirst := !cheapFirst && strings.Contains(pref, "luxury")

	sort.SliceStable(options, func(i, j int) bool {
		li, lj := options[i].IsLodging(), options[j].IsLodging()
		if li != lj {
			return li
		}
		switch {
		case cheapFirst:
			return options[i].Price < options[j].Price
		case luxuryFirst:
			return options[i].Price > options[j].Price
		default:
			return false
		}
	})
}
