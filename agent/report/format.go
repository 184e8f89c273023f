package report

import (
	"fmt"
	"io"
	"strings"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
	"github.com/tanpawarit/trip-planner-agent/agent/eval"
)

const width = 60

var (
	heavyRule = strings.Repeat("=", width)
	lightRule = strings.Repeat("-", width)
)

// FormatItinerary renders it as plain text for a terminal.
func FormatItinerary(it *contractx.Itinerary) string {
	var b strings.Builder
	_ = WriteItinerary(&b, it)
	return b.String()
}

func WriteItinerary(w io.Writer, it *contractx.Itinerary) error {
	if it == nil {
		return fmt.Errorf("%w: itinerary is required", contractx.ErrValidation)
	}
	p := &printer{w: w}
	req := it.Requirements

	p.raw(heavyRule)
	p.line("TRIP TO %s", strings.ToUpper(req.Destination))
	p.raw(heavyRule)
	p.line("Budget: $%.2f", req.Budget)
	p.line("Travelers: %d", req.Travelers)
	p.line("Duration: %d days", req.DurationDays)
	if len(req.Interests) > 0 {
		p.line("Interests: %s", strings.Join(req.Interests, ", "))
	}
	if req.StartDate != "" || req.EndDate != "" {
		p.line("Dates: %s to %s", req.StartDate, req.EndDate)
	}
	if len(req.DietaryRestrictions) > 0 {
		p.line("Dietary: %s", strings.Join(req.DietaryRestrictions, ", "))
	}

	for _, day := range it.Days {
		p.line("")
		p.line("%s - $%.2f", dayLabel(day), day.TotalCost)
		p.raw(lightRule)
		for _, a := range day.Activities {
			p.line("  %-9s | %s ($%.2f)", a.Time, a.Name, a.Cost)
			if a.Description != "" {
				p.line("              %s", a.Description)
			}
		}
		if day.Notes != "" {
			p.line("  Notes: %s", day.Notes)
		}
	}

	bb := it.Budget
	p.line("")
	p.raw(heavyRule)
	p.line("BUDGET BREAKDOWN")
	p.raw(heavyRule)
	p.line("Accommodation: $%.2f", bb.Accommodation)
	p.line("Activities:    $%.2f", bb.Activities)
	p.line("Meals:         $%.2f", bb.Meals)
	p.line("Transport:     $%.2f", bb.Transportation)
	p.raw(lightRule)
	p.line("TOTAL:         $%.2f", bb.Total)
	p.line("Within Budget: %s", yesNo(bb.WithinBudget))
	if len(bb.SavingsSuggestions) > 0 {
		p.line("")
		p.line("Savings Suggestions:")
		for _, s := range bb.SavingsSuggestions {
			p.line("  * %s", s)
		}
	}

	p.line("")
	p.raw(heavyRule)
	p.line("BOOKING OPTIONS")
	p.raw(heavyRule)
	for _, opt := range it.Bookings {
		p.line("%s (%s)", opt.Name, opt.Type)
		p.line("  Price: $%.2f | Rating: %.1f", opt.Price, opt.Rating)
		if len(opt.Features) > 0 {
			p.line("  Features: %s", strings.Join(opt.Features, ", "))
		}
		p.line("")
	}

	p.line("Generated in %d of %d iteration(s)", it.IterationCount, it.MaxIterations)
	p.raw(heavyRule)
	return p.err
}

// FormatScenario renders one evaluated scenario.
func FormatScenario(r eval.ScenarioResult) string {
	var b strings.Builder
	_ = WriteScenario(&b, r)
	return b.String()
}

func WriteScenario(w io.Writer, r eval.ScenarioResult) error {
	p := &printer{w: w}
	p.line("Scenario: %s", r.Name)
	if r.Error != "" {
		p.line("Status: FAILED")
		p.line("Error: %s", r.Error)
		return p.err
	}
	p.line("Overall Score: %.1f%%", r.OverallScore*100)
	p.line("Status: %s", passFail(r.Passed))
	p.line("")
	p.line("Metrics:")
	for _, m := range r.Metrics {
		mark := "x"
		if m.Passed {
			mark = "+"
		}
		p.line("  [%s] %s: %.0f%%", mark, m.Name, m.Score*100)
		p.line("      %s", m.Details)
	}
	p.line("")
	p.line("Itinerary Summary:")
	p.line("  Destination: %s", r.Destination)
	p.line("  Budget: $%.2f", r.Budget)
	p.line("  Actual Cost: $%.2f", r.ActualCost)
	if r.Itinerary != nil {
		p.line("  Days Planned: %d", len(r.Itinerary.Days))
	}
	p.line("  Iterations: %d", r.Iterations)
	return p.err
}

// FormatSummary renders every scenario followed by the suite totals.
func FormatSummary(s eval.SuiteSummary) string {
	var b strings.Builder
	p := &printer{w: &b}
	for _, r := range s.Scenarios {
		_ = WriteScenario(&b, r)
		p.line("")
	}
	p.raw(heavyRule)
	p.line("EVALUATION SUMMARY")
	p.raw(heavyRule)
	p.line("Total Scenarios: %d", s.TotalScenarios)
	p.line("Passed: %d/%d", s.Passed, s.TotalScenarios)
	p.line("Average Score: %.1f%%", s.AverageScore*100)
	p.line("Overall Status: %s", passFail(s.AllPassed()))
	return b.String()
}

// printer keeps the first write error so rendering code stays linear.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s+"\n")
}

func dayLabel(d contractx.DayPlan) string {
	if strings.TrimSpace(d.Date) != "" {
		return d.Date
	}
	return fmt.Sprintf("Day %d", d.Day)
}

func yesNo(ok bool) string {
	if ok {
		return "YES"
	}
	return "NO"
}

func passFail(ok bool) string {
	if ok {
		return "PASSED"
	}
	return "FAILED"
}
