package cli

import (
	"fmt"
	"strconv"
	"strings"

	"hotel-curator/internal/cli/output"
	"hotel-curator/internal/domain"
)

const reasonsWidth = 60

type progressRenderer struct {
	p *output.Printer
}

func newProgressRenderer(p *output.Printer) *progressRenderer {
	return &progressRenderer{p: p}
}

func (r *progressRenderer) render(ev domain.PipelineEvent) {
	switch payload := ev.Payload.(type) {
	case domain.StartedPayload:
		r.p.Info("search %s started for region %d (%s to %s)", payload.RequestID, payload.RegionID, payload.Checkin, payload.Checkout)
	case domain.CandidatesFoundPayload:
		r.p.Info("found %d hotels, analyzing %d", payload.Total, payload.Analyzed)
	case domain.StageProgressPayload:
		r.stage(payload)
	case domain.PartialResultsPayload:
		r.p.Info("%s", r.p.Dim(fmt.Sprintf("  %d provisional results after %d/%d batches",
			len(payload.Results), payload.BatchesCompleted, payload.BatchesTotal)))
	case domain.ErrorPayload:
		r.p.Error("%s at %s: %s", payload.ErrorType, payload.Stage, payload.ErrorMessage)
	case domain.DonePayload:
		r.p.Success("%d results in %.1fs (%d shortlisted, %d degraded batches)",
			payload.Stats.Returned, payload.Stats.ElapsedSeconds, payload.Stats.Shortlisted, payload.Stats.DegradedBatches)
	}
}

func (r *progressRenderer) stage(s domain.StageProgressPayload) {
	if s.BatchOutcome == "" {
		line := "-> " + string(s.Stage)
		if s.Message != "" {
			line += ": " + s.Message
		}
		if s.Batches > 0 {
			line += fmt.Sprintf(" (%d batches, ~%d tokens)", s.Batches, s.EstimatedTokens)
		}
		r.p.Info("%s", line)
		return
	}
	line := fmt.Sprintf("  batch %d/%d %s", s.Batch, s.Batches, s.BatchOutcome)
	if s.Attempt > 1 {
		line += fmt.Sprintf(" (attempt %d)", s.Attempt)
	}
	if s.BatchOutcome == "degraded" {
		r.p.Warning("%s", line)
		return
	}
	r.p.Info("%s", line)
}

func renderResults(p *output.Printer, results []domain.Enriched) error {
	if len(results) == 0 {
		p.Warning("no results")
		return nil
	}
	p.Header("Top hotels")
	t := output.NewTable(p.Out(), []string{"#", "Score", "Hotel", "Stars", "Per night", "Why", "Book"}, 0, 1)
	for i, r := range results {
		t.AddRow([]string{
			strconv.Itoa(i + 1),
			scoreCell(p, r),
			r.Candidate.Name,
			starsCell(r.Candidate.StarRating),
			priceCell(r),
			truncate(strings.Join(r.TopReasons, "; "), reasonsWidth),
			r.BookingURL,
		})
	}
	return t.Render()
}

func renderSummary(p *output.Printer, s *domain.SearchSummary) {
	if s == nil {
		return
	}
	w := p.Out()
	p.Header("Summary")
	fmt.Fprintln(w, s.Overview)
	for i, pick := range s.TopPicks {
		fmt.Fprintf(w, "%d. %s: %s\n", i+1, pick.HotelName, pick.WhyRecommended)
	}
	if s.Considerations != "" {
		fmt.Fprintln(w, s.Considerations)
	}
	if s.FinalAdvice != "" {
		fmt.Fprintln(w, s.FinalAdvice)
	}
}

func scoreCell(p *output.Printer, r domain.Enriched) string {
	cell := p.Score(r.Score)
	if r.IsProvisional() {
		cell += "*"
	}
	if r.LowConfidence {
		cell += "?"
	}
	return cell
}

func starsCell(stars *float64) string {
	if stars == nil || *stars <= 0 {
		return "-"
	}
	return strings.Repeat("*", int(*stars))
}

// priceCell shows the selected offer, or the cheapest one when none was selected.
func priceCell(r domain.Enriched) string {
	offers := r.Candidate.Offers
	if len(offers) == 0 {
		return "-"
	}
	offer := offers[0]
	if r.SelectedOfferToken != nil {
		for _, o := range offers {
			if o.MatchToken == *r.SelectedOfferToken {
				offer = o
				break
			}
		}
	}
	if offer.PricePerNight == nil {
		return fmt.Sprintf("%.0f %s total", offer.Price.Amount, offer.Price.Currency)
	}
	return fmt.Sprintf("%.0f %s", *offer.PricePerNight, offer.Price.Currency)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
