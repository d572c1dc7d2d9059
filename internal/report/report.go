package report

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/obswatch/lenswatch/internal/oracle"
	"github.com/obswatch/lenswatch/internal/star"
	"github.com/obswatch/lenswatch/internal/trigger"
)

// SortMode selects the end-of-run star summary ordering (spec.md §6
// --sort). Implemented in the teacher's plain sort.Slice style; not a
// component spec.md's design names explicitly but implied by the CLI
// surface.
type SortMode int

const (
	None SortMode = iota
	Increasing
	Decreasing
)

// ParseSortMode parses a CLI-facing name into a SortMode.
func ParseSortMode(name string) (SortMode, bool) {
	switch name {
	case "None":
		return None, true
	case "Increasing":
		return Increasing, true
	case "Decreasing":
		return Decreasing, true
	default:
		return 0, false
	}
}

// EventRecord is one reported detection, with its ground-truth
// classification and ADP metric when the oracle could compute one.
type EventRecord struct {
	trigger.Event
	Classification oracle.Classification
	ADP            float64
	HasADP         bool
}

// StarSummary is one star's full retained history for the end-of-run
// report: every score seen (spec.md §4.9: "regardless of trigger,
// retain the score"), plus any events it raised.
type StarSummary struct {
	StarID    star.StarID
	Scores    []float32
	BestScore float32
	Events    []EventRecord
}

// Report accumulates per-star scores and events across a run. It is
// owned and driven by exactly one goroutine (the Detector task).
type Report struct {
	mu        sync.Mutex
	summaries map[star.StarID]*StarSummary
}

// New constructs an empty Report.
func New() *Report {
	return &Report{summaries: make(map[star.StarID]*StarSummary)}
}

// RecordScore retains a score for id, regardless of whether it
// triggered an event.
func (r *Report) RecordScore(id star.StarID, score float32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var s = r.summaryFor(id)
	s.Scores = append(s.Scores, score)

	if len(s.Scores) == 1 || score > s.BestScore {
		s.BestScore = score
	}
}

// RecordEvent attaches a classified detection event to id's summary.
func (r *Report) RecordEvent(id star.StarID, rec EventRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var s = r.summaryFor(id)
	s.Events = append(s.Events, rec)
}

func (r *Report) summaryFor(id star.StarID) *StarSummary {
	var s, ok = r.summaries[id]
	if !ok {
		s = &StarSummary{StarID: id}
		r.summaries[id] = s
	}

	return s
}

// Sorted returns every star's summary ordered per mode. None preserves
// an arbitrary but deterministic order (star ID).
func (r *Report) Sorted(mode SortMode) []StarSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out = make([]StarSummary, 0, len(r.summaries))
	for _, s := range r.summaries {
		out = append(out, *s)
	}

	switch mode {
	case Increasing:
		sort.Slice(out, func(i, j int) bool { return out[i].BestScore < out[j].BestScore })
	case Decreasing:
		sort.Slice(out, func(i, j int) bool { return out[i].BestScore > out[j].BestScore })
	default:
		sort.Slice(out, func(i, j int) bool { return out[i].StarID < out[j].StarID })
	}

	return out
}

// WriteSummary renders the end-of-run report, one line per star plus
// one line per event.
func (r *Report) WriteSummary(w io.Writer, mode SortMode) error {
	for _, s := range r.Sorted(mode) {
		if _, err := fmt.Fprintf(w, "star=%s samples=%d best_score=%.6f events=%d\n",
			s.StarID, len(s.Scores), s.BestScore, len(s.Events)); err != nil {
			return err
		}

		for _, ev := range s.Events {
			if _, err := fmt.Fprintf(w, "  event tick=%d score=%.6f classification=%s", ev.Tick, ev.Score, ev.Classification); err != nil {
				return err
			}

			if ev.HasADP {
				if _, err := fmt.Fprintf(w, " adp=%.2f", ev.ADP); err != nil {
					return err
				}
			}

			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
	}

	return nil
}
