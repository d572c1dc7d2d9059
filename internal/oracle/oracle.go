// Package oracle adapts an external ground-truth source to classify
// detection events and compute the ADP (Anomaly Detection Point)
// metric named in the glossary: ((t-t0)/t')*100 for a classified true
// positive.
package oracle

import "github.com/obswatch/lenswatch/internal/star"

// Classification is the external verdict on a single detection event.
type Classification int

const (
	Unknown Classification = iota
	TruePositive
	FalsePositive
)

func (c Classification) String() string {
	switch c {
	case TruePositive:
		return "TruePositive"
	case FalsePositive:
		return "FalsePositive"
	default:
		return "Unknown"
	}
}

// Event describes one known anomaly in a star's light curve: it
// begins at tick T0 and lasts Duration ticks. A detection tick that
// falls inside [T0, T0+Duration) against the matching star classifies
// as TruePositive.
type Event struct {
	StarID   star.StarID
	T0       int
	Duration int
}

// GroundTruthOracle classifies detection events and scores the ADP
// metric against a fixed table of known events, one per star.
type GroundTruthOracle struct {
	events map[star.StarID]Event
}

// New constructs an oracle from a set of known ground-truth events.
// A star absent from truth has no matching event; any detection for
// it classifies as FalsePositive.
func New(truth []Event) *GroundTruthOracle {
	var o = &GroundTruthOracle{events: make(map[star.StarID]Event, len(truth))}

	for _, e := range truth {
		o.events[e.StarID] = e
	}

	return o
}

// Classify decides whether a detection at tick for id is a true or
// false positive.
func (o *GroundTruthOracle) Classify(id star.StarID, tick int) Classification {
	var e, ok = o.events[id]
	if !ok {
		return FalsePositive
	}

	if tick < e.T0 || tick >= e.T0+e.Duration {
		return FalsePositive
	}

	return TruePositive
}

// ComputeADP returns the Anomaly Detection Point metric for a
// classified true-positive detection at tick against id's known event:
// ((t-t0)/t')*100. It returns (0, false) if id has no known event or
// the event has zero duration.
func (o *GroundTruthOracle) ComputeADP(id star.StarID, tick int) (float64, bool) {
	var e, ok = o.events[id]
	if !ok || e.Duration == 0 {
		return 0, false
	}

	return float64(tick-e.T0) / float64(e.Duration) * 100, true
}
