// Package trigger implements the three TriggerPolicy variants that
// turn a per-star score stream into detection events (spec.md §4.6).
package trigger

import "github.com/obswatch/lenswatch/internal/star"

// Event is a single detection decision emitted by a Policy.
type Event struct {
	StarID star.StarID
	Tick   int
	Score  float32
}

// Kind selects a TriggerPolicy variant.
type Kind int

const (
	None Kind = iota
	Threshold
	ThreeInARow
)

// ParseKind parses a CLI-facing name into a Kind.
func ParseKind(name string) (Kind, bool) {
	switch name {
	case "None":
		return None, true
	case "Threshold":
		return Threshold, true
	case "ThreeInARow":
		return ThreeInARow, true
	default:
		return 0, false
	}
}

// Policy consumes (star_id, score, tick, threshold) in arrival order
// and decides whether to emit a detection event. Once a star has
// triggered, a Policy mutes it: every later call for that star returns
// ok=false.
type Policy interface {
	Evaluate(id star.StarID, score float32, tick int, threshold float32) (ev Event, ok bool)
}

// NewPolicy constructs a Policy for the given Kind.
func NewPolicy(kind Kind) Policy {
	switch kind {
	case Threshold:
		return &thresholdPolicy{triggered: make(map[star.StarID]struct{})}
	case ThreeInARow:
		return &threeInARowPolicy{
			triggered: make(map[star.StarID]struct{}),
			streak:    make(map[star.StarID]int),
		}
	default:
		return nonePolicy{}
	}
}

type nonePolicy struct{}

func (nonePolicy) Evaluate(star.StarID, float32, int, float32) (Event, bool) {
	return Event{}, false
}

// thresholdPolicy emits once, the first time a star's score exceeds
// the threshold, then mutes that star permanently.
type thresholdPolicy struct {
	triggered map[star.StarID]struct{}
}

func (p *thresholdPolicy) Evaluate(id star.StarID, score float32, tick int, threshold float32) (Event, bool) {
	if _, done := p.triggered[id]; done {
		return Event{}, false
	}

	if score <= threshold {
		return Event{}, false
	}

	p.triggered[id] = struct{}{}

	return Event{StarID: id, Tick: tick, Score: score}, true
}

// threeInARowPolicy tracks a per-star consecutive-above-threshold
// streak (reset by any score at or below threshold) and emits once the
// streak reaches three, then mutes that star permanently.
type threeInARowPolicy struct {
	triggered map[star.StarID]struct{}
	streak    map[star.StarID]int
}

func (p *threeInARowPolicy) Evaluate(id star.StarID, score float32, tick int, threshold float32) (Event, bool) {
	if _, done := p.triggered[id]; done {
		return Event{}, false
	}

	if score > threshold {
		p.streak[id]++
	} else {
		p.streak[id] = 0
	}

	if p.streak[id] < 3 {
		return Event{}, false
	}

	p.triggered[id] = struct{}{}
	delete(p.streak, id)

	return Event{StarID: id, Tick: tick, Score: score}, true
}
