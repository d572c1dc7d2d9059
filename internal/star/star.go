// Package star implements the per-star sliding-window state machine and
// its fragmented scheduling policy (spec.md §4.3).
package star

import "github.com/obswatch/lenswatch/internal/ringbuf"

// Sliding holds one star's window state: its sample buffer, the
// window-length bounds, and the countdown/fragment scheduling that
// staggers work across stars.
type Sliding struct {
	ID StarID

	buffer *ringbuf.Buffer[float32]
	curLen int

	wMin, wMax int

	fragment  int
	skipDelta int
	countdown int
}

// StarID is the opaque per-run star key (spec.md §3).
type StarID string

// Params configures a new Sliding window.
type Params struct {
	WMin, WMax int // inclusive bounds; equal means a fixed window
	Fragment   int // number of stagger phases, >= 1
	SkipDelta  int // ticks between eligibility events, >= 1
	Phase      int // this star's fragment phase, in [0, Fragment)
}

// New constructs a Sliding window for id with the given scheduling
// parameters. Initial countdown is Phase+1, per spec.md §4.3.
func New(id StarID, p Params) *Sliding {
	if p.Fragment < 1 {
		p.Fragment = 1
	}

	if p.SkipDelta < 1 {
		p.SkipDelta = 1
	}

	return &Sliding{
		ID:        id,
		buffer:    ringbuf.New[float32](p.WMax),
		wMin:      p.WMin,
		wMax:      p.WMax,
		fragment:  p.Fragment,
		skipDelta: p.SkipDelta,
		countdown: p.Phase + 1,
	}
}

// Push appends sample to the buffer, evicting the oldest value once
// full, and advances the eligibility countdown. Push never fails.
func (s *Sliding) Push(sample float32) {
	s.buffer.Push(sample)

	if s.curLen < s.wMax {
		s.curLen++
	}

	if s.curLen >= s.wMin && s.countdown > 0 {
		s.countdown--
	}
}

// IsReady reports whether the window currently satisfies spec.md
// §4.3's readiness predicate: WMin <= curLen <= WMax && countdown == 0.
func (s *Sliding) IsReady() bool {
	return s.curLen >= s.wMin && s.curLen <= s.wMax && s.countdown == 0
}

// Window returns a copy of the current window's first curLen elements
// (oldest-first) and resets the countdown to SkipDelta, if the star is
// ready. Otherwise it returns (nil, false). Calling Window twice
// without an intervening Push yields false the second time, since the
// countdown is no longer zero.
func (s *Sliding) Window() ([]float32, bool) {
	if !s.IsReady() {
		return nil, false
	}

	var w = s.buffer.Snapshot()

	s.countdown = s.skipDelta

	return w, true
}

// Len returns the current window occupancy.
func (s *Sliding) Len() int {
	return s.curLen
}
