package conditioning

import "github.com/obswatch/lenswatch/internal/ringbuf"

// warmupPoints is the number of points (k in spec.md §4.4) over which
// the historical-mean estimator blends the current window mean with
// the historical sum after leaving Startup.
const warmupPoints = 10

// stage is the HistoricalMeanState lifecycle from spec.md §4.4.
type stage int

const (
	stageStartup stage = iota
	stageWarmup
	stagePostStartup
)

// HistoricalMean is the per-star incremental historical-mean estimator
// of spec.md §4.4. Construct with NewHistoricalMean.
type HistoricalMean struct {
	ring    *ringbuf.Buffer[float32]
	minTime int

	stg              stage
	pointsSeen       int
	prevSum          float32
	warmupCounter    int
	currentMeanSplit float32
}

// NewHistoricalMean constructs an estimator with a ring of capacity
// delta+minTime, per spec.md §4.4.
func NewHistoricalMean(minTime, delta int) *HistoricalMean {
	if minTime < 1 {
		minTime = 1
	}

	if delta < 0 {
		delta = 0
	}

	return &HistoricalMean{
		ring:    ringbuf.New[float32](minTime + delta),
		minTime: minTime,
	}
}

// Update feeds the current window's mean and returns the effective
// mean to subtract, following the Startup -> Warmup -> PostStartup
// state machine of spec.md §4.4.
func (h *HistoricalMean) Update(windowMean float32) float32 {
	var evicted, evictedOK = h.ring.Push(windowMean)
	h.pointsSeen++

	if h.stg == stageStartup {
		if h.pointsSeen <= h.minTime {
			h.prevSum = float32(h.pointsSeen) * windowMean

			return windowMean
		}

		// Transition: immediately after points_seen > min_time. The
		// running sum restarts from zero, so the ring restarts with it
		// and from here on holds only post-Startup window means.
		h.stg = stageWarmup
		h.prevSum = 0
		h.warmupCounter = 0
		h.ring = ringbuf.New[float32](h.ring.MaxCapacity())
		h.ring.Push(windowMean)
		evictedOK = false
	}

	if h.stg == stageWarmup {
		h.prevSum += windowMean
		if evictedOK {
			h.prevSum -= evicted
		}

		h.warmupCounter++
		h.currentMeanSplit = max32(0, 1-float32(h.warmupCounter)/float32(warmupPoints))

		var historical = h.prevSum / float32(h.ring.Len())
		var effective = h.currentMeanSplit*windowMean + (1-h.currentMeanSplit)*historical

		if h.warmupCounter >= warmupPoints {
			h.currentMeanSplit = 0
			h.stg = stagePostStartup
		}

		return effective
	}

	// PostStartup.
	h.prevSum += windowMean
	if evictedOK {
		h.prevSum -= evicted
	}

	return h.prevSum / float32(h.ring.Len())
}

// Stage reports the estimator's current lifecycle stage, for tests.
func (h *HistoricalMean) Stage() string {
	switch h.stg {
	case stageStartup:
		return "Startup"
	case stageWarmup:
		return "Warmup"
	default:
		return "PostStartup"
	}
}

// NaturalSum recomputes the current ring's sum in O(N), for testing
// the incremental prevSum against the naive summation (spec.md §8).
func (h *HistoricalMean) NaturalSum() float32 {
	var sum float32
	for _, v := range h.ring.Snapshot() {
		sum += v
	}

	return sum
}

// PrevSum exposes the incrementally maintained sum, for testing.
func (h *HistoricalMean) PrevSum() float32 {
	return h.prevSum
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}

	return b
}
