package trigger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obswatch/lenswatch/internal/star"
	"github.com/obswatch/lenswatch/internal/trigger"
)

func TestNonePolicyNeverTriggers(t *testing.T) {
	var p = trigger.NewPolicy(trigger.None)

	var _, ok = p.Evaluate(star.StarID("s"), 1000, 1, 0)
	assert.False(t, ok)
}

func TestThresholdOnceThenMutes(t *testing.T) {
	var p = trigger.NewPolicy(trigger.Threshold)
	var id = star.StarID("s")

	var scores = []float32{0, 0, 0, 10, 10, 10, 10}
	var threshold = float32(5)

	var events []trigger.Event

	for tick, score := range scores {
		var ev, ok = p.Evaluate(id, score, tick, threshold)
		if ok {
			events = append(events, ev)
		}
	}

	require.Len(t, events, 1)
	assert.Equal(t, 3, events[0].Tick)
}

func TestThreeInARowIgnoresIsolatedSpike(t *testing.T) {
	var p = trigger.NewPolicy(trigger.ThreeInARow)
	var id = star.StarID("s")

	var hi, lo = float32(10), float32(0)
	var scores = []float32{hi, lo, hi, hi, hi, lo}
	var threshold = float32(5)

	var events []trigger.Event

	for tick, score := range scores {
		var ev, ok = p.Evaluate(id, score, tick, threshold)
		if ok {
			events = append(events, ev)
		}
	}

	require.Len(t, events, 1)
	assert.Equal(t, 4, events[0].Tick) // third consecutive "hi" is index 4
}

func TestThreeInARowMutesAfterTrigger(t *testing.T) {
	var p = trigger.NewPolicy(trigger.ThreeInARow)
	var id = star.StarID("s")

	for tick := 0; tick < 5; tick++ {
		p.Evaluate(id, 10, tick, 5)
	}

	var _, ok = p.Evaluate(id, 10, 5, 5)
	assert.False(t, ok)
}

func TestPoliciesAreIndependentPerStar(t *testing.T) {
	var p = trigger.NewPolicy(trigger.Threshold)

	var a = star.StarID("a")
	var b = star.StarID("b")

	var _, okA = p.Evaluate(a, 10, 0, 5)
	assert.True(t, okA)

	var _, okB = p.Evaluate(b, 10, 0, 5)
	assert.True(t, okB)
}
