package ringbuf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/obswatch/lenswatch/internal/ringbuf"
)

func TestRingOverWords(t *testing.T) {
	// Scenario 1 from spec.md §8: capacity 5, push 7 words, check the
	// surviving window and the evicted value.
	var b = ringbuf.New[string](5)

	var words = []string{"the", "dog", "jumps", "over", "a", "white", "fence"}

	var lastEvicted string
	var lastEvictedOK bool

	for _, w := range words {
		lastEvicted, lastEvictedOK = b.Push(w)
	}

	assert.True(t, lastEvictedOK)
	assert.Equal(t, "dog", lastEvicted)

	var want = []string{"jumps", "over", "a", "white", "fence"}
	for i, w := range want {
		var got, ok = b.GetRelative(i)
		assert.True(t, ok)
		assert.Equal(t, w, got)
	}
}

func TestPushBelowCapacityNeverEvicts(t *testing.T) {
	var b = ringbuf.New[int](5)

	for i := 0; i < 5; i++ {
		var _, ok = b.Push(i)
		assert.False(t, ok, "push %d should not evict below capacity", i)
	}

	assert.Equal(t, 5, b.Len())
}

func TestOutOfRangeNeverPanics(t *testing.T) {
	var b = ringbuf.New[int](3)
	b.Push(1)

	var _, ok = b.GetRelative(-1)
	assert.False(t, ok)

	_, ok = b.GetRelative(5)
	assert.False(t, ok)

	_, ok = ringbuf.New[int](1).GetBack()
	assert.False(t, ok)
}

// TestRingInvariant is the property from spec.md §8: after pushing n <=
// cap values, GetRelative(i) returns the i-th pushed value for i in
// [0,n); after n > cap pushes, GetRelative(0) returns the (n-cap)-th
// pushed value.
func TestRingInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var capVal = rapid.IntRange(1, 32).Draw(t, "cap")
		var n = rapid.IntRange(0, 100).Draw(t, "n")

		var b = ringbuf.New[int](capVal)
		var pushed = make([]int, n)

		for i := 0; i < n; i++ {
			pushed[i] = rapid.Int().Draw(t, "v")
			b.Push(pushed[i])
		}

		if n <= capVal {
			for i := 0; i < n; i++ {
				var got, ok = b.GetRelative(i)
				if !ok || got != pushed[i] {
					t.Fatalf("GetRelative(%d) = %v, %v; want %v, true", i, got, ok, pushed[i])
				}
			}

			return
		}

		var got, ok = b.GetRelative(0)
		if !ok || got != pushed[n-capVal] {
			t.Fatalf("GetRelative(0) = %v, %v; want %v, true", got, ok, pushed[n-capVal])
		}
	})
}
