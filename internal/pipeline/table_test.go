package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obswatch/lenswatch/internal/star"
)

func TestStarTablePushAndSnapshot(t *testing.T) {
	var tbl = newStarTable()
	var params = star.Params{WMin: 2, WMax: 2, Fragment: 1, SkipDelta: 1}

	tbl.ensure(star.StarID("a"), params)
	tbl.ensure(star.StarID("b"), params)

	assert.True(t, tbl.push(star.StarID("a"), 1))
	assert.True(t, tbl.push(star.StarID("b"), 10))
	assert.Empty(t, tbl.snapshot(), "not ready until WMin samples pushed")

	assert.True(t, tbl.push(star.StarID("a"), 2))
	assert.True(t, tbl.push(star.StarID("b"), 20))

	var snap = tbl.snapshot()
	require.Len(t, snap, 2)
}

func TestStarTablePushUnknownStarReturnsFalse(t *testing.T) {
	var tbl = newStarTable()

	assert.False(t, tbl.push(star.StarID("ghost"), 1))
}

func TestStarTableRemove(t *testing.T) {
	var tbl = newStarTable()
	tbl.ensure(star.StarID("a"), star.Params{WMin: 1, WMax: 1, Fragment: 1, SkipDelta: 1})

	assert.Equal(t, 1, tbl.size())

	tbl.remove(star.StarID("a"))
	assert.Equal(t, 0, tbl.size())
	assert.False(t, tbl.push(star.StarID("a"), 1))
}

func TestStarTableAssignsDistinctFragmentPhases(t *testing.T) {
	var tbl = newStarTable()
	var params = star.Params{WMin: 1, WMax: 1, Fragment: 2, SkipDelta: 1}

	var a = tbl.ensure(star.StarID("a"), params)
	var b = tbl.ensure(star.StarID("b"), params)

	// a gets phase 0 (countdown 1), b gets phase 1 (countdown 2): a
	// becomes ready one push before b.
	a.Push(1)
	_, aReady := a.Window()
	assert.True(t, aReady)

	b.Push(1)
	_, bReady := b.Window()
	assert.False(t, bReady)
}
