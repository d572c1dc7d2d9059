package dcnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStarSideAndTemplateSideCoverEveryMode(t *testing.T) {
	var modes = []Mode{
		None, MeanRemoveStar, MeanRemoveTemplate, MeanRemoveBoth,
		NormAtZeroStar, NormAtZeroTemplate, NormAtZeroBoth,
		HistMeanRemoveStar, HistMeanRemoveStarAndTemplate,
		MeanRemoveConstBumpStarNormAtZeroTemplate,
		NormAtZeroStarMeanRemoveTemplate, MeanRemoveStarNormAtZeroTemplate,
	}

	for _, m := range modes {
		assert.NotPanics(t, func() {
			StarSide(m)
			TemplateSide(m)
		})
	}
}

func TestMixedModesCombineOppositeSides(t *testing.T) {
	assert.Equal(t, StarMinShift, StarSide(NormAtZeroStarMeanRemoveTemplate))
	assert.Equal(t, TemplateMeanRemove, TemplateSide(NormAtZeroStarMeanRemoveTemplate))

	assert.Equal(t, StarMeanRemove, StarSide(MeanRemoveStarNormAtZeroTemplate))
	assert.Equal(t, TemplateMinShift, TemplateSide(MeanRemoveStarNormAtZeroTemplate))
}

func TestParseModeRoundTrip(t *testing.T) {
	var names = []string{
		"None", "MeanRemoveStar", "MeanRemoveTemplate", "MeanRemoveBoth",
		"NormAtZeroStar", "NormAtZeroTemplate", "NormAtZeroBoth",
		"HistMeanRemoveStar", "HistMeanRemoveStarAndTemplate",
		"MeanRemoveConstBumpStarNormAtZeroTemplate",
		"NormAtZeroStarMeanRemoveTemplate", "MeanRemoveStarNormAtZeroTemplate",
	}

	for _, n := range names {
		var m, ok = ParseMode(n)
		assert.True(t, ok, n)
		assert.NotEqual(t, -1, int(m))
	}

	var _, ok = ParseMode("NotARealMode")
	assert.False(t, ok)
}

func TestApplyTemplateOpNoneIsIdentity(t *testing.T) {
	var xs = []float32{1, 2, 3}
	var out = ApplyTemplateOp(TemplateNone, xs)

	assert.Equal(t, xs, out)
}

func TestApplyTemplateOpDoesNotMutateInput(t *testing.T) {
	var xs = []float32{1, 2, 3}
	var original = append([]float32(nil), xs...)

	ApplyTemplateOp(TemplateMeanRemove, xs)

	assert.Equal(t, original, xs)
}

func TestMeanAndMinEmptySlice(t *testing.T) {
	assert.Equal(t, float32(0), Mean(nil))
	assert.Equal(t, float32(0), Min(nil))
}
