package plotting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obswatch/lenswatch/internal/plotting"
	"github.com/obswatch/lenswatch/internal/star"
)

func TestRenderPNGWritesFile(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "star.png")

	var err = plotting.RenderPNG(path, plotting.Trace{
		StarID:     star.StarID("s"),
		Scores:     []float32{0, 1, 2, 5, 1, 0},
		Threshold:  3,
		EventTicks: []int{3},
	})
	require.NoError(t, err)

	var info, statErr = os.Stat(path)
	require.NoError(t, statErr)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRenderPNGWithNoEventsOrScores(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "empty.png")

	var err = plotting.RenderPNG(path, plotting.Trace{StarID: star.StarID("s")})
	require.NoError(t, err)
}
