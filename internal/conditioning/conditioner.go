// Package conditioning implements per-tick batch preprocessing:
// DC normalization (including the stateful historical-mean estimator),
// stddev-based outlier removal, and windowing (spec.md §4.4).
package conditioning

import (
	"github.com/obswatch/lenswatch/internal/dcnorm"
	"github.com/obswatch/lenswatch/internal/star"
)

// Config configures a Conditioner.
type Config struct {
	DCMode     dcnorm.Mode
	WindowFunc WindowFunc
	MinTime    int // historical-mean min_time, only used by historical modes
	Delta      int // historical-mean delta, only used by historical modes
}

// Conditioner applies the spec.md §4.4 pipeline (DC normalization,
// outlier removal, windowing) to one star's window at a time. It owns
// the per-star HistoricalMean map explicitly (spec.md §9's "process-
// wide historical-mean state" design note) rather than relying on a
// lazily initialized global.
type Conditioner struct {
	cfg  Config
	hist map[star.StarID]*HistoricalMean
}

// New constructs a Conditioner. It is owned and driven by exactly one
// goroutine (the Detector task, per spec.md §5).
func New(cfg Config) *Conditioner {
	return &Conditioner{
		cfg:  cfg,
		hist: make(map[star.StarID]*HistoricalMean),
	}
}

// Condition runs one star's window through DC normalization, outlier
// removal, and windowing, in that order.
func (c *Conditioner) Condition(id star.StarID, window []float32) []float32 {
	var signal = c.applyDCNorm(id, window)
	signal = RemoveOutliers(signal)
	signal = ApplyWindow(c.cfg.WindowFunc, signal)

	return signal
}

func (c *Conditioner) applyDCNorm(id star.StarID, window []float32) []float32 {
	var op = dcnorm.StarSide(c.cfg.DCMode)
	var out = append([]float32(nil), window...)

	switch op {
	case dcnorm.StarNone:
		return out
	case dcnorm.StarMeanRemove:
		var mean = Mean(window)
		for i := range out {
			out[i] -= mean
		}
	case dcnorm.StarMinShift:
		var min = dcnorm.Min(window)
		for i := range out {
			out[i] -= min
		}
	case dcnorm.StarHistMeanRemove:
		var effective = c.histFor(id).Update(Mean(window))
		for i := range out {
			out[i] -= effective
		}
	case dcnorm.StarMeanRemoveBump:
		var mean = Mean(window)
		for i := range out {
			out[i] = out[i] - mean + dcnorm.ConstBump
		}
	}

	return out
}

func (c *Conditioner) histFor(id star.StarID) *HistoricalMean {
	var h, ok = c.hist[id]
	if !ok {
		h = NewHistoricalMean(c.cfg.MinTime, c.cfg.Delta)
		c.hist[id] = h
	}

	return h
}

// Forget drops a star's historical-mean state, called by the Detector
// when a star is removed from the run (e.g. after it triggers).
func (c *Conditioner) Forget(id star.StarID) {
	delete(c.hist, id)
}
