// Package pipeline implements the Ticker/Detector producer-consumer
// loop and the RunController that wires sources, the matched-filter
// core, and reporting together (spec.md §4.8, §4.9, §5).
package pipeline

import (
	"errors"

	"github.com/obswatch/lenswatch/internal/barrier"
)

// ErrShuttingDown is the sentinel surfaced by the Ticker and Detector
// loops once the shutdown watch is set; callers treat it as
// cooperative termination rather than a run failure (spec.md §7).
var ErrShuttingDown = errors.New("pipeline: shutting down")

// translateBarrierErr maps a barrier.Wait error onto the pipeline's
// own shutdown sentinel; any other error is returned unchanged.
func translateBarrierErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, barrier.ErrDisconnected) {
		return ErrShuttingDown
	}

	return err
}
