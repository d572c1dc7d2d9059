package pipeline

import "github.com/obswatch/lenswatch/internal/barrier"

// Ticker is the producer task from spec.md §4.8: it advances time by
// pushing one tick's worth of samples into the shared starTable, then
// rendezvous with the Detector via the two-barrier handshake.
type Ticker struct {
	table    *starTable
	source   tickSource
	tickSide *barrier.Side
	compSide *barrier.Side
}

func newTicker(table *starTable, src tickSource, tickSide, compSide *barrier.Side) *Ticker {
	return &Ticker{table: table, source: src, tickSide: tickSide, compSide: compSide}
}

// Run pushes samples and rendezvous with the Detector until the
// source is exhausted or either side disconnects. It returns
// ErrShuttingDown for a clean stop, any other error for a genuine
// fault (spec.md §7).
func (t *Ticker) Run() error {
	for {
		var done, err = t.source.advance(t.table)
		if err != nil {
			t.tickSide.Close()
			t.compSide.Close()

			return err
		}

		if waitErr := t.tickSide.Wait(); waitErr != nil {
			return translateBarrierErr(waitErr)
		}

		if waitErr := t.compSide.Wait(); waitErr != nil {
			return translateBarrierErr(waitErr)
		}

		if done {
			t.tickSide.Close()
			t.compSide.Close()

			return nil
		}
	}
}
