package pipeline

import (
	"errors"

	"github.com/obswatch/lenswatch/internal/barrier"
	"github.com/obswatch/lenswatch/internal/conditioning"
	"github.com/obswatch/lenswatch/internal/kernel"
	"github.com/obswatch/lenswatch/internal/oracle"
	"github.com/obswatch/lenswatch/internal/report"
	"github.com/obswatch/lenswatch/internal/star"
	"github.com/obswatch/lenswatch/internal/template"
	"github.com/obswatch/lenswatch/internal/trigger"
)

// Detector is the consumer task from spec.md §4.9: it snapshots ready
// windows under the barrier handshake, runs them through the
// SignalConditioner and MatchedFilterKernel, and queries the
// TriggerPolicy for each resulting score.
type Detector struct {
	table    *starTable
	tickSide *barrier.Side
	compSide *barrier.Side

	conditioner *conditioning.Conditioner
	bank        *template.Bank
	kernel      *kernel.Kernel
	policy      trigger.Policy
	oracle      *oracle.GroundTruthOracle // nil when no ground truth is configured
	report      *report.Report
	threshold   float32
	logger      *report.Logger

	tick int
}

func newDetector(
	table *starTable,
	tickSide, compSide *barrier.Side,
	conditioner *conditioning.Conditioner,
	bank *template.Bank,
	k *kernel.Kernel,
	policy trigger.Policy,
	o *oracle.GroundTruthOracle,
	rep *report.Report,
	threshold float32,
) *Detector {
	return &Detector{
		table:       table,
		tickSide:    tickSide,
		compSide:    compSide,
		conditioner: conditioner,
		bank:        bank,
		kernel:      k,
		policy:      policy,
		oracle:      o,
		report:      rep,
		threshold:   threshold,
	}
}

// Tick returns the detector's local tick counter, incremented once
// per successful kernel invocation (spec.md §5).
func (d *Detector) Tick() int {
	return d.tick
}

// SetLogger attaches a logger used to report recovered
// TransientKernelErrors at Warn level (spec.md §7).
func (d *Detector) SetLogger(l *report.Logger) {
	d.logger = l
}

// Run executes the detector loop until the barrier pair disconnects.
// It returns ErrShuttingDown for a clean stop.
func (d *Detector) Run() error {
	for {
		if err := d.tickSide.Wait(); err != nil {
			return translateBarrierErr(err)
		}

		var snapshot = d.table.snapshot()

		if err := d.compSide.Wait(); err != nil {
			return translateBarrierErr(err)
		}

		if len(snapshot) == 0 {
			continue
		}

		if err := d.runTick(snapshot); err != nil {
			return err
		}
	}
}

func (d *Detector) runTick(snapshot []readyWindow) error {
	var signals = make([]kernel.Signal, len(snapshot))
	for i, rw := range snapshot {
		signals[i] = kernel.Signal{ID: rw.StarID, Samples: d.conditioner.Condition(rw.StarID, rw.Window)}
	}

	var scores, err = d.kernel.Run(d.bank, signals)
	if err != nil {
		var transient *kernel.TransientKernelError
		if errors.As(err, &transient) {
			if d.logger != nil {
				d.logger.Warnf("kernel invocation skipped: %v", err)
			}

			return nil
		}

		return err
	}

	d.tick++

	for _, sc := range scores {
		d.report.RecordScore(sc.ID, sc.Value)

		var ev, triggered = d.policy.Evaluate(sc.ID, sc.Value, d.tick, d.threshold)
		if !triggered {
			continue
		}

		d.recordEvent(sc.ID, ev)
		d.table.remove(sc.ID)
		d.conditioner.Forget(sc.ID)
	}

	return nil
}

func (d *Detector) recordEvent(id star.StarID, ev trigger.Event) {
	var rec = report.EventRecord{Event: ev}

	if d.oracle != nil {
		rec.Classification = d.oracle.Classify(id, ev.Tick)

		if adp, ok := d.oracle.ComputeADP(id, ev.Tick); ok {
			rec.ADP = adp
			rec.HasADP = true
		}
	}

	d.report.RecordEvent(id, rec)
}
