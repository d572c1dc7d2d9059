package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obswatch/lenswatch/internal/conditioning"
	"github.com/obswatch/lenswatch/internal/dcnorm"
	"github.com/obswatch/lenswatch/internal/kernel"
	"github.com/obswatch/lenswatch/internal/oracle"
	"github.com/obswatch/lenswatch/internal/star"
	"github.com/obswatch/lenswatch/internal/template"
	"github.com/obswatch/lenswatch/internal/trigger"
)

func flatTemplate(n int) []float32 {
	var t = make([]float32, n)
	for i := range t {
		t[i] = 1
	}

	return t
}

func spikeSamples(n int, spikeAt int, amplitude float32) []float32 {
	var s = make([]float32, n)
	for i := range s {
		s[i] = 1
	}

	if spikeAt >= 0 && spikeAt < n {
		s[spikeAt] = amplitude
	}

	return s
}

func newTestBank(t *testing.T) *template.Bank {
	t.Helper()

	var bank, err = template.New([][]float32{flatTemplate(4)}, template.Config{GroupSize: 1, DCMode: dcnorm.None})
	require.NoError(t, err)

	return bank
}

// TestOfflineRunFragmentedScheduleNoTrigger reproduces a two-star
// fragmented offline run (analogous to the star package's
// TestFragmentedSchedule) and checks both stars accumulate scores
// with no event raised, since the samples carry no anomaly.
func TestOfflineRunFragmentedScheduleNoTrigger(t *testing.T) {
	var bank = newTestBank(t)

	var samples = map[star.StarID][]float32{
		"alpha": {1, 1, 1, 1, 1, 1, 1, 1},
		"beta":  {1, 1, 1, 1, 1, 1, 1, 1},
	}

	var rc = NewOfflineRun(OfflineConfig{
		Samples:         samples,
		WindowMin:       4,
		WindowMax:       4,
		Fragment:        2,
		SkipDelta:       1,
		Bank:            bank,
		DCMode:          conditioning.Config{DCMode: dcnorm.None, WindowFunc: conditioning.Rectangle},
		TriggerKind:     trigger.None,
		DetectorVariant: kernel.DoubleSided,
		Backend:         kernel.GonumBackend{},
		AlertThreshold:  1000,
	})

	var err = rc.Run(context.Background())
	require.NoError(t, err)

	var summaries = rc.Report().Sorted(0)
	require.Len(t, summaries, 2)

	for _, s := range summaries {
		assert.NotEmpty(t, s.Scores)
		assert.Empty(t, s.Events)
	}
}

// TestOfflineRunThresholdTriggerRecordsEvent drives a single star with
// a late outlier sample and a Threshold policy with a low threshold,
// confirming an event reaches the report with an oracle classification.
// The threshold (5) lies below the flat baseline's own score (32 for a
// window of four ones against the flat template), so the first window
// already triggers, before the spike arrives.
func TestOfflineRunThresholdTriggerRecordsEvent(t *testing.T) {
	var bank = newTestBank(t)

	var samples = map[star.StarID][]float32{
		"alpha": spikeSamples(12, 8, 50),
	}

	var rc = NewOfflineRun(OfflineConfig{
		Samples:         samples,
		WindowMin:       4,
		WindowMax:       4,
		Fragment:        1,
		SkipDelta:       1,
		Bank:            bank,
		DCMode:          conditioning.Config{DCMode: dcnorm.None, WindowFunc: conditioning.Rectangle},
		TriggerKind:     trigger.Threshold,
		DetectorVariant: kernel.DoubleSided,
		Backend:         kernel.GonumBackend{},
		AlertThreshold:  5,
		Truth:           []oracle.Event{{StarID: "alpha", T0: 1, Duration: 20}},
	})

	var err = rc.Run(context.Background())
	require.NoError(t, err)

	var summaries = rc.Report().Sorted(0)
	require.Len(t, summaries, 1)
	require.NotEmpty(t, summaries[0].Events, "expected a score to cross the threshold")

	var ev = summaries[0].Events[0]
	assert.Equal(t, oracle.TruePositive, ev.Classification)
	assert.True(t, ev.HasADP)
}

// TestOfflineRunWriteSummaryRendersReport confirms the wired Report
// can be written out after a run completes.
func TestOfflineRunWriteSummaryRendersReport(t *testing.T) {
	var bank = newTestBank(t)

	var rc = NewOfflineRun(OfflineConfig{
		Samples:         map[star.StarID][]float32{"alpha": {1, 1, 1, 1, 1, 1}},
		WindowMin:       4,
		WindowMax:       4,
		Fragment:        1,
		SkipDelta:       1,
		Bank:            bank,
		DCMode:          conditioning.Config{DCMode: dcnorm.None, WindowFunc: conditioning.Rectangle},
		TriggerKind:     trigger.None,
		DetectorVariant: kernel.DoubleSided,
		Backend:         kernel.GonumBackend{},
		AlertThreshold:  1000,
	})

	require.NoError(t, rc.Run(context.Background()))

	var sb strings.Builder
	require.NoError(t, rc.Report().WriteSummary(&sb, 0))
	assert.Contains(t, sb.String(), "star=alpha")
}

// TestOfflineRunContextCancelStopsCleanly confirms a pre-cancelled
// context stops the run without surfacing ErrShuttingDown to the
// caller.
func TestOfflineRunContextCancelStopsCleanly(t *testing.T) {
	var bank = newTestBank(t)

	var rc = NewOfflineRun(OfflineConfig{
		Samples:         map[star.StarID][]float32{"alpha": make([]float32, 10000)},
		WindowMin:       4,
		WindowMax:       4,
		Fragment:        1,
		SkipDelta:       1,
		Bank:            bank,
		DCMode:          conditioning.Config{DCMode: dcnorm.None, WindowFunc: conditioning.Rectangle},
		TriggerKind:     trigger.None,
		DetectorVariant: kernel.DoubleSided,
		Backend:         kernel.GonumBackend{},
		AlertThreshold:  1000,
	})

	var ctx, cancel = context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var err = rc.Run(ctx)
	assert.NoError(t, err, "ErrShuttingDown must not leak out of Run")
}

// TestRunControllerForceExitHookNotInvokedWithoutSignal installs a
// force-exit hook, completes a run with no signal delivered, and checks
// the hook never fired.
func TestRunControllerForceExitHookNotInvokedWithoutSignal(t *testing.T) {
	var bank = newTestBank(t)

	var rc = NewOfflineRun(OfflineConfig{
		Samples:         map[star.StarID][]float32{"alpha": {1, 1, 1, 1}},
		WindowMin:       4,
		WindowMax:       4,
		Fragment:        1,
		SkipDelta:       1,
		Bank:            bank,
		DCMode:          conditioning.Config{DCMode: dcnorm.None, WindowFunc: conditioning.Rectangle},
		TriggerKind:     trigger.None,
		DetectorVariant: kernel.DoubleSided,
		Backend:         kernel.GonumBackend{},
		AlertThreshold:  1000,
	})

	var forced = make(chan struct{}, 1)
	rc.SetForceExitHook(func() { forced <- struct{}{} })

	require.NoError(t, rc.Run(context.Background()))

	select {
	case <-forced:
		t.Fatal("force-exit hook must not fire on a clean run with no signals")
	default:
	}
}
