package pipeline

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/obswatch/lenswatch/internal/barrier"
	"github.com/obswatch/lenswatch/internal/conditioning"
	"github.com/obswatch/lenswatch/internal/kernel"
	"github.com/obswatch/lenswatch/internal/oracle"
	"github.com/obswatch/lenswatch/internal/report"
	"github.com/obswatch/lenswatch/internal/source"
	"github.com/obswatch/lenswatch/internal/star"
	"github.com/obswatch/lenswatch/internal/template"
	"github.com/obswatch/lenswatch/internal/trigger"
)

// progressInterval is how often the progress logger reports
// throughput (spec.md §5).
const progressInterval = 5 * time.Second

// RunController owns the process-wide shutdown watch (spec.md §5) and
// wires the Ticker, Detector, and progress logger into one run.
type RunController struct {
	ticker   *Ticker
	detector *Detector
	table    *starTable
	rep      *report.Report

	logger *report.Logger

	sigCh   chan os.Signal
	onForce func()
}

// SetForceExitHook overrides the action taken on a second SIGINT,
// normally os.Exit(-1). Tests use this to observe forced shutdown
// without killing the test process.
func (c *RunController) SetForceExitHook(fn func()) {
	c.onForce = fn
}

// OfflineConfig configures a run against a precomputed offline sample
// table (spec.md §4.8's offline mode).
type OfflineConfig struct {
	Samples   map[star.StarID][]float32
	WindowMin int
	WindowMax int
	Fragment  int
	SkipDelta int

	Bank            *template.Bank
	DCMode          conditioning.Config
	TriggerKind     trigger.Kind
	DetectorVariant kernel.Variant
	Backend         kernel.Backend
	SignalGroupLen  int
	AlertThreshold  float32

	Truth    []oracle.Event
	Report   *report.Report
	Logger   *report.Logger
}

// NewOfflineRun constructs a RunController for offline playback.
func NewOfflineRun(cfg OfflineConfig) *RunController {
	var table = newStarTable()

	var params = star.Params{WMin: cfg.WindowMin, WMax: cfg.WindowMax, Fragment: cfg.Fragment, SkipDelta: cfg.SkipDelta}
	var src = newOfflineSource(cfg.Samples, params)

	var tickA, tickB = barrier.New()
	var compA, compB = barrier.New()

	var conditioner = conditioning.New(cfg.DCMode)
	var k = kernel.New(cfg.Backend, cfg.DetectorVariant, cfg.SignalGroupLen)
	var policy = trigger.NewPolicy(cfg.TriggerKind)

	var rep = cfg.Report
	if rep == nil {
		rep = report.New()
	}

	var oc *oracle.GroundTruthOracle
	if len(cfg.Truth) > 0 {
		oc = oracle.New(cfg.Truth)
	}

	var ticker = newTicker(table, src, tickA, compA)
	var detector = newDetector(table, tickB, compB, conditioner, cfg.Bank, k, policy, oc, rep, cfg.AlertThreshold)
	detector.SetLogger(cfg.Logger)

	return &RunController{ticker: ticker, detector: detector, table: table, rep: rep, logger: cfg.Logger}
}

// LiveConfig configures a run against a live frame feed (spec.md
// §4.8's live mode).
type LiveConfig struct {
	Reader    *source.LiveFrameReader
	WindowMin int
	WindowMax int
	Fragment  int
	SkipDelta int

	Bank            *template.Bank
	DCMode          conditioning.Config
	TriggerKind     trigger.Kind
	DetectorVariant kernel.Variant
	Backend         kernel.Backend
	SignalGroupLen  int
	AlertThreshold  float32

	Truth  []oracle.Event
	Report *report.Report
	Logger *report.Logger
}

// NewLiveRun constructs a RunController for a live feed. Per spec.md
// §5 the live-mode ticker's blocking read happens on its own
// goroutine; Run already executes the Ticker on a dedicated goroutine,
// so no extra plumbing is needed here.
func NewLiveRun(cfg LiveConfig) *RunController {
	var table = newStarTable()

	var params = star.Params{WMin: cfg.WindowMin, WMax: cfg.WindowMax, Fragment: cfg.Fragment, SkipDelta: cfg.SkipDelta}
	var src = newLiveSource(cfg.Reader, params)

	var tickA, tickB = barrier.New()
	var compA, compB = barrier.New()

	var conditioner = conditioning.New(cfg.DCMode)
	var k = kernel.New(cfg.Backend, cfg.DetectorVariant, cfg.SignalGroupLen)
	var policy = trigger.NewPolicy(cfg.TriggerKind)

	var rep = cfg.Report
	if rep == nil {
		rep = report.New()
	}

	var oc *oracle.GroundTruthOracle
	if len(cfg.Truth) > 0 {
		oc = oracle.New(cfg.Truth)
	}

	var ticker = newTicker(table, src, tickA, compA)
	var detector = newDetector(table, tickB, compB, conditioner, cfg.Bank, k, policy, oc, rep, cfg.AlertThreshold)
	detector.SetLogger(cfg.Logger)

	return &RunController{ticker: ticker, detector: detector, table: table, rep: rep, logger: cfg.Logger}
}

// Run executes the Ticker and Detector concurrently until the source
// is exhausted, the feed closes, or a SIGINT arrives. A second SIGINT
// force-exits the process (spec.md §5, §6's exit code table).
func (c *RunController) Run(ctx context.Context) error {
	var ctx2, cancel = context.WithCancel(ctx)
	defer cancel()

	c.sigCh = make(chan os.Signal, 2)
	signal.Notify(c.sigCh, syscall.SIGINT)
	defer signal.Stop(c.sigCh)

	go progressLogger(ctx2, progressInterval, c.table, c.detector, c.logger)

	go func() {
		var sigCount int

		for range c.sigCh {
			sigCount++

			if sigCount == 1 {
				if c.logger != nil {
					c.logger.Info("shutdown requested (SIGINT); finishing current tick")
				}

				cancel()

				continue
			}

			if c.onForce != nil {
				c.onForce()

				continue
			}

			os.Exit(-1)
		}
	}()

	var wg sync.WaitGroup
	var tickerErr, detectorErr error

	wg.Add(2)

	go func() {
		defer wg.Done()
		tickerErr = c.ticker.Run()
	}()

	go func() {
		defer wg.Done()
		detectorErr = c.detector.Run()
	}()

	go func() {
		<-ctx2.Done()
		c.ticker.tickSide.Close()
		c.ticker.compSide.Close()
	}()

	wg.Wait()

	if tickerErr != nil && tickerErr != ErrShuttingDown {
		return tickerErr
	}

	if detectorErr != nil && detectorErr != ErrShuttingDown {
		return detectorErr
	}

	if c.logger != nil {
		c.logger.Info("run complete")
	}

	return nil
}

// Report returns the run's accumulated score/event report. Safe to
// call at any time; it fills in as the Detector processes ticks.
func (c *RunController) Report() *report.Report {
	return c.rep
}
