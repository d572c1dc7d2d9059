// Command lenswatch runs the matched-filter anomaly detector against
// an offline star directory or a live frame feed (spec.md §6).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/obswatch/lenswatch/internal/config"
	"github.com/obswatch/lenswatch/internal/conditioning"
	"github.com/obswatch/lenswatch/internal/kernel"
	"github.com/obswatch/lenswatch/internal/pipeline"
	"github.com/obswatch/lenswatch/internal/plotting"
	"github.com/obswatch/lenswatch/internal/report"
	"github.com/obswatch/lenswatch/internal/source"
	"github.com/obswatch/lenswatch/internal/template"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var logger = report.NewLogger(os.Stderr)

	var cfg, err = config.Parse(args)
	if err != nil {
		logger.Errorf("%v", err)

		return -1
	}

	var rawTemplates, tplErr = source.LoadTemplatePack(cfg.TemplatesFile)
	if tplErr != nil {
		logger.Errorf("%v", tplErr)

		return -1
	}

	var bank, bankErr = template.New(rawTemplates, template.Config{
		GroupSize: cfg.TemplateGroupSize,
		DCMode:    cfg.DCMode,
	})
	if bankErr != nil {
		logger.Errorf("%v", bankErr)

		return -1
	}

	var controller, ctrlErr = buildController(cfg, bank, logger)
	if ctrlErr != nil {
		logger.Errorf("%v", ctrlErr)

		return -1
	}

	var ctx, cancel = signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	controller.SetForceExitHook(func() { os.Exit(-1) })

	if runErr := controller.Run(ctx); runErr != nil {
		logger.Errorf("%v", runErr)

		return -1
	}

	if writeErr := writeReport(controller.Report(), cfg); writeErr != nil {
		logger.Errorf("%v", writeErr)

		return -1
	}

	if cfg.Plot {
		if plotErr := renderPlots(controller.Report(), cfg); plotErr != nil {
			logger.Errorf("%v", plotErr)

			return -1
		}
	}

	return 0
}

func buildController(cfg *config.Config, bank *template.Bank, logger *report.Logger) (*pipeline.RunController, error) {
	var condCfg = conditioning.Config{
		DCMode:     cfg.DCMode,
		WindowFunc: cfg.WindowFunc,
	}

	if cfg.Input != "" {
		var samples, err = source.LoadDir(cfg.Input)
		if err != nil {
			return nil, err
		}

		var controller = pipeline.NewOfflineRun(pipeline.OfflineConfig{
			Samples:         samples,
			WindowMin:       cfg.MinWindowLength,
			WindowMax:       cfg.MaxWindowLength,
			Fragment:        cfg.Fragment,
			SkipDelta:       cfg.SkipDelta,
			Bank:            bank,
			DCMode:          condCfg,
			TriggerKind:     cfg.DetectorTrigger,
			DetectorVariant: cfg.DetectorVariant,
			Backend:         kernel.GonumBackend{},
			SignalGroupLen:  cfg.StarGroupSize,
			AlertThreshold:  cfg.AlertThreshold,
			Logger:          logger,
		})

		return controller, nil
	}

	var feed, err = os.Open(cfg.GWACFile)
	if err != nil {
		return nil, &source.SourceError{Path: cfg.GWACFile, Cause: err}
	}

	var reader = source.NewLiveFrameReader(feed)

	var controller = pipeline.NewLiveRun(pipeline.LiveConfig{
		Reader:          reader,
		WindowMin:       cfg.MinWindowLength,
		WindowMax:       cfg.MaxWindowLength,
		Fragment:        cfg.Fragment,
		SkipDelta:       cfg.SkipDelta,
		Bank:            bank,
		DCMode:          condCfg,
		TriggerKind:     cfg.DetectorTrigger,
		DetectorVariant: cfg.DetectorVariant,
		Backend:         kernel.GonumBackend{},
		SignalGroupLen:  cfg.StarGroupSize,
		AlertThreshold:  cfg.AlertThreshold,
		Logger:          logger,
	})

	return controller, nil
}

func writeReport(rep *report.Report, cfg *config.Config) error {
	var filename, err = report.DefaultReportFilename(time.Now())
	if err != nil {
		return err
	}

	var f, createErr = os.Create(filename)
	if createErr != nil {
		return createErr
	}
	defer f.Close()

	return rep.WriteSummary(f, cfg.Sort)
}

func renderPlots(rep *report.Report, cfg *config.Config) error {
	for _, s := range rep.Sorted(cfg.Sort) {
		var ticks = make([]int, len(s.Events))
		for i, ev := range s.Events {
			ticks[i] = ev.Tick
		}

		var path = fmt.Sprintf("%s.png", s.StarID)

		var trace = plotting.Trace{
			StarID:     s.StarID,
			Scores:     s.Scores,
			Threshold:  cfg.AlertThreshold,
			EventTicks: ticks,
		}

		if err := plotting.RenderPNG(path, trace); err != nil {
			return err
		}
	}

	return nil
}
