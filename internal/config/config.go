// Package config parses the CLI surface named in spec.md §6 with
// github.com/spf13/pflag, in the teacher's long/short-flag,
// custom-Usage style (src/atest.go, src/gen_packets.go).
package config

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/obswatch/lenswatch/internal/conditioning"
	"github.com/obswatch/lenswatch/internal/dcnorm"
	"github.com/obswatch/lenswatch/internal/kernel"
	"github.com/obswatch/lenswatch/internal/report"
	"github.com/obswatch/lenswatch/internal/trigger"
)

// ConfigError wraps a malformed CLI invocation or input file (spec.md
// §7); fatal at startup.
type ConfigError struct {
	Cause error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %v", e.Cause)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Config is the fully parsed, validated run configuration.
type Config struct {
	Input         string // directory of offline star files
	GWACFile      string // live frame source
	TemplatesFile string

	MinWindowLength int
	MaxWindowLength int

	SkipDelta int
	Fragment  int

	AlertThreshold float32

	WindowFunc      conditioning.WindowFunc
	DCMode          dcnorm.Mode
	DetectorTrigger trigger.Kind
	DetectorVariant kernel.Variant

	TemplateGroupSize int
	StarGroupSize     int

	Sort report.SortMode
	Plot bool
}

// Parse parses args (excluding the program name, as with
// pflag.CommandLine.Parse) into a validated Config.
func Parse(args []string) (*Config, error) {
	var fs = pflag.NewFlagSet("lenswatch", pflag.ContinueOnError)

	var input = fs.String("input", "", "directory of offline star files (mutually exclusive with --gwac-file)")
	var gwacFile = fs.String("gwac-file", "", "live frame source")
	var templatesFile = fs.String("templates-file", "", "template pack descriptor")

	var windowLength = fs.Int("window-length", 0, "fixed window length (alternative to --min/--max-window-length)")
	var minWindowLength = fs.Int("min-window-length", 0, "minimum window length")
	var maxWindowLength = fs.Int("max-window-length", 0, "maximum window length")

	var skipDelta = fs.Int("skip-delta", 1, "tick interval between eligibility events per star")
	var fragment = fs.Int("fragment", 1, "number of stagger phases")

	var alertThreshold = fs.Float32("alert-threshold", 0, "trigger threshold")

	var windowFunc = fs.String("window-func", "Rectangle", "window function: Rectangle, Triangle, Nuttall, Gaussian")
	var dcNorm = fs.String("dc-norm", "None", "DC-normalization mode")
	var detectorTrigger = fs.String("detector-trigger", "None", "trigger policy: None, Threshold, ThreeInARow")
	var detectorVariant = fs.String("detector-variant", "DoubleSided", "matched-filter kernel variant")

	var templateGroupSz = fs.Int("template-group-sz", 1, "template batching bound")
	var starGroupSz = fs.Int("star-group-sz", 0, "star subgroup batching bound (0 means unbounded)")

	var sort = fs.String("sort", "None", "report sort order: None, Increasing, Decreasing")
	var plot = fs.Bool("plot", false, "render a per-star score PNG for every run")

	fs.Usage = func() {
		fmt.Println("Usage: lenswatch [flags]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, &ConfigError{Cause: err}
	}

	if *input == "" && *gwacFile == "" {
		return nil, &ConfigError{Cause: fmt.Errorf("one of --input or --gwac-file is required")}
	}

	if *input != "" && *gwacFile != "" {
		return nil, &ConfigError{Cause: fmt.Errorf("--input and --gwac-file are mutually exclusive")}
	}

	if *templatesFile == "" {
		return nil, &ConfigError{Cause: fmt.Errorf("--templates-file is required")}
	}

	var minLen, maxLen = *minWindowLength, *maxWindowLength
	if *windowLength > 0 {
		minLen, maxLen = *windowLength, *windowLength
	}

	if minLen < 1 || maxLen < minLen {
		return nil, &ConfigError{Cause: fmt.Errorf("invalid window length bounds: min=%d max=%d", minLen, maxLen)}
	}

	var wf, wfOK = conditioning.ParseWindowFunc(*windowFunc)
	if !wfOK {
		return nil, &ConfigError{Cause: fmt.Errorf("unknown --window-func %q", *windowFunc)}
	}

	var dc, dcOK = dcnorm.ParseMode(*dcNorm)
	if !dcOK {
		return nil, &ConfigError{Cause: fmt.Errorf("unknown --dc-norm %q", *dcNorm)}
	}

	var trig, trigOK = trigger.ParseKind(*detectorTrigger)
	if !trigOK {
		return nil, &ConfigError{Cause: fmt.Errorf("unknown --detector-trigger %q", *detectorTrigger)}
	}

	var variant, variantOK = kernel.ParseVariant(*detectorVariant)
	if !variantOK {
		return nil, &ConfigError{Cause: fmt.Errorf("unknown --detector-variant %q", *detectorVariant)}
	}

	var sortMode, sortOK = report.ParseSortMode(*sort)
	if !sortOK {
		return nil, &ConfigError{Cause: fmt.Errorf("unknown --sort %q", *sort)}
	}

	if *skipDelta < 1 {
		return nil, &ConfigError{Cause: fmt.Errorf("--skip-delta must be >= 1")}
	}

	if *fragment < 1 {
		return nil, &ConfigError{Cause: fmt.Errorf("--fragment must be >= 1")}
	}

	return &Config{
		Input:             *input,
		GWACFile:          *gwacFile,
		TemplatesFile:     *templatesFile,
		MinWindowLength:   minLen,
		MaxWindowLength:   maxLen,
		SkipDelta:         *skipDelta,
		Fragment:          *fragment,
		AlertThreshold:    *alertThreshold,
		WindowFunc:        wf,
		DCMode:            dc,
		DetectorTrigger:   trig,
		DetectorVariant:   variant,
		TemplateGroupSize: *templateGroupSz,
		StarGroupSize:     *starGroupSz,
		Sort:              sortMode,
		Plot:              *plot,
	}, nil
}
