package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obswatch/lenswatch/internal/dcnorm"
	"github.com/obswatch/lenswatch/internal/kernel"
	"github.com/obswatch/lenswatch/internal/report"
	"github.com/obswatch/lenswatch/internal/trigger"
)

func baseArgs() []string {
	return []string{
		"--input", "testdata",
		"--templates-file", "templates.yaml",
		"--window-length", "16",
	}
}

func TestParseMinimalValidArgs(t *testing.T) {
	var cfg, err = Parse(baseArgs())
	require.NoError(t, err)

	assert.Equal(t, "testdata", cfg.Input)
	assert.Equal(t, 16, cfg.MinWindowLength)
	assert.Equal(t, 16, cfg.MaxWindowLength)
	assert.Equal(t, dcnorm.None, cfg.DCMode)
	assert.Equal(t, trigger.None, cfg.DetectorTrigger)
	assert.Equal(t, kernel.DoubleSided, cfg.DetectorVariant)
	assert.Equal(t, report.None, cfg.Sort)
}

func TestParseRequiresInputOrGWACFile(t *testing.T) {
	var _, err = Parse([]string{"--templates-file", "t.yaml", "--window-length", "8"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "one of --input or --gwac-file")
}

func TestParseRejectsBothInputAndGWACFile(t *testing.T) {
	var args = append(baseArgs(), "--gwac-file", "feed.jsonl")

	var _, err = Parse(args)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestParseRequiresTemplatesFile(t *testing.T) {
	var _, err = Parse([]string{"--input", "testdata", "--window-length", "8"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--templates-file is required")
}

func TestParseRejectsInvertedWindowBounds(t *testing.T) {
	var args = []string{
		"--input", "testdata",
		"--templates-file", "t.yaml",
		"--min-window-length", "20",
		"--max-window-length", "10",
	}

	var _, err = Parse(args)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid window length bounds")
}

func TestParseMinMaxWindowLengthSetsVariableWindow(t *testing.T) {
	var args = []string{
		"--input", "testdata",
		"--templates-file", "t.yaml",
		"--min-window-length", "8",
		"--max-window-length", "32",
	}

	var cfg, err = Parse(args)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.MinWindowLength)
	assert.Equal(t, 32, cfg.MaxWindowLength)
}

func TestParseRejectsUnknownEnumValues(t *testing.T) {
	var cases = []struct {
		name string
		flag string
	}{
		{"window-func", "--window-func"},
		{"dc-norm", "--dc-norm"},
		{"detector-trigger", "--detector-trigger"},
		{"detector-variant", "--detector-variant"},
		{"sort", "--sort"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var args = append(append([]string{}, baseArgs()...), tc.flag, "NotARealValue")

			var _, err = Parse(args)
			require.Error(t, err)
		})
	}
}

func TestParseRejectsNonPositiveSkipDeltaOrFragment(t *testing.T) {
	var argsSkip = append(append([]string{}, baseArgs()...), "--skip-delta", "0")
	var _, err = Parse(argsSkip)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--skip-delta")

	var argsFragment = append(append([]string{}, baseArgs()...), "--fragment", "0")
	_, err = Parse(argsFragment)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--fragment")
}

func TestParsePlotFlag(t *testing.T) {
	var args = append(append([]string{}, baseArgs()...), "--plot")

	var cfg, err = Parse(args)
	require.NoError(t, err)
	assert.True(t, cfg.Plot)
}
