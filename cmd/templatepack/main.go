// Command templatepack builds a template pack descriptor and payload
// from a directory of raw tabular waveform files, for --templates-file
// (spec.md §6).
package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/obswatch/lenswatch/internal/report"
)

type descriptor struct {
	Payload string `yaml:"payload"`
	Lengths []int  `yaml:"lengths"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var logger = report.NewLogger(os.Stderr)

	if len(args) != 2 {
		fmt.Println("Usage: templatepack <waveform-dir> <out-prefix>")

		return -1
	}

	var srcDir, outPrefix = args[0], args[1]

	var templates, err = loadWaveforms(srcDir)
	if err != nil {
		logger.Errorf("%v", err)

		return -1
	}

	if writeErr := writePack(templates, outPrefix); writeErr != nil {
		logger.Errorf("%v", writeErr)

		return -1
	}

	logger.Infof("wrote %d templates to %s.bin / %s.yaml", len(templates), outPrefix, outPrefix)

	return 0
}

// loadWaveforms reads every file in dir as a whitespace-separated
// list of float32 values, one template per file, ordered by filename.
func loadWaveforms(dir string) ([][]float32, error) {
	var entries, err = os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}

	sort.Strings(names)

	var out [][]float32

	for _, name := range names {
		var raw, readErr = os.ReadFile(filepath.Join(dir, name))
		if readErr != nil {
			return nil, readErr
		}

		var values []float32

		for _, f := range strings.Fields(string(raw)) {
			var v, parseErr = strconv.ParseFloat(f, 32)
			if parseErr != nil {
				continue
			}

			values = append(values, float32(v))
		}

		out = append(out, values)
	}

	return out, nil
}

func writePack(templates [][]float32, outPrefix string) error {
	var lengths = make([]int, len(templates))
	var flat []float32

	for i, t := range templates {
		lengths[i] = len(t)
		flat = append(flat, t...)
	}

	var binPath = outPrefix + ".bin"
	var payload = make([]byte, len(flat)*4)

	for i, v := range flat {
		binary.LittleEndian.PutUint32(payload[i*4:i*4+4], math.Float32bits(v))
	}

	if err := os.WriteFile(binPath, payload, 0o644); err != nil {
		return err
	}

	var desc = descriptor{Payload: filepath.Base(binPath), Lengths: lengths}

	var out, err = yaml.Marshal(desc)
	if err != nil {
		return err
	}

	return os.WriteFile(outPrefix+".yaml", out, 0o644)
}
