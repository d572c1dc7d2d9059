package source

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/obswatch/lenswatch/internal/star"
)

// sampleRateSeconds is the tabular format's assumed cadence (spec.md
// §6); it is descriptive only, no loader computation depends on it.
const sampleRateSeconds = 15

// LoadDir reads every offline star file in dir and merges the result
// into one sample table, keyed by star ID. Format is chosen per file
// by extension: ".yaml"/".yml" is the key-value descriptor format,
// ".json" is the JSON format, anything else is treated as tabular.
func LoadDir(dir string) (map[star.StarID][]float32, error) {
	var entries, err = os.ReadDir(dir)
	if err != nil {
		return nil, &SourceError{Path: dir, Cause: err}
	}

	var out = make(map[star.StarID][]float32)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		var path = filepath.Join(dir, entry.Name())

		var samples map[star.StarID][]float32
		var loadErr error

		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml":
			var id, vals, descErr = loadKeyValue(path)
			if descErr == nil {
				samples = map[star.StarID][]float32{id: vals}
			}
			loadErr = descErr
		case ".json":
			samples, loadErr = loadJSON(path)
		default:
			var id, vals, tabErr = loadTabular(path)
			if tabErr == nil {
				samples = map[star.StarID][]float32{id: vals}
			}
			loadErr = tabErr
		}

		if loadErr != nil {
			return nil, loadErr
		}

		for id, vals := range samples {
			out[id] = append(out[id], vals...)
		}
	}

	return out, nil
}

// loadTabular parses the whitespace-separated "time f(t) ..." format.
// Only the second column is used, negated on ingest so that
// brightening reads positive. The star ID is the file's base name.
func loadTabular(path string) (star.StarID, []float32, error) {
	var f, err = os.Open(path)
	if err != nil {
		return "", nil, &SourceError{Path: path, Cause: err}
	}
	defer f.Close()

	var id = star.StarID(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	var out []float32

	var scanner = bufio.NewScanner(f)
	for scanner.Scan() {
		var fields = strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}

		var v, parseErr = strconv.ParseFloat(fields[1], 32)
		if parseErr != nil {
			continue
		}

		out = append(out, -float32(v))
	}

	if scanErr := scanner.Err(); scanErr != nil {
		return "", nil, &SourceError{Path: path, Cause: scanErr}
	}

	return id, out, nil
}

// starDescriptor is the key-value descriptor naming a companion
// payload file: a flat little-endian float32 vector.
type starDescriptor struct {
	StarID  string `yaml:"star_id"`
	Payload string `yaml:"payload"`
}

func loadKeyValue(path string) (star.StarID, []float32, error) {
	var raw, err = os.ReadFile(path)
	if err != nil {
		return "", nil, &SourceError{Path: path, Cause: err}
	}

	var desc starDescriptor
	if unmarshalErr := yaml.Unmarshal(raw, &desc); unmarshalErr != nil {
		return "", nil, &SourceError{Path: path, Cause: unmarshalErr}
	}

	var payloadPath = desc.Payload
	if !filepath.IsAbs(payloadPath) {
		payloadPath = filepath.Join(filepath.Dir(path), payloadPath)
	}

	var vals, payloadErr = readFloat32Payload(payloadPath)
	if payloadErr != nil {
		return "", nil, payloadErr
	}

	var id = desc.StarID
	if id == "" {
		id = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return star.StarID(id), vals, nil
}

func readFloat32Payload(path string) ([]float32, error) {
	var raw, err = os.ReadFile(path)
	if err != nil {
		return nil, &SourceError{Path: path, Cause: err}
	}

	if len(raw)%4 != 0 {
		return nil, &SourceError{Path: path, Cause: fmt.Errorf("payload length %d is not a multiple of 4", len(raw))}
	}

	var out = make([]float32, len(raw)/4)
	for i := range out {
		var bits = binary.LittleEndian.Uint32(raw[i*4 : i*4+4])
		out[i] = math.Float32frombits(bits)
	}

	return out, nil
}

// jsonRecord is one element of the JSON format's record array.
type jsonRecord struct {
	StarID  string `json:"star_id"`
	MagNorm string `json:"magnorm"`
}

// loadJSON parses the "{anyKey: [records]}" shape: every top-level key
// (its name is not contractual; spec.md §6 calls out "currentStarId"
// as one observed name) whose value is a record array is read. Records
// for the same star_id are concatenated in array order within one
// key; when several keys hold records for the same star, the order
// across keys is not defined.
func loadJSON(path string) (map[star.StarID][]float32, error) {
	var raw, err = os.ReadFile(path)
	if err != nil {
		return nil, &SourceError{Path: path, Cause: err}
	}

	var doc map[string][]jsonRecord
	if unmarshalErr := json.Unmarshal(raw, &doc); unmarshalErr != nil {
		return nil, &SourceError{Path: path, Cause: unmarshalErr}
	}

	var out = make(map[star.StarID][]float32)

	for _, records := range doc {
		for _, rec := range records {
			var v, parseErr = strconv.ParseFloat(rec.MagNorm, 32)
			if parseErr != nil {
				continue
			}

			var id = star.StarID(rec.StarID)
			out[id] = append(out[id], float32(v))
		}
	}

	return out, nil
}
