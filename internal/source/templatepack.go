package source

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var errLengthsExceedPayload = errors.New("template pack lengths exceed payload size")

// templatePackDescriptor points at a companion binary payload holding
// a flat concatenation of float32 templates, and the per-template
// lengths needed to split the flat payload back into templates.
type templatePackDescriptor struct {
	Payload string `yaml:"payload"`
	Lengths []int  `yaml:"lengths"`
}

// LoadTemplatePack reads a template pack descriptor and returns the
// raw per-template waveforms, ready for template.New.
func LoadTemplatePack(path string) ([][]float32, error) {
	var raw, err = os.ReadFile(path)
	if err != nil {
		return nil, &SourceError{Path: path, Cause: err}
	}

	var desc templatePackDescriptor
	if unmarshalErr := yaml.Unmarshal(raw, &desc); unmarshalErr != nil {
		return nil, &SourceError{Path: path, Cause: unmarshalErr}
	}

	var payloadPath = desc.Payload
	if !filepath.IsAbs(payloadPath) {
		payloadPath = filepath.Join(filepath.Dir(path), payloadPath)
	}

	var flat, payloadErr = readFloat32Payload(payloadPath)
	if payloadErr != nil {
		return nil, payloadErr
	}

	var templates = make([][]float32, len(desc.Lengths))
	var offset int

	for i, length := range desc.Lengths {
		if offset+length > len(flat) {
			return nil, &SourceError{Path: payloadPath, Cause: errLengthsExceedPayload}
		}

		templates[i] = flat[offset : offset+length]
		offset += length
	}

	return templates, nil
}
