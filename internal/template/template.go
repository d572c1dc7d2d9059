// Package template builds the immutable, FFT-transformed TemplateBank
// consumed by the matched-filter kernel (spec.md §3, §4.2).
package template

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"

	"github.com/obswatch/lenswatch/internal/dcnorm"
)

// Group is a batch of up to K FFT-transformed templates, concatenated
// column-wise so a single accelerator matmul can cover the batch.
type Group struct {
	Matrix     *mat.CDense // (HalfLen+1) x KTemplates, complex
	KTemplates int
}

// Bank is the immutable template set used by every kernel invocation.
// Construct with New; templates are never mutated after construction.
type Bank struct {
	FFTLen  int
	HalfLen int
	Groups  []Group

	DCMode       dcnorm.Mode
	LengthNormed bool
}

// Config configures Bank construction.
type Config struct {
	GroupSize    int // K, the max number of templates per Group
	DCMode       dcnorm.Mode
	LengthNormed bool // scale each template by len/fft_len before FFT
}

// New builds a Bank from raw, real-valued template waveforms, per
// spec.md §4.2's five construction steps.
func New(raw [][]float32, cfg Config) (*Bank, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("template: no templates supplied")
	}

	if cfg.GroupSize < 1 {
		cfg.GroupSize = 1
	}

	var maxLen int
	for _, t := range raw {
		if len(t) > maxLen {
			maxLen = len(t)
		}
	}

	var fftLen = nextPow2(maxLen)
	var halfLen = halfLenFor(fftLen)

	var templateOp = dcnorm.TemplateSide(cfg.DCMode)

	var fft = fourier.NewFFT(fftLen)
	var cols = make([]*mat.CDense, len(raw))

	for i, t := range raw {
		var work = append([]float32(nil), t...)

		if cfg.LengthNormed && fftLen > 0 {
			var scale = float32(len(t)) / float32(fftLen)
			for j := range work {
				work[j] *= scale
			}
		}

		work = dcnorm.ApplyTemplateOp(templateOp, work)

		var padded = make([]float64, fftLen)
		for j, v := range work {
			padded[j] = float64(v)
		}

		var coeffs = fft.Coefficients(nil, padded)
		if len(coeffs) < halfLen+1 {
			return nil, fmt.Errorf("template: fft produced %d coefficients, need %d", len(coeffs), halfLen+1)
		}

		var col = mat.NewCDense(halfLen+1, 1, nil)
		for r := 0; r <= halfLen; r++ {
			col.Set(r, 0, coeffs[r])
		}

		cols[i] = col
	}

	var groups []Group

	for start := 0; start < len(cols); start += cfg.GroupSize {
		var end = start + cfg.GroupSize
		if end > len(cols) {
			end = len(cols)
		}

		var k = end - start
		var m = mat.NewCDense(halfLen+1, k, nil)

		for c := 0; c < k; c++ {
			for r := 0; r <= halfLen; r++ {
				m.Set(r, c, cols[start+c].At(r, 0))
			}
		}

		groups = append(groups, Group{Matrix: m, KTemplates: k})
	}

	return &Bank{
		FFTLen:       fftLen,
		HalfLen:      halfLen,
		Groups:       groups,
		DCMode:       cfg.DCMode,
		LengthNormed: cfg.LengthNormed,
	}, nil
}

// nextPow2 returns the smallest power of two >= n (minimum 1).
func nextPow2(n int) int {
	if n < 1 {
		return 1
	}

	var p = 1
	for p < n {
		p <<= 1
	}

	return p
}

// halfLenFor implements spec.md §3's half_len formula: fft_len/2 - 1
// for even fft_len, (fft_len-1)/2 for odd.
func halfLenFor(fftLen int) int {
	if fftLen%2 == 0 {
		return fftLen/2 - 1
	}

	return (fftLen - 1) / 2
}
