package kernel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"
)

// Backend is the narrow accelerator seam named in spec.md §9: an
// implementation exposes complex-matrix construction, batched column
// FFTs, complex matmul, and the two reduction primitives the kernel
// needs. A GPU or vendor backend satisfies this interface without the
// orchestration in kernel.go needing to change.
type Backend interface {
	// FFTColumns forward-transforms each of the given equal-length
	// real signals (already zero-padded to fftLen) and returns a
	// complex matrix of shape (halfLen+1, len(signals)).
	FFTColumns(signals [][]float32, fftLen, halfLen int) (*mat.CDense, error)

	// InverseFFT reconstructs a real, fftLen-long sequence from
	// halfLen+1 complex coefficients (used only by the time-domain
	// detector variant to recover an approximate template waveform).
	InverseFFT(coeffs []complex128, fftLen int) []float64

	// MatMul returns a*b.
	MatMul(a, b *mat.CDense) *mat.CDense

	// RowMax returns, for each row of m, the maximum of that row's
	// real values (m is assumed real-valued, i.e. produced by Re()).
	RowMax(m *mat.Dense) []float64

	// ColMax returns, for each column of m, the maximum of that
	// column's real values.
	ColMax(m *mat.Dense) []float64
}

// GonumBackend is the CPU reference Backend, built on
// gonum.org/v1/gonum's FFT and complex dense matrix support.
type GonumBackend struct{}

var _ Backend = GonumBackend{}

func (GonumBackend) FFTColumns(signals [][]float32, fftLen, halfLen int) (*mat.CDense, error) {
	if len(signals) == 0 {
		return mat.NewCDense(halfLen+1, 0, nil), nil
	}

	var fft = fourier.NewFFT(fftLen)
	var out = mat.NewCDense(halfLen+1, len(signals), nil)

	for c, sig := range signals {
		if len(sig) > fftLen {
			return nil, fmt.Errorf("kernel: signal length %d exceeds fft length %d", len(sig), fftLen)
		}

		var padded = make([]float64, fftLen)
		for i, v := range sig {
			padded[i] = float64(v)
		}

		var coeffs = fft.Coefficients(nil, padded)
		if len(coeffs) < halfLen+1 {
			return nil, fmt.Errorf("kernel: fft produced %d coefficients, need %d", len(coeffs), halfLen+1)
		}

		for r := 0; r <= halfLen; r++ {
			out.Set(r, c, coeffs[r])
		}
	}

	return out, nil
}

func (GonumBackend) InverseFFT(coeffs []complex128, fftLen int) []float64 {
	var fft = fourier.NewFFT(fftLen)
	var full = make([]complex128, fftLen/2+1)
	copy(full, coeffs)

	return fft.Sequence(nil, full)
}

func (GonumBackend) MatMul(a, b *mat.CDense) *mat.CDense {
	var ar, _ = a.Dims()
	var _, bc = b.Dims()

	var out = mat.NewCDense(ar, bc, nil)
	out.Mul(a, b)

	return out
}

func (GonumBackend) RowMax(m *mat.Dense) []float64 {
	var r, c = m.Dims()
	var out = make([]float64, r)

	for i := 0; i < r; i++ {
		var best = math.Inf(-1)

		for j := 0; j < c; j++ {
			var v = m.At(i, j)
			if v > best {
				best = v
			}
		}

		out[i] = best
	}

	return out
}

func (GonumBackend) ColMax(m *mat.Dense) []float64 {
	var r, c = m.Dims()
	var out = make([]float64, c)

	for j := 0; j < c; j++ {
		var best = math.Inf(-1)

		for i := 0; i < r; i++ {
			var v = m.At(i, j)
			if v > best {
				best = v
			}
		}

		out[j] = best
	}

	return out
}
