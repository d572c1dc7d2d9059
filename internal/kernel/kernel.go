// Package kernel implements the matched-filter kernel: FFT of
// conditioned windows, frequency-domain correlation against each
// template batch, and reduction to one score per star (spec.md §4.5).
package kernel

import (
	"errors"
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/obswatch/lenswatch/internal/star"
	"github.com/obswatch/lenswatch/internal/template"
)

// Variant selects the correlation form used per TemplateGroup. Only
// DoubleSided is required for conformance (spec.md §4.5); the others
// are provided for experimentation and are never wired to a trigger
// by default (spec.md §9).
type Variant int

const (
	// DoubleSided computes Re(Ŝᴴ·T + Ŝᵀ·conj(T)): the default,
	// empirically favored detector. It preserves the real symmetry of
	// the score and avoids the spurious negative maxima seen with the
	// magnitude-only Normal variant.
	DoubleSided Variant = iota
	// Normal computes |Ŝᴴ·T|.
	Normal
	// DoubleSidedWithMismatchNormalization divides the DoubleSided
	// score by (1 - Ŝᵀ·T). This expression can be negative or near
	// zero; spec.md §9 flags it experimental.
	DoubleSidedWithMismatchNormalization
	// TimeDomainSubtractMinimize reconstructs an approximate
	// time-domain template via inverse FFT and scores by the negative
	// squared residual against the (zero-padded) window.
	TimeDomainSubtractMinimize
)

// ParseVariant parses a CLI-facing name into a Variant.
func ParseVariant(name string) (Variant, bool) {
	switch name {
	case "DoubleSided":
		return DoubleSided, true
	case "Normal":
		return Normal, true
	case "DoubleSidedWithMismatchNormalization":
		return DoubleSidedWithMismatchNormalization, true
	case "TimeDomainSubtractMinimize":
		return TimeDomainSubtractMinimize, true
	default:
		return 0, false
	}
}

// TransientKernelError wraps a single failed accelerator call. Per
// spec.md §4.5/§7, a TransientKernelError must not abort the run: the
// caller skips the tick and proceeds with no scores for that call.
type TransientKernelError struct {
	Cause error
}

func (e *TransientKernelError) Error() string {
	return fmt.Sprintf("kernel: transient failure: %v", e.Cause)
}

func (e *TransientKernelError) Unwrap() error {
	return e.Cause
}

// Signal is one star's conditioned window, ready for the kernel.
type Signal struct {
	ID      star.StarID
	Samples []float32
}

// Score is one star's reduced matched-filter score for a tick.
type Score struct {
	ID    star.StarID
	Value float32
}

// Kernel runs the matched-filter correlation described in spec.md
// §4.5 against a Backend (the accelerator seam from spec.md §9).
type Kernel struct {
	Backend        Backend
	Variant        Variant
	SignalGroupLen int // star subgroup size per invocation
}

// New constructs a Kernel. A zero SignalGroupLen means "all stars in
// one subgroup".
func New(backend Backend, variant Variant, signalGroupLen int) *Kernel {
	return &Kernel{Backend: backend, Variant: variant, SignalGroupLen: signalGroupLen}
}

// Run executes one kernel invocation over the given batch of
// preprocessed windows against bank, returning one score per input
// signal. Any accelerator failure (including a recovered panic,
// standing in for a driver fault) is reported as a
// *TransientKernelError; the caller should skip the tick rather than
// abort the run.
func (k *Kernel) Run(bank *template.Bank, signals []Signal) (scores []Score, err error) {
	defer func() {
		if r := recover(); r != nil {
			scores = nil
			err = &TransientKernelError{Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	if bank == nil {
		return nil, &TransientKernelError{Cause: errors.New("nil template bank")}
	}

	if len(signals) == 0 {
		return nil, nil
	}

	var groupLen = k.SignalGroupLen
	if groupLen < 1 {
		groupLen = len(signals)
	}

	scores = make([]Score, 0, len(signals))

	for start := 0; start < len(signals); start += groupLen {
		var end = start + groupLen
		if end > len(signals) {
			end = len(signals)
		}

		var subScores, subErr = k.runSubgroup(bank, signals[start:end])
		if subErr != nil {
			return nil, &TransientKernelError{Cause: subErr}
		}

		scores = append(scores, subScores...)
	}

	return scores, nil
}

func (k *Kernel) runSubgroup(bank *template.Bank, signals []Signal) ([]Score, error) {
	var padded = make([][]float32, len(signals))
	for i, s := range signals {
		padded[i] = s.Samples
	}

	var shat, err = k.Backend.FFTColumns(padded, bank.FFTLen, bank.HalfLen)
	if err != nil {
		return nil, err
	}

	var nStars = len(signals)
	var perGroupMax = mat.NewDense(nStars, len(bank.Groups), nil)

	for gi, g := range bank.Groups {
		var col, colErr = k.scoreGroup(shat, g)
		if colErr != nil {
			return nil, colErr
		}

		for r := 0; r < nStars; r++ {
			perGroupMax.Set(r, gi, col[r])
		}
	}

	var final = k.Backend.RowMax(perGroupMax)

	var out = make([]Score, nStars)
	for i, s := range signals {
		out[i] = Score{ID: s.ID, Value: float32(final[i])}
	}

	return out, nil
}

// scoreGroup computes the per-star max score for a single
// TemplateGroup, per spec.md §4.5 step 2.
func (k *Kernel) scoreGroup(shat *mat.CDense, g template.Group) ([]float64, error) {
	var shatH = conjTranspose(shat)
	var shatT = plainTranspose(shat)

	switch k.Variant {
	case Normal:
		var l = k.Backend.MatMul(shatH, g.Matrix)
		var mag = magnitude(l)

		return k.Backend.RowMax(mag), nil

	case DoubleSided:
		var m = k.doubleSided(shatH, shatT, g)

		return k.Backend.RowMax(m), nil

	case DoubleSidedWithMismatchNormalization:
		var m = k.doubleSided(shatH, shatT, g)
		var mismatch = realPart(k.Backend.MatMul(shatT, g.Matrix))

		r, c := m.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				var denom = 1 - mismatch.At(i, j)
				if denom == 0 {
					denom = 1e-9
				}

				m.Set(i, j, m.At(i, j)/denom)
			}
		}

		return k.Backend.RowMax(m), nil

	case TimeDomainSubtractMinimize:
		return k.timeDomainScores(shat, g)

	default:
		return nil, fmt.Errorf("kernel: unknown detector variant %d", k.Variant)
	}
}

func (k *Kernel) doubleSided(shatH, shatT *mat.CDense, g template.Group) *mat.Dense {
	var l = k.Backend.MatMul(shatH, g.Matrix)
	var conjT = conjugateMatrix(g.Matrix)
	var r = k.Backend.MatMul(shatT, conjT)

	rows, cols := l.Dims()
	var m = mat.NewDense(rows, cols, nil)

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.Set(i, j, real(l.At(i, j)+r.At(i, j)))
		}
	}

	return m
}

// timeDomainScores reconstructs an approximate time-domain template
// per group column via inverse FFT and scores each star by the
// negative mean squared residual at zero lag. This variant is not
// required for conformance (spec.md §4.5) and is never wired to a
// trigger by default.
func (k *Kernel) timeDomainScores(shat *mat.CDense, g template.Group) ([]float64, error) {
	var rows, nStars = shat.Dims()
	var halfLen = rows - 1
	var fftLen = 2 * (halfLen + 1)
	var _, kTemplates = g.Matrix.Dims()

	var signalTimes = make([][]float64, nStars)

	for s := 0; s < nStars; s++ {
		var coeffs = make([]complex128, halfLen+1)
		for r := 0; r <= halfLen; r++ {
			coeffs[r] = shat.At(r, s)
		}

		signalTimes[s] = k.Backend.InverseFFT(coeffs, fftLen)
	}

	var best = make([]float64, nStars)

	for c := 0; c < kTemplates; c++ {
		var coeffs = make([]complex128, halfLen+1)
		for r := 0; r <= halfLen; r++ {
			coeffs[r] = g.Matrix.At(r, c)
		}

		var templateTime = k.Backend.InverseFFT(coeffs, fftLen)

		for s := 0; s < nStars; s++ {
			var sum float64

			var n = fftLen
			if len(templateTime) < n {
				n = len(templateTime)
			}

			for i := 0; i < n; i++ {
				var diff = signalTimes[s][i] - templateTime[i]
				sum += diff * diff
			}

			var score = -sum / float64(fftLen)
			if c == 0 || score > best[s] {
				best[s] = score
			}
		}
	}

	return best, nil
}

func conjTranspose(m *mat.CDense) *mat.CDense {
	var r, c = m.Dims()
	var out = mat.NewCDense(c, r, nil)

	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(j, i, cmplx.Conj(m.At(i, j)))
		}
	}

	return out
}

func plainTranspose(m *mat.CDense) *mat.CDense {
	var r, c = m.Dims()
	var out = mat.NewCDense(c, r, nil)

	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(j, i, m.At(i, j))
		}
	}

	return out
}

func conjugateMatrix(m *mat.CDense) *mat.CDense {
	var r, c = m.Dims()
	var out = mat.NewCDense(r, c, nil)

	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, cmplx.Conj(m.At(i, j)))
		}
	}

	return out
}

func magnitude(m *mat.CDense) *mat.Dense {
	var r, c = m.Dims()
	var out = mat.NewDense(r, c, nil)

	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, cmplx.Abs(m.At(i, j)))
		}
	}

	return out
}

func realPart(m *mat.CDense) *mat.Dense {
	var r, c = m.Dims()
	var out = mat.NewDense(r, c, nil)

	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, real(m.At(i, j)))
		}
	}

	return out
}
