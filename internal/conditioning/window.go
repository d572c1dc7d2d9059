package conditioning

import "math"

// WindowFunc selects a windowing function from spec.md §4.4.
type WindowFunc int

const (
	Rectangle WindowFunc = iota
	Triangle
	Nuttall
	Gaussian
)

// ParseWindowFunc parses a CLI-facing name into a WindowFunc.
func ParseWindowFunc(name string) (WindowFunc, bool) {
	switch name {
	case "Rectangle":
		return Rectangle, true
	case "Triangle":
		return Triangle, true
	case "Nuttall":
		return Nuttall, true
	case "Gaussian":
		return Gaussian, true
	default:
		return 0, false
	}
}

// nuttallCoeffs are the classic 4-term Nuttall window coefficients.
var nuttallCoeffs = [4]float64{0.3635819, 0.4891775, 0.1365995, 0.0106411}

// gaussianAlpha is the Gaussian window's shape parameter (spec.md
// §4.4: alpha=2.5).
const gaussianAlpha = 2.5

// ApplyWindow multiplies xs by the chosen window's coefficients and
// returns a new slice. Rectangle is the identity.
func ApplyWindow(fn WindowFunc, xs []float32) []float32 {
	var n = len(xs)
	var out = make([]float32, n)

	if n == 0 {
		return out
	}

	if n == 1 {
		out[0] = xs[0]

		return out
	}

	var denom = float64(n - 1)

	for i, x := range xs {
		var w float64

		switch fn {
		case Rectangle:
			w = 1
		case Triangle:
			var center = denom / 2
			w = 1 - math.Abs((float64(i)-center)/center)
		case Nuttall:
			var phase = 2 * math.Pi * float64(i) / denom
			w = nuttallCoeffs[0] -
				nuttallCoeffs[1]*math.Cos(phase) +
				nuttallCoeffs[2]*math.Cos(2*phase) -
				nuttallCoeffs[3]*math.Cos(3*phase)
		case Gaussian:
			var center = denom / 2
			var ratio = gaussianAlpha * (float64(i) - center) / center
			w = math.Exp(-0.5 * ratio * ratio)
		}

		out[i] = x * float32(w)
	}

	return out
}
