package smoothing

import "math"

// butterworthFilter applies a zero-phase (forward-backward) digital
// Butterworth low-pass filter to profile, per spec.md §4.7 step 2.
// Coefficients are derived analytically: analog Butterworth poles ->
// bilinear transform -> a cascade of second-order sections, rather than
// imported, since no DSP/filter library exists anywhere in the example
// pack (see DESIGN.md).
//
// The cutoff is derived from the window length so a Butterworth pass and
// a box-filter pass of the same SmoothingWindowSize have comparable
// -3dB corner, consistent with both being selectable alternatives for
// the same smoothing step.
func butterworthFilter(profile []float64, distances []float64, order, windowSize int) []float64 {
	n := len(profile)
	if n < 4 {
		return append([]float64{}, profile...)
	}
	if order < 2 {
		order = 2
	}
	if order > 5 {
		order = 5
	}
	if windowSize < 3 {
		windowSize = 3
	}

	dt := averageSpacing(distances)
	if dt <= 0 {
		dt = 1
	}
	sampleRate := 1 / dt
	cutoffHz := sampleRate / float64(windowSize)
	if cutoffHz >= sampleRate/2 {
		cutoffHz = sampleRate/2 - 1e-6
	}

	sections := butterworthSOS(order, cutoffHz, sampleRate)

	padded := reflectPad(profile, windowSize)
	forward := padded
	for _, s := range sections {
		forward = s.apply(forward)
	}
	reversed := reverseSlice(forward)
	for _, s := range sections {
		reversed = s.apply(reversed)
	}
	backward := reverseSlice(reversed)

	return unpad(backward, windowSize, n)
}

func averageSpacing(distances []float64) float64 {
	if len(distances) < 2 {
		return 0
	}
	return (distances[len(distances)-1] - distances[0]) / float64(len(distances)-1)
}

// reflectPad extends profile by reflecting pad samples at each end,
// avoiding the transient filtfilt would otherwise inject at the boundary.
func reflectPad(profile []float64, pad int) []float64 {
	n := len(profile)
	if pad >= n {
		pad = n - 1
	}
	out := make([]float64, 0, n+2*pad)
	for i := pad; i >= 1; i-- {
		out = append(out, profile[clampi(i, 0, n-1)])
	}
	out = append(out, profile...)
	for i := 1; i <= pad; i++ {
		out = append(out, profile[clampi(n-1-i, 0, n-1)])
	}
	return out
}

func unpad(padded []float64, pad, n int) []float64 {
	if pad >= len(padded) {
		pad = 0
	}
	if pad+n > len(padded) {
		n = len(padded) - pad
	}
	return append([]float64{}, padded[pad:pad+n]...)
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func reverseSlice(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		out[len(xs)-1-i] = v
	}
	return out
}

// biquad is one second-order section: H(z) = (b0+b1 z^-1+b2 z^-2)/(1+a1 z^-1+a2 z^-2).
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

func (bq biquad) apply(x []float64) []float64 {
	y := make([]float64, len(x))
	var x1, x2, y1, y2 float64
	if len(x) > 0 {
		// Start in the steady state of a constant input equal to x[0], so
		// the section does not ramp up from zero at the first sample.
		x1, x2 = x[0], x[0]
		if den := 1 + bq.a1 + bq.a2; den != 0 {
			y1 = x[0] * (bq.b0 + bq.b1 + bq.b2) / den
		}
		y2 = y1
	}
	for i, xi := range x {
		yi := bq.b0*xi + bq.b1*x1 + bq.b2*x2 - bq.a1*y1 - bq.a2*y2
		x2, x1 = x1, xi
		y2, y1 = y1, yi
		y[i] = yi
	}
	return y
}

// butterworthSOS derives the cascade of second-order sections
// implementing an `order`-pole digital Butterworth low-pass filter with
// the given cutoff and sample rate, via pole placement on the analog
// prototype, frequency pre-warping, and the bilinear transform.
func butterworthSOS(order int, cutoffHz, sampleRate float64) []biquad {
	warped := 2 * sampleRate * math.Tan(math.Pi*cutoffHz/sampleRate)

	// Analog Butterworth poles on the unit circle's left half, scaled by
	// the warped cutoff (rad/s).
	type cpx struct{ re, im float64 }
	poles := make([]cpx, order)
	for k := 0; k < order; k++ {
		theta := math.Pi * (2*float64(k) + float64(order) + 1) / (2 * float64(order))
		poles[k] = cpx{warped * math.Cos(theta), warped * math.Sin(theta)}
	}

	// Bilinear transform each analog pole: z = (2*fs + s) / (2*fs - s).
	// All analog zeros are at infinity -> digital zeros land at z = -1.
	twoFs := 2 * sampleRate
	bilinear := func(s cpx) cpx {
		numRe, numIm := twoFs+s.re, s.im
		denRe, denIm := twoFs-s.re, -s.im
		denom := denRe*denRe + denIm*denIm
		return cpx{
			(numRe*denRe + numIm*denIm) / denom,
			(numIm*denRe - numRe*denIm) / denom,
		}
	}

	dpoles := make([]cpx, order)
	for i, p := range poles {
		dpoles[i] = bilinear(p)
	}

	// Pair conjugate poles into real second-order sections; an odd
	// leftover pole (real, since Butterworth poles come in conjugate
	// pairs plus at most one real pole at theta=pi/2 multiples) becomes a
	// first-order section folded into a biquad with b2=a2=0.
	var sections []biquad
	used := make([]bool, order)
	var dcGain float64 = 1

	for i := 0; i < order; i++ {
		if used[i] {
			continue
		}
		if math.Abs(dpoles[i].im) < 1e-9 {
			// Real pole: first-order section, digital zero at z=-1.
			a1 := -dpoles[i].re
			sections = append(sections, biquad{b0: 1, b1: 1, b2: 0, a1: a1, a2: 0})
			used[i] = true
			continue
		}
		// Find its conjugate partner.
		for j := i + 1; j < order; j++ {
			if used[j] {
				continue
			}
			if math.Abs(dpoles[j].re-dpoles[i].re) < 1e-9 && math.Abs(dpoles[j].im+dpoles[i].im) < 1e-9 {
				a1 := -2 * dpoles[i].re
				a2 := dpoles[i].re*dpoles[i].re + dpoles[i].im*dpoles[i].im
				// Two digital zeros at z=-1 -> numerator (1+z^-1)^2.
				sections = append(sections, biquad{b0: 1, b1: 2, b2: 1, a1: a1, a2: a2})
				used[i] = true
				used[j] = true
				break
			}
		}
	}

	// Normalize so the cascade has unity gain at DC (z=1), per spec.md
	// §8 E6 ("unity gain at DC").
	for _, s := range sections {
		num := s.b0 + s.b1 + s.b2
		den := 1 + s.a1 + s.a2
		if num != 0 {
			dcGain *= den / num
		}
	}
	if len(sections) > 0 {
		perSection := rootN(dcGain, len(sections))
		for i := range sections {
			sections[i].b0 *= perSection
			sections[i].b1 *= perSection
			sections[i].b2 *= perSection
		}
	}

	return sections
}

func rootN(v float64, n int) float64 {
	if n <= 0 {
		return v
	}
	if v < 0 {
		return -math.Pow(-v, 1/float64(n))
	}
	return math.Pow(v, 1/float64(n))
}
