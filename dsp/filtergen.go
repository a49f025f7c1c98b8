// Package dsp provides pulse-shaping filter design and the FIR resampling
// stage of the transmit chain.
package dsp

import "math"

// RootRaisedCosine computes FIR taps approximating the root-raised-cosine
// spectral shape at normalized cutoff fs with the given roll-off. The
// response has order+1 taps, padded to an odd count so the peak sits on the
// center tap.
func RootRaisedCosine(order int, fs, rolloff float64) []float64 {
	n := order + 1
	if n%2 == 0 {
		n++
	}
	b := rolloff
	coeffs := make([]float64, n)
	for i := range coeffs {
		t := float64(i - n/2)
		var c float64
		switch tT := t * fs; {
		case t == 0:
			c = math.Sqrt(fs) * (1 - b + 4*b/math.Pi)
		case tT*(1-(4*b*tT)*(4*b*tT)) == 0:
			// 4*rolloff*t*fs = +-1: the generic expression is 0/0 here.
			c = b * math.Sqrt(fs/2) * ((1+2/math.Pi)*math.Sin(math.Pi/(4*b)) +
				(1-2/math.Pi)*math.Cos(math.Pi/(4*b)))
		default:
			c = math.Sqrt(fs) * (math.Sin(math.Pi*tT*(1-b)) +
				4*b*tT*math.Cos(math.Pi*tT*(1+b))) /
				(math.Pi * tT * (1 - (4*b*tT)*(4*b*tT)))
		}
		coeffs[i] = c
	}
	return coeffs
}

// NormalizePower scales coeffs so that the sum of squared taps equals
// gain squared, which makes the expected output power of a filter fed with
// unit-power zero-stuffed symbols hit gain squared.
func NormalizePower(coeffs []float64, gain float64) {
	var s2 float64
	for _, c := range coeffs {
		s2 += c * c
	}
	if s2 != 0 {
		gain /= math.Sqrt(s2)
	}
	for i := range coeffs {
		coeffs[i] *= gain
	}
}

// NormalizeDCGain scales coeffs so that the tap sum equals gain.
func NormalizeDCGain(coeffs []float64, gain float64) {
	var s float64
	for _, c := range coeffs {
		s += c
	}
	if s != 0 {
		gain /= s
	}
	for i := range coeffs {
		coeffs[i] *= gain
	}
}
