package dsp

import (
	"errors"

	"github.com/cpbridges/leansdr"
)

// Resampler upsamples by an integer factor through a polyphase FIR,
// equivalent to zero-stuffing factor-1 samples between inputs and filtering
// at the higher rate. Each consumed input yields exactly factor outputs.
//
// The delay line starts zero-filled, so the first outputs are the filter
// settling on zero-padded history rather than being withheld; a fully
// drained run of n inputs always produces n*factor samples.
type Resampler struct {
	factor int
	coeffs []float32
	hist   []complex64
	pos    int
	in     *leansdr.Buffer[complex64]
	out    *leansdr.Buffer[complex64]
}

// NewResampler creates a resampling stage for the given taps and registers
// it.
func NewResampler(s *leansdr.Scheduler, factor int, coeffs []float64, in, out *leansdr.Buffer[complex64]) (*Resampler, error) {
	if factor < 1 {
		return nil, errors.New("dsp: resampler factor must be positive")
	}
	if len(coeffs) == 0 {
		return nil, errors.New("dsp: resampler needs at least one tap")
	}
	out.Reserve(factor)
	r := &Resampler{
		factor: factor,
		coeffs: make([]float32, len(coeffs)),
		hist:   make([]complex64, (len(coeffs)+factor-1)/factor),
		in:     in,
		out:    out,
	}
	for i, c := range coeffs {
		r.coeffs[i] = float32(c)
	}
	s.Add(r)
	return r, nil
}

// Name implements leansdr.Stage.
func (r *Resampler) Name() string { return "fir resampler" }

// Step implements leansdr.Stage. Output m=n*factor+k depends on inputs
// n, n-1, ... through the k-th polyphase branch of the taps.
func (r *Resampler) Step() error {
	count := min(r.in.Readable(), r.out.Writable()/r.factor)
	if count == 0 {
		return nil
	}
	src, dst := r.in.Rd()[:count], r.out.Wr()
	depth := len(r.hist)
	w := 0
	for _, x := range src {
		r.pos++
		if r.pos == depth {
			r.pos = 0
		}
		r.hist[r.pos] = x
		for k := 0; k < r.factor; k++ {
			var acc complex64
			for j, idx := 0, k; idx < len(r.coeffs); j, idx = j+1, idx+r.factor {
				h := r.coeffs[idx]
				p := r.pos - j
				if p < 0 {
					p += depth
				}
				z := r.hist[p]
				acc += complex(h*real(z), h*imag(z))
			}
			dst[w] = acc
			w++
		}
	}
	r.in.Read(count)
	r.out.Written(w)
	return nil
}
