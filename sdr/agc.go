package sdr

import (
	"math"

	"github.com/cpbridges/leansdr"
)

const (
	// agcChunk is the largest number of samples measured and scaled in one
	// step, which sets the update cadence of the power estimate.
	agcChunk = 128
	// agcFloor keeps the power estimate away from zero so the gain stays
	// bounded on silent input.
	agcFloor = 1e-12
)

// AGC tracks the mean square of its input through an exponential moving
// average and scales each sample by targetRMS over the estimated RMS.
type AGC struct {
	targetRMS float64
	bw        float64
	estimate  float64
	in        *leansdr.Buffer[complex64]
	out       *leansdr.Buffer[complex64]
}

// NewAGC creates a gain control stage and registers it. bw is the loop
// bandwidth per chunk at the stage's own sample rate; callers must derate
// it by the resampling ratio so the time constant stays fixed in symbol
// periods.
func NewAGC(s *leansdr.Scheduler, in, out *leansdr.Buffer[complex64], targetRMS, bw float64) *AGC {
	a := &AGC{targetRMS: targetRMS, bw: bw, in: in, out: out}
	s.Add(a)
	return a
}

// Name implements leansdr.Stage.
func (a *AGC) Name() string { return "agc" }

// Step implements leansdr.Stage.
func (a *AGC) Step() error {
	for {
		count := min(min(a.in.Readable(), a.out.Writable()), agcChunk)
		if count == 0 {
			return nil
		}
		src, dst := a.in.Rd()[:count], a.out.Wr()
		var amp2 float64
		for _, z := range src {
			re, im := float64(real(z)), float64(imag(z))
			amp2 += re*re + im*im
		}
		amp2 /= float64(count)
		if a.estimate == 0 {
			a.estimate = amp2
		}
		a.estimate = a.estimate*(1-a.bw) + amp2*a.bw
		if a.estimate < agcFloor {
			a.estimate = agcFloor
		}
		gain := float32(a.targetRMS / math.Sqrt(a.estimate))
		for i, z := range src {
			dst[i] = complex(real(z)*gain, imag(z)*gain)
		}
		a.in.Read(count)
		a.out.Written(count)
	}
}
