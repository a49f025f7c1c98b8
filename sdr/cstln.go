// Package sdr implements the baseband stages of the transmit chain:
// constellation mapping, gain control and the IQ sample sink.
package sdr

import (
	"math"

	"github.com/cpbridges/leansdr"
)

// CstlnAmp is the nominal constellation amplitude. The value suits 8-bit
// soft decoding on the receive side; the pulse-shaping filter gain divides
// it back out so the configured power target refers to unit scale.
const CstlnAmp = 75.0

// Mapper converts 2-bit symbols into Gray-coded QPSK points
// (EN 300 421 section 4.5): the X bit selects the I sign, the Y bit the Q
// sign, all points at amplitude CstlnAmp with 90-degree separation.
type Mapper struct {
	lut [4]complex64
	in  *leansdr.Buffer[byte]
	out *leansdr.Buffer[complex64]
}

// NewMapper creates a constellation mapper stage and registers it.
func NewMapper(s *leansdr.Scheduler, in *leansdr.Buffer[byte], out *leansdr.Buffer[complex64]) *Mapper {
	m := &Mapper{in: in, out: out}
	c := float32(CstlnAmp / math.Sqrt2)
	for sym := range m.lut {
		re, im := c, c
		if sym&2 != 0 {
			re = -re
		}
		if sym&1 != 0 {
			im = -im
		}
		m.lut[sym] = complex(re, im)
	}
	s.Add(m)
	return m
}

// Name implements leansdr.Stage.
func (m *Mapper) Name() string { return "constellation mapper" }

// Step implements leansdr.Stage. One sample per symbol.
func (m *Mapper) Step() error {
	count := min(m.in.Readable(), m.out.Writable())
	if count == 0 {
		return nil
	}
	src, dst := m.in.Rd(), m.out.Wr()
	for i := 0; i < count; i++ {
		dst[i] = m.lut[src[i]&3]
	}
	m.in.Read(count)
	m.out.Written(count)
	return nil
}
