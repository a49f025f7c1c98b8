package sdr

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/cpbridges/leansdr"
)

// iqChunk is the largest number of samples encoded per step.
const iqChunk = 1024

// IQWriter is the sink stage of a chain. Samples leave as interleaved
// little-endian float32 I/Q pairs, the format downstream transmitters
// consume bit for bit.
type IQWriter struct {
	w   io.Writer
	in  *leansdr.Buffer[complex64]
	buf []byte
}

// NewIQWriter creates a sample sink stage and registers it.
func NewIQWriter(s *leansdr.Scheduler, in *leansdr.Buffer[complex64], w io.Writer) *IQWriter {
	iq := &IQWriter{w: w, in: in, buf: make([]byte, iqChunk*8)}
	s.Add(iq)
	return iq
}

// Name implements leansdr.Stage.
func (iq *IQWriter) Name() string { return "iq writer" }

// Step implements leansdr.Stage.
func (iq *IQWriter) Step() error {
	count := min(iq.in.Readable(), iqChunk)
	if count == 0 {
		return nil
	}
	for i, z := range iq.in.Rd()[:count] {
		binary.LittleEndian.PutUint32(iq.buf[i*8:], math.Float32bits(real(z)))
		binary.LittleEndian.PutUint32(iq.buf[i*8+4:], math.Float32bits(imag(z)))
	}
	if _, err := iq.w.Write(iq.buf[:count*8]); err != nil {
		return err
	}
	iq.in.Read(count)
	return nil
}
