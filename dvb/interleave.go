package dvb

import "github.com/cpbridges/leansdr"

const (
	// interleaveDepth is the number of branches of the Forney interleaver
	// (EN 300 421 section 4.4.3).
	interleaveDepth = 12
	// interleaveUnit is the per-branch delay increment in bytes.
	interleaveUnit = RSPacketSize / interleaveDepth
)

// Interleaver is the convolutional byte interleaver. Byte i of the codeword
// stream enters branch i%12; branch j delays its bytes through a FIFO of
// j*17 cells. FIFOs start zero-filled, so the high branches emit zeros for
// the first packets instead of withholding output.
type Interleaver struct {
	fifos [interleaveDepth][]byte
	heads [interleaveDepth]int
	in    *leansdr.Buffer[RSPacket]
	out   *leansdr.Buffer[byte]
}

// NewInterleaver creates an interleaver stage and registers it.
func NewInterleaver(s *leansdr.Scheduler, in *leansdr.Buffer[RSPacket], out *leansdr.Buffer[byte]) *Interleaver {
	out.Reserve(RSPacketSize)
	l := &Interleaver{in: in, out: out}
	for j := 1; j < interleaveDepth; j++ {
		l.fifos[j] = make([]byte, j*interleaveUnit)
	}
	s.Add(l)
	return l
}

// Name implements leansdr.Stage.
func (l *Interleaver) Name() string { return "interleaver" }

// Step implements leansdr.Stage. One codeword in, 204 bytes out.
func (l *Interleaver) Step() error {
	for l.in.Readable() >= 1 && l.out.Writable() >= RSPacketSize {
		pkt := &l.in.Rd()[0]
		dst := l.out.Wr()
		for i := 0; i < RSPacketSize; i++ {
			j := i % interleaveDepth
			if j == 0 {
				dst[i] = pkt[i]
				continue
			}
			fifo, head := l.fifos[j], l.heads[j]
			dst[i], fifo[head] = fifo[head], pkt[i]
			l.heads[j] = (head + 1) % len(fifo)
		}
		l.in.Read(1)
		l.out.Written(RSPacketSize)
	}
	return nil
}
