package dvb

import (
	"github.com/sirupsen/logrus"

	"github.com/cpbridges/leansdr"
)

// groupSize is the number of packets covered by one run of the
// energy-dispersal sequence before it reinitializes.
const groupSize = 8

// Randomizer applies the EN 300 421 section 4.4.1 energy-dispersal sequence
// to TS packets. The PRBS x^15+x^14+1 runs over a whole 8-packet group,
// keeps running but is not applied during sync bytes, and the sync byte of
// the first packet of each group is inverted so receivers can realign.
type Randomizer struct {
	pattern [PacketSize * groupSize]byte
	pos     int
	in      *leansdr.Buffer[Packet]
	out     *leansdr.Buffer[Packet]
	log     *logrus.Entry
}

// NewRandomizer creates a randomizer stage and registers it.
func NewRandomizer(s *leansdr.Scheduler, in, out *leansdr.Buffer[Packet]) *Randomizer {
	r := &Randomizer{in: in, out: out, log: s.Logger().WithField("stage", "randomizer")}
	// Register loaded with 100101010000000 (fig. 2 of the standard,
	// reversed), taps at bits 13 and 14, bytes assembled MSB first.
	st := uint16(0o251)
	for i := range r.pattern {
		var b byte
		for n := 0; n < 8; n++ {
			bit := ((st >> 13) ^ (st >> 14)) & 1
			b = byte(uint16(b)<<1 | bit)
			st = st<<1 | bit
		}
		if i%PacketSize != 0 {
			r.pattern[i] = b
		}
	}
	r.pattern[0] = 0xff
	s.Add(r)
	return r
}

// Name implements leansdr.Stage.
func (r *Randomizer) Name() string { return "randomizer" }

// Step implements leansdr.Stage.
func (r *Randomizer) Step() error {
	for r.in.Readable() >= 1 && r.out.Writable() >= 1 {
		src := &r.in.Rd()[0]
		dst := &r.out.Wr()[0]
		if src[0] != SyncByte {
			r.log.WithField("byte", src[0]).Warn("bad sync byte")
		}
		for i := range src {
			dst[i] = src[i] ^ r.pattern[r.pos]
			r.pos++
		}
		if r.pos == len(r.pattern) {
			r.pos = 0
		}
		r.in.Read(1)
		r.out.Written(1)
	}
	return nil
}
