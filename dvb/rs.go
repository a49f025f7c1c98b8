package dvb

import "github.com/cpbridges/leansdr"

const (
	// gfPoly is the field generator p(x) = x^8+x^4+x^3+x^2+1
	// (EN 300 421 section 4.4.2).
	gfPoly = 0x11d
	// parityBytes is the number of RS parity bytes per codeword.
	parityBytes = RSPacketSize - PacketSize
)

// gf256 holds exp/log tables for GF(2^8) arithmetic.
type gf256 struct {
	exp [510]byte
	log [256]byte
}

func newGF256() *gf256 {
	g := &gf256{}
	x := 1
	for i := 0; i < 255; i++ {
		g.exp[i] = byte(x)
		g.exp[i+255] = byte(x)
		g.log[x] = byte(i)
		x <<= 1
		if x&0x100 != 0 {
			x ^= gfPoly
		}
	}
	return g
}

func (g *gf256) mul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return g.exp[int(g.log[a])+int(g.log[b])]
}

// RSEncoder is the systematic RS(204,188) outer encoder. The payload is
// copied verbatim and 16 parity bytes, the remainder of payload*x^16 modulo
// the code generator g(x) = (x+a^0)(x+a^1)...(x+a^15), are appended.
type RSEncoder struct {
	gf  *gf256
	gen [parityBytes + 1]byte // generator coefficients, ascending order
	in  *leansdr.Buffer[Packet]
	out *leansdr.Buffer[RSPacket]
}

// NewRSEncoder creates an RS encoder stage and registers it.
func NewRSEncoder(s *leansdr.Scheduler, in *leansdr.Buffer[Packet], out *leansdr.Buffer[RSPacket]) *RSEncoder {
	e := &RSEncoder{gf: newGF256(), in: in, out: out}
	e.gen[0] = 1
	for i := 0; i < parityBytes; i++ {
		root := e.gf.exp[i]
		for j := i + 1; j > 0; j-- {
			e.gen[j] = e.gen[j-1] ^ e.gf.mul(e.gen[j], root)
		}
		e.gen[0] = e.gf.mul(e.gen[0], root)
	}
	s.Add(e)
	return e
}

// Name implements leansdr.Stage.
func (e *RSEncoder) Name() string { return "rs encoder" }

// Step implements leansdr.Stage.
func (e *RSEncoder) Step() error {
	for e.in.Readable() >= 1 && e.out.Writable() >= 1 {
		e.encode(&e.in.Rd()[0], &e.out.Wr()[0])
		e.in.Read(1)
		e.out.Written(1)
	}
	return nil
}

// encode fills out with the systematic codeword of pkt. Parity is stored
// highest-order coefficient first, as transmitted.
func (e *RSEncoder) encode(pkt *Packet, out *RSPacket) {
	copy(out[:PacketSize], pkt[:])
	parity := out[PacketSize:]
	for i := range parity {
		parity[i] = 0
	}
	for _, m := range pkt {
		lead := m ^ parity[0]
		copy(parity[:parityBytes-1], parity[1:])
		parity[parityBytes-1] = 0
		if lead != 0 {
			for j := 0; j < parityBytes; j++ {
				parity[j] ^= e.gf.mul(lead, e.gen[parityBytes-1-j])
			}
		}
	}
}
