package dvb

import (
	"fmt"
	"math/bits"

	"github.com/cpbridges/leansdr"
)

// Generator polynomials of the K=7 inner code, G1=171 G2=133 octal
// (EN 300 421 section 4.4.4). The register here keeps the newest input at
// bit 0, so the masks are the generators with their 7 bits reversed.
const (
	convG1 = 0x4f
	convG2 = 0x6d
)

// CodeRate selects the puncturing scheme of the inner code.
type CodeRate int

// Inner code rates of EN 300 421 table 2.
const (
	Rate12 CodeRate = iota
	Rate23
	Rate34
	Rate56
	Rate78
)

func (r CodeRate) String() string {
	switch r {
	case Rate12:
		return "1/2"
	case Rate23:
		return "2/3"
	case Rate34:
		return "3/4"
	case Rate56:
		return "5/6"
	case Rate78:
		return "7/8"
	}
	return "unknown"
}

// ParseCodeRate parses a rate in "n/m" notation, as printed by String.
func ParseCodeRate(s string) (CodeRate, error) {
	for r := Rate12; r <= Rate78; r++ {
		if r.String() == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("dvb: unknown code rate %q", s)
}

// punctures maps each rate to the transmitted-bit masks for the X and Y
// encoder outputs, one entry per input bit of the repeating pattern.
var punctures = map[CodeRate]struct{ x, y []byte }{
	Rate12: {[]byte{1}, []byte{1}},
	Rate23: {[]byte{1, 0}, []byte{1, 1}},
	Rate34: {[]byte{1, 0, 1}, []byte{1, 1, 0}},
	Rate56: {[]byte{1, 0, 1, 0, 1}, []byte{1, 1, 0, 1, 0}},
	Rate78: {[]byte{1, 0, 0, 0, 1, 0, 1}, []byte{1, 1, 1, 1, 0, 1, 0}},
}

// maxSymbolsPerByte bounds the output of one input byte for any rate: 16
// coded bits before puncturing, two bits per symbol, plus a carried bit.
const maxSymbolsPerByte = 8

// Convolutional is the rate-1/2 inner encoder with optional puncturing.
// Input bytes are encoded MSB first; surviving coded bits are paired into
// 2-bit symbols, X bit first. The shift register starts zeroed; a surviving
// bit without a partner is carried into the next step.
type Convolutional struct {
	px, py    []byte
	state     uint8
	phase     int
	carry     byte
	haveCarry bool
	in        *leansdr.Buffer[byte]
	out       *leansdr.Buffer[byte]
}

// NewConvolutional creates an inner encoder stage for the given rate and
// registers it.
func NewConvolutional(s *leansdr.Scheduler, rate CodeRate, in, out *leansdr.Buffer[byte]) (*Convolutional, error) {
	p, ok := punctures[rate]
	if !ok {
		return nil, fmt.Errorf("dvb: unsupported code rate %v", rate)
	}
	out.Reserve(maxSymbolsPerByte)
	c := &Convolutional{px: p.x, py: p.y, in: in, out: out}
	s.Add(c)
	return c, nil
}

// Name implements leansdr.Stage.
func (c *Convolutional) Name() string { return "convolutional encoder" }

// Step implements leansdr.Stage.
func (c *Convolutional) Step() error {
	for {
		count := min(c.in.Readable(), c.out.Writable()/maxSymbolsPerByte)
		if count == 0 {
			return nil
		}
		src, dst := c.in.Rd()[:count], c.out.Wr()
		w := 0
		for _, b := range src {
			for j := 7; j >= 0; j-- {
				c.state = (c.state<<1 | b>>uint(j)&1) & 0x7f
				x := byte(bits.OnesCount8(c.state&convG1) & 1)
				y := byte(bits.OnesCount8(c.state&convG2) & 1)
				if c.px[c.phase] != 0 {
					w = c.emit(dst, w, x)
				}
				if c.py[c.phase] != 0 {
					w = c.emit(dst, w, y)
				}
				c.phase++
				if c.phase == len(c.px) {
					c.phase = 0
				}
			}
		}
		c.in.Read(count)
		c.out.Written(w)
	}
}

// emit pairs surviving bits into symbols, X before Y across the stream.
func (c *Convolutional) emit(dst []byte, w int, bit byte) int {
	if !c.haveCarry {
		c.carry = bit
		c.haveCarry = true
		return w
	}
	dst[w] = c.carry<<1 | bit
	c.haveCarry = false
	return w + 1
}
