// Package dvb implements the DVB-S channel coding stages: energy-dispersal
// randomization, Reed-Solomon outer coding, convolutional interleaving and
// convolutional inner coding, per EN 300 421.
package dvb

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/cpbridges/leansdr"
)

const (
	// PacketSize is the size of an MPEG transport stream packet.
	PacketSize = 188
	// RSPacketSize is the size of an RS(204,188) codeword.
	RSPacketSize = 204
	// SyncByte is the MPEG TS synchronization marker.
	SyncByte = 0x47
)

// Packet is one MPEG transport stream packet.
type Packet [PacketSize]byte

// RSPacket is one Reed-Solomon codeword: a Packet followed by parity.
type RSPacket [RSPacketSize]byte

// PacketReader is the source stage of a chain. It frames fixed-size TS
// packets from an io.Reader. A trailing partial packet is discarded.
//
// Unlike interior stages, Step blocks while the reader blocks; the chain's
// pace at the boundary is the collaborator's pace. Readers that must not
// stall the scheduler belong behind a decoupling buffer of their own.
type PacketReader struct {
	r   io.Reader
	out *leansdr.Buffer[Packet]
	eof bool
	log *logrus.Entry
}

// NewPacketReader creates a packet source stage and registers it.
func NewPacketReader(s *leansdr.Scheduler, r io.Reader, out *leansdr.Buffer[Packet]) *PacketReader {
	p := &PacketReader{r: r, out: out, log: s.Logger().WithField("stage", "packet reader")}
	s.Add(p)
	return p
}

// Name implements leansdr.Stage.
func (p *PacketReader) Name() string { return "packet reader" }

// Step implements leansdr.Stage. It fills as many writable slots as the
// reader can provide; end of input is remembered so that subsequent rounds
// report zero progress and let the chain drain.
func (p *PacketReader) Step() error {
	if p.eof {
		return nil
	}
	free := p.out.Writable()
	if free == 0 {
		return nil
	}
	dst := p.out.Wr()
	filled := 0
	for filled < free {
		pkt := &dst[filled]
		if _, err := io.ReadFull(p.r, pkt[:]); err != nil {
			if err == io.ErrUnexpectedEOF {
				p.log.Debug("partial trailing packet discarded")
				err = io.EOF
			}
			if err == io.EOF {
				p.eof = true
				break
			}
			return err
		}
		if pkt[0] != SyncByte {
			p.log.WithField("byte", pkt[0]).Warn("lost TS packet sync")
		}
		filled++
	}
	p.out.Written(filled)
	return nil
}
