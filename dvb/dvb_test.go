package dvb

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpbridges/leansdr"
)

func TestPacketReaderFraming(t *testing.T) {
	var stream bytes.Buffer
	for i := 0; i < 3; i++ {
		pkt := testPacket(byte(i))
		stream.Write(pkt[:])
	}
	// Trailing partial packet must be discarded, not delivered.
	stream.Write([]byte{SyncByte, 1, 2, 3})

	sch := testScheduler()
	out := leansdr.NewBuffer[Packet](sch, "out", 8)
	r := NewPacketReader(sch, &stream, out)

	require.NoError(t, r.Step())
	require.Equal(t, 3, out.Readable())
	for i, pkt := range out.Rd() {
		assert.Equal(t, testPacket(byte(i)), pkt)
	}

	// After end of input the reader reports zero progress forever.
	out.Read(3)
	require.NoError(t, r.Step())
	assert.Equal(t, 0, out.Readable())
}

func TestPacketReaderHonorsBackpressure(t *testing.T) {
	var stream bytes.Buffer
	for i := 0; i < 6; i++ {
		pkt := testPacket(byte(i))
		stream.Write(pkt[:])
	}

	sch := testScheduler()
	out := leansdr.NewBuffer[Packet](sch, "out", 4)
	r := NewPacketReader(sch, &stream, out)

	require.NoError(t, r.Step())
	assert.Equal(t, 4, out.Readable(), "reader fills only the writable slots")

	out.Read(4)
	require.NoError(t, r.Step())
	assert.Equal(t, 2, out.Readable())
}
