package dvb

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpbridges/leansdr"
)

func testScheduler() *leansdr.Scheduler {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return leansdr.NewScheduler(leansdr.WithLogger(l), leansdr.WithName("test"))
}

func testPacket(fill byte) Packet {
	var p Packet
	p[0] = SyncByte
	for i := 1; i < PacketSize; i++ {
		p[i] = fill
	}
	return p
}

// Applying the dispersal sequence twice restores the original packets,
// sync inversion included.
func TestRandomizerSelfInverse(t *testing.T) {
	sch := testScheduler()
	const n = 16
	in := leansdr.NewBuffer[Packet](sch, "in", n)
	mid := leansdr.NewBuffer[Packet](sch, "mid", n)
	out := leansdr.NewBuffer[Packet](sch, "out", n)
	NewRandomizer(sch, in, mid)
	NewRandomizer(sch, mid, out)

	var want []Packet
	dst := in.Wr()
	for i := 0; i < n; i++ {
		dst[i] = testPacket(byte(i * 31))
		want = append(want, dst[i])
	}
	in.Written(n)

	require.NoError(t, sch.Run(context.Background()))
	require.Equal(t, n, out.Readable())
	assert.Equal(t, want, out.Rd()[:n])
}

func TestRandomizerSyncHandling(t *testing.T) {
	sch := testScheduler()
	const n = 9
	in := leansdr.NewBuffer[Packet](sch, "in", n)
	out := leansdr.NewBuffer[Packet](sch, "out", n)
	NewRandomizer(sch, in, out)

	dst := in.Wr()
	for i := range dst[:n] {
		dst[i] = testPacket(0)
	}
	in.Written(n)

	require.NoError(t, sch.Run(context.Background()))
	got := out.Rd()
	require.Len(t, got, n)
	// First packet of each 8-packet group carries the inverted sync byte;
	// the others pass through untouched.
	assert.EqualValues(t, 0xb8, got[0][0])
	for i := 1; i < 8; i++ {
		assert.EqualValues(t, SyncByte, got[i][0], "packet %d", i)
	}
	assert.EqualValues(t, 0xb8, got[8][0])
	// Dispersal must actually disperse: a zero payload cannot stay zero.
	zero := true
	for _, b := range got[0][1:] {
		if b != 0 {
			zero = false
			break
		}
	}
	assert.False(t, zero, "payload left unrandomized")
}

func TestRandomizerGroupPeriod(t *testing.T) {
	sch := testScheduler()
	const n = 16
	in := leansdr.NewBuffer[Packet](sch, "in", n)
	out := leansdr.NewBuffer[Packet](sch, "out", n)
	NewRandomizer(sch, in, out)

	dst := in.Wr()
	for i := range dst[:n] {
		dst[i] = testPacket(0x55)
	}
	in.Written(n)

	require.NoError(t, sch.Run(context.Background()))
	got := out.Rd()
	require.Len(t, got, n)
	for i := 0; i < 8; i++ {
		assert.Equal(t, got[i], got[i+8], "sequence must reset every %d packets", groupSize)
	}
	assert.NotEqual(t, got[0], got[1], "consecutive packets share no pattern")
}
