package leansdr_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpbridges/leansdr"
	"github.com/cpbridges/leansdr/mock"
)

type failingStage struct {
	err error
}

func (f *failingStage) Name() string { return "failing" }

func (f *failingStage) Step() error { return f.err }

func TestSchedulerDrainsChain(t *testing.T) {
	sch := testScheduler()
	a := leansdr.NewBuffer[int](sch, "a", 8)
	b := leansdr.NewBuffer[int](sch, "b", 8)
	mock.NewSource(sch, a, 10, 7)
	leansdr.NewInterpolator(sch, 3, a, b)
	sink := mock.NewSink(sch, b)
	sink.Chunk = 5

	require.NoError(t, sch.Run(context.Background()))
	require.Len(t, sink.Values, 30)
	for i, v := range sink.Values {
		if i%3 == 0 {
			assert.Equal(t, 7, v)
		} else {
			assert.Equal(t, 0, v)
		}
	}
}

func TestSchedulerIdlesOnCongestedSink(t *testing.T) {
	sch := testScheduler()
	a := leansdr.NewBuffer[int](sch, "a", 4)
	mock.NewSource(sch, a, 100, 1)
	sink := mock.NewSink(sch, a)
	sink.Limit = 5

	// The sink stops accepting after 5 elements; the scheduler must settle
	// into steady starvation and return rather than spin or drop data.
	require.NoError(t, sch.Run(context.Background()))
	assert.Len(t, sink.Values, 5)
	assert.Equal(t, 4, a.Readable(), "upstream data retained under backpressure")
}

func TestSchedulerCancellation(t *testing.T) {
	sch := testScheduler()
	a := leansdr.NewBuffer[int](sch, "a", 4)
	mock.NewSource(sch, a, 100, 1)
	mock.NewSink(sch, a)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sch.Run(ctx), context.Canceled)
}

func TestSchedulerStageError(t *testing.T) {
	sch := testScheduler()
	errBroken := errors.New("broken collaborator")
	sch.Add(&failingStage{err: errBroken})

	err := sch.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errBroken)
	assert.Contains(t, err.Error(), "failing")
}

func TestDecimatorKeepsEveryNth(t *testing.T) {
	sch := testScheduler()
	in := leansdr.NewBuffer[int](sch, "in", 16)
	out := leansdr.NewBuffer[int](sch, "out", 16)
	leansdr.NewDecimator(sch, 3, in, out)
	sink := mock.NewSink(sch, out)

	dst := in.Wr()
	for i := 0; i < 10; i++ {
		dst[i] = i
	}
	in.Written(10)

	require.NoError(t, sch.Run(context.Background()))
	assert.Equal(t, []int{0, 3, 6}, sink.Values)
	assert.Equal(t, 1, in.Readable(), "partial trailing unit left unconsumed")
}

func TestInterpolatorExactRatio(t *testing.T) {
	sch := testScheduler()
	in := leansdr.NewBuffer[int](sch, "in", 8)
	// Output capacity below limit forces the interpolator to chunk its
	// work across rounds without breaking the n:n*factor relationship.
	out := leansdr.NewBuffer[int](sch, "out", 4)
	mock.NewSource(sch, in, 50, 9)
	leansdr.NewInterpolator(sch, 4, in, out)
	sink := mock.NewSink(sch, out)
	sink.Chunk = 3

	require.NoError(t, sch.Run(context.Background()))
	assert.Len(t, sink.Values, 200)
}
