package leansdr

// Interpolator is a 1:factor rate expander. Each consumed element is copied
// to the output followed by factor-1 zero elements. For every n consumed it
// produces exactly n*factor, never more, never fewer.
type Interpolator[T any] struct {
	factor int
	in     *Buffer[T]
	out    *Buffer[T]
}

// NewInterpolator creates an interpolator stage and registers it.
func NewInterpolator[T any](s *Scheduler, factor int, in, out *Buffer[T]) *Interpolator[T] {
	out.Reserve(factor)
	i := &Interpolator[T]{factor: factor, in: in, out: out}
	s.Add(i)
	return i
}

// Name implements Stage.
func (i *Interpolator[T]) Name() string { return "interpolator" }

// Step implements Stage.
func (i *Interpolator[T]) Step() error {
	count := min(i.in.Readable(), i.out.Writable()/i.factor)
	if count == 0 {
		return nil
	}
	var zero T
	src, dst := i.in.Rd(), i.out.Wr()
	w := 0
	for _, v := range src[:count] {
		dst[w] = v
		w++
		for skip := i.factor - 1; skip > 0; skip-- {
			dst[w] = zero
			w++
		}
	}
	i.in.Read(count)
	i.out.Written(w)
	return nil
}

// Decimator is a factor:1 rate reducer retaining every factor-th element.
type Decimator[T any] struct {
	factor int
	in     *Buffer[T]
	out    *Buffer[T]
}

// NewDecimator creates a decimator stage and registers it.
func NewDecimator[T any](s *Scheduler, factor int, in, out *Buffer[T]) *Decimator[T] {
	d := &Decimator[T]{factor: factor, in: in, out: out}
	s.Add(d)
	return d
}

// Name implements Stage.
func (d *Decimator[T]) Name() string { return "decimator" }

// Step implements Stage.
func (d *Decimator[T]) Step() error {
	count := min(d.in.Readable()/d.factor, d.out.Writable())
	if count == 0 {
		return nil
	}
	src, dst := d.in.Rd(), d.out.Wr()
	for n := 0; n < count; n++ {
		dst[n] = src[n*d.factor]
	}
	d.in.Read(count * d.factor)
	d.out.Written(count)
	return nil
}
