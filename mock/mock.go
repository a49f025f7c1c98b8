// Package mock provides in-memory stages for testing chains.
package mock

import "github.com/cpbridges/leansdr"

// Source emits copies of Value until Limit elements have been produced.
type Source[T any] struct {
	Limit    int
	Value    T
	produced int
	out      *leansdr.Buffer[T]
}

// NewSource creates a mock source stage and registers it.
func NewSource[T any](s *leansdr.Scheduler, out *leansdr.Buffer[T], limit int, value T) *Source[T] {
	src := &Source[T]{Limit: limit, Value: value, out: out}
	s.Add(src)
	return src
}

// Name implements leansdr.Stage.
func (s *Source[T]) Name() string { return "mock source" }

// Step implements leansdr.Stage.
func (s *Source[T]) Step() error {
	count := min(s.out.Writable(), s.Limit-s.produced)
	if count <= 0 {
		return nil
	}
	dst := s.out.Wr()
	for i := 0; i < count; i++ {
		dst[i] = s.Value
	}
	s.produced += count
	s.out.Written(count)
	return nil
}

// Produced reports how many elements the source has emitted.
func (s *Source[T]) Produced() int { return s.produced }

// Sink collects consumed elements. Limit caps the total accepted count to
// simulate a congested collaborator; zero means unbounded. Chunk caps the
// elements accepted per step; zero means all readable.
type Sink[T any] struct {
	Limit  int
	Chunk  int
	Values []T
	in     *leansdr.Buffer[T]
}

// NewSink creates a mock sink stage and registers it.
func NewSink[T any](s *leansdr.Scheduler, in *leansdr.Buffer[T]) *Sink[T] {
	snk := &Sink[T]{in: in}
	s.Add(snk)
	return snk
}

// Name implements leansdr.Stage.
func (s *Sink[T]) Name() string { return "mock sink" }

// Step implements leansdr.Stage.
func (s *Sink[T]) Step() error {
	count := s.in.Readable()
	if s.Chunk > 0 && count > s.Chunk {
		count = s.Chunk
	}
	if s.Limit > 0 && count > s.Limit-len(s.Values) {
		count = s.Limit - len(s.Values)
	}
	if count <= 0 {
		return nil
	}
	s.Values = append(s.Values, s.in.Rd()[:count]...)
	s.in.Read(count)
	return nil
}
