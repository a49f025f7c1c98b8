package leansdr

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cpbridges/leansdr/log"
	"github.com/cpbridges/leansdr/metric"
)

// Stage is a unit of work driven by the scheduler. A stage declares the
// buffers it reads and writes at construction and registers itself with the
// scheduler there.
type Stage interface {
	Name() string
	// Step consumes at most Readable input and produces at most Writable
	// output on the stage's buffers, respecting the stage's rate
	// relationship. A stage that cannot make progress this round performs
	// no side effect. An error is returned only when an external
	// collaborator fails; starvation and congestion are not errors.
	Step() error
}

// Scheduler owns the buffers and stages of one chain and drives them on a
// single goroutine, in registration order, until the chain drains or the
// context is cancelled.
type Scheduler struct {
	name    string
	stages  []Stage
	buffers []buffer
	log     *logrus.Entry
}

// Option provides a way to set functional parameters to the scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used by the scheduler and handed to stages.
func WithLogger(l *logrus.Logger) Option {
	return func(s *Scheduler) {
		s.log = l.WithField("scheduler", s.name)
	}
}

// WithName names the scheduler in logs and metrics.
func WithName(n string) Option {
	return func(s *Scheduler) {
		s.name = n
		s.log = s.log.WithField("scheduler", n)
	}
}

// NewScheduler creates an empty scheduler and applies provided options.
func NewScheduler(options ...Option) *Scheduler {
	s := &Scheduler{name: "flow"}
	s.log = log.GetLogger().WithField("scheduler", s.name)
	for _, option := range options {
		option(s)
	}
	return s
}

// Add registers stages in execution order. The order must be topological,
// source first.
func (s *Scheduler) Add(stages ...Stage) {
	s.stages = append(s.stages, stages...)
}

func (s *Scheduler) addBuffer(b buffer) {
	s.buffers = append(s.buffers, b)
}

// Logger returns the scheduler's log entry for stages to derive theirs.
func (s *Scheduler) Logger() *logrus.Entry {
	return s.log
}

// Run scans all stages repeatedly until a full scan moves no data through
// any buffer or ctx is done. Cancellation is observed between rounds; a
// stage invocation is a finite unit of work and is never interrupted.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.WithField("stages", len(s.stages)).Debug("run")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		before := s.transferred()
		for _, stage := range s.stages {
			if err := stage.Step(); err != nil {
				return fmt.Errorf("%s: %w", stage.Name(), err)
			}
		}
		if s.transferred() == before {
			return nil
		}
	}
}

func (s *Scheduler) transferred() uint64 {
	var n uint64
	for _, b := range s.buffers {
		n += b.transferred()
	}
	return n
}

// Shutdown publishes per-buffer element totals. Data still sitting in
// buffers at this point is discarded with the scheduler.
func (s *Scheduler) Shutdown() {
	for _, b := range s.buffers {
		metric.Count(s.name, b.label(), b.committed())
		s.log.WithFields(logrus.Fields{
			"buffer":   b.label(),
			"elements": b.committed(),
		}).Debug("drained")
	}
}
