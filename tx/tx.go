// Package tx assembles the DVB-S modulation chain: energy dispersal,
// RS(204,188) outer coding, convolutional interleaving, inner coding, QPSK
// mapping, root-raised-cosine pulse shaping, rational resampling and
// optional gain control.
package tx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/cpbridges/leansdr"
	"github.com/cpbridges/leansdr/dsp"
	"github.com/cpbridges/leansdr/dvb"
	"github.com/cpbridges/leansdr/log"
	"github.com/cpbridges/leansdr/sdr"
)

// ErrInvalidConfig is returned when a pipeline cannot be assembled from the
// provided configuration.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config carries the modulator settings.
type Config struct {
	// Interpolation is the upsampling factor of the pulse-shaping filter.
	Interpolation int
	// Decimation divides the interpolated rate; the output sample rate is
	// symbol rate * Interpolation / Decimation.
	Decimation int
	// RollOff is the root-raised-cosine roll-off, in (0, 1].
	RollOff float64
	// Power is the output level target in linear units.
	Power float64
	// AGC enables closed-loop regulation of the output power.
	AGC bool
	// Rate selects the inner code rate. The zero value is rate 1/2.
	Rate dvb.CodeRate
}

// DefaultConfig returns the settings of a plain 2 samples-per-symbol chain.
func DefaultConfig() Config {
	return Config{
		Interpolation: 2,
		Decimation:    1,
		RollOff:       0.35,
		Power:         1.0,
	}
}

func (c Config) validate() error {
	switch {
	case c.Interpolation < 1:
		return fmt.Errorf("%w: interpolation %d, must be positive", ErrInvalidConfig, c.Interpolation)
	case c.Decimation < 1:
		return fmt.Errorf("%w: decimation %d, must be positive", ErrInvalidConfig, c.Decimation)
	case c.RollOff <= 0 || c.RollOff > 1:
		return fmt.Errorf("%w: roll-off %v, must be in (0, 1]", ErrInvalidConfig, c.RollOff)
	case c.Power <= 0:
		return fmt.Errorf("%w: power %v, must be positive", ErrInvalidConfig, c.Power)
	}
	return nil
}

// Buffer capacities, sized to the bursts the chain's ratios require.
const (
	bufPackets  = 12
	bufBytes    = bufPackets * dvb.RSPacketSize
	bufSymbols  = bufBytes * 8
	bufBaseband = 4096
)

// Pipeline is a fully assembled modulation chain.
type Pipeline struct {
	uid string
	sch *leansdr.Scheduler
	log *logrus.Entry
}

// Option provides a way to set functional parameters to the pipeline.
type Option func(*options)

type options struct {
	logger *logrus.Logger
}

// WithLogger sets the logger used by the pipeline and its stages.
func WithLogger(l *logrus.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// New validates cfg and assembles a pipeline reading TS packets from ts and
// writing IQ samples to iq. Construction either succeeds completely or
// returns an error before any stage runs.
func New(cfg Config, ts io.Reader, iq io.Writer, opts ...Option) (*Pipeline, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	o := options{logger: log.GetLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	p := &Pipeline{uid: xid.New().String()}
	p.sch = leansdr.NewScheduler(
		leansdr.WithLogger(o.logger),
		leansdr.WithName("dvbs-tx-"+p.uid),
	)
	p.log = p.sch.Logger()

	packets := leansdr.NewBuffer[dvb.Packet](p.sch, "ts packets", bufPackets)
	dvb.NewPacketReader(p.sch, ts, packets)

	randomized := leansdr.NewBuffer[dvb.Packet](p.sch, "randomized packets", bufPackets)
	dvb.NewRandomizer(p.sch, packets, randomized)

	codewords := leansdr.NewBuffer[dvb.RSPacket](p.sch, "rs packets", bufPackets)
	dvb.NewRSEncoder(p.sch, randomized, codewords)

	mpegBytes := leansdr.NewBuffer[byte](p.sch, "mpeg bytes", bufBytes)
	dvb.NewInterleaver(p.sch, codewords, mpegBytes)

	symbols := leansdr.NewBuffer[byte](p.sch, "symbols", bufSymbols)
	if _, err := dvb.NewConvolutional(p.sch, cfg.Rate, mpegBytes, symbols); err != nil {
		return nil, err
	}

	iqSymbols := leansdr.NewBuffer[complex64](p.sch, "iq symbols", bufSymbols)
	sdr.NewMapper(p.sch, symbols, iqSymbols)

	coeffs := dsp.RootRaisedCosine(cfg.Interpolation*10, 1/float64(cfg.Interpolation), cfg.RollOff)
	dsp.NormalizePower(coeffs, cfg.Power/sdr.CstlnAmp)
	p.log.WithFields(logrus.Fields{
		"ratio":    fmt.Sprintf("%d/%d", cfg.Interpolation, cfg.Decimation),
		"roll-off": cfg.RollOff,
		"coeffs":   len(coeffs),
	}).Debug("designed pulse-shaping filter")

	interpolated := leansdr.NewBuffer[complex64](p.sch, "interpolated", bufBaseband)
	if _, err := dsp.NewResampler(p.sch, cfg.Interpolation, coeffs, iqSymbols, interpolated); err != nil {
		return nil, err
	}

	resampled := leansdr.NewBuffer[complex64](p.sch, "resampled", bufBaseband)
	leansdr.NewDecimator(p.sch, cfg.Decimation, interpolated, resampled)
	tail := resampled

	if cfg.AGC {
		ratio := float64(cfg.Interpolation) / float64(cfg.Decimation)
		regulated := leansdr.NewBuffer[complex64](p.sch, "agc", bufBaseband)
		// The loop constant is fixed in symbol periods, so the per-sample
		// bandwidth shrinks with the resampling ratio.
		sdr.NewAGC(p.sch, tail, regulated, cfg.Power/math.Sqrt(ratio), 0.001/ratio)
		tail = regulated
	}

	sdr.NewIQWriter(p.sch, tail, iq)
	return p, nil
}

// UID returns the pipeline's unique identifier.
func (p *Pipeline) UID() string { return p.uid }

// Run drives the chain until the input is exhausted and drained, no stage
// can make progress, or ctx is cancelled. Trailing data below a stage's
// minimum unit is discarded at shutdown.
func (p *Pipeline) Run(ctx context.Context) error {
	err := p.sch.Run(ctx)
	p.sch.Shutdown()
	return err
}
