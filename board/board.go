// Package board provides signal sources: acquisition front-ends that emit
// multichannel sample streams.
//
// The synthetic board generates a deterministic sine per channel and is
// used to exercise a full stream without hardware attached.
package board

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/EricHennigan/neuros"
	"github.com/EricHennigan/neuros/signal"
)

// ErrBusy is returned when a stream is requested from a board that is
// already streaming.
var ErrBusy = errors.New("board is busy")

// electrodeLabels are assigned to channels in order, following the 10-20
// placement used by common EEG headsets.
var electrodeLabels = []string{
	"Fp1", "Fp2", "F3", "F4", "C3", "C4", "P3", "P4",
	"O1", "O2", "F7", "F8", "T3", "T4", "T5", "T6",
}

// SyntheticOption provides a way to set parameters to the synthetic board.
type SyntheticOption func(*Synthetic)

// WithNoise adds gaussian noise with the provided deviation to every
// channel.
func WithNoise(deviation float64) SyntheticOption {
	return func(b *Synthetic) {
		b.noise = deviation
	}
}

// WithAmplitudes sets per-channel amplitudes. The count must match the
// channel count.
func WithAmplitudes(amplitudes ...float64) SyntheticOption {
	return func(b *Synthetic) {
		b.amplitudes = amplitudes
	}
}

// WithSeed pins the noise generator, making the stream reproducible.
func WithSeed(seed int64) SyntheticOption {
	return func(b *Synthetic) {
		b.seed = seed
	}
}

// WithLimit bounds the stream to the provided number of samples. Without
// it the board streams until the context is done.
func WithLimit(samples int) SyntheticOption {
	return func(b *Synthetic) {
		b.limit = samples
	}
}

// WithRealtime paces the stream at the configured sample rate instead of
// emitting as fast as the consumer reads.
func WithRealtime() SyntheticOption {
	return func(b *Synthetic) {
		b.realtime = true
	}
}

// WithLabels overrides the default electrode labels. The count must match
// the channel count.
func WithLabels(labels ...string) SyntheticOption {
	return func(b *Synthetic) {
		b.config.Labels = labels
	}
}

// Synthetic is a signal generator masquerading as an acquisition board.
// Channel i carries a sine at 5*(i+1) Hz, so every channel lands in a
// different part of the spectrum.
type Synthetic struct {
	neuros.UID
	config     neuros.ChannelConfig
	amplitudes []float64
	noise      float64
	seed       int64
	limit      int
	realtime   bool
	streaming  int32
}

// NewSynthetic returns a new synthetic board.
func NewSynthetic(channels int, sampleRate float64, options ...SyntheticOption) (*Synthetic, error) {
	b := &Synthetic{
		UID: neuros.NewUID(),
		config: neuros.ChannelConfig{
			Channels:   channels,
			SampleRate: sampleRate,
		},
		seed: time.Now().UnixNano(),
	}
	if channels >= 1 && channels <= len(electrodeLabels) {
		b.config.Labels = electrodeLabels[:channels]
	}
	for _, option := range options {
		option(b)
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	if len(b.amplitudes) > 0 && len(b.amplitudes) != channels {
		return nil, &neuros.ConfigError{
			Reason: "amplitude count does not match channel count",
		}
	}
	if len(b.amplitudes) == 0 {
		b.amplitudes = make([]float64, channels)
		for ch := range b.amplitudes {
			b.amplitudes[ch] = 1
		}
	}
	return b, nil
}

// Config returns the board's stream geometry.
func (b *Synthetic) Config() neuros.ChannelConfig {
	return b.config
}

// Frequency returns the sine frequency of channel ch in Hz.
func (b *Synthetic) Frequency(ch int) float64 {
	return 5 * float64(ch+1)
}

// Stream starts generating samples. A board runs one stream at a time:
// a second call before the first stream finished returns ErrBusy. The
// stream ends when the context is done or the sample limit is reached.
func (b *Synthetic) Stream(ctx context.Context) (<-chan neuros.Sample, <-chan error, error) {
	if !atomic.CompareAndSwapInt32(&b.streaming, 0, 1) {
		return nil, nil, ErrBusy
	}
	out := make(chan neuros.Sample)
	errc := make(chan error, 1)
	rng := rand.New(rand.NewSource(b.seed))
	go func() {
		defer close(errc)
		defer close(out)
		defer atomic.StoreInt32(&b.streaming, 0)
		var tick <-chan time.Time
		if b.realtime {
			ticker := time.NewTicker(time.Duration(float64(time.Second) / b.config.SampleRate))
			defer ticker.Stop()
			tick = ticker.C
		}
		for i := 0; b.limit == 0 || i < b.limit; i++ {
			if tick != nil {
				select {
				case <-tick:
				case <-ctx.Done():
					return
				}
			}
			s := neuros.Sample{
				At:     signal.DurationOf(b.config.SampleRate, int64(i)),
				Values: b.generate(i, rng),
			}
			select {
			case out <- s:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, errc, nil
}

// generate computes the sample values at sample index i.
func (b *Synthetic) generate(i int, rng *rand.Rand) []float64 {
	t := float64(i) / b.config.SampleRate
	values := make([]float64, b.config.Channels)
	for ch := range values {
		values[ch] = b.amplitudes[ch] * math.Sin(2*math.Pi*b.Frequency(ch)*t)
		if b.noise > 0 {
			values[ch] += b.noise * rng.NormFloat64()
		}
	}
	return values
}
