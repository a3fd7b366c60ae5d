package tone

import (
	"github.com/EricHennigan/neuros"
	"github.com/EricHennigan/neuros/pipeline"
	"github.com/EricHennigan/neuros/signal"
)

const (
	defaultKey       = "alpha_power"
	defaultBlockSize = 1024
)

// Output consumes rendered audio blocks.
type Output interface {
	WriteBlock(b signal.Block) error
}

// SynthOption provides a way to set parameters to the synth.
type SynthOption func(*Synth) error

// WithKey selects the record key driving the loudness.
func WithKey(key string) SynthOption {
	return func(s *Synth) error {
		s.key = key
		return nil
	}
}

// WithChannel selects the signal channel driving the loudness.
func WithChannel(channel int) SynthOption {
	return func(s *Synth) error {
		if channel < 0 {
			return &neuros.ConfigError{Reason: "channel must not be negative"}
		}
		s.channel = channel
		return nil
	}
}

// WithShape sets the waveform of the tone.
func WithShape(shape Shape) SynthOption {
	return func(s *Synth) error {
		s.shape = shape
		return nil
	}
}

// WithFrequency sets the frequency of the tone in Hz.
func WithFrequency(frequency float64) SynthOption {
	return func(s *Synth) error {
		if frequency <= 0 {
			return &neuros.ConfigError{Reason: "frequency must be positive"}
		}
		s.frequency = frequency
		return nil
	}
}

// WithNote tunes the tone to a note relative to the base A.
func WithNote(note string) SynthOption {
	return func(s *Synth) error {
		frequency, err := NoteFrequency(DefaultBaseFrequency, note)
		if err != nil {
			return &neuros.ConfigError{Reason: err.Error()}
		}
		s.frequency = frequency
		return nil
	}
}

// WithBlockSize sets the number of samples rendered per record.
func WithBlockSize(size int) SynthOption {
	return func(s *Synth) error {
		if size < 1 {
			return &neuros.ConfigError{Reason: "block size must be positive"}
		}
		s.blockSize = size
		return nil
	}
}

// Synth sonifies a stream: every record moves the loudness of a
// continuous tone after the value of one record key on one channel.
// Values are normalized by their running maximum and mapped to the upper
// half of the loudness range, so the tone never fully disappears once it
// sounded. Records missing the key keep the previous loudness.
//
// Synth implements pipeline.Sink and renders one audio block per record.
type Synth struct {
	neuros.UID
	out        Output
	osc        *Oscillator
	key        string
	channel    int
	shape      Shape
	frequency  float64
	sampleRate float64
	blockSize  int
	max        float64
}

// NewSynth returns a new synth rendering to out at the provided sample
// rate.
func NewSynth(out Output, sampleRate float64, options ...SynthOption) (*Synth, error) {
	if sampleRate <= 0 {
		return nil, &neuros.ConfigError{Reason: "sample rate must be positive"}
	}
	s := &Synth{
		UID:        neuros.NewUID(),
		out:        out,
		key:        defaultKey,
		shape:      Sine,
		frequency:  DefaultBaseFrequency,
		sampleRate: sampleRate,
		blockSize:  defaultBlockSize,
	}
	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}
	s.osc = NewOscillator(s.shape, s.frequency, s.sampleRate)
	return s, nil
}

// Config returns the geometry of the rendered audio.
func (s *Synth) Config() neuros.ChannelConfig {
	return neuros.ChannelConfig{Channels: 1, SampleRate: s.sampleRate}
}

// Sink adjusts the loudness after the record and renders the next block.
func (s *Synth) Sink(r pipeline.Record) error {
	if values, ok := r.Value(s.key); ok && s.channel < len(values) {
		v := values[s.channel]
		if v > s.max {
			s.max = v
		}
		if s.max > 0 {
			s.osc.SetAmplitude(0.5 + 0.5*v/s.max)
		}
	}
	return s.out.WriteBlock(signal.Block{s.osc.Generate(s.blockSize)})
}

// Flush flushes the output when it supports flushing.
func (s *Synth) Flush() error {
	if flusher, ok := s.out.(pipeline.Flusher); ok {
		return flusher.Flush()
	}
	return nil
}
