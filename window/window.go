// Package window assembles a continuous multichannel sample stream into
// fixed-length, optionally overlapping windows.
package window

import (
	"fmt"
	"math"
	"time"

	"github.com/EricHennigan/neuros"
	"github.com/EricHennigan/neuros/signal"
)

// Config defines window geometry in samples. Length is the number of
// samples per channel in every emitted window. Step is the number of
// samples between the starts of two consecutive windows: step equal to
// length produces back-to-back windows, smaller step makes consecutive
// windows share length-step samples.
type Config struct {
	Length int
	Step   int
}

// FromDuration converts window and overlap durations into a sample-based
// Config at the given sample rate. Overlap is the span shared by two
// consecutive windows, so step = window - overlap.
func FromDuration(sampleRate float64, window, overlap time.Duration) (Config, error) {
	if sampleRate <= 0 {
		return Config{}, &neuros.ConfigError{Reason: fmt.Sprintf("sample rate must be positive, got %v", sampleRate)}
	}
	if overlap < 0 {
		return Config{}, &neuros.ConfigError{Reason: fmt.Sprintf("overlap must not be negative, got %v", overlap)}
	}
	length := int(math.Round(window.Seconds() * sampleRate))
	if length < 1 {
		return Config{}, &neuros.ConfigError{Reason: fmt.Sprintf("window %v is shorter than one sample at %vHz", window, sampleRate)}
	}
	step := length - int(math.Round(overlap.Seconds()*sampleRate))
	if step < 1 {
		return Config{}, &neuros.ConfigError{Reason: fmt.Sprintf("overlap %v leaves no step within window %v", overlap, window)}
	}
	return Config{Length: length, Step: step}, nil
}

func (c Config) validate() error {
	if c.Length < 1 {
		return &neuros.ConfigError{Reason: fmt.Sprintf("window length must be positive, got %d", c.Length)}
	}
	if c.Step < 1 {
		return &neuros.ConfigError{Reason: fmt.Sprintf("window step must be positive, got %d", c.Step)}
	}
	if c.Step > c.Length {
		return &neuros.ConfigError{Reason: fmt.Sprintf("window step %d exceeds window length %d", c.Step, c.Length)}
	}
	return nil
}

// Buffer accumulates samples and emits windows. The accumulator is a
// fixed-capacity arena per channel with an explicit fill cursor: when the
// arena is full a window is copied out, the tail shared with the next
// window is moved to the front and the cursor is pulled back. Emitted
// windows never alias the arena.
//
// Buffer is not safe for concurrent use.
type Buffer struct {
	config neuros.ChannelConfig
	window Config
	arena  [][]float64
	at     []time.Duration
	n      int
}

// New returns a buffer for the given stream geometry.
func New(config neuros.ChannelConfig, window Config) (*Buffer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := window.validate(); err != nil {
		return nil, err
	}
	arena := make([][]float64, config.Channels)
	for i := range arena {
		arena[i] = make([]float64, window.Length)
	}
	return &Buffer{
		config: config,
		window: window,
		arena:  arena,
		at:     make([]time.Duration, window.Length),
	}, nil
}

// Config returns the stream geometry the buffer was built for.
func (b *Buffer) Config() neuros.ChannelConfig {
	return b.config
}

// Window returns the window geometry the buffer was built for.
func (b *Buffer) Window() Config {
	return b.window
}

// Push accepts one sample and returns the completed window, if any. At most
// one window is emitted per call. A sample with the wrong number of values
// is rejected with ChannelMismatchError and leaves the accumulated state
// untouched.
func (b *Buffer) Push(s neuros.Sample) (*neuros.Window, error) {
	if len(s.Values) != b.config.Channels {
		return nil, &neuros.ChannelMismatchError{Want: b.config.Channels, Got: len(s.Values)}
	}
	for ch := range b.arena {
		b.arena[ch][b.n] = s.Values[ch]
	}
	b.at[b.n] = s.At
	b.n++
	if b.n < b.window.Length {
		return nil, nil
	}
	return b.emit(), nil
}

// emit copies the full arena into a fresh window and retains the overlap.
func (b *Buffer) emit() *neuros.Window {
	data := signal.EmptyBlock(b.config.Channels, b.window.Length)
	for ch := range b.arena {
		copy(data[ch], b.arena[ch])
	}
	w := &neuros.Window{
		Start:  b.at[0],
		Config: b.config,
		Data:   data,
	}
	retain := b.window.Length - b.window.Step
	for ch := range b.arena {
		copy(b.arena[ch][:retain], b.arena[ch][b.window.Step:])
	}
	copy(b.at[:retain], b.at[b.window.Step:])
	b.n = retain
	return w
}

// Accumulated returns the number of samples currently buffered towards the
// next window, retained overlap included.
func (b *Buffer) Accumulated() int {
	return b.n
}

// Flush discards the partial accumulation and returns the number of
// samples dropped. Retained overlap is dropped too, so the next window
// starts from a clean accumulator. Flush never emits a window.
func (b *Buffer) Flush() int {
	n := b.n
	b.n = 0
	return n
}
