package neuros

import (
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/EricHennigan/neuros/signal"
)

// Sample is a single multichannel measurement: one value per channel,
// captured at the same instant. At is the offset from the start of the
// stream. Sources emit samples with non-decreasing At.
type Sample struct {
	At     time.Duration
	Values []float64
}

// ChannelConfig describes the geometry of an acquired stream. It is fixed
// for the lifetime of a stream and safe to share between components.
type ChannelConfig struct {
	Channels   int
	SampleRate float64
	Labels     []string
}

// Validate checks that the config describes a usable stream.
func (c ChannelConfig) Validate() error {
	if c.Channels < 1 {
		return &ConfigError{Reason: fmt.Sprintf("channel count must be positive, got %d", c.Channels)}
	}
	if c.SampleRate <= 0 {
		return &ConfigError{Reason: fmt.Sprintf("sample rate must be positive, got %v", c.SampleRate)}
	}
	if len(c.Labels) > 0 && len(c.Labels) != c.Channels {
		return &ConfigError{Reason: fmt.Sprintf("got %d labels for %d channels", len(c.Labels), c.Channels)}
	}
	return nil
}

// Label returns the label of channel i, falling back to a generated name
// when labels were not provided.
func (c ChannelConfig) Label(i int) string {
	if i >= 0 && i < len(c.Labels) {
		return c.Labels[i]
	}
	return fmt.Sprintf("CH%d", i+1)
}

// Window is a fixed-length slab of contiguous samples. Start is the At of
// its first sample. Data is owned by the window and is not mutated after
// creation, so windows can be passed between goroutines freely.
type Window struct {
	Start  time.Duration
	Config ChannelConfig
	Data   signal.Block
}

// Length returns the number of samples per channel.
func (w *Window) Length() int {
	return w.Data.Size()
}

// End returns the At just past the last sample of the window.
func (w *Window) End() time.Duration {
	return w.Start + signal.DurationOf(w.Config.SampleRate, int64(w.Length()))
}

// UID is a unique identity to embed into components.
type UID struct {
	id string
}

// NewUID returns a new unique identity value.
func NewUID() UID {
	return UID{id: xid.New().String()}
}

// ID returns the component's unique identity.
func (u UID) ID() string {
	return u.id
}
