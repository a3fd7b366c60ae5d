// Package process implements window processors: reusable computations that
// derive keyed numeric values from every window of a stream.
//
// A processor declares its result keys at construction and keeps them
// fixed. Values are per-channel: every key maps to one value per channel
// of the processed window. Processors may keep internal state between
// windows, derived only from the windows they have seen and their own
// previous output. Process is never called concurrently on the same
// instance.
package process

import (
	"fmt"
	"time"

	"github.com/EricHennigan/neuros"
)

// Result holds the values computed by a single processor for one window.
// Start is the processed window's start timestamp.
type Result struct {
	Start  time.Duration
	Values map[string][]float64
}

// Processor computes derived values from a window.
type Processor interface {
	ID() string
	Keys() []string
	Process(w *neuros.Window) (Result, error)
}

// checkWindow validates that a window matches the geometry the processor
// was configured for.
func checkWindow(w *neuros.Window, channels, length int) error {
	if w.Data.NumChannels() != channels {
		return &neuros.ChannelMismatchError{Want: channels, Got: w.Data.NumChannels()}
	}
	if length > 0 && w.Data.Size() != length {
		return fmt.Errorf("window of %d samples, configured for %d", w.Data.Size(), length)
	}
	return nil
}
