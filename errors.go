package neuros

import (
	"fmt"
	"time"
)

// ConfigError is returned when a component is constructed with an invalid
// configuration. It is always returned synchronously, before any data is
// accepted.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}

// ChannelMismatchError is returned when an input carries a different number
// of channels than the component was configured for. The rejected input has
// no effect on the component's state.
type ChannelMismatchError struct {
	Want int
	Got  int
}

func (e *ChannelMismatchError) Error() string {
	return fmt.Sprintf("channel mismatch: want %d channels, got %d", e.Want, e.Got)
}

// PipelineConfigError is returned when a pipeline cannot be built because
// two processors declared the same result key.
type PipelineConfigError struct {
	Key    string
	First  string
	Second string
}

func (e *PipelineConfigError) Error() string {
	return fmt.Sprintf("duplicate result key %q declared by processors %s and %s", e.Key, e.First, e.Second)
}

// ProcessingError describes the failure of a single processor on a single
// window. It travels inside the emitted record instead of stopping the
// stream.
type ProcessingError struct {
	Processor string
	Stage     int
	Start     time.Duration
	Err       error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processor %s failed on window at %v: %v", e.Processor, e.Start, e.Err)
}

// Unwrap returns the underlying failure.
func (e *ProcessingError) Unwrap() error {
	return e.Err
}
