// Package mock provides mocks for stream components and allows to execute
// integration tests.
package mock

import (
	"context"
	"time"

	"github.com/EricHennigan/neuros"
	"github.com/EricHennigan/neuros/pipeline"
	"github.com/EricHennigan/neuros/process"
	"github.com/EricHennigan/neuros/signal"
)

const (
	defaultSampleRate = 256
	defaultChannels   = 2
)

// Source mocks a board source: it emits Limit constant-valued samples.
type Source struct {
	neuros.UID
	counter
	Interval    time.Duration
	Limit       int
	Value       float64
	Channels    int
	SampleRate  float64
	ErrorOnCall error
}

// Config returns the mocked stream geometry.
func (m *Source) Config() neuros.ChannelConfig {
	channels := m.Channels
	if channels == 0 {
		channels = defaultChannels
	}
	rate := m.SampleRate
	if rate == 0 {
		rate = defaultSampleRate
	}
	return neuros.ChannelConfig{Channels: channels, SampleRate: rate}
}

// Stream emits the configured samples.
func (m *Source) Stream(ctx context.Context) (<-chan neuros.Sample, <-chan error, error) {
	config := m.Config()
	out := make(chan neuros.Sample)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		if m.ErrorOnCall != nil {
			errc <- m.ErrorOnCall
			return
		}
		for i := 0; i < m.Limit; i++ {
			if m.Interval > 0 {
				time.Sleep(m.Interval)
			}
			values := make([]float64, config.Channels)
			for ch := range values {
				values[ch] = m.Value
			}
			s := neuros.Sample{
				At:     signal.DurationOf(config.SampleRate, int64(i)),
				Values: values,
			}
			select {
			case out <- s:
				m.advance(1)
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, errc, nil
}

// Processor mocks a window processor with configurable keys.
type Processor struct {
	neuros.UID
	counter
	ResultKeys  []string
	Value       float64
	ErrorOnCall error
}

// Keys returns the configured result keys.
func (m *Processor) Keys() []string {
	return append([]string(nil), m.ResultKeys...)
}

// Process emits Value for every key and channel.
func (m *Processor) Process(w *neuros.Window) (process.Result, error) {
	if m.ErrorOnCall != nil {
		return process.Result{}, m.ErrorOnCall
	}
	res := process.Result{
		Start:  w.Start,
		Values: make(map[string][]float64, len(m.ResultKeys)),
	}
	for _, key := range m.ResultKeys {
		values := make([]float64, w.Data.NumChannels())
		for ch := range values {
			values[ch] = m.Value
		}
		res.Values[key] = values
	}
	m.advance(w.Data.Size())
	return res, nil
}

// Sink mocks a record sink and collects everything it receives.
// Records are not thread-safe, so should not be checked while the stream
// is running.
type Sink struct {
	neuros.UID
	counter
	records     []pipeline.Record
	Discard     bool
	ErrorOnCall error
	Hooks
}

// Sink collects the record.
func (m *Sink) Sink(r pipeline.Record) error {
	if m.ErrorOnCall != nil {
		return m.ErrorOnCall
	}
	if !m.Discard {
		m.records = append(m.records, r)
	}
	m.advance(1)
	return nil
}

// Flush implements pipeline.Flusher.
func (m *Sink) Flush() error {
	m.Flushed = true
	return m.ErrorOnFlush
}

// Records returns the collected records.
func (m *Sink) Records() []pipeline.Record {
	return m.records
}

// BlockSink mocks a block writer and collects everything written.
type BlockSink struct {
	buffer      signal.Block
	ErrorOnCall error
	Hooks
}

// WriteBlock appends the block to the collected buffer.
func (m *BlockSink) WriteBlock(b signal.Block) error {
	if m.ErrorOnCall != nil {
		return m.ErrorOnCall
	}
	m.buffer = m.buffer.Append(b)
	return nil
}

// Flush implements pipeline.Flusher.
func (m *BlockSink) Flush() error {
	m.Flushed = true
	return m.ErrorOnFlush
}

// Buffer returns the collected blocks.
func (m *BlockSink) Buffer() signal.Block {
	return m.buffer
}

// Hooks allows to mock component hooks.
type Hooks struct {
	Flushed      bool
	ErrorOnFlush error
}

// counter counts messages and samples.
type counter struct {
	messages int
	samples  int
}

// advance counter's metrics.
func (c *counter) advance(size int) {
	c.messages++
	c.samples = c.samples + size
}

// Count returns messages and samples metrics.
func (c *counter) Count() (int, int) {
	return c.messages, c.samples
}
