// Package stream composes a signal source, a window buffer, a processing
// pipeline and a record sink into a runnable acquisition session.
//
// The source emits samples, the buffer slices them into windows, the
// pipeline turns every window into a record and the sink consumes the
// records. An optional recorder receives the raw signal of every
// completed window, so a session can be archived while it is analyzed.
package stream

import (
	"context"
	"fmt"
	"sync"

	"github.com/EricHennigan/neuros"
	"github.com/EricHennigan/neuros/log"
	"github.com/EricHennigan/neuros/pipeline"
	"github.com/EricHennigan/neuros/signal"
	"github.com/EricHennigan/neuros/window"
)

// Source acquires a multichannel signal and emits it as a sample stream.
// The stream ends when the source is exhausted or the context is done;
// asynchronous acquisition failures arrive on the error channel.
type Source interface {
	Config() neuros.ChannelConfig
	Stream(ctx context.Context) (<-chan neuros.Sample, <-chan error, error)
}

// BlockWriter receives the raw signal of completed windows.
type BlockWriter interface {
	WriteBlock(b signal.Block) error
}

// Option provides a way to set parameters to the stream.
type Option func(*Stream) error

// WithName sets the name used in logs.
func WithName(name string) Option {
	return func(s *Stream) error {
		s.name = name
		return nil
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger log.Logger) Option {
	return func(s *Stream) error {
		s.log = logger
		return nil
	}
}

// WithQueue sets the capacity of the window queue between the producer
// and the pipeline.
func WithQueue(size int) Option {
	return func(s *Stream) error {
		if size < 1 {
			return &neuros.ConfigError{Reason: fmt.Sprintf("queue size must be positive, got %d", size)}
		}
		s.queue = size
		return nil
	}
}

// WithPolicy sets the behavior of the stream when the window queue is
// full.
func WithPolicy(policy pipeline.Policy) Option {
	return func(s *Stream) error {
		s.policy = policy
		return nil
	}
}

// WithRecorder adds a recorder receiving the raw signal of every
// completed window. A recorder that supports flushing is flushed when
// the stream winds down.
func WithRecorder(w BlockWriter) Option {
	return func(s *Stream) error {
		s.recorder = w
		return nil
	}
}

// Stream is a fully composed acquisition session. It can be run multiple
// times, every run accumulates windows from a clean state.
type Stream struct {
	neuros.UID
	name     string
	source   Source
	pipe     *pipeline.Pipeline
	sink     pipeline.Sink
	win      window.Config
	recorder BlockWriter
	queue    int
	policy   pipeline.Policy
	log      log.Logger
}

// New composes a stream and validates that the window geometry fits the
// source.
func New(source Source, pipe *pipeline.Pipeline, sink pipeline.Sink, win window.Config, options ...Option) (*Stream, error) {
	if source == nil {
		return nil, &neuros.ConfigError{Reason: "stream needs a source"}
	}
	if pipe == nil {
		return nil, &neuros.ConfigError{Reason: "stream needs a pipeline"}
	}
	if sink == nil {
		return nil, &neuros.ConfigError{Reason: "stream needs a sink"}
	}
	if _, err := window.New(source.Config(), win); err != nil {
		return nil, err
	}
	s := &Stream{
		UID:    neuros.NewUID(),
		source: source,
		pipe:   pipe,
		sink:   sink,
		win:    win,
		queue:  8,
		policy: pipeline.Block,
		log:    log.GetLogger(),
	}
	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Stream) String() string {
	if s.name == "" {
		return s.ID()
	}
	return fmt.Sprintf("%v %v", s.name, s.ID())
}

// Run starts the session. It returns an error when the source cannot
// start; afterwards all failures arrive on the returned channel, which
// is closed when every part of the stream has wound down. The session
// stops when the source is exhausted or the context is done; an
// in-flight window is always finished and delivered.
func (s *Stream) Run(ctx context.Context) (<-chan error, error) {
	samples, sourceErrc, err := s.source.Stream(ctx)
	if err != nil {
		return nil, err
	}
	buf, err := window.New(s.source.Config(), s.win)
	if err != nil {
		return nil, err
	}
	runner := s.pipe.Runner(
		s.sink,
		pipeline.WithQueue(s.queue),
		pipeline.WithPolicy(s.policy),
		pipeline.WithLogger(s.log),
	)
	runnerErrc := runner.Run(ctx)

	produceErrc := make(chan error, 2)
	go func() {
		defer close(produceErrc)
		defer runner.Close()
		s.log.Debug(fmt.Sprintf("%v started: %d channels at %vHz, windows of %d step %d",
			s, buf.Config().Channels, buf.Config().SampleRate, s.win.Length, s.win.Step))
		if err := s.produce(ctx, samples, buf, runner); err != nil {
			produceErrc <- err
		}
		if err := s.flushRecorder(); err != nil {
			produceErrc <- err
		}
		s.log.Debug(fmt.Sprintf("%v done", s))
	}()

	return mergeErrors(produceErrc, sourceErrc, runnerErrc), nil
}

// produce drives samples from the source into the window buffer and hands
// completed windows to the runner.
func (s *Stream) produce(ctx context.Context, samples <-chan neuros.Sample, buf *window.Buffer, runner *pipeline.Runner) error {
	for sample := range samples {
		w, err := buf.Push(sample)
		if err != nil {
			// a malformed sample is dropped, the accumulator is untouched
			s.log.Info(fmt.Sprintf("%v dropped sample at %v: %v", s, sample.At, err))
			continue
		}
		if w == nil {
			continue
		}
		if s.recorder != nil {
			if err := s.recorder.WriteBlock(w.Data); err != nil {
				return err
			}
		}
		if err := runner.Push(ctx, w); err != nil {
			// canceled while waiting for queue space
			return nil
		}
	}
	if dropped := buf.Flush(); dropped > 0 {
		s.log.Debug(fmt.Sprintf("%v discarded %d samples of a partial window", s, dropped))
	}
	return nil
}

// flushRecorder finalizes the recorder when it supports flushing.
func (s *Stream) flushRecorder() error {
	if s.recorder == nil {
		return nil
	}
	if flusher, ok := s.recorder.(pipeline.Flusher); ok {
		return flusher.Flush()
	}
	return nil
}

// mergeErrors merges error channels from all components into one.
func mergeErrors(errcList ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	errc := make(chan error, len(errcList))

	output := func(ec <-chan error) {
		for e := range ec {
			errc <- e
		}
		wg.Done()
	}
	wg.Add(len(errcList))
	for _, ec := range errcList {
		go output(ec)
	}

	go func() {
		wg.Wait()
		close(errc)
	}()

	return errc
}
