package pipeline

import (
	"context"
	"fmt"

	"github.com/EricHennigan/neuros"
	"github.com/EricHennigan/neuros/metric"
)

// Policy selects the behavior of Push when the window queue is full.
type Policy int

const (
	// Block makes Push wait until the consumer drains the queue. The
	// producer slows down to the pipeline's pace and no window is lost.
	Block Policy = iota
	// DropOldest evicts the oldest queued window to admit the newest
	// one. The pipeline always sees recent data at the cost of gaps.
	DropOldest
)

func (p Policy) String() string {
	switch p {
	case Block:
		return "block"
	case DropOldest:
		return "drop-oldest"
	}
	return "unknown"
}

// Sink consumes the records emitted by a runner, one per window, in
// window order.
type Sink interface {
	Sink(r Record) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Record) error

// Sink calls fn.
func (fn SinkFunc) Sink(r Record) error {
	return fn(r)
}

// Flusher triggers when the runner finishes consuming, successfully or
// not. Sinks holding resources implement it to clean up.
type Flusher interface {
	Flush() error
}

// RunnerOption provides a way to set functional parameters to runner.
type RunnerOption func(*Runner)

// WithQueue sets the capacity of the window queue.
func WithQueue(size int) RunnerOption {
	return func(r *Runner) {
		if size > 0 {
			r.size = size
		}
	}
}

// WithPolicy sets the full-queue policy.
func WithPolicy(policy Policy) RunnerOption {
	return func(r *Runner) {
		r.policy = policy
	}
}

// WithLogger sets logger to runner. If this option is not provided,
// silent logger is used.
func WithLogger(logger Logger) RunnerOption {
	return func(r *Runner) {
		r.log = logger
	}
}

// Runner connects a window producer to the pipeline through a bounded
// queue and feeds emitted records to a sink from its own goroutine.
// Windows are processed strictly in push order. Cancellation is
// cooperative: it is observed between window submissions, an in-flight
// window always completes and reaches the sink.
type Runner struct {
	pipe   *Pipeline
	sink   Sink
	queue  chan *neuros.Window
	size   int
	policy Policy
	log    Logger
}

// Runner binds the pipeline to a sink. The queue capacity and policy
// bound the lag between the producer and the pipeline explicitly; there
// is no unbounded buffering.
func (p *Pipeline) Runner(sink Sink, options ...RunnerOption) *Runner {
	r := &Runner{
		pipe:   p,
		sink:   sink,
		size:   8,
		policy: Block,
		log:    defaultLogger,
	}
	for _, option := range options {
		option(r)
	}
	r.queue = make(chan *neuros.Window, r.size)
	return r
}

// Push hands one window to the runner. With the Block policy it waits for
// queue space and returns the context error when canceled while waiting.
// With DropOldest it evicts queued windows until the new one is admitted
// and never blocks. Calling Push after Close causes a panic.
func (r *Runner) Push(ctx context.Context, w *neuros.Window) error {
	switch r.policy {
	case DropOldest:
		for {
			select {
			case r.queue <- w:
				return nil
			default:
			}
			select {
			case old := <-r.queue:
				metric.Drop(r)
				r.log.Debug(fmt.Sprintf("runner %s dropped window at %v", r.pipe.ID(), old.Start))
			default:
			}
		}
	default:
		select {
		case r.queue <- w:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close tells the runner that no more windows will be pushed. The
// consumer drains the queue, flushes the sink and finishes.
func (r *Runner) Close() {
	close(r.queue)
}

// Run starts the consumer goroutine. The returned channel delivers the
// first consume or flush failure and is closed when the runner is done.
// The runner stops when the queue is closed and drained, when the context
// is done or when the sink fails.
func (r *Runner) Run(ctx context.Context) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		r.log.Debug(fmt.Sprintf("runner %s started: queue %d, policy %v", r.pipe.ID(), r.size, r.policy))
		errConsume := r.consume(ctx)
		var errFlush error
		if flusher, ok := r.sink.(Flusher); ok {
			errFlush = flusher.Flush()
		}
		if errConsume != nil || errFlush != nil {
			errc <- &RunError{ErrConsume: errConsume, ErrFlush: errFlush}
		}
		r.log.Debug(fmt.Sprintf("runner %s done", r.pipe.ID()))
	}()
	return errc
}

// consume processes queued windows until the queue is closed, the context
// is done or the sink fails.
func (r *Runner) consume(ctx context.Context) error {
	var rate float64
	var measure metric.MeasureFunc
	for {
		// cancellation wins over pending windows
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		select {
		case <-ctx.Done():
			return nil
		case w, ok := <-r.queue:
			if !ok {
				return nil
			}
			if measure == nil || w.Config.SampleRate != rate {
				rate = w.Config.SampleRate
				measure = metric.Meter(r, rate)()
			}
			rec := r.pipe.Submit(w)
			measure(int64(w.Length()))
			for _, failure := range rec.Failures() {
				metric.Failure(r)
				r.log.Debug(fmt.Sprintf("runner %s: %v", r.pipe.ID(), failure))
			}
			if err := r.sink.Sink(rec); err != nil {
				return err
			}
		}
	}
}
