package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/EricHennigan/neuros"
	"github.com/EricHennigan/neuros/mock"
	"github.com/EricHennigan/neuros/pipeline"
)

func TestRunnerOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	processor := &mock.Processor{UID: neuros.NewUID(), ResultKeys: []string{"mock.value"}, Value: 1}
	p, err := pipeline.New(processor)
	require.NoError(t, err)

	sink := &mock.Sink{}
	runner := p.Runner(sink)
	errc := runner.Run(context.Background())

	for i := 0; i < 10; i++ {
		w := newWindow(time.Duration(i)*100*time.Millisecond, 0)
		require.NoError(t, runner.Push(context.Background(), w))
	}
	runner.Close()
	require.NoError(t, <-errc)

	records := sink.Records()
	require.Len(t, records, 10)
	for i, rec := range records {
		assert.Equal(t, time.Duration(i)*100*time.Millisecond, rec.Start())
	}
	assert.True(t, sink.Flushed)

	messages, samples := processor.Count()
	assert.Equal(t, 10, messages)
	assert.Equal(t, 160, samples)
}

func TestRunnerBlock(t *testing.T) {
	defer goleak.VerifyNone(t)

	p, err := pipeline.New()
	require.NoError(t, err)

	sink := &mock.Sink{}
	runner := p.Runner(sink, pipeline.WithQueue(1))

	require.NoError(t, runner.Push(context.Background(), newWindow(0, 0)))

	// the queue is full and nobody consumes: Push honors cancellation
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err = runner.Push(ctx, newWindow(10*time.Millisecond, 0))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	runner.Close()
	require.NoError(t, <-runner.Run(context.Background()))
	assert.Len(t, sink.Records(), 1)
}

func TestRunnerDropOldest(t *testing.T) {
	defer goleak.VerifyNone(t)

	p, err := pipeline.New()
	require.NoError(t, err)

	sink := &mock.Sink{}
	runner := p.Runner(sink, pipeline.WithQueue(2), pipeline.WithPolicy(pipeline.DropOldest))

	// the consumer is not running: admitting a new window into the full
	// queue evicts the oldest one instead of blocking
	for i := 0; i < 4; i++ {
		w := newWindow(time.Duration(i)*10*time.Millisecond, 0)
		require.NoError(t, runner.Push(context.Background(), w))
	}
	runner.Close()
	require.NoError(t, <-runner.Run(context.Background()))

	records := sink.Records()
	require.Len(t, records, 2)
	assert.Equal(t, 20*time.Millisecond, records[0].Start())
	assert.Equal(t, 30*time.Millisecond, records[1].Start())
}

func TestRunnerCancellation(t *testing.T) {
	defer goleak.VerifyNone(t)

	p, err := pipeline.New()
	require.NoError(t, err)

	processed := make(chan time.Duration, 4)
	release := make(chan struct{})
	sink := pipeline.SinkFunc(func(r pipeline.Record) error {
		processed <- r.Start()
		<-release
		return nil
	})

	runner := p.Runner(sink, pipeline.WithQueue(4))
	ctx, cancel := context.WithCancel(context.Background())
	errc := runner.Run(ctx)

	for i := 0; i < 3; i++ {
		w := newWindow(time.Duration(i)*10*time.Millisecond, 0)
		require.NoError(t, runner.Push(context.Background(), w))
	}

	// the first window is in flight, cancel while the sink holds it
	assert.Equal(t, time.Duration(0), <-processed)
	cancel()
	close(release)

	require.NoError(t, <-errc)
	// the in-flight window completed, the queued ones never reached the sink
	assert.Empty(t, processed)
}

func TestRunnerSinkError(t *testing.T) {
	defer goleak.VerifyNone(t)

	errSink := errors.New("sink failed")
	errFlush := errors.New("flush failed")
	p, err := pipeline.New()
	require.NoError(t, err)

	sink := &mock.Sink{ErrorOnCall: errSink, Hooks: mock.Hooks{ErrorOnFlush: errFlush}}
	runner := p.Runner(sink)
	errc := runner.Run(context.Background())

	require.NoError(t, runner.Push(context.Background(), newWindow(0, 0)))
	runner.Close()

	err = <-errc
	require.Error(t, err)
	var runErr *pipeline.RunError
	require.ErrorAs(t, err, &runErr)
	assert.ErrorIs(t, err, errSink)
	assert.ErrorIs(t, err, errFlush)
	assert.True(t, sink.Flushed)
}

func TestRunnerFailureRecords(t *testing.T) {
	defer goleak.VerifyNone(t)

	cause := errors.New("artifact detected")
	broken := &mock.Processor{UID: neuros.NewUID(), ResultKeys: []string{"mock.bad"}, ErrorOnCall: cause}
	p, err := pipeline.New(broken)
	require.NoError(t, err)

	sink := &mock.Sink{}
	runner := p.Runner(sink)
	errc := runner.Run(context.Background())

	require.NoError(t, runner.Push(context.Background(), newWindow(0, 0)))
	require.NoError(t, runner.Push(context.Background(), newWindow(100*time.Millisecond, 0)))
	runner.Close()
	require.NoError(t, <-errc)

	// failures ride inside records, they do not stop the runner
	records := sink.Records()
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.True(t, rec.Partial())
		assert.True(t, errors.Is(rec.Failures()[0], cause))
	}
}
