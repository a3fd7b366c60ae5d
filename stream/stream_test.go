package stream_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/EricHennigan/neuros"
	"github.com/EricHennigan/neuros/board"
	"github.com/EricHennigan/neuros/mock"
	"github.com/EricHennigan/neuros/pipeline"
	"github.com/EricHennigan/neuros/process"
	"github.com/EricHennigan/neuros/signal"
	"github.com/EricHennigan/neuros/stream"
	"github.com/EricHennigan/neuros/window"
)

// drain asserts the stream wound down without failures.
func drain(t *testing.T, errc <-chan error) {
	t.Helper()
	for err := range errc {
		require.NoError(t, err)
	}
}

func TestRunSynthetic(t *testing.T) {
	defer goleak.VerifyNone(t)

	b, err := board.NewSynthetic(2, 256, board.WithLimit(256))
	require.NoError(t, err)

	alpha, err := process.NewAlpha(b.Config(), 256)
	require.NoError(t, err)
	p, err := pipeline.New(alpha)
	require.NoError(t, err)

	sink := &mock.Sink{}
	s, err := stream.New(b, p, sink, window.Config{Length: 256, Step: 256}, stream.WithName("session"))
	require.NoError(t, err)

	errc, err := s.Run(context.Background())
	require.NoError(t, err)
	drain(t, errc)

	records := sink.Records()
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, time.Duration(0), rec.Start())

	values, ok := rec.Value("alpha_power")
	require.True(t, ok)
	require.Len(t, values, 2)
	// channel 1 runs at 10 Hz, squarely inside the alpha band; channel 0
	// runs at 5 Hz and contributes nothing there
	assert.InDelta(t, 0.5, values[1], 0.05)
	assert.Less(t, values[0], 1e-6)
	assert.True(t, sink.Flushed)
}

func TestRunOverlap(t *testing.T) {
	defer goleak.VerifyNone(t)

	b, err := board.NewSynthetic(2, 256, board.WithLimit(256))
	require.NoError(t, err)

	stats, err := process.NewStatistics(b.Config(), false)
	require.NoError(t, err)
	p, err := pipeline.New(stats)
	require.NoError(t, err)

	sink := &mock.Sink{}
	s, err := stream.New(b, p, sink, window.Config{Length: 128, Step: 64})
	require.NoError(t, err)

	errc, err := s.Run(context.Background())
	require.NoError(t, err)
	drain(t, errc)

	records := sink.Records()
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, signal.DurationOf(256, int64(64*i)), rec.Start())
		_, ok := rec.Value("stats.mean")
		assert.True(t, ok)
	}
}

func TestRunRecorder(t *testing.T) {
	defer goleak.VerifyNone(t)

	b, err := board.NewSynthetic(2, 256, board.WithLimit(192))
	require.NoError(t, err)
	p, err := pipeline.New()
	require.NoError(t, err)

	recorder := &mock.BlockSink{}
	sink := &mock.Sink{}
	s, err := stream.New(b, p, sink, window.Config{Length: 64, Step: 64}, stream.WithRecorder(recorder))
	require.NoError(t, err)

	errc, err := s.Run(context.Background())
	require.NoError(t, err)
	drain(t, errc)

	assert.Len(t, sink.Records(), 3)
	buf := recorder.Buffer()
	require.Equal(t, 2, buf.NumChannels())
	require.Equal(t, 192, buf.Size())
	// the recorder sees the raw signal: channel 0 peaks a quarter period
	// into its 5 Hz sine
	assert.InDelta(t, 1.0, buf[0][64], 1e-9)
	assert.True(t, recorder.Flushed)
}

func TestRunFailureIsolation(t *testing.T) {
	defer goleak.VerifyNone(t)

	b, err := board.NewSynthetic(2, 256, board.WithLimit(128))
	require.NoError(t, err)

	stats, err := process.NewStatistics(b.Config(), false)
	require.NoError(t, err)
	cause := errors.New("electrode detached")
	broken := &mock.Processor{UID: neuros.NewUID(), ResultKeys: []string{"mock.bad"}, ErrorOnCall: cause}
	p, err := pipeline.New(stats, broken)
	require.NoError(t, err)

	sink := &mock.Sink{}
	s, err := stream.New(b, p, sink, window.Config{Length: 64, Step: 64})
	require.NoError(t, err)

	errc, err := s.Run(context.Background())
	require.NoError(t, err)
	drain(t, errc)

	records := sink.Records()
	require.Len(t, records, 2)
	for i, rec := range records {
		assert.True(t, rec.Partial())
		_, ok := rec.Value("stats.mean")
		assert.True(t, ok)

		failure, ok := rec.Failure("mock.bad")
		require.True(t, ok)
		assert.Equal(t, signal.DurationOf(256, int64(64*i)), failure.Start)
		assert.True(t, errors.Is(failure, cause))
	}
}

func TestRunCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	b, err := board.NewSynthetic(2, 256)
	require.NoError(t, err)
	p, err := pipeline.New()
	require.NoError(t, err)

	got := make(chan pipeline.Record, 1)
	sink := pipeline.SinkFunc(func(r pipeline.Record) error {
		select {
		case got <- r:
		default:
		}
		return nil
	})

	s, err := stream.New(b, p, sink, window.Config{Length: 64, Step: 64})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc, err := s.Run(ctx)
	require.NoError(t, err)

	rec := <-got
	assert.Equal(t, time.Duration(0), rec.Start())
	cancel()
	drain(t, errc)
}

func TestRunMalformedSample(t *testing.T) {
	defer goleak.VerifyNone(t)

	source := &glitchSource{
		config: neuros.ChannelConfig{Channels: 2, SampleRate: 256},
		limit:  33,
		badAt:  7,
	}
	stats, err := process.NewStatistics(source.Config(), false)
	require.NoError(t, err)
	p, err := pipeline.New(stats)
	require.NoError(t, err)

	sink := &mock.Sink{}
	s, err := stream.New(source, p, sink, window.Config{Length: 32, Step: 32})
	require.NoError(t, err)

	errc, err := s.Run(context.Background())
	require.NoError(t, err)
	drain(t, errc)

	// the malformed sample was dropped, the remaining 32 made one window
	records := sink.Records()
	require.Len(t, records, 1)
	values, ok := records[0].Value("stats.mean")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 1}, values)
}

func TestNewValidation(t *testing.T) {
	b, err := board.NewSynthetic(2, 256)
	require.NoError(t, err)
	p, err := pipeline.New()
	require.NoError(t, err)
	sink := &mock.Sink{}
	win := window.Config{Length: 64, Step: 64}

	var confErr *neuros.ConfigError
	_, err = stream.New(nil, p, sink, win)
	require.ErrorAs(t, err, &confErr)

	_, err = stream.New(b, nil, sink, win)
	require.ErrorAs(t, err, &confErr)

	_, err = stream.New(b, p, nil, win)
	require.ErrorAs(t, err, &confErr)

	_, err = stream.New(b, p, sink, window.Config{Length: 64, Step: 65})
	require.ErrorAs(t, err, &confErr)

	_, err = stream.New(b, p, sink, win, stream.WithQueue(0))
	require.ErrorAs(t, err, &confErr)
}

// glitchSource emits constant samples with a single malformed one in the
// middle.
type glitchSource struct {
	config neuros.ChannelConfig
	limit  int
	badAt  int
}

func (g *glitchSource) Config() neuros.ChannelConfig {
	return g.config
}

func (g *glitchSource) Stream(ctx context.Context) (<-chan neuros.Sample, <-chan error, error) {
	out := make(chan neuros.Sample)
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		defer close(out)
		for i := 0; i < g.limit; i++ {
			channels := g.config.Channels
			if i == g.badAt {
				channels++
			}
			values := make([]float64, channels)
			for ch := range values {
				values[ch] = 1
			}
			s := neuros.Sample{
				At:     signal.DurationOf(g.config.SampleRate, int64(i)),
				Values: values,
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
