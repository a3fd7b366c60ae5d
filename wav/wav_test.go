package wav_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/EricHennigan/neuros"
	"github.com/EricHennigan/neuros/signal"
	"github.com/EricHennigan/neuros/wav"
)

func TestRoundTrip(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "session.wav")
	config := neuros.ChannelConfig{Channels: 2, SampleRate: 256}

	sink, err := wav.NewSink(path, config)
	require.NoError(t, err)

	fill := func(b signal.Block, offset int) {
		for ch := range b {
			for i := range b[ch] {
				b[ch][i] = float64((offset+i)%100) / 100
				if ch == 1 {
					b[ch][i] = -b[ch][i]
				}
			}
		}
	}
	first := signal.EmptyBlock(2, 128)
	second := signal.EmptyBlock(2, 64)
	fill(first, 0)
	fill(second, 128)
	require.NoError(t, sink.WriteBlock(first))
	require.NoError(t, sink.WriteBlock(second))
	require.NoError(t, sink.Flush())

	source, err := wav.NewSource(path)
	require.NoError(t, err)
	got := source.Config()
	assert.Equal(t, 2, got.Channels)
	assert.Equal(t, float64(256), got.SampleRate)

	samples, errc, err := source.Stream(context.Background())
	require.NoError(t, err)
	var collected []neuros.Sample
	for s := range samples {
		collected = append(collected, s)
	}
	require.NoError(t, <-errc)

	require.Len(t, collected, 192)
	assert.Equal(t, time.Duration(0), collected[0].At)
	assert.Equal(t, signal.DurationOf(256, 191), collected[191].At)
	for i, s := range collected {
		want := float64(i%100) / 100
		assert.InDelta(t, want, s.Values[0], 1e-3)
		assert.InDelta(t, -want, s.Values[1], 1e-3)
	}
}

func TestSourceCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "session.wav")
	sink, err := wav.NewSink(path, neuros.ChannelConfig{Channels: 1, SampleRate: 256})
	require.NoError(t, err)
	require.NoError(t, sink.WriteBlock(signal.EmptyBlock(1, 1024)))
	require.NoError(t, sink.Flush())

	source, err := wav.NewSource(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	samples, errc, err := source.Stream(ctx)
	require.NoError(t, err)

	<-samples
	cancel()
	for range samples {
	}
	require.NoError(t, <-errc)
}

func TestNewSourceInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.wav")
	require.NoError(t, os.WriteFile(path, []byte("not a wav at all"), 0644))

	_, err := wav.NewSource(path)
	assert.Error(t, err)

	_, err = wav.NewSource(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}

func TestNewSink(t *testing.T) {
	dir := t.TempDir()
	config := neuros.ChannelConfig{Channels: 2, SampleRate: 256}

	_, err := wav.NewSink(filepath.Join(dir, "out.wav"), config, wav.WithBitDepth(signal.BitDepth8))
	assert.ErrorIs(t, err, wav.ErrUnsupportedBitDepth)

	_, err = wav.NewSink(filepath.Join(dir, "out.wav"), neuros.ChannelConfig{Channels: 0, SampleRate: 256})
	assert.Error(t, err)

	sink, err := wav.NewSink(filepath.Join(dir, "out.wav"), config, wav.WithBitDepth(signal.BitDepth24))
	require.NoError(t, err)

	var mismatch *neuros.ChannelMismatchError
	err = sink.WriteBlock(signal.EmptyBlock(3, 16))
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 2, mismatch.Want)
	assert.Equal(t, 3, mismatch.Got)
}

func TestSinkFlushWithoutWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.wav")
	sink, err := wav.NewSink(path, neuros.ChannelConfig{Channels: 1, SampleRate: 256})
	require.NoError(t, err)
	require.NoError(t, sink.Flush())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
