package neuros_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/EricHennigan/neuros"
	"github.com/EricHennigan/neuros/signal"
)

func TestChannelConfigValidate(t *testing.T) {
	tests := []struct {
		config   neuros.ChannelConfig
		negative bool
	}{
		{
			config: neuros.ChannelConfig{Channels: 2, SampleRate: 256},
		},
		{
			config: neuros.ChannelConfig{Channels: 8, SampleRate: 250, Labels: []string{"Fp1", "Fp2", "C3", "C4", "P3", "P4", "O1", "O2"}},
		},
		{
			config:   neuros.ChannelConfig{Channels: 0, SampleRate: 256},
			negative: true,
		},
		{
			config:   neuros.ChannelConfig{Channels: -1, SampleRate: 256},
			negative: true,
		},
		{
			config:   neuros.ChannelConfig{Channels: 2, SampleRate: 0},
			negative: true,
		},
		{
			config:   neuros.ChannelConfig{Channels: 2, SampleRate: -100},
			negative: true,
		},
		{
			config:   neuros.ChannelConfig{Channels: 2, SampleRate: 256, Labels: []string{"C3"}},
			negative: true,
		},
	}

	for _, test := range tests {
		err := test.config.Validate()
		if test.negative {
			assert.Error(t, err)
			var cfgErr *neuros.ConfigError
			assert.True(t, errors.As(err, &cfgErr))
		} else {
			assert.NoError(t, err)
		}
	}
}

func TestChannelConfigLabel(t *testing.T) {
	c := neuros.ChannelConfig{Channels: 2, SampleRate: 256, Labels: []string{"C3", "C4"}}
	assert.Equal(t, "C3", c.Label(0))
	assert.Equal(t, "C4", c.Label(1))
	assert.Equal(t, "CH3", c.Label(2))

	unlabeled := neuros.ChannelConfig{Channels: 2, SampleRate: 256}
	assert.Equal(t, "CH1", unlabeled.Label(0))
	assert.Equal(t, "CH2", unlabeled.Label(1))
}

func TestWindow(t *testing.T) {
	w := neuros.Window{
		Start:  time.Second,
		Config: neuros.ChannelConfig{Channels: 2, SampleRate: 256},
		Data:   signal.EmptyBlock(2, 128),
	}
	assert.Equal(t, 128, w.Length())
	assert.Equal(t, time.Second+500*time.Millisecond, w.End())
}

func TestUID(t *testing.T) {
	u1 := neuros.NewUID()
	u2 := neuros.NewUID()
	assert.NotEmpty(t, u1.ID())
	assert.NotEqual(t, u1.ID(), u2.ID())
}

func TestProcessingErrorUnwrap(t *testing.T) {
	mismatch := &neuros.ChannelMismatchError{Want: 2, Got: 3}
	err := fmt.Errorf("stage failed: %w", &neuros.ProcessingError{
		Processor: "proc",
		Stage:     1,
		Start:     time.Second,
		Err:       mismatch,
	})

	var procErr *neuros.ProcessingError
	assert.True(t, errors.As(err, &procErr))
	assert.Equal(t, time.Second, procErr.Start)
	assert.Equal(t, 1, procErr.Stage)

	var chErr *neuros.ChannelMismatchError
	assert.True(t, errors.As(err, &chErr))
	assert.Equal(t, 2, chErr.Want)
	assert.Equal(t, 3, chErr.Got)
}
