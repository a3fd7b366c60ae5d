// Package portaudio plays audio blocks on the default output device.
package portaudio

import (
	"github.com/gordonklaus/portaudio"

	"github.com/EricHennigan/neuros"
	"github.com/EricHennigan/neuros/signal"
)

// Player writes blocks to the default audio output device. The device is
// opened on the first block, so constructing a player touches no hardware.
type Player struct {
	neuros.UID
	config      neuros.ChannelConfig
	buf         []float32
	stream      *portaudio.Stream
	initialized bool
}

// NewPlayer returns a new player for the provided stream geometry.
func NewPlayer(config neuros.ChannelConfig) (*Player, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Player{
		UID:    neuros.NewUID(),
		config: config,
	}, nil
}

// Config returns the geometry the player plays at.
func (p *Player) Config() neuros.ChannelConfig {
	return p.config
}

// WriteBlock plays the block. The underlying stream is opened for the
// size of the first block and reopened when the block size changes.
func (p *Player) WriteBlock(b signal.Block) error {
	if b.NumChannels() != p.config.Channels {
		return &neuros.ChannelMismatchError{Want: p.config.Channels, Got: b.NumChannels()}
	}
	size := b.Size()
	if size == 0 {
		return nil
	}
	if p.stream == nil || len(p.buf) != size*p.config.Channels {
		if err := p.reopen(size); err != nil {
			return err
		}
	}
	for i := 0; i < size; i++ {
		for ch := range b {
			p.buf[i*p.config.Channels+ch] = float32(b[ch][i])
		}
	}
	return p.stream.Write()
}

// reopen rebuilds the portaudio stream for the provided buffer size.
func (p *Player) reopen(frames int) error {
	if p.stream != nil {
		if err := p.stream.Stop(); err != nil {
			return err
		}
		if err := p.stream.Close(); err != nil {
			return err
		}
		p.stream = nil
	}
	if !p.initialized {
		if err := portaudio.Initialize(); err != nil {
			return err
		}
		p.initialized = true
	}
	p.buf = make([]float32, frames*p.config.Channels)
	stream, err := portaudio.OpenDefaultStream(0, p.config.Channels, p.config.SampleRate, frames, &p.buf)
	if err != nil {
		return err
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return err
	}
	p.stream = stream
	return nil
}

// Flush stops playback and terminates portaudio structures.
func (p *Player) Flush() error {
	if p.stream != nil {
		if err := p.stream.Stop(); err != nil {
			return err
		}
		if err := p.stream.Close(); err != nil {
			return err
		}
		p.stream = nil
	}
	if p.initialized {
		p.initialized = false
		return portaudio.Terminate()
	}
	return nil
}
