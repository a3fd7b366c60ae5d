// Package wav provides a wav file source and sink, so recorded sessions
// can be replayed through a stream and live sessions can be archived.
package wav

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/EricHennigan/neuros"
	"github.com/EricHennigan/neuros/signal"
)

// ErrUnsupportedBitDepth is returned when an unsupported bit depth is used.
var ErrUnsupportedBitDepth = errors.New("only 16, 24 and 32 bit depth is supported")

const (
	wavFormat         = 1
	defaultBufferSize = 512
)

// Source reads a recorded session from a wav file and replays it as a
// sample stream. Stream geometry comes from the file header.
type Source struct {
	neuros.UID
	path       string
	config     neuros.ChannelConfig
	bitDepth   signal.BitDepth
	bufferSize int
}

// NewSource opens the file to read its header and returns a source
// replaying it. The file itself is reopened by every Stream call, so a
// source can be reused for consequent runs.
func NewSource(path string) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("file %s is not a valid wav", path)
	}
	return &Source{
		UID:  neuros.NewUID(),
		path: path,
		config: neuros.ChannelConfig{
			Channels:   decoder.Format().NumChannels,
			SampleRate: float64(decoder.SampleRate),
		},
		bitDepth:   signal.BitDepth(decoder.BitDepth),
		bufferSize: defaultBufferSize,
	}, nil
}

// Config returns the stream geometry read from the file header.
func (s *Source) Config() neuros.ChannelConfig {
	return s.config
}

// Stream replays the file. The stream ends when the file is exhausted or
// the context is done.
func (s *Source) Stream(ctx context.Context) (<-chan neuros.Sample, <-chan error, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, nil, err
	}
	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		file.Close()
		return nil, nil, fmt.Errorf("file %s is not a valid wav", s.path)
	}

	out := make(chan neuros.Sample)
	errc := make(chan error, 1)
	go func() {
		defer file.Close()
		defer close(errc)
		defer close(out)
		ib := &audio.IntBuffer{
			Format:         decoder.Format(),
			Data:           make([]int, s.bufferSize*s.config.Channels),
			SourceBitDepth: int(s.bitDepth),
		}
		var at int64
		for {
			read, err := decoder.PCMBuffer(ib)
			if err != nil {
				errc <- err
				return
			}
			if read == 0 {
				return
			}
			block := signal.InterInt{
				Data:        ib.Data[:read],
				NumChannels: s.config.Channels,
				BitDepth:    s.bitDepth,
			}.AsBlock()
			for i := 0; i < block.Size(); i++ {
				values := make([]float64, s.config.Channels)
				for ch := range values {
					values[ch] = block[ch][i]
				}
				sample := neuros.Sample{
					At:     signal.DurationOf(s.config.SampleRate, at),
					Values: values,
				}
				select {
				case out <- sample:
					at++
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, errc, nil
}

// SinkOption provides a way to set parameters to the sink.
type SinkOption func(*Sink)

// WithBitDepth sets the bit depth of the written file.
func WithBitDepth(bitDepth signal.BitDepth) SinkOption {
	return func(s *Sink) {
		s.bitDepth = bitDepth
	}
}

// Sink saves a signal to a wav file. The file is created on the first
// write and finalized by Flush.
type Sink struct {
	neuros.UID
	path     string
	config   neuros.ChannelConfig
	bitDepth signal.BitDepth
	file     *os.File
	encoder  *wav.Encoder
}

// NewSink creates a new wav sink for the provided stream geometry.
func NewSink(path string, config neuros.ChannelConfig, options ...SinkOption) (*Sink, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	s := &Sink{
		UID:      neuros.NewUID(),
		path:     path,
		config:   config,
		bitDepth: signal.BitDepth16,
	}
	for _, option := range options {
		option(s)
	}
	switch s.bitDepth {
	case signal.BitDepth16, signal.BitDepth24, signal.BitDepth32:
	default:
		return nil, ErrUnsupportedBitDepth
	}
	return s, nil
}

// WriteBlock appends the block to the file.
func (s *Sink) WriteBlock(b signal.Block) error {
	if b.NumChannels() != s.config.Channels {
		return &neuros.ChannelMismatchError{Want: s.config.Channels, Got: b.NumChannels()}
	}
	if s.encoder == nil {
		file, err := os.Create(s.path)
		if err != nil {
			return err
		}
		s.file = file
		s.encoder = wav.NewEncoder(
			file,
			int(s.config.SampleRate),
			int(s.bitDepth),
			s.config.Channels,
			wavFormat,
		)
	}
	ib := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: s.config.Channels,
			SampleRate:  int(s.config.SampleRate),
		},
		Data:           b.AsInterInt(s.bitDepth),
		SourceBitDepth: int(s.bitDepth),
	}
	return s.encoder.Write(ib)
}

// Flush finalizes the wav header and closes the file. A sink that never
// received a block flushes to nothing.
func (s *Sink) Flush() error {
	if s.encoder == nil {
		return nil
	}
	if err := s.encoder.Close(); err != nil {
		return err
	}
	return s.file.Close()
}
