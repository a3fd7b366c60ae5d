package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/EricHennigan/neuros"
	"github.com/EricHennigan/neuros/board"
	"github.com/EricHennigan/neuros/pipeline"
	"github.com/EricHennigan/neuros/portaudio"
	"github.com/EricHennigan/neuros/process"
	"github.com/EricHennigan/neuros/stream"
	"github.com/EricHennigan/neuros/tone"
	"github.com/EricHennigan/neuros/wav"
	"github.com/EricHennigan/neuros/window"
)

// session describes a full acquisition session. Missing keys keep their
// defaults, so a config file only needs the parts it changes.
type session struct {
	Name       string            `yaml:"name"`
	Source     sourceConfig      `yaml:"source"`
	Window     windowConfig      `yaml:"window"`
	Queue      queueConfig       `yaml:"queue"`
	Processors []processorConfig `yaml:"processors"`
	Record     recordConfig      `yaml:"record"`
	Tone       toneConfig        `yaml:"tone"`
}

type sourceConfig struct {
	Type       string  `yaml:"type"`
	Channels   int     `yaml:"channels"`
	SampleRate float64 `yaml:"sample_rate"`
	Noise      float64 `yaml:"noise"`
	Seed       int64   `yaml:"seed"`
	Limit      int     `yaml:"limit"`
	Realtime   bool    `yaml:"realtime"`
	Path       string  `yaml:"path"`
}

type windowConfig struct {
	LengthMs  int `yaml:"length_ms"`
	OverlapMs int `yaml:"overlap_ms"`
}

type queueConfig struct {
	Size   int    `yaml:"size"`
	Policy string `yaml:"policy"`
}

type processorConfig struct {
	Type      string   `yaml:"type"`
	Bands     []string `yaml:"bands"`
	Relative  bool     `yaml:"relative"`
	Smoothing float64  `yaml:"smoothing"`
	Hann      bool     `yaml:"hann"`
	Moments   bool     `yaml:"moments"`
}

type recordConfig struct {
	Path string `yaml:"path"`
}

type toneConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Key        string  `yaml:"key"`
	Channel    int     `yaml:"channel"`
	Note       string  `yaml:"note"`
	Shape      string  `yaml:"shape"`
	SampleRate float64 `yaml:"sample_rate"`
	Path       string  `yaml:"path"`
}

func defaultSession() session {
	return session{
		Name: "neuros",
		Source: sourceConfig{
			Type:       "synthetic",
			Channels:   8,
			SampleRate: 256,
			Realtime:   true,
		},
		Window: windowConfig{
			LengthMs:  1000,
			OverlapMs: 500,
		},
		Queue: queueConfig{
			Size:   8,
			Policy: "block",
		},
		Processors: []processorConfig{
			{Type: "alpha"},
		},
	}
}

// loadSession reads a yaml session config over the defaults. An empty
// path returns the defaults unchanged.
func loadSession(path string) (session, error) {
	s := defaultSession()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("cannot parse %s: %v", path, err)
	}
	return s, nil
}

// source builds the configured signal source.
func (s session) source() (stream.Source, error) {
	switch s.Source.Type {
	case "", "synthetic":
		var options []board.SyntheticOption
		if s.Source.Noise > 0 {
			options = append(options, board.WithNoise(s.Source.Noise))
		}
		if s.Source.Seed != 0 {
			options = append(options, board.WithSeed(s.Source.Seed))
		}
		if s.Source.Limit > 0 {
			options = append(options, board.WithLimit(s.Source.Limit))
		}
		if s.Source.Realtime {
			options = append(options, board.WithRealtime())
		}
		return board.NewSynthetic(s.Source.Channels, s.Source.SampleRate, options...)
	case "wav":
		return wav.NewSource(s.Source.Path)
	}
	return nil, fmt.Errorf("unknown source type %q", s.Source.Type)
}

// window converts the configured window durations into samples.
func (s session) window(sampleRate float64) (window.Config, error) {
	return window.FromDuration(
		sampleRate,
		time.Duration(s.Window.LengthMs)*time.Millisecond,
		time.Duration(s.Window.OverlapMs)*time.Millisecond,
	)
}

// policy resolves the configured queue policy.
func (s session) policy() (pipeline.Policy, error) {
	switch s.Queue.Policy {
	case "", "block":
		return pipeline.Block, nil
	case "drop-oldest":
		return pipeline.DropOldest, nil
	}
	return 0, fmt.Errorf("unknown queue policy %q", s.Queue.Policy)
}

// processors builds the configured processing stages.
func (s session) processors(config neuros.ChannelConfig, length int) ([]process.Processor, error) {
	procs := make([]process.Processor, 0, len(s.Processors))
	for _, pc := range s.Processors {
		proc, err := pc.build(config, length)
		if err != nil {
			return nil, err
		}
		procs = append(procs, proc)
	}
	return procs, nil
}

func (pc processorConfig) build(config neuros.ChannelConfig, length int) (process.Processor, error) {
	var options []process.Option
	if pc.Relative {
		options = append(options, process.WithRelative())
	}
	if pc.Smoothing > 0 {
		options = append(options, process.WithSmoothing(pc.Smoothing))
	}
	if pc.Hann {
		options = append(options, process.WithHann())
	}
	switch pc.Type {
	case "alpha":
		return process.NewAlpha(config, length, options...)
	case "band_power":
		bands, err := pc.bandList()
		if err != nil {
			return nil, err
		}
		return process.NewBandPower(config, length, bands, options...)
	case "band_ratio":
		return process.NewRatio(config, length, process.StandardRatios(), options...)
	case "spectral":
		return process.NewSpectral(config, length, options...)
	case "statistics":
		return process.NewStatistics(config, pc.Moments)
	}
	return nil, fmt.Errorf("unknown processor type %q", pc.Type)
}

func (pc processorConfig) bandList() ([]process.Band, error) {
	if len(pc.Bands) == 0 {
		return process.StandardBands(), nil
	}
	bands := make([]process.Band, 0, len(pc.Bands))
	for _, name := range pc.Bands {
		band, ok := process.BandNamed(name)
		if !ok {
			return nil, fmt.Errorf("unknown band %q", name)
		}
		bands = append(bands, band)
	}
	return bands, nil
}

// synth builds the configured sonification sink.
func (s session) synth() (*tone.Synth, error) {
	rate := s.Tone.SampleRate
	if rate == 0 {
		rate = 44100
	}
	var out tone.Output
	if s.Tone.Path != "" {
		sink, err := wav.NewSink(s.Tone.Path, neuros.ChannelConfig{Channels: 1, SampleRate: rate})
		if err != nil {
			return nil, err
		}
		out = sink
	} else {
		player, err := portaudio.NewPlayer(neuros.ChannelConfig{Channels: 1, SampleRate: rate})
		if err != nil {
			return nil, err
		}
		out = player
	}
	var options []tone.SynthOption
	if s.Tone.Key != "" {
		options = append(options, tone.WithKey(s.Tone.Key))
	}
	if s.Tone.Channel > 0 {
		options = append(options, tone.WithChannel(s.Tone.Channel))
	}
	if s.Tone.Note != "" {
		options = append(options, tone.WithNote(s.Tone.Note))
	}
	if s.Tone.Shape != "" {
		shape, err := tone.ParseShape(s.Tone.Shape)
		if err != nil {
			return nil, err
		}
		options = append(options, tone.WithShape(shape))
	}
	return tone.NewSynth(out, rate, options...)
}
