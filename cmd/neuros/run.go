package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/EricHennigan/neuros/pipeline"
	"github.com/EricHennigan/neuros/stream"
	"github.com/EricHennigan/neuros/wav"
)

type runCommand struct {
	config string
	json   bool
	quiet  bool
}

// Implement the command interface
func (cmd *runCommand) Name() string {
	return "run"
}

func (cmd *runCommand) Help() string {
	return "Stream a signal source through the processing pipeline"
}

func (cmd *runCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.config, "config", "", "yaml session config, defaults are used without it")
	fs.BoolVar(&cmd.json, "json", false, "print records as json lines")
	fs.BoolVar(&cmd.quiet, "quiet", false, "do not print records")
}

func (cmd *runCommand) Run() error {
	s, err := loadSession(cmd.config)
	if err != nil {
		return err
	}
	// the session runs until the source is exhausted or the user interrupts
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runSession(ctx, s, cmd.json, cmd.quiet)
}

// runSession composes the configured session and runs it to completion.
func runSession(ctx context.Context, s session, asJSON, quiet bool) error {
	source, err := s.source()
	if err != nil {
		return err
	}
	win, err := s.window(source.Config().SampleRate)
	if err != nil {
		return err
	}
	procs, err := s.processors(source.Config(), win.Length)
	if err != nil {
		return err
	}
	pipe, err := pipeline.New(procs...)
	if err != nil {
		return err
	}
	policy, err := s.policy()
	if err != nil {
		return err
	}

	var sinks multiSink
	if !quiet {
		sinks = append(sinks, &printSink{out: os.Stdout, json: asJSON})
	}
	if s.Tone.Enabled {
		synth, err := s.synth()
		if err != nil {
			return err
		}
		sinks = append(sinks, synth)
	}

	options := []stream.Option{
		stream.WithName(s.Name),
		stream.WithPolicy(policy),
	}
	if s.Queue.Size > 0 {
		options = append(options, stream.WithQueue(s.Queue.Size))
	}
	if s.Record.Path != "" {
		recorder, err := wav.NewSink(s.Record.Path, source.Config())
		if err != nil {
			return err
		}
		options = append(options, stream.WithRecorder(recorder))
	}

	sess, err := stream.New(source, pipe, sinks, win, options...)
	if err != nil {
		return err
	}
	errc, err := sess.Run(ctx)
	if err != nil {
		return err
	}
	return wait(errc)
}
