package main

import (
	"context"
	"errors"
	"flag"
)

type analyzeCommand struct {
	config string
	in     string
	json   bool
}

// Implement the command interface
func (cmd *analyzeCommand) Name() string {
	return "analyze"
}

func (cmd *analyzeCommand) Help() string {
	return "Replay a recorded wav session through the processing pipeline"
}

func (cmd *analyzeCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.config, "config", "", "yaml session config, defaults are used without it")
	fs.StringVar(&cmd.in, "in", "", "wav recording to analyze (required)")
	fs.BoolVar(&cmd.json, "json", false, "print records as json lines")
}

func (cmd *analyzeCommand) Run() error {
	if cmd.in == "" {
		return errors.New("missing -in required flag")
	}
	s, err := loadSession(cmd.config)
	if err != nil {
		return err
	}
	// the recording overrides whatever source the config names and the
	// replay free-runs, so analysis is faster than real time
	s.Source = sourceConfig{Type: "wav", Path: cmd.in}
	return runSession(context.Background(), s, cmd.json, false)
}
