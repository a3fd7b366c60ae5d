package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/EricHennigan/neuros/pipeline"
)

// printSink writes one line per record.
type printSink struct {
	out  io.Writer
	json bool
}

func (s *printSink) Sink(r pipeline.Record) error {
	if s.json {
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(s.out, string(data))
		return err
	}
	_, err := fmt.Fprintln(s.out, r)
	return err
}

// multiSink fans records out to several sinks.
type multiSink []pipeline.Sink

func (m multiSink) Sink(r pipeline.Record) error {
	for _, s := range m {
		if err := s.Sink(r); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes every sink, returning the first failure.
func (m multiSink) Flush() error {
	var errFlush error
	for _, s := range m {
		if flusher, ok := s.(pipeline.Flusher); ok {
			if err := flusher.Flush(); err != nil && errFlush == nil {
				errFlush = err
			}
		}
	}
	return errFlush
}
