// Package pipeline runs an ordered set of processors over every window of
// a stream and assembles their outputs into per-window records.
//
// Processors fan out: each one observes the original window, not the
// output of its neighbours. A processor failing on one window is recorded
// in that window's record and isolated from sibling processors and from
// later windows.
package pipeline

import (
	"github.com/EricHennigan/neuros"
	"github.com/EricHennigan/neuros/process"
)

// Pipeline is an immutable, ordered set of processors. Stage order is
// fixed at build time and drives the order of result keys in records.
type Pipeline struct {
	uid    neuros.UID
	stages []stage
	keys   []string
	owner  map[string]int
}

type stage struct {
	processor process.Processor
	id        string
	keys      []string
}

// New builds a pipeline from processors in the given order. Every result
// key must be declared by exactly one processor; a duplicate key aborts
// the build with PipelineConfigError before any window is accepted. A
// pipeline with no processors is valid and emits records carrying only
// the window timestamp.
func New(processors ...process.Processor) (*Pipeline, error) {
	p := &Pipeline{
		uid:    neuros.NewUID(),
		stages: make([]stage, 0, len(processors)),
		owner:  make(map[string]int),
	}
	for i, proc := range processors {
		st := stage{
			processor: proc,
			id:        proc.ID(),
			keys:      proc.Keys(),
		}
		for _, key := range st.keys {
			if first, ok := p.owner[key]; ok {
				return nil, &neuros.PipelineConfigError{
					Key:    key,
					First:  p.stages[first].id,
					Second: st.id,
				}
			}
			p.owner[key] = i
			p.keys = append(p.keys, key)
		}
		p.stages = append(p.stages, st)
	}
	return p, nil
}

// ID returns the pipeline's unique identity.
func (p *Pipeline) ID() string {
	return p.uid.ID()
}

// Keys returns all result keys in stage declaration order.
func (p *Pipeline) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Stages returns the number of processors.
func (p *Pipeline) Stages() int {
	return len(p.stages)
}

// Submit runs every stage over the window and always returns a record,
// even when stages fail. A failed stage contributes a failure marker
// carrying the window timestamp and the processor identity; its declared
// keys stay without values for this record. Submit accepts the next
// window regardless of previous failures.
func (p *Pipeline) Submit(w *neuros.Window) Record {
	rec := Record{
		start:    w.Start,
		pipe:     p,
		values:   make(map[string][]float64, len(p.keys)),
		failures: make(map[int]*neuros.ProcessingError),
	}
	for i := range p.stages {
		st := &p.stages[i]
		res, err := st.processor.Process(w)
		if err != nil {
			rec.failures[i] = &neuros.ProcessingError{
				Processor: st.id,
				Stage:     i,
				Start:     w.Start,
				Err:       err,
			}
			continue
		}
		for _, key := range st.keys {
			if values, ok := res.Values[key]; ok {
				rec.values[key] = values
			}
		}
	}
	return rec
}

// Logger is an interface for pipeline loggers.
type Logger interface {
	Debug(...interface{})
	Info(...interface{})
}

type silentLogger struct{}

func (silentLogger) Debug(args ...interface{}) {}

func (silentLogger) Info(args ...interface{}) {}

var defaultLogger silentLogger
