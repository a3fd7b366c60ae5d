package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/EricHennigan/neuros"
)

// Record is the outcome of one window passing through the pipeline. For
// every configured result key it distinguishes three states: a value is
// present, the declaring stage failed on this window, or the key was never
// configured.
type Record struct {
	start    time.Duration
	pipe     *Pipeline
	values   map[string][]float64
	failures map[int]*neuros.ProcessingError
}

// Start returns the start timestamp of the processed window.
func (r Record) Start() time.Duration {
	return r.start
}

// Keys returns all configured result keys in stage declaration order,
// values present or not.
func (r Record) Keys() []string {
	return r.pipe.Keys()
}

// Value returns the per-channel values of a key. The second return is
// false when the key has no value in this record, whether because the
// declaring stage failed or because the key was never configured.
func (r Record) Value(key string) ([]float64, bool) {
	values, ok := r.values[key]
	return values, ok
}

// Failure explains the absence of a key's value: it returns the failure of
// the declaring stage. The second return is false when the key has a value
// or was never configured.
func (r Record) Failure(key string) (*neuros.ProcessingError, bool) {
	stage, ok := r.pipe.owner[key]
	if !ok {
		return nil, false
	}
	err, ok := r.failures[stage]
	return err, ok
}

// Configured reports whether the key was declared by any stage of the
// pipeline that emitted this record.
func (r Record) Configured(key string) bool {
	_, ok := r.pipe.owner[key]
	return ok
}

// Failures returns all stage failures of this window in stage order.
func (r Record) Failures() []*neuros.ProcessingError {
	if len(r.failures) == 0 {
		return nil
	}
	stages := make([]int, 0, len(r.failures))
	for stage := range r.failures {
		stages = append(stages, stage)
	}
	sort.Ints(stages)
	errs := make([]*neuros.ProcessingError, 0, len(stages))
	for _, stage := range stages {
		errs = append(errs, r.failures[stage])
	}
	return errs
}

// Partial reports whether any stage failed on this window.
func (r Record) Partial() bool {
	return len(r.failures) > 0
}

// String renders the record on one line, keys in configured order.
func (r Record) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "t=%v", r.start)
	for _, key := range r.pipe.keys {
		if values, ok := r.values[key]; ok {
			fmt.Fprintf(&b, " %s=%.4g", key, values)
		} else if _, failed := r.Failure(key); failed {
			fmt.Fprintf(&b, " %s=!failed", key)
		}
	}
	return b.String()
}

// MarshalJSON serializes the record with values in configured key order,
// so repeated runs produce byte-identical output.
func (r Record) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	fmt.Fprintf(&b, `"start_ms":%g`, float64(r.start)/float64(time.Millisecond))

	b.WriteString(`,"values":{`)
	first := true
	for _, key := range r.pipe.keys {
		values, ok := r.values[key]
		if !ok {
			continue
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		data, err := json.Marshal(values)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, "%q:%s", key, data)
	}
	b.WriteByte('}')

	if failures := r.Failures(); len(failures) > 0 {
		b.WriteString(`,"failures":{`)
		for i, failure := range failures {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%q:%q", failure.Processor, failure.Err.Error())
		}
		b.WriteByte('}')
	}

	b.WriteByte('}')
	return b.Bytes(), nil
}
