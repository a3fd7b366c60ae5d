// Package metric collects expvar counters for stream components.
package metric

import (
	"expvar"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/EricHennigan/neuros/signal"
)

const componentsLabel = "neuros.components"

const (
	// WindowCounter measures number of processed windows.
	WindowCounter = "Windows"
	// SampleCounter measures number of samples.
	SampleCounter = "Samples"
	// LatencyCounter measures latency between processing calls.
	LatencyCounter = "Latency"
	// DurationCounter counts what's the duration of signal.
	DurationCounter = "Duration"
	// ComponentCounter counts number of calls.
	ComponentCounter = "Components"
	// DropCounter measures number of windows dropped on backpressure.
	DropCounter = "Drops"
	// FailureCounter measures number of failed processing stages.
	FailureCounter = "Failures"
)

var (
	components = metrics{
		m: make(map[string]metric),
	}

	counters = []string{
		WindowCounter,
		SampleCounter,
		LatencyCounter,
		DurationCounter,
		ComponentCounter,
		DropCounter,
		FailureCounter,
	}
)

// Get metrics values for provided component type.
func Get(component interface{}) map[string]string {
	return getCounters(getType(component))
}

// GetAll returns counters for all measured components.
func GetAll() map[string]map[string]string {
	m := make(map[string]map[string]string)
	components.Lock()
	defer components.Unlock()
	for component := range components.m {
		m[component] = getCounters(component)
	}
	return m
}

func getCounters(componentType string) map[string]string {
	m := make(map[string]string)
	for _, counter := range counters {
		v := expvar.Get(key(componentType, counter))
		if v != nil {
			m[counter] = v.String()
		}
	}
	return m
}

// ResetFunc returns new Measure closure. This closure is needed to postpone
// metrics capture until the component is actually running.
type ResetFunc func() MeasureFunc

// MeasureFunc captures metrics when a window is processed.
type MeasureFunc func(samples int64)

// Meter creates new meter closure to capture component counters.
func Meter(component interface{}, sampleRate float64) ResetFunc {
	t := getType(component)
	metric := components.get(t)
	metric.components.Add(1)
	return func() MeasureFunc {
		calledAt := time.Now()
		var (
			windowSize     int64
			windowDuration time.Duration
		)
		return func(s int64) {
			metric.latency.set(time.Since(calledAt))
			metric.windows.Add(1)
			metric.samples.Add(s)
			// recalculate duration only when the window size has changed
			if windowSize != s {
				windowSize = s
				windowDuration = signal.DurationOf(sampleRate, s)
			}
			metric.duration.add(windowDuration)
			calledAt = time.Now()
		}
	}
}

// Drop counts one window dropped by the component on backpressure.
func Drop(component interface{}) {
	components.get(getType(component)).drops.Add(1)
}

// Failure counts one failed processing stage of the component.
func Failure(component interface{}) {
	components.get(getType(component)).failures.Add(1)
}

type metrics struct {
	sync.Mutex
	m map[string]metric
}

func (m *metrics) get(componentType string) metric {
	m.Lock()
	defer m.Unlock()
	if metric, ok := m.m[componentType]; ok {
		// return existing metric if available
		return metric
	}
	// create new metric
	metric := newMetric(componentType)
	m.m[componentType] = metric
	return metric
}

type metric struct {
	key        string
	components *expvar.Int
	windows    *expvar.Int
	samples    *expvar.Int
	drops      *expvar.Int
	failures   *expvar.Int
	latency    *duration
	duration   *duration
}

func newMetric(componentType string) metric {
	m := metric{
		key:        componentType,
		components: expvar.NewInt(key(componentType, ComponentCounter)),
		windows:    expvar.NewInt(key(componentType, WindowCounter)),
		samples:    expvar.NewInt(key(componentType, SampleCounter)),
		drops:      expvar.NewInt(key(componentType, DropCounter)),
		failures:   expvar.NewInt(key(componentType, FailureCounter)),
		latency:    &duration{},
		duration:   &duration{},
	}
	expvar.Publish(key(componentType, LatencyCounter), m.latency)
	expvar.Publish(key(componentType, DurationCounter), m.duration)
	return m
}

func key(componentType, counter string) string {
	return fmt.Sprintf("%s.%s.%s", componentsLabel, componentType, counter)
}

func getType(component interface{}) string {
	rv := reflect.ValueOf(component)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	return rv.Type().String()
}

// duration allows to format time.Duration metric values.
type duration struct {
	d int64
}

func (v *duration) String() string {
	return fmt.Sprintf("%v", time.Duration(atomic.LoadInt64(&v.d)))
}

func (v *duration) add(delta time.Duration) {
	atomic.AddInt64(&v.d, int64(delta))
}

func (v *duration) set(value time.Duration) {
	atomic.StoreInt64(&v.d, int64(value))
}
