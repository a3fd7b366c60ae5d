package tone

import (
	"fmt"
	"math"
	"sync"
)

// Shape selects the waveform of an oscillator.
type Shape int

const (
	// Sine is a pure sine wave.
	Sine Shape = iota
	// Square switches between -1 and 1 on sine zero crossings.
	Square
	// Sawtooth ramps from -1 to 1 once per period.
	Sawtooth
	// Triangle ramps up and down symmetrically.
	Triangle
)

func (s Shape) String() string {
	switch s {
	case Sine:
		return "sine"
	case Square:
		return "square"
	case Sawtooth:
		return "sawtooth"
	case Triangle:
		return "triangle"
	}
	return "unknown"
}

// ParseShape resolves a waveform name.
func ParseShape(name string) (Shape, error) {
	switch name {
	case "sine":
		return Sine, nil
	case "square":
		return Square, nil
	case "sawtooth":
		return Sawtooth, nil
	case "triangle":
		return Triangle, nil
	}
	return 0, fmt.Errorf("unsupported waveform %q", name)
}

// Oscillator generates a waveform with phase continuity across blocks.
// Amplitude changes are safe to make from another goroutine and are
// ramped over the next generated block to avoid clicks.
type Oscillator struct {
	shape      Shape
	frequency  float64
	sampleRate float64

	mu        sync.Mutex
	amplitude float64
	target    float64
	phase     float64
}

// NewOscillator returns a silent oscillator, raise the amplitude to make
// it audible.
func NewOscillator(shape Shape, frequency, sampleRate float64) *Oscillator {
	return &Oscillator{
		shape:      shape,
		frequency:  frequency,
		sampleRate: sampleRate,
	}
}

// SetAmplitude sets the loudness of the tone, clipped to [0, 1].
func (o *Oscillator) SetAmplitude(amplitude float64) {
	o.mu.Lock()
	o.target = math.Max(0, math.Min(1, amplitude))
	o.mu.Unlock()
}

// Generate renders the next n samples.
func (o *Oscillator) Generate(n int) []float64 {
	o.mu.Lock()
	from := o.amplitude
	to := o.target
	o.amplitude = to
	phase := o.phase
	o.phase += float64(n) / o.sampleRate
	if o.frequency > 0 {
		// wrap once per period to keep precision over long runs
		o.phase = math.Mod(o.phase, 1/o.frequency)
	}
	o.mu.Unlock()

	out := make([]float64, n)
	for i := range out {
		t := 2 * math.Pi * o.frequency * (float64(i)/o.sampleRate + phase)
		amplitude := to
		if from != to && n > 1 {
			amplitude = from + (to-from)*float64(i)/float64(n-1)
		}
		out[i] = amplitude * o.sample(t)
	}
	return out
}

// sample computes the waveform value at phase t radians.
func (o *Oscillator) sample(t float64) float64 {
	switch o.shape {
	case Square:
		if math.Sin(t) >= 0 {
			return 1
		}
		return -1
	case Sawtooth:
		return 2 * (t/(2*math.Pi) - math.Floor(0.5+t/(2*math.Pi)))
	case Triangle:
		return 2*math.Abs(2*(t/(2*math.Pi)-math.Floor(0.5+t/(2*math.Pi)))) - 1
	}
	return math.Sin(t)
}
