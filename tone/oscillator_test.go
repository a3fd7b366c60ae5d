package tone_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EricHennigan/neuros/tone"
)

func TestOscillatorPhaseContinuity(t *testing.T) {
	chunked := tone.NewOscillator(tone.Sine, 425, 44100)
	whole := tone.NewOscillator(tone.Sine, 425, 44100)
	chunked.SetAmplitude(1)
	whole.SetAmplitude(1)
	// settle the amplitude ramp before comparing
	chunked.Generate(16)
	whole.Generate(16)

	var got []float64
	got = append(got, chunked.Generate(64)...)
	got = append(got, chunked.Generate(64)...)
	want := whole.Generate(128)

	require.Len(t, got, 128)
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9)
	}
}

func TestOscillatorShapes(t *testing.T) {
	for _, shape := range []tone.Shape{tone.Sine, tone.Square, tone.Sawtooth, tone.Triangle} {
		osc := tone.NewOscillator(shape, 100, 44100)
		osc.SetAmplitude(1)
		osc.Generate(64)

		out := osc.Generate(1024)
		var peak float64
		for _, v := range out {
			require.LessOrEqual(t, math.Abs(v), 1.0, "shape %v", shape)
			peak = math.Max(peak, math.Abs(v))
		}
		assert.Greater(t, peak, 0.9, "shape %v", shape)
	}
}

func TestOscillatorSilentStart(t *testing.T) {
	osc := tone.NewOscillator(tone.Sine, 425, 44100)
	for _, v := range osc.Generate(256) {
		assert.Zero(t, v)
	}
}

func TestOscillatorAmplitudeClip(t *testing.T) {
	osc := tone.NewOscillator(tone.Square, 100, 44100)
	osc.SetAmplitude(2)
	osc.Generate(64)
	for _, v := range osc.Generate(256) {
		assert.LessOrEqual(t, math.Abs(v), 1.0)
	}

	osc.SetAmplitude(-1)
	osc.Generate(256)
	for _, v := range osc.Generate(256) {
		assert.Zero(t, v)
	}
}

func TestParseShape(t *testing.T) {
	for _, shape := range []tone.Shape{tone.Sine, tone.Square, tone.Sawtooth, tone.Triangle} {
		parsed, err := tone.ParseShape(shape.String())
		require.NoError(t, err)
		assert.Equal(t, shape, parsed)
	}

	_, err := tone.ParseShape("noise")
	assert.Error(t, err)
}
