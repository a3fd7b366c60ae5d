package process_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EricHennigan/neuros"
	"github.com/EricHennigan/neuros/process"
	"github.com/EricHennigan/neuros/signal"
)

func TestNewRatio(t *testing.T) {
	tests := []struct {
		ratios   []process.RatioSpec
		options  []process.Option
		negative bool
	}{
		{
			ratios: process.StandardRatios(),
		},
		{
			ratios:   nil,
			negative: true,
		},
		{
			ratios: []process.RatioSpec{
				{Name: "", Num: process.Band{Name: "a", Low: 1, High: 2}, Den: process.Band{Name: "b", Low: 2, High: 3}},
			},
			negative: true,
		},
		{
			ratios: []process.RatioSpec{
				{Name: "x", Num: process.Band{Name: "a", Low: 2, High: 1}, Den: process.Band{Name: "b", Low: 2, High: 3}},
			},
			negative: true,
		},
		{
			ratios:   process.StandardRatios(),
			options:  []process.Option{process.WithRelative()},
			negative: true,
		},
		{
			ratios:   process.StandardRatios(),
			options:  []process.Option{process.WithSmoothing(0.5)},
			negative: true,
		},
	}

	for _, test := range tests {
		p, err := process.NewRatio(testConfig, 256, test.ratios, test.options...)
		if test.negative {
			assert.Nil(t, p)
			var cfgErr *neuros.ConfigError
			assert.True(t, errors.As(err, &cfgErr))
		} else {
			assert.NoError(t, err)
			assert.Equal(t, []string{"band_ratio.alpha_theta", "band_ratio.theta_beta", "band_ratio.alpha_beta", "band_ratio.alpha_delta"}, p.Keys())
		}
	}
}

func TestRatioSine(t *testing.T) {
	p, err := process.NewRatio(testConfig, 256, process.StandardRatios())
	require.NoError(t, err)

	// alpha-dominant signal drives alpha ratios far above 1
	w := sineWindow(testConfig, 256, 0, []float64{10, 10}, 1)
	res, err := p.Process(w)
	require.NoError(t, err)
	for ch := 0; ch < 2; ch++ {
		assert.Greater(t, res.Values["band_ratio.alpha_theta"][ch], 1.0)
		assert.Greater(t, res.Values["band_ratio.alpha_beta"][ch], 1.0)
	}
}

func TestRatioSilence(t *testing.T) {
	p, err := process.NewRatio(testConfig, 256, process.StandardRatios())
	require.NoError(t, err)

	silent := &neuros.Window{Config: testConfig, Data: signal.EmptyBlock(2, 256)}
	res, err := p.Process(silent)
	require.NoError(t, err)
	for _, key := range p.Keys() {
		for _, v := range res.Values[key] {
			assert.False(t, math.IsNaN(v))
			assert.False(t, math.IsInf(v, 0))
		}
	}
}
