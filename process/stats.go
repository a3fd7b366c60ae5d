package process

import (
	"math"

	"github.com/EricHennigan/neuros"
)

// Statistics computes time-domain statistics for every channel of a
// window: mean and population variance, plus skewness and excess kurtosis
// when moments are enabled. Result keys are "stats.<name>". Works on any
// window length, no spectral machinery involved.
type Statistics struct {
	neuros.UID
	config  neuros.ChannelConfig
	moments bool
	keys    []string
}

// NewStatistics returns a statistics processor. With moments enabled the
// third and fourth standardized moments are emitted as well; on a window
// with vanishing variance both are reported as zero.
func NewStatistics(config neuros.ChannelConfig, moments bool) (*Statistics, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	keys := []string{"stats.mean", "stats.variance"}
	if moments {
		keys = append(keys, "stats.skewness", "stats.kurtosis")
	}
	return &Statistics{
		UID:     neuros.NewUID(),
		config:  config,
		moments: moments,
		keys:    keys,
	}, nil
}

// Keys returns the declared result keys.
func (p *Statistics) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Process computes the statistics for one window.
func (p *Statistics) Process(w *neuros.Window) (Result, error) {
	if err := checkWindow(w, p.config.Channels, 0); err != nil {
		return Result{}, err
	}
	res := Result{
		Start:  w.Start,
		Values: make(map[string][]float64, len(p.keys)),
	}
	for _, key := range p.keys {
		res.Values[key] = make([]float64, p.config.Channels)
	}
	for ch := range w.Data {
		mean, variance, skewness, kurtosis := moments(w.Data[ch])
		res.Values["stats.mean"][ch] = mean
		res.Values["stats.variance"][ch] = variance
		if p.moments {
			res.Values["stats.skewness"][ch] = skewness
			res.Values["stats.kurtosis"][ch] = kurtosis
		}
	}
	return res, nil
}

// moments returns mean, population variance, skewness and excess kurtosis
// of one channel. Flat channels yield zero skewness and kurtosis instead
// of NaN.
func moments(samples []float64) (mean, variance, skewness, kurtosis float64) {
	n := float64(len(samples))
	if n == 0 {
		return 0, 0, 0, 0
	}
	for _, v := range samples {
		mean += v
	}
	mean /= n

	var m2, m3, m4 float64
	for _, v := range samples {
		d := v - mean
		d2 := d * d
		m2 += d2
		m3 += d2 * d
		m4 += d2 * d2
	}
	m2 /= n
	m3 /= n
	m4 /= n

	variance = m2
	if m2 < nearZero {
		return mean, variance, 0, 0
	}
	skewness = m3 / math.Pow(m2, 1.5)
	kurtosis = m4/(m2*m2) - 3
	return mean, variance, skewness, kurtosis
}
