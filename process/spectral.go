package process

import (
	"fmt"
	"sort"

	"github.com/EricHennigan/neuros"
)

// Spectral computes summary features of the power spectrum for every
// channel: the frequency and power of the strongest component plus mean,
// median and variance of the spectral power. The DC bin is excluded.
// Result keys are "spectral.<name>".
type Spectral struct {
	neuros.UID
	config neuros.ChannelConfig
	length int
	keys   []string
	spec   *spectrum
	sorted []float64
}

// NewSpectral returns a spectral features processor for the given stream
// geometry.
func NewSpectral(config neuros.ChannelConfig, length int, options ...Option) (*Spectral, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if length < 2 {
		return nil, &neuros.ConfigError{Reason: fmt.Sprintf("window length must be at least 2, got %d", length)}
	}
	var opts spectralOptions
	for _, option := range options {
		option(&opts)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.reference != nil {
		return nil, &neuros.ConfigError{Reason: "reference band does not apply to spectral features"}
	}
	if opts.smoothing != 0 {
		return nil, &neuros.ConfigError{Reason: "smoothing does not apply to spectral features"}
	}
	return &Spectral{
		UID:    neuros.NewUID(),
		config: config,
		length: length,
		keys: []string{
			"spectral.peak_frequency",
			"spectral.peak_power",
			"spectral.mean_power",
			"spectral.median_power",
			"spectral.power_variance",
		},
		spec:   newSpectrum(length, config.SampleRate, opts.hann),
		sorted: make([]float64, 0, length/2),
	}, nil
}

// Keys returns the declared result keys.
func (p *Spectral) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Process computes the spectral features for one window.
func (p *Spectral) Process(w *neuros.Window) (Result, error) {
	if err := checkWindow(w, p.config.Channels, p.length); err != nil {
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
		psd := p.spec.periodogram(w.Data[ch])[1:]

		peak, mean := 0, 0.0
		for i, v := range psd {
			if v > psd[peak] {
				peak = i
			}
			mean += v
		}
		mean /= float64(len(psd))

		variance := 0.0
		for _, v := range psd {
			d := v - mean
			variance += d * d
		}
		variance /= float64(len(psd))

		p.sorted = append(p.sorted[:0], psd...)
		sort.Float64s(p.sorted)
		median := p.sorted[len(p.sorted)/2]
		if len(p.sorted)%2 == 0 {
			median = (median + p.sorted[len(p.sorted)/2-1]) / 2
		}

		res.Values["spectral.peak_frequency"][ch] = p.spec.freqOf(peak + 1)
		res.Values["spectral.peak_power"][ch] = psd[peak]
		res.Values["spectral.mean_power"][ch] = mean
		res.Values["spectral.median_power"][ch] = median
		res.Values["spectral.power_variance"][ch] = variance
	}
	return res, nil
}
