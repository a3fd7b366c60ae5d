package process

import (
	"fmt"

	"github.com/EricHennigan/neuros"
)

// RatioSpec names a pair of bands whose average powers are divided.
type RatioSpec struct {
	Name string
	Num  Band
	Den  Band
}

func (r RatioSpec) validate() error {
	if r.Name == "" {
		return &neuros.ConfigError{Reason: "ratio name must not be empty"}
	}
	if err := r.Num.validate(); err != nil {
		return err
	}
	return r.Den.validate()
}

// StandardRatios returns the band power ratios commonly tracked in
// neurofeedback work.
func StandardRatios() []RatioSpec {
	alpha, _ := BandNamed("alpha")
	theta, _ := BandNamed("theta")
	beta, _ := BandNamed("beta")
	delta, _ := BandNamed("delta")
	return []RatioSpec{
		{Name: "alpha_theta", Num: alpha, Den: theta},
		{Name: "theta_beta", Num: theta, Den: beta},
		{Name: "alpha_beta", Num: alpha, Den: beta},
		{Name: "alpha_delta", Num: alpha, Den: delta},
	}
}

// Ratio computes band power ratios for every channel. Result keys are
// "band_ratio.<name>". Both band powers come from one periodogram over the
// processed window, vanishing denominators are floored to keep the output
// finite.
type Ratio struct {
	neuros.UID
	config neuros.ChannelConfig
	length int
	ratios []RatioSpec
	keys   []string
	spec   *spectrum
}

// NewRatio returns a ratio processor for the given stream geometry. Ratio
// names must be unique within one processor.
func NewRatio(config neuros.ChannelConfig, length int, ratios []RatioSpec, options ...Option) (*Ratio, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if length < 1 {
		return nil, &neuros.ConfigError{Reason: fmt.Sprintf("window length must be positive, got %d", length)}
	}
	if len(ratios) == 0 {
		return nil, &neuros.ConfigError{Reason: "at least one ratio is required"}
	}
	keys := make([]string, 0, len(ratios))
	seen := make(map[string]struct{}, len(ratios))
	for _, r := range ratios {
		if err := r.validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[r.Name]; ok {
			return nil, &neuros.ConfigError{Reason: fmt.Sprintf("ratio %q configured twice", r.Name)}
		}
		seen[r.Name] = struct{}{}
		keys = append(keys, "band_ratio."+r.Name)
	}
	var opts spectralOptions
	for _, option := range options {
		option(&opts)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.reference != nil {
		return nil, &neuros.ConfigError{Reason: "reference band does not apply to ratios"}
	}
	if opts.smoothing != 0 {
		return nil, &neuros.ConfigError{Reason: "smoothing does not apply to ratios"}
	}
	return &Ratio{
		UID:    neuros.NewUID(),
		config: config,
		length: length,
		ratios: append([]RatioSpec(nil), ratios...),
		keys:   keys,
		spec:   newSpectrum(length, config.SampleRate, opts.hann),
	}, nil
}

// Keys returns the declared result keys in ratio order.
func (p *Ratio) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Process computes the configured ratios for one window.
func (p *Ratio) Process(w *neuros.Window) (Result, error) {
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
		psd := p.spec.periodogram(w.Data[ch])
		for i, r := range p.ratios {
			num := p.spec.bandPower(psd, r.Num.Low, r.Num.High)
			den := p.spec.bandPower(psd, r.Den.Low, r.Den.High)
			if den < nearZero {
				den = nearZero
			}
			res.Values[p.keys[i]][ch] = num / den
		}
	}
	return res, nil
}
