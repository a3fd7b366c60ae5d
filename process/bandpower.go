package process

import (
	"fmt"

	"github.com/EricHennigan/neuros"
)

// Band is a named frequency range in hertz.
type Band struct {
	Name string
	Low  float64
	High float64
}

func (b Band) validate() error {
	if b.Name == "" {
		return &neuros.ConfigError{Reason: "band name must not be empty"}
	}
	if b.Low < 0 || b.High <= b.Low {
		return &neuros.ConfigError{Reason: fmt.Sprintf("band %q range %v-%vHz is not valid", b.Name, b.Low, b.High)}
	}
	return nil
}

// StandardBands returns the conventional EEG frequency bands.
func StandardBands() []Band {
	return []Band{
		{Name: "delta", Low: 0.5, High: 4},
		{Name: "theta", Low: 4, High: 8},
		{Name: "alpha", Low: 8, High: 12},
		{Name: "beta", Low: 12, High: 30},
		{Name: "gamma", Low: 30, High: 100},
	}
}

// BandNamed returns the standard band with the given name.
func BandNamed(name string) (Band, bool) {
	for _, b := range StandardBands() {
		if b.Name == name {
			return b, true
		}
	}
	return Band{}, false
}

// totalBand covers the whole usable EEG range, used as the default
// reference for relative power.
var totalBand = Band{Name: "total", Low: 0.5, High: 100}

// nearZero guards divisions by vanishing reference powers.
const nearZero = 1e-10

// Option configures a spectral processor.
type Option func(*spectralOptions)

type spectralOptions struct {
	reference *Band
	smoothing float64
	hann      bool
}

// WithReference makes emitted powers relative: every band power is divided
// by the power of the reference band, computed from the same window.
func WithReference(reference Band) Option {
	return func(o *spectralOptions) {
		b := reference
		o.reference = &b
	}
}

// WithRelative makes emitted powers relative to the whole usable range.
func WithRelative() Option {
	return func(o *spectralOptions) {
		b := totalBand
		o.reference = &b
	}
}

// WithSmoothing applies an exponential moving average over emitted values:
// out = coef*previous + (1-coef)*current. The first window passes through
// unsmoothed.
func WithSmoothing(coef float64) Option {
	return func(o *spectralOptions) {
		o.smoothing = coef
	}
}

// WithHann tapers every window with a Hann function before the transform.
// Reduces spectral leakage of mid-bin frequencies at the cost of some
// resolution.
func WithHann() Option {
	return func(o *spectralOptions) {
		o.hann = true
	}
}

func (o spectralOptions) validate() error {
	if o.reference != nil {
		if err := o.reference.validate(); err != nil {
			return err
		}
	}
	if o.smoothing < 0 || o.smoothing >= 1 {
		return &neuros.ConfigError{Reason: fmt.Sprintf("smoothing coefficient must be in [0,1), got %v", o.smoothing)}
	}
	return nil
}

// BandPower computes the signal power within configured frequency bands
// for every channel. Result keys are "band_power.<band>". Power is
// estimated with a single-segment periodogram over the exact window; bands
// narrower than the frequency resolution degrade to the nearest achievable
// bin instead of failing.
type BandPower struct {
	neuros.UID
	config neuros.ChannelConfig
	length int
	bands  []Band
	keys   []string
	spec   *spectrum
	opts   spectralOptions
	state  map[string][]float64
}

// NewBandPower returns a processor for the given stream geometry and
// bands. Band names must be unique within one processor.
func NewBandPower(config neuros.ChannelConfig, length int, bands []Band, options ...Option) (*BandPower, error) {
	return newBandPower(config, length, bands, bandKey, options)
}

func bandKey(b Band) string {
	return "band_power." + b.Name
}

func newBandPower(config neuros.ChannelConfig, length int, bands []Band, key func(Band) string, options []Option) (*BandPower, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if length < 1 {
		return nil, &neuros.ConfigError{Reason: fmt.Sprintf("window length must be positive, got %d", length)}
	}
	if len(bands) == 0 {
		return nil, &neuros.ConfigError{Reason: "at least one band is required"}
	}
	keys := make([]string, 0, len(bands))
	seen := make(map[string]struct{}, len(bands))
	for _, b := range bands {
		if err := b.validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[b.Name]; ok {
			return nil, &neuros.ConfigError{Reason: fmt.Sprintf("band %q configured twice", b.Name)}
		}
		seen[b.Name] = struct{}{}
		keys = append(keys, key(b))
	}
	var opts spectralOptions
	for _, option := range options {
		option(&opts)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &BandPower{
		UID:    neuros.NewUID(),
		config: config,
		length: length,
		bands:  append([]Band(nil), bands...),
		keys:   keys,
		spec:   newSpectrum(length, config.SampleRate, opts.hann),
		opts:   opts,
		state:  make(map[string][]float64),
	}, nil
}

// Keys returns the declared result keys in band order.
func (p *BandPower) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Process computes the configured band powers for one window.
func (p *BandPower) Process(w *neuros.Window) (Result, error) {
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
		ref := 1.0
		if p.opts.reference != nil {
			ref = p.spec.bandPower(psd, p.opts.reference.Low, p.opts.reference.High)
			if ref < nearZero {
				ref = nearZero
			}
		}
		for i, b := range p.bands {
			v := p.spec.bandPower(psd, b.Low, b.High)
			if p.opts.reference != nil {
				v /= ref
			}
			res.Values[p.keys[i]][ch] = v
		}
	}
	p.smooth(res)
	return res, nil
}

// smooth folds the previous output into the current one when an EMA
// coefficient is configured.
func (p *BandPower) smooth(res Result) {
	coef := p.opts.smoothing
	if coef == 0 {
		return
	}
	for key, values := range res.Values {
		prev, ok := p.state[key]
		if !ok {
			prev = append([]float64(nil), values...)
			p.state[key] = prev
			continue
		}
		for ch := range values {
			values[ch] = coef*prev[ch] + (1-coef)*values[ch]
			prev[ch] = values[ch]
		}
	}
}
