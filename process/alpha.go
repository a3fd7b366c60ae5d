package process

import (
	"github.com/EricHennigan/neuros"
)

// alphaBand is the conventional relaxation band.
var alphaBand = Band{Name: "alpha", Low: 8, High: 12}

// Alpha extracts alpha-band power, the classic correlate of relaxed
// wakefulness. It is a fixed specialization of BandPower with the single
// result key "alpha_power". Combine with WithRelative to track the alpha
// share of total power instead of its absolute level.
type Alpha struct {
	*BandPower
}

// NewAlpha returns an alpha power processor for the given stream geometry.
func NewAlpha(config neuros.ChannelConfig, length int, options ...Option) (*Alpha, error) {
	bp, err := newBandPower(config, length, []Band{alphaBand}, func(Band) string { return "alpha_power" }, options)
	if err != nil {
		return nil, err
	}
	return &Alpha{BandPower: bp}, nil
}
