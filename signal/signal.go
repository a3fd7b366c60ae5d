// Package signal provides types to carry multichannel sample data between
// components. It allows to:
// 	- convert interleaved data to non-interleaved
//	- convert bit depth for int signals
package signal

import (
	"math"
	"time"
)

// Block is a non-interleaved multichannel buffer: one slice of samples per
// channel, all channels of the same length.
type Block [][]float64

const (
	// BitDepth8 is 8 bit depth.
	BitDepth8 = BitDepth(8)
	// BitDepth16 is 16 bit depth.
	BitDepth16 = BitDepth(16)
	// BitDepth24 is 24 bit depth.
	BitDepth24 = BitDepth(24)
	// BitDepth32 is 32 bit depth.
	BitDepth32 = BitDepth(32)
)

// InterInt is an interleaved int signal.
type InterInt struct {
	Data        []int
	NumChannels int
	BitDepth
}

// BitDepth contains values required for int-to-float and backward conversion.
type BitDepth int

// devider is used when int to float conversion is done.
func (bitDepth BitDepth) devider() float64 {
	switch bitDepth {
	case BitDepth8:
		return math.MaxInt8
	case BitDepth16:
		return math.MaxInt16
	case BitDepth24:
		return 1 << 23
	case BitDepth32:
		return math.MaxInt32
	default:
		return 1
	}
}

// multiplier is used when float to int conversion is done.
func (bitDepth BitDepth) multiplier() float64 {
	switch bitDepth {
	case BitDepth8:
		return math.MaxInt8 - 1
	case BitDepth16:
		return math.MaxInt16 - 1
	case BitDepth24:
		return 1<<23 - 1
	case BitDepth32:
		return math.MaxInt32 - 1
	default:
		return 1
	}
}

// DurationOf returns the time duration of samples at this sample rate.
func DurationOf(sampleRate float64, samples int64) time.Duration {
	return time.Duration(float64(samples) / sampleRate * float64(time.Second))
}

// AsBlock converts an interleaved int signal to a non-interleaved block.
func (ints InterInt) AsBlock() Block {
	if ints.Data == nil || ints.NumChannels == 0 {
		return nil
	}
	b := make([][]float64, ints.NumChannels)
	size := int(math.Ceil(float64(len(ints.Data)) / float64(ints.NumChannels)))

	devider := ints.BitDepth.devider()

	for i := range b {
		b[i] = make([]float64, size)
		pos := 0
		for j := i; j < len(ints.Data); j = j + ints.NumChannels {
			b[i][pos] = float64(ints.Data[j]) / devider
			pos++
		}
	}
	return b
}

// AsInterInt converts the block to an interleaved int signal.
func (b Block) AsInterInt(bitDepth BitDepth) []int {
	numChannels := b.NumChannels()
	if numChannels == 0 {
		return nil
	}

	multiplier := bitDepth.multiplier()

	ints := make([]int, b.Size()*numChannels)
	for j := range b {
		for i := range b[j] {
			ints[i*numChannels+j] = int(b[j][i] * multiplier)
		}
	}
	return ints
}

// EmptyBlock returns a zeroed block of the specified dimensions.
func EmptyBlock(numChannels int, size int) Block {
	b := make([][]float64, numChannels)
	for i := range b {
		b[i] = make([]float64, size)
	}
	return b
}

// NumChannels returns the number of channels in the block.
func (b Block) NumChannels() int {
	return len(b)
}

// Size returns the number of samples per channel.
func (b Block) Size() int {
	if b.NumChannels() == 0 {
		return 0
	}
	return len(b[0])
}

// Append adds src samples to the block channel-wise.
// A new block is returned if b is nil.
func (b Block) Append(src Block) Block {
	if b == nil {
		b = make([][]float64, src.NumChannels())
		for i := range b {
			b[i] = make([]float64, 0, src.Size())
		}
	}
	for i := range src {
		b[i] = append(b[i], src[i]...)
	}
	return b
}
