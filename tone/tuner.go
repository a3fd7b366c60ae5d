// Package tone turns stream records into sound: a tuner resolves musical
// notes to frequencies, oscillators render waveforms and the synth maps a
// record key to the loudness of a continuous tone.
package tone

import (
	"fmt"
	"math"
	"sort"
)

// DefaultBaseFrequency is the reference frequency of the A note.
const DefaultBaseFrequency = 425.0

// noteSemitones maps note names to semitones above A.
var noteSemitones = map[string]int{
	"A": 0,
	"A#": 1, "Bb": 1,
	"B": 2,
	"C": 3,
	"C#": 4, "Db": 4,
	"D": 5,
	"D#": 6, "Eb": 6,
	"E": 7,
	"F": 8,
	"F#": 9, "Gb": 9,
	"G": 10,
	"G#": 11, "Ab": 11,
}

// scales list the notes of supported musical scales.
var scales = map[string][]string{
	"pentatonic": {"A", "C", "D", "E", "G"},
	"major":      {"A", "B", "C#", "D", "E", "F#", "G#"},
	"minor":      {"A", "B", "C", "D", "E", "F", "G"},
	"chromatic":  {"A", "A#", "B", "C", "C#", "D", "D#", "E", "F", "F#", "G", "G#"},
}

// Frequency returns the equal temperament frequency of a note the provided
// number of semitones away from the base A.
func Frequency(baseA float64, semitones int) float64 {
	return baseA * math.Pow(2, float64(semitones)/12)
}

// NoteFrequency resolves a note name relative to the base A.
func NoteFrequency(baseA float64, note string) (float64, error) {
	semitones, ok := noteSemitones[note]
	if !ok {
		return 0, fmt.Errorf("unknown note %q", note)
	}
	return Frequency(baseA, semitones), nil
}

// ScaleFrequencies returns the frequency of every note of a scale, shifted
// by the provided number of octaves.
func ScaleFrequencies(scale string, baseA float64, octaveShift int) ([]float64, error) {
	notes, ok := scales[scale]
	if !ok {
		return nil, fmt.Errorf("unknown scale %q, valid scales: %v", scale, Scales())
	}
	base := baseA * math.Pow(2, float64(octaveShift))
	frequencies := make([]float64, len(notes))
	for i, note := range notes {
		frequencies[i] = Frequency(base, noteSemitones[note])
	}
	return frequencies, nil
}

// Scales returns the names of supported scales.
func Scales() []string {
	names := make([]string, 0, len(scales))
	for name := range scales {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
