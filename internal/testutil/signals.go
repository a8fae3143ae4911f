package testutil

import "math"

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Impulse generates a signal of zeros with a single spike of the given
// amplitude at pos.
func Impulse(length, pos int, amplitude float64) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = amplitude
	}
	return out
}
