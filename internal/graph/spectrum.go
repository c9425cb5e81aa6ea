package graph

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
)

// MinSpectrumSamples is the smallest measurement a spectral estimate is
// computed for. Resonance test captures run at a few kHz for several
// seconds, so anything shorter is a truncated or bogus file.
const MinSpectrumSamples = 64

// Spectrum is a one-sided power spectral density estimate.
type Spectrum struct {
	// Freqs holds the bin center frequencies in Hz, ascending.
	Freqs []float64
	// Power holds the spectral density per bin in (mm/s^2)^2/Hz.
	Power []float64
}

// ComputeSpectrum estimates the power spectral density of values sampled at
// sampleRate Hz, using a Hann window over the whole capture. Bins above
// maxFreq are discarded; maxFreq <= 0 keeps every bin up to Nyquist.
func ComputeSpectrum(values []float64, sampleRate, maxFreq float64) (*Spectrum, error) {
	if len(values) < MinSpectrumSamples {
		return nil, fmt.Errorf("%w: spectral estimate needs at least %d samples, got %d",
			ErrTooFewSamples, MinSpectrumSamples, len(values))
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %f", sampleRate)
	}

	windowed := window.Hann(detrend(values))

	fft := fourier.NewFFT(len(windowed))
	coefficients := fft.Coefficients(nil, windowed)

	// One-sided periodogram scaling: normalize by the window power so the
	// density is independent of capture length.
	windowPower := 0.0
	for _, w := range window.Hann(ones(len(values))) {
		windowPower += w * w
	}
	scale := 1.0 / (sampleRate * windowPower)

	spectrum := &Spectrum{
		Freqs: make([]float64, 0, len(coefficients)),
		Power: make([]float64, 0, len(coefficients)),
	}
	// Only even-length input places its last coefficient on the Nyquist
	// frequency; for odd lengths every non-DC bin has a negative twin.
	hasNyquistBin := len(values)%2 == 0
	for i, c := range coefficients {
		freq := fft.Freq(i) * sampleRate
		if maxFreq > 0 && freq > maxFreq {
			break
		}
		power := (real(c)*real(c) + imag(c)*imag(c)) * scale
		// Double every bin except DC and Nyquist to fold the discarded
		// negative frequencies in.
		if i != 0 && !(hasNyquistBin && i == len(coefficients)-1) {
			power *= 2
		}
		spectrum.Freqs = append(spectrum.Freqs, freq)
		spectrum.Power = append(spectrum.Power, power)
	}

	return spectrum, nil
}

// Peak returns the frequency and power of the strongest bin, ignoring DC.
func (s *Spectrum) Peak() (freq, power float64) {
	if len(s.Power) == 0 {
		return 0, 0
	}
	start := 0
	if len(s.Power) > 1 {
		start = 1
	}
	peak := start
	for i := start; i < len(s.Power); i++ {
		if s.Power[i] > s.Power[peak] {
			peak = i
		}
	}
	return s.Freqs[peak], s.Power[peak]
}

// MaxPower returns the largest density in the spectrum.
func (s *Spectrum) MaxPower() float64 {
	if len(s.Power) == 0 {
		return 0
	}
	return floats.Max(s.Power)
}

// detrend returns a copy of values with the mean removed. Accelerometer
// captures carry gravity as a large constant offset that would otherwise
// swamp the vibration content.
func detrend(values []float64) []float64 {
	mean := floats.Sum(values) / float64(len(values))
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v - mean
	}
	return out
}

// ones returns a slice of n ones; windowing it yields the bare window
// weights for normalization.
func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

func norm3(x, y, z float64) float64 {
	return math.Sqrt(x*x + y*y + z*z)
}
