package graph

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/shakeplot/shakeplot/internal/logging"
)

const staticName = "static"

// StaticCreator renders the static frequency figure. The macro holds the
// toolhead still while one frequency is excited, so the spectrum should
// concentrate in a single narrow band; the title reports the measured
// frequency and how much of the vibration energy sits around it.
type StaticCreator struct {
	name string
	opts Options
}

// NewStaticCreator creates the static graph creator.
func NewStaticCreator(opts Options) Creator {
	return &StaticCreator{
		name: staticName,
		opts: opts,
	}
}

// Name returns the macro type this creator serves.
func (c *StaticCreator) Name() string {
	return c.name
}

// Create renders the excitation trace and the spectrum around the sustained
// frequency.
func (c *StaticCreator) Create(m *Measurement) ([]byte, error) {
	logging.Debug().
		Str("macro_type", c.name).
		Str("measurement", m.Name).
		Int("samples", len(m.Samples)).
		Msg("building static frequency figure")

	sampleRate, err := m.SampleRate()
	if err != nil {
		return nil, err
	}
	magnitude := m.Magnitude()

	trace := newPanel(
		"Sustained excitation",
		"Time (s)",
		"Acceleration magnitude (mm/s^2)",
	)
	if err := addLine(trace, m.Times(), magnitude, seriesColors[2]); err != nil {
		return nil, err
	}

	spectrum, err := ComputeSpectrum(magnitude, sampleRate, c.opts.withDefaults().MaxFreqHz)
	if err != nil {
		return nil, err
	}
	peakFreq, peakPower := spectrum.Peak()
	concentration := energyConcentration(spectrum, peakFreq)

	spectral := newPanel(
		fmt.Sprintf("Static frequency %.1f Hz (%.0f%% of spectral energy)", peakFreq, concentration*100),
		"Frequency (Hz)",
		"Power spectral density",
	)
	if err := addLine(spectral, spectrum.Freqs, spectrum.Power, seriesColors[0]); err != nil {
		return nil, err
	}
	if err := markPeak(spectral, peakFreq, peakPower); err != nil {
		return nil, err
	}

	return renderFigure(c.opts, trace, spectral)
}

// energyConcentration returns the fraction of total spectral power that sits
// within a few bins of the given frequency. A clean sustained excitation
// yields a value close to 1.
func energyConcentration(s *Spectrum, centerFreq float64) float64 {
	total := floats.Sum(s.Power)
	if total <= 0 {
		return 0
	}

	const halfWidth = 2
	center := 0
	for i, f := range s.Freqs {
		if f >= centerFreq {
			center = i
			break
		}
	}

	local := 0.0
	for i := center - halfWidth; i <= center+halfWidth; i++ {
		if i >= 0 && i < len(s.Power) {
			local += s.Power[i]
		}
	}
	return local / total
}

func init() {
	mustRegister(staticName, NewStaticCreator)
}
