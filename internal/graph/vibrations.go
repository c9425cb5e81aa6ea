package graph

import (
	"fmt"

	"github.com/shakeplot/shakeplot/internal/logging"
)

const vibrationsName = "vibrations"

// VibrationsCreator renders the machine vibrations figure: the vibration
// magnitude over the course of the recording and its frequency profile. The
// recording is taken while the toolhead travels at constant speed, so broad
// spectral content points at rattling or motor resonance rather than belt
// tension.
type VibrationsCreator struct {
	name string
	opts Options
}

// NewVibrationsCreator creates the vibrations graph creator.
func NewVibrationsCreator(opts Options) Creator {
	return &VibrationsCreator{
		name: vibrationsName,
		opts: opts,
	}
}

// Name returns the macro type this creator serves.
func (c *VibrationsCreator) Name() string {
	return c.name
}

// Create renders the magnitude trace and its power spectral density.
func (c *VibrationsCreator) Create(m *Measurement) ([]byte, error) {
	logging.Debug().
		Str("macro_type", c.name).
		Str("measurement", m.Name).
		Int("samples", len(m.Samples)).
		Msg("building vibrations figure")

	sampleRate, err := m.SampleRate()
	if err != nil {
		return nil, err
	}
	magnitude := m.Magnitude()

	trace := newPanel(
		fmt.Sprintf("Machine vibrations over %.1f s", m.Duration()),
		"Time (s)",
		"Acceleration magnitude (mm/s^2)",
	)
	if err := addLine(trace, m.Times(), magnitude, seriesColors[0]); err != nil {
		return nil, err
	}

	spectrum, err := ComputeSpectrum(magnitude, sampleRate, c.opts.withDefaults().MaxFreqHz)
	if err != nil {
		return nil, err
	}
	peakFreq, peakPower := spectrum.Peak()

	spectral := newPanel(
		fmt.Sprintf("Vibration frequency profile (peak %.1f Hz)", peakFreq),
		"Frequency (Hz)",
		"Power spectral density",
	)
	if err := addLine(spectral, spectrum.Freqs, spectrum.Power, seriesColors[1]); err != nil {
		return nil, err
	}
	if err := markPeak(spectral, peakFreq, peakPower); err != nil {
		return nil, err
	}

	return renderFigure(c.opts, trace, spectral)
}

func init() {
	mustRegister(vibrationsName, NewVibrationsCreator)
}
