package graph

import (
	"fmt"

	"github.com/shakeplot/shakeplot/internal/logging"
)

const shaperName = "shaper"

// ShaperCreator renders the input shaper calibration figure: the power
// spectral density of each accelerometer axis overlaid in one panel, with
// the per-axis resonances marked, above the raw vibration magnitude trace.
// The resonance frequencies feed the shaper_freq_x/y printer settings.
type ShaperCreator struct {
	name string
	opts Options
}

// NewShaperCreator creates the shaper graph creator.
func NewShaperCreator(opts Options) Creator {
	return &ShaperCreator{
		name: shaperName,
		opts: opts,
	}
}

// Name returns the macro type this creator serves.
func (c *ShaperCreator) Name() string {
	return c.name
}

// Create renders the per-axis resonance overlay and the magnitude trace.
func (c *ShaperCreator) Create(m *Measurement) ([]byte, error) {
	logging.Debug().
		Str("macro_type", c.name).
		Str("measurement", m.Name).
		Int("samples", len(m.Samples)).
		Msg("building shaper figure")

	sampleRate, err := m.SampleRate()
	if err != nil {
		return nil, err
	}
	maxFreq := c.opts.withDefaults().MaxFreqHz

	// Overlay the axis spectra and remember the strongest resonance for the
	// panel title.
	spectral := newPanel("Axis resonances", "Frequency (Hz)", "Power spectral density")
	strongestFreq, strongestPower := 0.0, 0.0
	for i, axis := range []string{"x", "y", "z"} {
		spectrum, err := ComputeSpectrum(detrend(m.Axis(axis)), sampleRate, maxFreq)
		if err != nil {
			return nil, fmt.Errorf("failed to compute %s axis spectrum: %w", axis, err)
		}

		if err := addLegendLine(spectral, axis, spectrum.Freqs, spectrum.Power, seriesColors[i%len(seriesColors)]); err != nil {
			return nil, err
		}

		peakFreq, peakPower := spectrum.Peak()
		if err := markPeak(spectral, peakFreq, peakPower); err != nil {
			return nil, err
		}
		if peakPower > strongestPower {
			strongestFreq, strongestPower = peakFreq, peakPower
		}
	}
	spectral.Title.Text = fmt.Sprintf("Axis resonances (strongest %.1f Hz)", strongestFreq)

	traceTitle := "Accelerometer recording"
	if m.Name != "" {
		traceTitle = fmt.Sprintf("Accelerometer recording (%s)", m.Name)
	}
	trace := newPanel(traceTitle, "Time (s)", "Acceleration magnitude (mm/s^2)")
	if err := addLine(trace, m.Times(), m.Magnitude(), seriesColors[0]); err != nil {
		return nil, err
	}

	return renderFigure(c.opts, spectral, trace)
}

func init() {
	mustRegister(shaperName, NewShaperCreator)
}
