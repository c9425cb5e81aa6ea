package graph

import (
	"fmt"

	"github.com/shakeplot/shakeplot/internal/logging"
)

const beltsName = "belts"

// BeltsCreator renders the vibration frequency profile recorded while the
// toolhead is shaken along one belt. Healthy CoreXY belts produce a single
// clean resonance; the dominant bin is highlighted so two belt recordings
// can be compared by their peak frequency.
type BeltsCreator struct {
	name string
	opts Options
}

// NewBeltsCreator creates the belts graph creator.
func NewBeltsCreator(opts Options) Creator {
	return &BeltsCreator{
		name: beltsName,
		opts: opts,
	}
}

// Name returns the macro type this creator serves.
func (c *BeltsCreator) Name() string {
	return c.name
}

// Create renders the power spectral density of the vibration magnitude with
// the dominant resonance marked.
func (c *BeltsCreator) Create(m *Measurement) ([]byte, error) {
	logging.Debug().
		Str("macro_type", c.name).
		Str("measurement", m.Name).
		Int("samples", len(m.Samples)).
		Msg("building belts figure")

	sampleRate, err := m.SampleRate()
	if err != nil {
		return nil, err
	}

	spectrum, err := ComputeSpectrum(m.Magnitude(), sampleRate, c.opts.withDefaults().MaxFreqHz)
	if err != nil {
		return nil, err
	}
	peakFreq, peakPower := spectrum.Peak()

	panel := newPanel(
		fmt.Sprintf("Belt frequency profile (peak %.1f Hz)", peakFreq),
		"Frequency (Hz)",
		"Power spectral density",
	)
	if err := addLine(panel, spectrum.Freqs, spectrum.Power, seriesColors[0]); err != nil {
		return nil, err
	}
	if err := markPeak(panel, peakFreq, peakPower); err != nil {
		return nil, err
	}

	return renderFigure(c.opts, panel)
}

func init() {
	mustRegister(beltsName, NewBeltsCreator)
}
