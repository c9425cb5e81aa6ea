package graph

import (
	"fmt"
	"strings"

	"gonum.org/v1/plot"

	"github.com/shakeplot/shakeplot/internal/logging"
)

const axesMapName = "axes_map"

// AxesMapCreator renders the raw accelerometer trace of each axis in its own
// panel. The figure is used to verify the physical mounting of the
// accelerometer: a swapped or inverted axis shows up as motion on the wrong
// trace.
type AxesMapCreator struct {
	name string
	opts Options
}

// NewAxesMapCreator creates the axes_map graph creator.
func NewAxesMapCreator(opts Options) Creator {
	return &AxesMapCreator{
		name: axesMapName,
		opts: opts,
	}
}

// Name returns the macro type this creator serves.
func (c *AxesMapCreator) Name() string {
	return c.name
}

// Create renders one time-series panel per accelerometer axis.
func (c *AxesMapCreator) Create(m *Measurement) ([]byte, error) {
	logging.Debug().
		Str("macro_type", c.name).
		Str("measurement", m.Name).
		Int("samples", len(m.Samples)).
		Msg("building axes map figure")

	times := m.Times()

	panels := make([]*plot.Plot, 0, 3)
	for i, axis := range []string{"x", "y", "z"} {
		panel := newPanel(
			fmt.Sprintf("Accelerometer %s", strings.ToUpper(axis)),
			"Time (s)",
			"Acceleration (mm/s^2)",
		)
		if err := addLine(panel, times, detrend(m.Axis(axis)), seriesColors[i%len(seriesColors)]); err != nil {
			return nil, fmt.Errorf("failed to plot %s axis: %w", axis, err)
		}
		panels = append(panels, panel)
	}

	return renderFigure(c.opts, panels...)
}

func init() {
	mustRegister(axesMapName, NewAxesMapCreator)
}
