package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shakeplot/shakeplot/internal/graph"
	"github.com/shakeplot/shakeplot/internal/logging"
	"github.com/shakeplot/shakeplot/internal/metrics"
)

// CoreService turns uploaded accelerometer measurements into rendered
// graphs. It is stateless: every request is parsed, rendered and forgotten.
type CoreService struct {
	config   *ServiceConfig
	registry *graph.CreatorRegistry
	opts     graph.Options
}

// NewCoreService creates the service around the default creator registry.
func NewCoreService(config *ServiceConfig) *CoreService {
	return &CoreService{
		config:   config,
		registry: graph.DefaultRegistry,
		opts: graph.Options{
			WidthPx:       config.Render.WidthPx,
			PanelHeightPx: config.Render.PanelHeightPx,
			MaxWidthPx:    config.Render.MaxWidthPx,
			MaxFreqHz:     config.Render.MaxFreqHz,
		},
	}
}

// MacroTypes lists the macro types that can be processed, sorted.
func (s *CoreService) MacroTypes() []string {
	return s.registry.Names()
}

// IsSupported reports whether a macro type has a registered creator. The
// check is case-insensitive, matching Process.
func (s *CoreService) IsSupported(macroType string) bool {
	return s.registry.IsRegistered(normalizeMacroType(macroType))
}

// Process renders the graph for one uploaded measurement. filename is kept
// for log and figure context only; data is the raw CSV content.
func (s *CoreService) Process(macroType, filename string, data []byte) ([]byte, error) {
	macroType = normalizeMacroType(macroType)
	start := time.Now()

	creator, err := s.registry.Create(macroType, s.opts)
	if err != nil {
		metrics.RecordRender(macroType, time.Since(start), "unknown_type")
		return nil, err
	}

	measurement, err := graph.ParseMeasurement(filename, data)
	if err != nil {
		metrics.RecordRender(macroType, time.Since(start), "bad_data")
		return nil, err
	}

	image, err := creator.Create(measurement)
	if err != nil {
		metrics.RecordRender(macroType, time.Since(start), renderFailureReason(err))
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.RecordRender(macroType, elapsed, "")
	logging.Info().
		Str("macro_type", macroType).
		Str("filename", filename).
		Int("input_bytes", len(data)).
		Int("image_bytes", len(image)).
		Dur("elapsed", elapsed).
		Msg("graph rendered")

	return image, nil
}

func normalizeMacroType(macroType string) string {
	return strings.ToLower(strings.TrimSpace(macroType))
}

// renderFailureReason buckets creator errors for the failure counter.
func renderFailureReason(err error) string {
	switch {
	case errors.Is(err, graph.ErrTooFewSamples),
		errors.Is(err, graph.ErrEmptyData),
		errors.Is(err, graph.ErrMalformedCSV),
		errors.Is(err, graph.ErrBadTimeColumn):
		return "bad_data"
	default:
		return "render"
	}
}
