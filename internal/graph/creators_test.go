package graph

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"testing"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// testOptions keeps rendered figures small so the tests stay fast.
var testOptions = Options{WidthPx: 480, PanelHeightPx: 160}

// resonanceMeasurement builds a synthetic capture resembling a resonance
// test: distinct tones per axis on top of the gravity offset.
func resonanceMeasurement(samples int, sampleRate float64) *Measurement {
	m := &Measurement{Name: "synthetic.csv", Samples: make([]Sample, samples)}
	for i := range m.Samples {
		t := float64(i) / sampleRate
		m.Samples[i] = Sample{
			Time: t,
			X:    120 * math.Sin(2*math.Pi*45*t),
			Y:    60 * math.Sin(2*math.Pi*80*t),
			Z:    9810 + 20*math.Sin(2*math.Pi*30*t),
		}
	}
	return m
}

func TestCreators_RenderValidPNG(t *testing.T) {
	measurement := resonanceMeasurement(1024, 512)

	for _, name := range DefaultRegistry.Names() {
		t.Run(name, func(t *testing.T) {
			creator, err := DefaultRegistry.Create(name, testOptions)
			if err != nil {
				t.Fatalf("Failed to create creator: %v", err)
			}

			result, err := creator.Create(measurement)
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if len(result) == 0 {
				t.Fatal("Expected non-empty result")
			}
			if !bytes.HasPrefix(result, pngSignature) {
				t.Error("Expected result to start with the PNG signature")
			}

			img, err := png.Decode(bytes.NewReader(result))
			if err != nil {
				t.Fatalf("Result is not valid PNG: %v", err)
			}
			if img.Bounds().Dx() != testOptions.WidthPx {
				t.Errorf("Expected width %d, got %d", testOptions.WidthPx, img.Bounds().Dx())
			}
		})
	}
}

func TestCreators_PanelCounts(t *testing.T) {
	// Panel heights are fixed, so the figure height reveals how many panels
	// each creator stacks.
	tests := []struct {
		macroType string
		panels    int
	}{
		{macroType: "axes_map", panels: 3},
		{macroType: "belts", panels: 1},
		{macroType: "shaper", panels: 2},
		{macroType: "vibrations", panels: 2},
		{macroType: "static", panels: 2},
	}

	measurement := resonanceMeasurement(512, 256)

	for _, tt := range tests {
		t.Run(tt.macroType, func(t *testing.T) {
			creator, err := DefaultRegistry.Create(tt.macroType, testOptions)
			if err != nil {
				t.Fatalf("Failed to create creator: %v", err)
			}

			result, err := creator.Create(measurement)
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}

			img, err := png.Decode(bytes.NewReader(result))
			if err != nil {
				t.Fatalf("Result is not valid PNG: %v", err)
			}

			expectedHeight := tt.panels * testOptions.PanelHeightPx
			if img.Bounds().Dy() != expectedHeight {
				t.Errorf("Expected height %d for %d panels, got %d",
					expectedHeight, tt.panels, img.Bounds().Dy())
			}
		})
	}
}

func TestSpectralCreators_TooShortCapture(t *testing.T) {
	measurement := resonanceMeasurement(16, 256)

	for _, name := range []string{"belts", "shaper", "vibrations", "static"} {
		t.Run(name, func(t *testing.T) {
			creator, err := DefaultRegistry.Create(name, testOptions)
			if err != nil {
				t.Fatalf("Failed to create creator: %v", err)
			}

			_, err = creator.Create(measurement)
			if !errors.Is(err, ErrTooFewSamples) {
				t.Errorf("Expected ErrTooFewSamples, got %v", err)
			}
		})
	}
}

func TestSpectralCreators_ConstantTimeColumn(t *testing.T) {
	measurement := resonanceMeasurement(128, 256)
	for i := range measurement.Samples {
		measurement.Samples[i].Time = 1.0
	}

	for _, name := range []string{"belts", "shaper", "vibrations", "static"} {
		t.Run(name, func(t *testing.T) {
			creator, err := DefaultRegistry.Create(name, testOptions)
			if err != nil {
				t.Fatalf("Failed to create creator: %v", err)
			}

			_, err = creator.Create(measurement)
			if !errors.Is(err, ErrBadTimeColumn) {
				t.Errorf("Expected ErrBadTimeColumn, got %v", err)
			}
		})
	}
}

func TestAxesMapCreator_AcceptsShortCapture(t *testing.T) {
	// The axes map figure is pure time series and has no minimum length
	// beyond having samples at all.
	measurement := resonanceMeasurement(16, 256)

	creator, err := DefaultRegistry.Create("axes_map", testOptions)
	if err != nil {
		t.Fatalf("Failed to create creator: %v", err)
	}

	result, err := creator.Create(measurement)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !bytes.HasPrefix(result, pngSignature) {
		t.Error("Expected result to start with the PNG signature")
	}
}

func TestEnergyConcentration(t *testing.T) {
	spectrum := &Spectrum{
		Freqs: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80},
		Power: []float64{0, 10, 0, 0, 0, 0, 90, 0, 0},
	}

	concentration := energyConcentration(spectrum, 60)
	if math.Abs(concentration-0.9) > 1e-9 {
		t.Errorf("Expected concentration 0.9, got %f", concentration)
	}
}

func TestEnergyConcentration_EmptySpectrum(t *testing.T) {
	spectrum := &Spectrum{Freqs: []float64{0, 10}, Power: []float64{0, 0}}

	if c := energyConcentration(spectrum, 10); c != 0 {
		t.Errorf("Expected 0 for zero-power spectrum, got %f", c)
	}
}
