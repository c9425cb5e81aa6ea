package graph

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestOptions_WithDefaults(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		expected Options
	}{
		{
			name:     "zero value falls back entirely",
			opts:     Options{},
			expected: Options{WidthPx: 1200, PanelHeightPx: 360, MaxFreqHz: 200},
		},
		{
			name:     "explicit values survive",
			opts:     Options{WidthPx: 800, PanelHeightPx: 200, MaxWidthPx: 640, MaxFreqHz: 120},
			expected: Options{WidthPx: 800, PanelHeightPx: 200, MaxWidthPx: 640, MaxFreqHz: 120},
		},
		{
			name:     "partial override keeps remaining defaults",
			opts:     Options{WidthPx: 640},
			expected: Options{WidthPx: 640, PanelHeightPx: 360, MaxFreqHz: 200},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.withDefaults(); got != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestRenderFigure_NoPanels(t *testing.T) {
	if _, err := renderFigure(Options{}); err == nil {
		t.Error("Expected error for empty panel list, got nil")
	}
}

func TestRenderFigure_PanelDimensions(t *testing.T) {
	panel := newPanel("title", "x", "y")
	if err := addLine(panel, []float64{0, 1, 2}, []float64{1, 4, 2}, seriesColors[0]); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	result, err := renderFigure(Options{WidthPx: 320, PanelHeightPx: 240}, panel)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	img, err := png.Decode(bytes.NewReader(result))
	if err != nil {
		t.Fatalf("Result is not valid PNG: %v", err)
	}
	if img.Bounds().Dx() != 320 || img.Bounds().Dy() != 240 {
		t.Errorf("Expected 320x240, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestStackPanels(t *testing.T) {
	narrow := image.NewRGBA(image.Rect(0, 0, 100, 50))
	wide := image.NewRGBA(image.Rect(0, 0, 150, 30))

	stacked := stackPanels([]image.Image{narrow, wide})

	bounds := stacked.Bounds()
	if bounds.Dx() != 150 {
		t.Errorf("Expected width 150, got %d", bounds.Dx())
	}
	if bounds.Dy() != 80 {
		t.Errorf("Expected height 80, got %d", bounds.Dy())
	}
}

func TestStackPanels_SinglePanelUnchanged(t *testing.T) {
	panel := image.NewRGBA(image.Rect(0, 0, 10, 10))

	if stacked := stackPanels([]image.Image{panel}); stacked != panel {
		t.Error("Expected single panel to be returned as is")
	}
}

func TestDownscale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2000, 1000))

	scaled := downscale(src, 1000)
	if scaled.Bounds().Dx() != 1000 || scaled.Bounds().Dy() != 500 {
		t.Errorf("Expected 1000x500, got %dx%d", scaled.Bounds().Dx(), scaled.Bounds().Dy())
	}
}

func TestDownscale_NoOpCases(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 100))

	if downscale(src, 0) != src {
		t.Error("Expected maxWidth 0 to keep the image")
	}
	if downscale(src, 200) != src {
		t.Error("Expected image narrower than maxWidth to be kept")
	}
}

func TestEncodePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})

	data, err := encodePNG(img)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !bytes.HasPrefix(data, pngSignature) {
		t.Error("Expected PNG signature prefix")
	}

	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Encoded data does not decode: %v", err)
	}
	if decoded.Bounds().Dx() != 4 || decoded.Bounds().Dy() != 4 {
		t.Errorf("Expected 4x4, got %dx%d", decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}
}

func TestDecimate(t *testing.T) {
	xs := make([]float64, 10000)
	ys := make([]float64, 10000)
	for i := range xs {
		xs[i] = float64(i)
		ys[i] = float64(i) * 2
	}

	outX, outY := decimate(xs, ys, 100)
	if len(outX) != 100 || len(outY) != 100 {
		t.Fatalf("Expected 100 points, got %d/%d", len(outX), len(outY))
	}
	if outX[0] != 0 {
		t.Errorf("Expected first point to be kept, got %f", outX[0])
	}
	for i := 1; i < len(outX); i++ {
		if outX[i] <= outX[i-1] {
			t.Fatalf("Expected strictly increasing xs, got %f after %f", outX[i], outX[i-1])
		}
	}
	// The x/y pairing must survive decimation.
	for i := range outX {
		if outY[i] != outX[i]*2 {
			t.Fatalf("Pairing broken at %d: x=%f y=%f", i, outX[i], outY[i])
		}
	}
}

func TestDecimate_ShortInputUnchanged(t *testing.T) {
	xs := []float64{1, 2, 3}
	ys := []float64{4, 5, 6}

	outX, outY := decimate(xs, ys, 100)
	if len(outX) != 3 || len(outY) != 3 {
		t.Errorf("Expected input returned unchanged, got %d/%d points", len(outX), len(outY))
	}
}
