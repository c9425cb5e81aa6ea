package graph

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	xdraw "golang.org/x/image/draw"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	vgdraw "gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// renderDPI is the raster resolution figures are drawn at.
const renderDPI = 96

// maxPlotPoints caps the number of points fed into a single line series.
// Captures at a few kHz hold hundreds of thousands of samples; past this
// density extra points change nothing visually and only slow rendering.
const maxPlotPoints = 4096

// Options control figure geometry and the spectral range.
type Options struct {
	// WidthPx is the rendered figure width in pixels.
	WidthPx int
	// PanelHeightPx is the height of each stacked panel in pixels.
	PanelHeightPx int
	// MaxWidthPx downscales the final figure when it is wider; 0 disables.
	MaxWidthPx int
	// MaxFreqHz limits spectral panels to this frequency.
	MaxFreqHz float64
}

// DefaultOptions returns the render geometry used when the config does not
// override it: 1200x360 panels and the conventional 200 Hz resonance range.
func DefaultOptions() Options {
	return Options{
		WidthPx:       1200,
		PanelHeightPx: 360,
		MaxFreqHz:     200,
	}
}

func (o Options) withDefaults() Options {
	defaults := DefaultOptions()
	if o.WidthPx <= 0 {
		o.WidthPx = defaults.WidthPx
	}
	if o.PanelHeightPx <= 0 {
		o.PanelHeightPx = defaults.PanelHeightPx
	}
	if o.MaxFreqHz <= 0 {
		o.MaxFreqHz = defaults.MaxFreqHz
	}
	return o
}

// seriesColors is the palette line series cycle through.
var seriesColors = []color.Color{
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}, // blue
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}, // orange
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}, // green
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}, // red
}

var peakColor = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}

// newPanel builds an empty plot with the shared figure styling.
func newPanel(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(13)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	return p
}

// addLine appends one line series to a panel, decimating dense captures.
func addLine(p *plot.Plot, xs, ys []float64, seriesColor color.Color) error {
	xs, ys = decimate(xs, ys, maxPlotPoints)

	points := make(plotter.XYs, len(xs))
	for i := range xs {
		points[i].X = xs[i]
		points[i].Y = ys[i]
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return fmt.Errorf("failed to build line series: %w", err)
	}
	line.LineStyle.Width = vg.Points(1)
	line.LineStyle.Color = seriesColor
	p.Add(line)
	return nil
}

// addLegendLine is addLine plus a legend entry.
func addLegendLine(p *plot.Plot, name string, xs, ys []float64, seriesColor color.Color) error {
	xs, ys = decimate(xs, ys, maxPlotPoints)

	points := make(plotter.XYs, len(xs))
	for i := range xs {
		points[i].X = xs[i]
		points[i].Y = ys[i]
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return fmt.Errorf("failed to build line series %s: %w", name, err)
	}
	line.LineStyle.Width = vg.Points(1)
	line.LineStyle.Color = seriesColor
	p.Add(line)
	p.Legend.Add(name, line)
	p.Legend.Top = true
	return nil
}

// markPeak draws a glyph on the strongest spectral bin.
func markPeak(p *plot.Plot, freq, power float64) error {
	scatter, err := plotter.NewScatter(plotter.XYs{{X: freq, Y: power}})
	if err != nil {
		return fmt.Errorf("failed to build peak marker: %w", err)
	}
	scatter.GlyphStyle.Shape = vgdraw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(4)
	scatter.GlyphStyle.Color = peakColor
	p.Add(scatter)
	return nil
}

// renderFigure draws every panel at the configured size, stacks them
// vertically and encodes the result as PNG.
func renderFigure(opts Options, panels ...*plot.Plot) ([]byte, error) {
	if len(panels) == 0 {
		return nil, fmt.Errorf("no panels to render")
	}
	opts = opts.withDefaults()

	images := make([]image.Image, 0, len(panels))
	for _, panel := range panels {
		images = append(images, renderPanel(panel, opts.WidthPx, opts.PanelHeightPx))
	}

	figure := stackPanels(images)
	figure = downscale(figure, opts.MaxWidthPx)

	return encodePNG(figure)
}

// renderPanel rasterizes one plot into an in-memory image.
func renderPanel(p *plot.Plot, widthPx, heightPx int) image.Image {
	canvas := vgimg.NewWith(
		vgimg.UseWH(pixelsToLength(widthPx), pixelsToLength(heightPx)),
		vgimg.UseDPI(renderDPI),
		vgimg.UseBackgroundColor(color.White),
	)
	p.Draw(vgdraw.New(canvas))
	return canvas.Image()
}

func pixelsToLength(px int) vg.Length {
	return vg.Length(px) / renderDPI * vg.Inch
}

// stackPanels composes panel images top to bottom on a white canvas.
func stackPanels(panels []image.Image) image.Image {
	if len(panels) == 1 {
		return panels[0]
	}

	width, height := 0, 0
	for _, panel := range panels {
		if panel.Bounds().Dx() > width {
			width = panel.Bounds().Dx()
		}
		height += panel.Bounds().Dy()
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	y := 0
	for _, panel := range panels {
		bounds := panel.Bounds()
		target := image.Rect(0, y, bounds.Dx(), y+bounds.Dy())
		draw.Draw(canvas, target, panel, bounds.Min, draw.Src)
		y += bounds.Dy()
	}
	return canvas
}

// downscale shrinks the figure to maxWidth with a CatmullRom kernel,
// preserving aspect ratio. A width of 0 keeps the figure as rendered.
func downscale(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	if maxWidth <= 0 || bounds.Dx() <= maxWidth {
		return img
	}

	height := bounds.Dy() * maxWidth / bounds.Dx()
	scaled := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, xdraw.Src, nil)
	return scaled
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	bounds := img.Bounds()
	// Pre-grow buffer to reduce re-allocations; rough heuristic: 1 byte per pixel
	buf.Grow(bounds.Dx() * bounds.Dy())
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode figure as PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// decimate keeps at most maxPoints evenly spaced points of a series.
func decimate(xs, ys []float64, maxPoints int) ([]float64, []float64) {
	if len(xs) <= maxPoints || maxPoints <= 0 {
		return xs, ys
	}

	step := float64(len(xs)) / float64(maxPoints)
	outX := make([]float64, 0, maxPoints)
	outY := make([]float64, 0, maxPoints)
	for i := 0; i < maxPoints; i++ {
		idx := int(float64(i) * step)
		outX = append(outX, xs[idx])
		outY = append(outY, ys[idx])
	}
	return outX, outY
}
