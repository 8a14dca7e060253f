package app

import (
	_ "embed"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

//go:embed DejaVuSansMono.ttf
var fontBytes []byte

const (
	dpi            = 120.0
	fontSize       = 12.0
	tickMarkLength = 5
	pixelsPerLabel = 120.0
	pointRadius    = 4

	defaultPlotWidth  = 900
	defaultPlotHeight = 560

	// Default border sizes in pixels
	defaultTopBorder    = 50
	defaultLeftBorder   = 100
	defaultBottomBorder = 70
	defaultRightBorder  = 180 // space for the legend
)

// palette assigns one color per subject, cycling when subjects outnumber
// the entries
var palette = []color.RGBA{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
	{R: 0xe3, G: 0x77, B: 0xc2, A: 0xff},
	{R: 0x17, G: 0xbe, B: 0xcf, A: 0xff},
}

// bandFills alternate behind the data so adjacent normative bands stay
// distinguishable without a color scale
var bandFills = []color.RGBA{
	{R: 0xf2, G: 0xf2, B: 0xf2, A: 0xff},
	{R: 0xe4, G: 0xe9, B: 0xf0, A: 0xff},
}

var axisColor = color.RGBA{A: 0xff}

// BorderConfig defines the sizes of white space around the plot area
type BorderConfig struct {
	Top    int // Space for the title
	Left   int // Space for the Y scale and label
	Bottom int // Space for the X scale and label
	Right  int // Space for the legend
}

// RenderConfig holds the configuration options for chart rendering
type RenderConfig struct {
	PlotWidth  int
	PlotHeight int
	FontSize   float64

	BorderConfig BorderConfig
}

// ChartRenderer draws scatter charts of per-trial jump metrics
type ChartRenderer struct {
	config RenderConfig
}

// NewChartRenderer creates a chart renderer with the given configuration
func NewChartRenderer(config RenderConfig) (*ChartRenderer, error) {
	// Set defaults for zero values
	if config.PlotWidth == 0 {
		config.PlotWidth = defaultPlotWidth
	}
	if config.PlotHeight == 0 {
		config.PlotHeight = defaultPlotHeight
	}
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}
	if config.BorderConfig.Top == 0 {
		config.BorderConfig.Top = defaultTopBorder
	}
	if config.BorderConfig.Left == 0 {
		config.BorderConfig.Left = defaultLeftBorder
	}
	if config.BorderConfig.Bottom == 0 {
		config.BorderConfig.Bottom = defaultBottomBorder
	}
	if config.BorderConfig.Right == 0 {
		config.BorderConfig.Right = defaultRightBorder
	}

	return &ChartRenderer{config: config}, nil
}

// Render creates an annotated image of the chart data
func (r *ChartRenderer) Render(data *ChartData) (*image.RGBA, error) {
	if data.Len() == 0 {
		return nil, fmt.Errorf("no data points to render")
	}

	fullWidth := r.config.PlotWidth + r.config.BorderConfig.Left + r.config.BorderConfig.Right
	fullHeight := r.config.PlotHeight + r.config.BorderConfig.Top + r.config.BorderConfig.Bottom
	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))

	// Fill with white background
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	plotArea := image.Rect(
		r.config.BorderConfig.Left,
		r.config.BorderConfig.Top,
		r.config.BorderConfig.Left+r.config.PlotWidth,
		r.config.BorderConfig.Top+r.config.PlotHeight,
	)
	proj := projection{area: plotArea, data: data}

	ann, err := newAnnotator(annotatorConfig{
		FontSize: r.config.FontSize,
		Borders:  r.config.BorderConfig,
	})
	if err != nil {
		return nil, fmt.Errorf("creating annotator: %w", err)
	}
	defer ann.Close()

	r.drawBands(img, proj)

	if err = ann.annotate(img, proj); err != nil {
		return nil, fmt.Errorf("drawing annotations: %w", err)
	}

	r.drawPoints(img, proj)

	return img, nil
}

// drawBands shades the normative strips behind the data points
func (r *ChartRenderer) drawBands(img *image.RGBA, proj projection) {
	for i, band := range proj.data.Bands {
		top := proj.y(band.Max)
		bottom := proj.y(band.Min)

		rect := image.Rect(proj.area.Min.X, top, proj.area.Max.X, bottom).Intersect(proj.area)
		fill := bandFills[i%len(bandFills)]
		draw.Draw(img, rect, &image.Uniform{C: fill}, image.Point{}, draw.Src)
	}
}

// drawPoints renders every subject's points as filled discs in the
// subject's palette color
func (r *ChartRenderer) drawPoints(img *image.RGBA, proj projection) {
	for i, subject := range proj.data.Subjects() {
		c := palette[i%len(palette)]
		for _, point := range proj.data.Points(subject) {
			drawDisc(img, proj.x(point.X), proj.y(point.Y), pointRadius, c)
		}
	}
}

func drawDisc(img *image.RGBA, cx, cy, radius int, c color.Color) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				img.Set(cx+dx, cy+dy, c)
			}
		}
	}
}

// projection maps chart coordinates onto the plot area
type projection struct {
	area image.Rectangle
	data *ChartData
}

func (p projection) x(v float64) int {
	ratio := (v - p.data.XMin) / (p.data.XMax - p.data.XMin)
	return p.area.Min.X + int(ratio*float64(p.area.Dx()))
}

func (p projection) y(v float64) int {
	ratio := (v - p.data.YMin) / (p.data.YMax - p.data.YMin)
	return p.area.Max.Y - int(ratio*float64(p.area.Dy()))
}

// Internal annotator implementation

type annotatorConfig struct {
	FontSize float64
	Borders  BorderConfig
}

type annotator struct {
	context  *freetype.Context
	config   annotatorConfig
	fontFace font.Face
}

func newAnnotator(config annotatorConfig) (*annotator, error) {
	parsedFont, err := freetype.ParseFont(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(config.FontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		config:  config,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    config.FontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) annotate(img *image.RGBA, proj projection) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	ops := []struct {
		msg string
		fn  func(*image.RGBA, projection) error
	}{
		{"drawing axes", a.drawAxes},
		{"drawing X scale", a.drawXScale},
		{"drawing Y scale", a.drawYScale},
		{"drawing title", a.drawTitle},
		{"drawing legend", a.drawLegend},
		{"drawing band labels", a.drawBandLabels},
	}
	for _, op := range ops {
		if err := op.fn(img, proj); err != nil {
			return fmt.Errorf("%s: %w", op.msg, err)
		}
	}

	return nil
}

func (a *annotator) drawAxes(img *image.RGBA, proj projection) error {
	for y := proj.area.Min.Y; y <= proj.area.Max.Y; y++ {
		img.Set(proj.area.Min.X, y, axisColor)
	}
	for x := proj.area.Min.X; x <= proj.area.Max.X; x++ {
		img.Set(x, proj.area.Max.Y, axisColor)
	}
	return nil
}

func (a *annotator) drawXScale(img *image.RGBA, proj projection) error {
	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := proj.area.Max.Y + tickMarkLength + fontHeight

	ticks := proj.data.XTicks
	if len(ticks) == 0 {
		ticks = numericTicks(proj.data.XMin, proj.data.XMax, proj.area.Dx(), proj.data.XUnit)
	}

	for _, tick := range ticks {
		x := proj.x(tick.Value)

		// Draw tick mark
		for y := proj.area.Max.Y; y < proj.area.Max.Y+tickMarkLength; y++ {
			img.Set(x, y, axisColor)
		}

		width := font.MeasureString(a.fontFace, tick.Label)
		pt := freetype.Pt(x-(width.Round()/2), textY)
		if _, err := a.context.DrawString(tick.Label, pt); err != nil {
			return fmt.Errorf("drawing tick label: %w", err)
		}
	}

	// Axis label centered under the ticks
	width := font.MeasureString(a.fontFace, proj.data.XLabel)
	pt := freetype.Pt(
		proj.area.Min.X+(proj.area.Dx()-width.Round())/2,
		img.Bounds().Max.Y-metrics.Descent.Round()-3,
	)
	_, err := a.context.DrawString(proj.data.XLabel, pt)
	return err
}

func (a *annotator) drawYScale(img *image.RGBA, proj projection) error {
	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()

	for _, tick := range numericTicks(proj.data.YMin, proj.data.YMax, proj.area.Dy(), proj.data.YUnit) {
		y := proj.y(tick.Value)

		// Draw tick mark
		for x := proj.area.Min.X - tickMarkLength; x < proj.area.Min.X; x++ {
			img.Set(x, y, axisColor)
		}

		// Right-align the label against the tick
		width := font.MeasureString(a.fontFace, tick.Label)
		pt := freetype.Pt(proj.area.Min.X-tickMarkLength-width.Round()-4, y+fontHeight/2-metrics.Descent.Round())
		if _, err := a.context.DrawString(tick.Label, pt); err != nil {
			return fmt.Errorf("drawing tick label: %w", err)
		}
	}

	// Axis label sits above the axis where rotated text would otherwise go
	pt := freetype.Pt(5, a.config.Borders.Top-metrics.Descent.Round()-3)
	_, err := a.context.DrawString(proj.data.YLabel, pt)
	return err
}

func (a *annotator) drawTitle(img *image.RGBA, proj projection) error {
	metrics := a.fontFace.Metrics()
	width := font.MeasureString(a.fontFace, proj.data.Title)

	pt := freetype.Pt(
		proj.area.Min.X+(proj.area.Dx()-width.Round())/2,
		(a.config.Borders.Top+metrics.Ascent.Round())/2,
	)
	_, err := a.context.DrawString(proj.data.Title, pt)
	return err
}

func (a *annotator) drawLegend(img *image.RGBA, proj projection) error {
	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()

	const swatch = 10
	x := proj.area.Max.X + 15
	y := proj.area.Min.Y

	for i, subject := range proj.data.Subjects() {
		c := palette[i%len(palette)]
		rect := image.Rect(x, y, x+swatch, y+swatch)
		draw.Draw(img, rect, &image.Uniform{C: c}, image.Point{}, draw.Src)

		pt := freetype.Pt(x+swatch+6, y+swatch)
		if _, err := a.context.DrawString(subject, pt); err != nil {
			return fmt.Errorf("drawing legend entry: %w", err)
		}

		y += fontHeight + 8
	}

	return nil
}

func (a *annotator) drawBandLabels(img *image.RGBA, proj projection) error {
	metrics := a.fontFace.Metrics()

	for _, band := range proj.data.Bands {
		mid := (band.Min + band.Max) / 2
		y := proj.y(mid) + metrics.Ascent.Round()/2

		pt := freetype.Pt(proj.area.Min.X+8, y)
		if _, err := a.context.DrawString(band.Label, pt); err != nil {
			return fmt.Errorf("drawing band label: %w", err)
		}
	}

	return nil
}

// Helper functions

func numericTicks(minV, maxV float64, pixels int, unit string) []Tick {
	step := calculateNiceStep(maxV-minV, pixels)
	start := math.Ceil(minV/step) * step

	var ticks []Tick
	for v := start; v <= maxV+step/1e6; v += step {
		ticks = append(ticks, Tick{Value: v, Label: formatValue(v, unit)})
	}
	return ticks
}

func calculateNiceStep(range_ float64, pixels int) float64 {
	if range_ <= 0 {
		return 1
	}

	desiredSteps := math.Max(float64(pixels)/pixelsPerLabel, 1)
	targetStep := range_ / desiredSteps

	// Snap to the 1-2-5 decade series
	magnitude := math.Pow(10, math.Floor(math.Log10(targetStep)))
	for _, mult := range []float64{1, 2, 5, 10} {
		if step := mult * magnitude; step >= targetStep {
			return step
		}
	}
	return 10 * magnitude
}

func formatValue(v float64, unit string) string {
	if unit == "" {
		return humanize.FtoaWithDigits(v, 2)
	}
	if v == 0 {
		return fmt.Sprintf("0 %s", unit)
	}

	fract, suffix := humanize.ComputeSI(v)
	return fmt.Sprintf("%s %s%s", humanize.FtoaWithDigits(fract, 2), suffix, unit)
}
