package app

import (
	"math"
)

// Point is a single data point in chart coordinates
type Point struct {
	X, Y float64
}

// Tick is a labelled position on the X axis. When a chart carries explicit
// ticks the axis is treated as categorical and no numeric scale is derived.
type Tick struct {
	Value float64
	Label string
}

// ChartData accumulates result rows into plottable points grouped by
// subject. Axis bounds track the data as points are added; Pad expands
// them so points never sit on the plot edge.
type ChartData struct {
	Title  string
	XLabel string
	YLabel string

	// Measurement units for humanized tick labels, empty for
	// dimensionless values
	XUnit string
	YUnit string

	XMin, XMax float64
	YMin, YMax float64

	XTicks []Tick
	Bands  []Band

	subjects []string
	points   map[string][]Point
	count    int
}

func NewChartData() *ChartData {
	return &ChartData{
		XMin: math.MaxFloat64,
		XMax: -math.MaxFloat64,
		YMin: math.MaxFloat64,
		YMax: -math.MaxFloat64,

		points: make(map[string][]Point),
	}
}

// Add records a data point for a subject. Subjects keep first-appearance
// order for the legend and the color assignment.
func (c *ChartData) Add(subject string, x, y float64) {
	if _, ok := c.points[subject]; !ok {
		c.subjects = append(c.subjects, subject)
	}
	c.points[subject] = append(c.points[subject], Point{X: x, Y: y})
	c.count++

	c.XMin = min(c.XMin, x)
	c.XMax = max(c.XMax, x)
	c.YMin = min(c.YMin, y)
	c.YMax = max(c.YMax, y)
}

// Subjects returns subjects in first-appearance order
func (c *ChartData) Subjects() []string {
	return c.subjects
}

// Points returns the data points recorded for a subject
func (c *ChartData) Points(subject string) []Point {
	return c.points[subject]
}

// Len returns the total number of data points
func (c *ChartData) Len() int {
	return c.count
}

// Pad grows the axis ranges by the given fraction on each side. Normative
// bands are folded into the Y range first so every band stays visible.
func (c *ChartData) Pad(fraction float64) {
	if c.count == 0 {
		return
	}

	for _, band := range c.Bands {
		c.YMin = min(c.YMin, band.Min)
		c.YMax = max(c.YMax, band.Max)
	}

	xPad := (c.XMax - c.XMin) * fraction
	if xPad == 0 {
		xPad = math.Max(math.Abs(c.XMax)*fraction, 0.5)
	}
	yPad := (c.YMax - c.YMin) * fraction
	if yPad == 0 {
		yPad = math.Max(math.Abs(c.YMax)*fraction, 0.5)
	}

	// Categorical axes pad by half a slot instead, so the outer groups
	// keep the same spacing as the inner ones
	if len(c.XTicks) > 0 {
		xPad = 0.5
	}

	c.XMin -= xPad
	c.XMax += xPad
	c.YMin -= yPad
	c.YMax += yPad
}
