package chart

import (
	"math"
	"strconv"
	"strings"

	"StockTracker/internal/model"
)

// LinePath returns SVG path data for the close prices of points, drawn with
// monotone cubic interpolation along x so the curve never overshoots a
// local extremum.
func LinePath(f *Frame, points []model.StockPoint) string {
	c := monotoneX{}
	for _, p := range points {
		c.point(f.X.Apply(p.Time), f.Y.Apply(p.Close))
	}
	c.end()
	return c.b.String()
}

type monotoneX struct {
	b      strings.Builder
	state  int
	x0, y0 float64
	x1, y1 float64
	t0     float64
}

func (c *monotoneX) point(x, y float64) {
	if c.state > 0 && x == c.x1 && y == c.y1 {
		return // coincident
	}
	var t1 float64
	switch c.state {
	case 0:
		c.state = 1
		c.b.WriteString("M" + num(x) + "," + num(y))
	case 1:
		c.state = 2
	case 2:
		c.state = 3
		t1 = c.slope3(x, y)
		c.curve(c.slope2(t1), t1)
	default:
		t1 = c.slope3(x, y)
		c.curve(c.t0, t1)
	}
	c.x0, c.x1 = c.x1, x
	c.y0, c.y1 = c.y1, y
	c.t0 = t1
}

func (c *monotoneX) end() {
	switch c.state {
	case 2:
		c.b.WriteString("L" + num(c.x1) + "," + num(c.y1))
	case 3:
		c.curve(c.t0, c.slope2(c.t0))
	}
}

// slope3 is the tangent at (x1, y1) given its neighbours (Steffen 1990).
func (c *monotoneX) slope3(x2, y2 float64) float64 {
	h0 := c.x1 - c.x0
	h1 := x2 - c.x1
	s0 := (c.y1 - c.y0) / h0
	s1 := (y2 - c.y1) / h1
	p := (s0*h1 + s1*h0) / (h0 + h1)
	t := (sign(s0) + sign(s1)) * math.Min(math.Min(math.Abs(s0), math.Abs(s1)), 0.5*math.Abs(p))
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0
	}
	return t
}

// slope2 is a one-sided tangent for the end points.
func (c *monotoneX) slope2(t float64) float64 {
	h := c.x1 - c.x0
	if h == 0 {
		return t
	}
	return (3*(c.y1-c.y0)/h - t) / 2
}

func (c *monotoneX) curve(t0, t1 float64) {
	dx := (c.x1 - c.x0) / 3
	c.b.WriteString("C" +
		num(c.x0+dx) + "," + num(c.y0+dx*t0) + "," +
		num(c.x1-dx) + "," + num(c.y1-dx*t1) + "," +
		num(c.x1) + "," + num(c.y1))
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
