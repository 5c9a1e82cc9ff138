// Package geometry maps pointer input into page space and re-projects
// rectangles when a page's scale or rotation changes. Everything here is pure.
package geometry

import (
	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"

	"github.com/kpauljoseph/pagemark/pkg/models"
)

// DefaultMinRectSize is the smallest width and height a drag must cover
// before it becomes a highlight.
const DefaultMinRectSize = 5.0

// Direction is the sense of a quarter-turn rotation.
type Direction int

const (
	Clockwise Direction = iota
	CounterClockwise
)

func (d Direction) String() string {
	if d == CounterClockwise {
		return "ccw"
	}
	return "cw"
}

// ParseDirection accepts "cw"/"clockwise" and "ccw"/"counterclockwise".
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "cw", "clockwise", "right":
		return Clockwise, true
	case "ccw", "counterclockwise", "counter-clockwise", "left":
		return CounterClockwise, true
	}
	return Clockwise, false
}

// Viewport describes where the canvas sits on screen. Left/Top/Width/Height
// are CSS pixels; CanvasWidth/CanvasHeight are the backing store in device pixels.
type Viewport struct {
	Left         float64 `json:"left" yaml:"left"`
	Top          float64 `json:"top" yaml:"top"`
	Width        float64 `json:"width" yaml:"width"`
	Height       float64 `json:"height" yaml:"height"`
	CanvasWidth  float64 `json:"canvas_width" yaml:"canvas_width"`
	CanvasHeight float64 `json:"canvas_height" yaml:"canvas_height"`
}

// DeviceToPage converts a client-space pointer position into canvas pixels.
// When the viewport has no backing-store extents, devicePixelRatio is used.
func DeviceToPage(clientX, clientY float64, vp Viewport, devicePixelRatio float64) models.Point {
	sx, sy := devicePixelRatio, devicePixelRatio
	if vp.Width > 0 && vp.CanvasWidth > 0 {
		sx = vp.CanvasWidth / vp.Width
	}
	if vp.Height > 0 && vp.CanvasHeight > 0 {
		sy = vp.CanvasHeight / vp.Height
	}
	if sx <= 0 {
		sx = 1
	}
	if sy <= 0 {
		sy = 1
	}
	return models.Point{
		X: (clientX - vp.Left) * sx,
		Y: (clientY - vp.Top) * sy,
	}
}

// NormalizeRect builds the rectangle spanned by two drag endpoints. The bool
// is false when either side is shorter than minPx and the drag should be dropped.
func NormalizeRect(p0, p1 models.Point, minPx float64) (models.Rect, bool) {
	r := rectFromR2(r2.RectFromPoints(toR2(p0), toR2(p1)))
	if r.W < minPx || r.H < minPx {
		return r, false
	}
	return r, true
}

// Rescale multiplies every field by newScale/oldScale. No rounding.
func Rescale(r models.Rect, oldScale, newScale float64) models.Rect {
	if oldScale == newScale || oldScale == 0 {
		return r
	}
	k := newScale / oldScale
	return models.Rect{X: r.X * k, Y: r.Y * k, W: r.W * k, H: r.H * k}
}

// Rotate90 remaps r for a quarter turn of a canvas that measured
// priorWidth x priorHeight before the turn.
func Rotate90(r models.Rect, dir Direction, priorWidth, priorHeight float64) models.Rect {
	if dir == Clockwise {
		return models.Rect{X: priorHeight - r.Y - r.H, Y: r.X, W: r.H, H: r.W}
	}
	return models.Rect{X: r.Y, Y: priorWidth - r.X - r.W, W: r.H, H: r.W}
}

// Contains reports whether p lies inside r, edges included.
func Contains(r models.Rect, p models.Point) bool {
	return rectToR2(r).ContainsPoint(toR2(p))
}

// NextRotation turns rotation by a quarter in dir and keeps it in [0, 360).
func NextRotation(rotation int, dir Direction) int {
	step := 90
	if dir == CounterClockwise {
		step = -90
	}
	return ((rotation+step)%360 + 360) % 360
}

func rectToR2(r models.Rect) r2.Rect {
	return r2.Rect{
		X: r1.Interval{Lo: r.X, Hi: r.X + r.W},
		Y: r1.Interval{Lo: r.Y, Hi: r.Y + r.H},
	}
}

func rectFromR2(r r2.Rect) models.Rect {
	size := r.Size()
	return models.Rect{X: r.X.Lo, Y: r.Y.Lo, W: size.X, H: size.Y}
}

func toR2(p models.Point) r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}
