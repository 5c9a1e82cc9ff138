// Package export composes rendered pages and their highlights into an
// output document.
package export

import (
	"context"
	"image"
	"image/color"
	"time"

	"golang.org/x/image/draw"

	"github.com/kpauljoseph/pagemark/internal/render"
)

// Rectangle is one highlight in surface pixels with its resolved colour.
type Rectangle struct {
	X, Y, W, H float64
	Color      color.NRGBA
	CreatedAt  time.Time
}

// Page is a rendered surface and the rectangles to paint over it.
type Page struct {
	Surface    *render.Surface
	Rectangles []Rectangle
}

// Composer encodes painted pages into output bytes.
type Composer interface {
	Compose(ctx context.Context, pages []Page) ([]byte, error)
	Extension() string
}

// Paint composites every rectangle over the page surface in place.
// Rectangle edges are rounded to whole pixels here and nowhere earlier.
func Paint(p Page) *image.RGBA {
	dst := p.Surface.Image
	for _, r := range p.Rectangles {
		area := image.Rect(
			roundPx(r.X), roundPx(r.Y),
			roundPx(r.X+r.W), roundPx(r.Y+r.H),
		).Intersect(dst.Bounds())
		if area.Empty() {
			continue
		}
		draw.Draw(dst, area, image.NewUniform(r.Color), image.Point{}, draw.Over)
	}
	return dst
}

// Alpha converts an opacity percentage to an 8-bit alpha.
func Alpha(opacity int) uint8 {
	if opacity <= 0 {
		return 0
	}
	if opacity >= 100 {
		return 255
	}
	return uint8((opacity*255 + 50) / 100)
}

func roundPx(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}
