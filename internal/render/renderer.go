// Package render turns document pages into pixel surfaces at a given scale
// and rotation, and supersedes stale renders per session.
package render

import (
	"context"
	"errors"
	"image"

	"github.com/kpauljoseph/pagemark/internal/session"
	"github.com/kpauljoseph/pagemark/pkg/models"
)

// PointsPerInch is the PDF user-space resolution; scale 1 renders one pixel per point.
const PointsPerInch = 72.0

// ErrClosed is returned by a renderer used after Close.
var ErrClosed = errors.New("renderer closed")

// Surface is a rendered page.
type Surface struct {
	Image *image.RGBA
}

func (s *Surface) Width() int {
	return s.Image.Bounds().Dx()
}

func (s *Surface) Height() int {
	return s.Image.Bounds().Dy()
}

// Renderer produces surfaces for one loaded document. Page numbers start at 1.
type Renderer interface {
	Render(ctx context.Context, page int, scale float64, rotation int) (*Surface, error)
	NaturalSize(page int) (models.PageDimensions, error)
	PageCount() int
	Close() error
}

// Request is what to render for a session at one moment.
type Request struct {
	Page     int
	Scale    float64
	Rotation int
}

// RequestFor captures the session's current view. Call it while holding
// whatever serialises access to the session.
func RequestFor(s *session.Session) Request {
	return Request{
		Page:     s.CurrentPage(),
		Scale:    s.Scale(),
		Rotation: s.Rotation(),
	}
}
