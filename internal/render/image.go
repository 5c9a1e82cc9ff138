package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/kpauljoseph/pagemark/pkg/logger"
	"github.com/kpauljoseph/pagemark/pkg/models"
)

// ImageRenderer serves a single raster image as a one-page document.
type ImageRenderer struct {
	src    image.Image
	format string
	logger *logger.Logger
}

func NewImageRenderer(data []byte, log *logger.Logger) (*ImageRenderer, error) {
	if log == nil {
		log = logger.Discard()
	}
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	log.Debug("Decoded %s image %dx%d", format, src.Bounds().Dx(), src.Bounds().Dy())
	return &ImageRenderer{src: src, format: format, logger: log}, nil
}

func (r *ImageRenderer) Format() string {
	return r.format
}

func (r *ImageRenderer) PageCount() int {
	return 1
}

func (r *ImageRenderer) NaturalSize(page int) (models.PageDimensions, error) {
	if page != 1 {
		return models.PageDimensions{}, fmt.Errorf("page %d out of range (1-1)", page)
	}
	b := r.src.Bounds()
	return models.PageDimensions{Width: float64(b.Dx()), Height: float64(b.Dy())}, nil
}

func (r *ImageRenderer) Render(ctx context.Context, page int, scale float64, rotation int) (*Surface, error) {
	if page != 1 {
		return nil, fmt.Errorf("page %d out of range (1-1)", page)
	}
	if scale <= 0 {
		return nil, fmt.Errorf("invalid scale %v", scale)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := r.src.Bounds()
	w := int(math.Max(1, math.Round(float64(b.Dx())*scale)))
	h := int(math.Max(1, math.Round(float64(b.Dy())*scale)))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), r.src, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), r.src, b, draw.Src, nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.logger.Trace("Rendered image at scale %.3f: %dx%d", scale, w, h)
	return &Surface{Image: rotateRGBA(dst, rotation)}, nil
}

func (r *ImageRenderer) Close() error {
	return nil
}
