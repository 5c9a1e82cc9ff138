package render

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/kpauljoseph/pagemark/pkg/logger"
	"github.com/kpauljoseph/pagemark/pkg/models"
)

// FitzRenderer rasterises paged documents with MuPDF. Natural page sizes come
// from pdfcpu when it can read the file, otherwise from MuPDF's page bounds.
type FitzRenderer struct {
	mu     sync.Mutex
	doc    *fitz.Document
	closed bool
	dims   []models.PageDimensions
	logger *logger.Logger
}

func NewFitzRenderer(data []byte, log *logger.Logger) (*FitzRenderer, error) {
	if log == nil {
		log = logger.Discard()
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}

	r := &FitzRenderer{doc: doc, logger: log}
	r.dims, err = pageDims(data)
	if err != nil {
		log.Debug("pdfcpu could not read page dimensions, using MuPDF bounds: %v", err)
		r.dims = nil
	}
	if len(r.dims) != doc.NumPage() {
		r.dims, err = r.boundsDims()
		if err != nil {
			doc.Close()
			return nil, err
		}
	}

	log.Debug("Loaded document with %d pages", len(r.dims))
	return r, nil
}

func pageDims(data []byte) ([]models.PageDimensions, error) {
	dims, err := api.PageDims(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, err
	}
	out := make([]models.PageDimensions, len(dims))
	for i, d := range dims {
		out[i] = models.PageDimensions{Width: d.Width, Height: d.Height}
	}
	return out, nil
}

func (r *FitzRenderer) boundsDims() ([]models.PageDimensions, error) {
	out := make([]models.PageDimensions, r.doc.NumPage())
	//Page numbers are zero indexed in the fitz package.
	for i := range out {
		bounds, err := r.doc.Bound(i)
		if err != nil {
			return nil, fmt.Errorf("failed to get bounds for page %d: %w", i+1, err)
		}
		out[i] = models.PageDimensions{Width: float64(bounds.Dx()), Height: float64(bounds.Dy())}
	}
	return out, nil
}

func (r *FitzRenderer) PageCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0
	}
	return len(r.dims)
}

func (r *FitzRenderer) NaturalSize(page int) (models.PageDimensions, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return models.PageDimensions{}, ErrClosed
	}
	if page < 1 || page > len(r.dims) {
		return models.PageDimensions{}, fmt.Errorf("page %d out of range (1-%d)", page, len(r.dims))
	}
	return r.dims[page-1], nil
}

// Render rasterises page at 72*scale DPI. MuPDF cannot be interrupted, so
// cancellation is observed before and after the rasterisation. The document
// is only touched under r.mu and never after Close.
func (r *FitzRenderer) Render(ctx context.Context, page int, scale float64, rotation int) (*Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	if page < 1 || page > len(r.dims) {
		r.mu.Unlock()
		return nil, fmt.Errorf("page %d out of range (1-%d)", page, len(r.dims))
	}
	img, err := r.doc.ImageDPI(page-1, PointsPerInch*scale)
	r.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", page, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.logger.Trace("Rendered page %d at scale %.3f: %dx%d", page, scale, img.Bounds().Dx(), img.Bounds().Dy())
	return &Surface{Image: rotateRGBA(img, rotation)}, nil
}

// Close frees the MuPDF document. Later calls are no-ops.
func (r *FitzRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.doc.Close()
}
