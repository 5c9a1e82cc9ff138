package export

import (
	"context"
	"errors"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/kpauljoseph/pagemark/internal/colors"
	"github.com/kpauljoseph/pagemark/internal/render"
	"github.com/kpauljoseph/pagemark/internal/session"
	apperrors "github.com/kpauljoseph/pagemark/pkg/errors"
	"github.com/kpauljoseph/pagemark/pkg/logger"
	"github.com/kpauljoseph/pagemark/pkg/models"
)

var errNoPages = errors.New("document has no pages")

// Job is an immutable copy of everything an export needs from a session.
// Rectangles are indexed by page-1.
type Job struct {
	SessionID  int64
	Name       string
	Kind       models.DocumentKind
	Scale      float64
	Rotation   int
	Rectangles [][]Rectangle
}

// Pages is the number of pages the job covers.
func (j Job) Pages() int {
	return len(j.Rectangles)
}

// FileName is the suggested output name: the source name with the
// composer's extension and an "-annotated" suffix.
func (j Job) FileName(ext string) string {
	base := strings.TrimSuffix(filepath.Base(j.Name), filepath.Ext(j.Name))
	if base == "" || base == "." {
		base = "document"
	}
	return base + "-annotated" + ext
}

// Snapshot copies per-page highlights out of s with colours resolved.
// Call it while holding whatever serialises access to the session.
func Snapshot(s *session.Session, reg *colors.Registry) (Job, error) {
	job := Job{
		SessionID:  s.ID(),
		Name:       s.Name(),
		Kind:       s.Kind(),
		Scale:      s.Scale(),
		Rotation:   s.Rotation(),
		Rectangles: make([][]Rectangle, s.TotalPages()),
	}
	for page := 1; page <= s.TotalPages(); page++ {
		hs := s.PageSnapshot(page)
		rects := make([]Rectangle, 0, len(hs))
		for _, h := range hs {
			entry, err := reg.Resolve(h.Color)
			if err != nil {
				return Job{}, err
			}
			rects = append(rects, Rectangle{
				X:         h.X,
				Y:         h.Y,
				W:         h.W,
				H:         h.H,
				Color:     color.NRGBA{R: entry.R, G: entry.G, B: entry.B, A: Alpha(h.Opacity)},
				CreatedAt: h.CreatedAt,
			})
		}
		job.Rectangles[page-1] = rects
	}
	return job, nil
}

// Exporter renders every page of a job at the session's view and hands the
// painted pages to a composer.
type Exporter struct {
	logger *logger.Logger
}

func NewExporter(log *logger.Logger) *Exporter {
	if log == nil {
		log = logger.Discard()
	}
	return &Exporter{logger: log}
}

// ComposerFor picks PNG output for raster sessions and PDF otherwise.
func (e *Exporter) ComposerFor(kind models.DocumentKind) Composer {
	if kind == models.KindRasterImage {
		return PNGComposer{}
	}
	return NewPDFComposer(e.logger)
}

// Run never touches the session; failures carry the page they happened on.
func (e *Exporter) Run(ctx context.Context, job Job, r render.Renderer, c Composer) ([]byte, error) {
	if job.Pages() == 0 {
		return nil, apperrors.NewExportError(0, errNoPages)
	}

	pages := make([]Page, 0, job.Pages())
	for i, rects := range job.Rectangles {
		page := i + 1
		if err := ctx.Err(); err != nil {
			return nil, apperrors.NewExportError(page, err)
		}
		surface, err := r.Render(ctx, page, job.Scale, job.Rotation)
		if err != nil {
			return nil, apperrors.NewExportError(page, err)
		}
		e.logger.Trace("Export %q: rendered page %d with %d highlights", job.Name, page, len(rects))
		pages = append(pages, Page{Surface: surface, Rectangles: rects})
	}

	out, err := c.Compose(ctx, pages)
	if err != nil {
		return nil, apperrors.NewExportError(0, err)
	}
	e.logger.Info("Exported %q: %d pages, %d bytes", job.Name, job.Pages(), len(out))
	return out, nil
}
