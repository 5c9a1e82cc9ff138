package export_test

import (
	"context"
	"errors"
	"image/color"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/pagemark/internal/colors"
	"github.com/kpauljoseph/pagemark/internal/export"
	"github.com/kpauljoseph/pagemark/internal/geometry"
	"github.com/kpauljoseph/pagemark/internal/render"
	"github.com/kpauljoseph/pagemark/internal/session"
	apperrors "github.com/kpauljoseph/pagemark/pkg/errors"
	"github.com/kpauljoseph/pagemark/pkg/models"
)

// pageRenderer hands out white surfaces and remembers what it was asked for.
type pageRenderer struct {
	pages    int
	failPage int
	requests []render.Request
}

func (p *pageRenderer) Render(ctx context.Context, page int, scale float64, rotation int) (*render.Surface, error) {
	p.requests = append(p.requests, render.Request{Page: page, Scale: scale, Rotation: rotation})
	if page == p.failPage {
		return nil, errors.New("corrupt page")
	}
	return whiteSurface(int(100*scale), int(100*scale)), nil
}

func (p *pageRenderer) NaturalSize(int) (models.PageDimensions, error) {
	return models.PageDimensions{Width: 100, Height: 100}, nil
}

func (p *pageRenderer) PageCount() int { return p.pages }
func (p *pageRenderer) Close() error   { return nil }

// recordingComposer keeps the pages it was given.
type recordingComposer struct {
	pages []export.Page
}

func (c *recordingComposer) Extension() string { return ".bin" }

func (c *recordingComposer) Compose(ctx context.Context, pages []export.Page) ([]byte, error) {
	c.pages = pages
	return []byte("ok"), nil
}

var _ = Describe("Exporter", func() {
	var (
		reg      *colors.Registry
		sessions *session.Registry
		s        *session.Session
		exporter *export.Exporter
	)

	BeforeEach(func() {
		reg = colors.NewRegistry()
		sessions = session.NewRegistry(session.Options{}, nil)
		var err error
		s, err = sessions.Open("notes.pdf", models.KindPaged, "blob:test", 3)
		Expect(err).NotTo(HaveOccurred())
		exporter = export.NewExporter(exportTestLogger())

		_, err = s.AddHighlight(1, models.Rect{X: 10, Y: 10, W: 20, H: 20}, models.ColorBlue, 100)
		Expect(err).NotTo(HaveOccurred())
		_, err = s.AddHighlight(3, models.Rect{X: 0, Y: 0, W: 50, H: 10}, models.ColorYellow, 50)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Snapshot", func() {
		It("should copy highlights per page with resolved colours", func() {
			job, err := export.Snapshot(s, reg)
			Expect(err).NotTo(HaveOccurred())
			Expect(job.Pages()).To(Equal(3))
			Expect(job.Rectangles[0]).To(HaveLen(1))
			Expect(job.Rectangles[1]).To(BeEmpty())
			Expect(job.Rectangles[2]).To(HaveLen(1))

			Expect(job.Rectangles[0][0].Color).To(Equal(color.NRGBA{R: 33, G: 150, B: 243, A: 255}))
			Expect(job.Rectangles[2][0].Color.A).To(Equal(uint8(128)))
			Expect(job.Rectangles[2][0].W).To(Equal(50.0))
		})

		It("should follow the view scale", func() {
			Expect(s.SetScale(2)).To(Succeed())
			job, err := export.Snapshot(s, reg)
			Expect(err).NotTo(HaveOccurred())
			Expect(job.Scale).To(Equal(2.0))
			Expect(job.Rectangles[0][0].X).To(Equal(20.0))
			Expect(job.Rectangles[0][0].W).To(Equal(40.0))
		})

		It("should be isolated from later edits", func() {
			job, err := export.Snapshot(s, reg)
			Expect(err).NotTo(HaveOccurred())
			_, err = s.ClearPage(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(job.Rectangles[0]).To(HaveLen(1))
		})

		It("should suggest an output name", func() {
			job, err := export.Snapshot(s, reg)
			Expect(err).NotTo(HaveOccurred())
			Expect(job.FileName(".pdf")).To(Equal("notes-annotated.pdf"))
		})
	})

	Describe("Run", func() {
		It("should render every page at the view and compose them", func() {
			s.SetCanvasSize(100, 100)
			Expect(s.SetScale(1.5)).To(Succeed())
			Expect(s.RotateView(geometry.Clockwise)).To(Succeed())
			job, err := export.Snapshot(s, reg)
			Expect(err).NotTo(HaveOccurred())

			r := &pageRenderer{pages: 3}
			c := &recordingComposer{}
			out, err := exporter.Run(context.Background(), job, r, c)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal([]byte("ok")))

			Expect(r.requests).To(Equal([]render.Request{
				{Page: 1, Scale: 1.5, Rotation: 90},
				{Page: 2, Scale: 1.5, Rotation: 90},
				{Page: 3, Scale: 1.5, Rotation: 90},
			}))
			Expect(c.pages).To(HaveLen(3))
			Expect(c.pages[0].Rectangles).To(HaveLen(1))
		})

		It("should report the failing page and leave the session alone", func() {
			job, err := export.Snapshot(s, reg)
			Expect(err).NotTo(HaveOccurred())
			before := s.Highlights()

			_, err = exporter.Run(context.Background(), job, &pageRenderer{pages: 3, failPage: 2}, &recordingComposer{})
			Expect(errors.Is(err, apperrors.ErrExport)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("page=2"))
			Expect(err.Error()).To(ContainSubstring("corrupt page"))
			Expect(s.Highlights()).To(Equal(before))
			Expect(s.HistoryLen()).To(Equal(2))
		})

		It("should pick the composer by document kind", func() {
			Expect(exporter.ComposerFor(models.KindRasterImage).Extension()).To(Equal(".png"))
			Expect(exporter.ComposerFor(models.KindPaged).Extension()).To(Equal(".pdf"))
		})
	})

	Describe("PDF round trip", func() {
		It("should produce a PDF the fitz renderer can open", func() {
			job, err := export.Snapshot(s, reg)
			Expect(err).NotTo(HaveOccurred())
			out, err := exporter.Run(context.Background(), job, &pageRenderer{pages: 3}, export.NewPDFComposer(exportTestLogger()))
			Expect(err).NotTo(HaveOccurred())

			fr, err := render.NewFitzRenderer(out, exportTestLogger())
			Expect(err).NotTo(HaveOccurred())
			defer fr.Close()
			Expect(fr.PageCount()).To(Equal(3))

			surface, err := fr.Render(context.Background(), 1, 1, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(surface.Width()).To(BeNumerically(">", 0))

			_, err = fr.Render(context.Background(), 4, 1, 0)
			Expect(err).To(HaveOccurred())
		})

		It("should refuse to touch the document once the fitz renderer is closed", func() {
			job, err := export.Snapshot(s, reg)
			Expect(err).NotTo(HaveOccurred())
			out, err := exporter.Run(context.Background(), job, &pageRenderer{pages: 3}, export.NewPDFComposer(exportTestLogger()))
			Expect(err).NotTo(HaveOccurred())

			fr, err := render.NewFitzRenderer(out, exportTestLogger())
			Expect(err).NotTo(HaveOccurred())
			Expect(fr.Close()).To(Succeed())

			_, err = fr.Render(context.Background(), 1, 1, 0)
			Expect(errors.Is(err, render.ErrClosed)).To(BeTrue())
			_, err = fr.NaturalSize(1)
			Expect(errors.Is(err, render.ErrClosed)).To(BeTrue())
			Expect(fr.PageCount()).To(BeZero())
			Expect(fr.Close()).To(Succeed())
		})
	})
})
