package export_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/pagemark/internal/export"
	"github.com/kpauljoseph/pagemark/internal/render"
)

func whiteSurface(w, h int) *render.Surface {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return &render.Surface{Image: img}
}

var _ = Describe("Composer", func() {
	Describe("Alpha", func() {
		DescribeTable("maps opacity percentages to 8-bit alpha",
			func(opacity int, want uint8) {
				Expect(export.Alpha(opacity)).To(Equal(want))
			},
			Entry("minimum", 10, uint8(26)),
			Entry("half", 50, uint8(128)),
			Entry("full", 100, uint8(255)),
			Entry("clamped high", 150, uint8(255)),
			Entry("clamped low", -1, uint8(0)),
		)
	})

	Describe("Paint", func() {
		It("should paint opaque rectangles with rounded edges", func() {
			page := export.Page{
				Surface: whiteSurface(20, 20),
				Rectangles: []export.Rectangle{
					{X: 2.4, Y: 2.6, W: 5, H: 5, Color: color.NRGBA{R: 255, A: 255}},
				},
			}
			img := export.Paint(page)
			Expect(img.RGBAAt(2, 3)).To(Equal(color.RGBA{255, 0, 0, 255}))
			Expect(img.RGBAAt(6, 7)).To(Equal(color.RGBA{255, 0, 0, 255}))
			Expect(img.RGBAAt(7, 8)).To(Equal(color.RGBA{255, 255, 255, 255}))
			Expect(img.RGBAAt(2, 2)).To(Equal(color.RGBA{255, 255, 255, 255}))
		})

		It("should blend translucent rectangles over the page", func() {
			page := export.Page{
				Surface: whiteSurface(10, 10),
				Rectangles: []export.Rectangle{
					{X: 0, Y: 0, W: 10, H: 10, Color: color.NRGBA{B: 255, A: export.Alpha(50)}},
				},
			}
			px := export.Paint(page).RGBAAt(5, 5)
			Expect(px.B).To(Equal(uint8(255)))
			Expect(px.R).To(BeNumerically("~", 127, 2))
			Expect(px.A).To(Equal(uint8(255)))
		})

		It("should clip rectangles that leave the surface", func() {
			page := export.Page{
				Surface: whiteSurface(10, 10),
				Rectangles: []export.Rectangle{
					{X: 8, Y: 8, W: 50, H: 50, Color: color.NRGBA{G: 255, A: 255}},
					{X: 40, Y: 40, W: 5, H: 5, Color: color.NRGBA{G: 255, A: 255}},
				},
			}
			img := export.Paint(page)
			Expect(img.Bounds().Dx()).To(Equal(10))
			Expect(img.RGBAAt(9, 9)).To(Equal(color.RGBA{0, 255, 0, 255}))
		})
	})

	Describe("PNGComposer", func() {
		It("should encode a single painted page", func() {
			page := export.Page{
				Surface: whiteSurface(12, 8),
				Rectangles: []export.Rectangle{
					{X: 0, Y: 0, W: 6, H: 8, Color: color.NRGBA{R: 255, A: 255}},
				},
			}
			out, err := export.PNGComposer{}.Compose(context.Background(), []export.Page{page})
			Expect(err).NotTo(HaveOccurred())

			img, err := png.Decode(bytes.NewReader(out))
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Bounds().Dx()).To(Equal(12))
			r, g, _, _ := img.At(1, 1).RGBA()
			Expect(r >> 8).To(Equal(uint32(255)))
			Expect(g >> 8).To(Equal(uint32(0)))
		})

		It("should refuse more than one page", func() {
			pages := []export.Page{{Surface: whiteSurface(2, 2)}, {Surface: whiteSurface(2, 2)}}
			_, err := export.PNGComposer{}.Compose(context.Background(), pages)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("PDFComposer", func() {
		It("should build a PDF from painted pages", func() {
			c := export.NewPDFComposer(exportTestLogger())
			pages := []export.Page{{Surface: whiteSurface(60, 80)}, {Surface: whiteSurface(80, 60)}}
			out, err := c.Compose(context.Background(), pages)
			Expect(err).NotTo(HaveOccurred())
			Expect(bytes.HasPrefix(out, []byte("%PDF"))).To(BeTrue())
			Expect(c.Extension()).To(Equal(".pdf"))
		})

		It("should refuse an empty page list", func() {
			_, err := export.NewPDFComposer(nil).Compose(context.Background(), nil)
			Expect(err).To(HaveOccurred())
		})
	})
})
