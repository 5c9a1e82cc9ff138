package render_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/pagemark/internal/render"
	"github.com/kpauljoseph/pagemark/pkg/models"
)

var (
	red  = color.RGBA{255, 0, 0, 255}
	blue = color.RGBA{0, 0, 255, 255}
)

// markerPNG is a w x h image that is blue except for a red top-left pixel.
func markerPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, blue)
		}
	}
	img.Set(0, 0, red)

	var buf bytes.Buffer
	Expect(png.Encode(&buf, img)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("Image Renderer", func() {
	var r *render.ImageRenderer

	BeforeEach(func() {
		var err error
		r, err = render.NewImageRenderer(markerPNG(40, 20), renderTestLogger())
		Expect(err).NotTo(HaveOccurred())
	})

	It("should reject bytes that are not an image", func() {
		_, err := render.NewImageRenderer([]byte("%PDF-1.7"), renderTestLogger())
		Expect(err).To(HaveOccurred())
	})

	It("should report a single page of the image's size", func() {
		Expect(r.PageCount()).To(Equal(1))
		Expect(r.Format()).To(Equal("png"))
		size, err := r.NaturalSize(1)
		Expect(err).NotTo(HaveOccurred())
		Expect(size).To(Equal(models.PageDimensions{Width: 40, Height: 20}))

		_, err = r.NaturalSize(2)
		Expect(err).To(HaveOccurred())
	})

	It("should render at the natural size without resampling", func() {
		s, err := r.Render(context.Background(), 1, 1, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Width()).To(Equal(40))
		Expect(s.Height()).To(Equal(20))
		Expect(s.Image.RGBAAt(0, 0)).To(Equal(red))
		Expect(s.Image.RGBAAt(39, 19)).To(Equal(blue))
	})

	It("should scale the surface", func() {
		s, err := r.Render(context.Background(), 1, 2.5, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Width()).To(Equal(100))
		Expect(s.Height()).To(Equal(50))
	})

	DescribeTable("rotation moves the top-left marker",
		func(rotation, w, h, mx, my int) {
			s, err := r.Render(context.Background(), 1, 1, rotation)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Width()).To(Equal(w))
			Expect(s.Height()).To(Equal(h))
			Expect(s.Image.RGBAAt(mx, my)).To(Equal(red))
		},
		Entry("90 puts it top-right", 90, 20, 40, 19, 0),
		Entry("180 puts it bottom-right", 180, 40, 20, 39, 19),
		Entry("270 puts it bottom-left", 270, 20, 40, 0, 39),
	)

	It("should not render for a cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := r.Render(ctx, 1, 1, 0)
		Expect(err).To(MatchError(context.Canceled))
	})
})
