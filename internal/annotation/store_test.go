package annotation_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/pagemark/internal/annotation"
	"github.com/kpauljoseph/pagemark/pkg/models"
)

func rect(x, y, w, h float64) models.Rect {
	return models.Rect{X: x, Y: y, W: w, H: h}
}

func ids(hs []models.Highlight) []int64 {
	out := make([]int64, 0, len(hs))
	for _, h := range hs {
		out = append(out, h.ID)
	}
	return out
}

var _ = Describe("Annotation Store", func() {
	var (
		store *annotation.Store
		clock time.Time
	)

	BeforeEach(func() {
		clock = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		store = annotation.NewStore(annotation.WithClock(func() time.Time {
			clock = clock.Add(time.Millisecond)
			return clock
		}))
	})

	Context("Add", func() {
		It("should assign increasing ids in creation order", func() {
			a, ok := store.Add(1, rect(0, 0, 10, 10), models.ColorYellow, 100)
			Expect(ok).To(BeTrue())
			b, ok := store.Add(2, rect(0, 0, 10, 10), models.ColorBlue, 50)
			Expect(ok).To(BeTrue())

			Expect(b.ID).To(BeNumerically(">", a.ID))
			Expect(b.CreatedAt).To(BeTemporally(">", a.CreatedAt))
			Expect(store.Len()).To(Equal(2))
		})

		DescribeTable("should never store a rectangle under five pixels",
			func(r models.Rect, stored bool) {
				_, ok := store.Add(1, r, models.ColorYellow, 100)
				Expect(ok).To(Equal(stored))
				if stored {
					Expect(store.Len()).To(Equal(1))
				} else {
					Expect(store.Len()).To(BeZero())
				}
			},
			Entry("normal", rect(0, 0, 20, 20), true),
			Entry("narrow", rect(0, 0, 4.99, 20), false),
			Entry("flat", rect(0, 0, 20, 0), false),
			Entry("boundary", rect(0, 0, 5, 5), true),
		)

		It("should honour a custom minimum size", func() {
			s := annotation.NewStore(annotation.WithMinSize(20))
			_, ok := s.Add(1, rect(0, 0, 19, 40), models.ColorYellow, 100)
			Expect(ok).To(BeFalse())
		})
	})

	Context("Query", func() {
		It("should return only the page asked for in insertion order", func() {
			a, _ := store.Add(1, rect(0, 0, 10, 10), models.ColorYellow, 100)
			store.Add(2, rect(0, 0, 10, 10), models.ColorYellow, 100)
			c, _ := store.Add(1, rect(5, 5, 10, 10), models.ColorYellow, 100)

			Expect(ids(store.Query(1))).To(Equal([]int64{a.ID, c.ID}))
			Expect(store.Query(3)).To(BeEmpty())
			Expect(store.CountOnPage(1)).To(Equal(2))
		})

		It("should return a copy the caller cannot use to mutate the store", func() {
			store.Add(1, rect(0, 0, 10, 10), models.ColorYellow, 100)
			got := store.Query(1)
			got[0].X = 999
			Expect(store.Query(1)[0].X).To(BeZero())
		})
	})

	Context("Removal", func() {
		It("should remove by id", func() {
			a, _ := store.Add(1, rect(0, 0, 10, 10), models.ColorYellow, 100)
			Expect(store.RemoveByID(a.ID)).To(BeTrue())
			Expect(store.RemoveByID(a.ID)).To(BeFalse())
			Expect(store.Len()).To(BeZero())
		})

		It("should erase every overlapping highlight under the point on that page only", func() {
			store.Add(1, rect(0, 0, 20, 20), models.ColorYellow, 100)
			store.Add(1, rect(10, 10, 20, 20), models.ColorYellow, 100)
			c, _ := store.Add(2, rect(10, 10, 20, 20), models.ColorYellow, 100)
			d, _ := store.Add(1, rect(100, 100, 20, 20), models.ColorYellow, 100)

			Expect(store.RemoveAt(1, models.Point{X: 15, Y: 15})).To(Equal(2))
			Expect(ids(store.All())).To(Equal([]int64{c.ID, d.ID}))
		})

		DescribeTable("RemoveAt is boundary inclusive",
			func(p models.Point, removed int) {
				store.Add(1, rect(10, 10, 20, 20), models.ColorYellow, 100)
				Expect(store.RemoveAt(1, p)).To(Equal(removed))
			},
			Entry("left edge", models.Point{X: 10, Y: 20}, 1),
			Entry("bottom-right corner", models.Point{X: 30, Y: 30}, 1),
			Entry("outside right", models.Point{X: 30.5, Y: 20}, 0),
			Entry("outside top", models.Point{X: 20, Y: 9.5}, 0),
		)

		It("should clear a page", func() {
			store.Add(1, rect(0, 0, 10, 10), models.ColorYellow, 100)
			store.Add(1, rect(0, 0, 10, 10), models.ColorYellow, 100)
			store.Add(2, rect(0, 0, 10, 10), models.ColorYellow, 100)

			Expect(store.RemoveAllOnPage(1)).To(Equal(2))
			Expect(store.RemoveAllOnPage(1)).To(BeZero())
			Expect(store.Len()).To(Equal(1))
		})
	})

	Context("RewriteAll", func() {
		It("should transform highlights on every page", func() {
			store.Add(1, rect(1, 2, 10, 10), models.ColorYellow, 100)
			store.Add(3, rect(3, 4, 10, 10), models.ColorYellow, 100)

			store.RewriteAll(func(h models.Highlight) models.Highlight {
				h.X *= 2
				return h
			})

			all := store.All()
			Expect(all[0].X).To(Equal(2.0))
			Expect(all[1].X).To(Equal(6.0))
		})
	})

	Context("Snapshot and Restore", func() {
		It("should not alias the live sequence", func() {
			store.Add(1, rect(0, 0, 10, 10), models.ColorYellow, 100)
			snap := store.Snapshot()
			store.RewriteAll(func(h models.Highlight) models.Highlight {
				h.X = 50
				return h
			})
			Expect(snap[0].X).To(BeZero())

			store.Restore(snap)
			snap[0].X = 77
			Expect(store.All()[0].X).To(BeZero())
		})

		It("should keep ids unique after restoring an older snapshot", func() {
			store.Add(1, rect(0, 0, 10, 10), models.ColorYellow, 100)
			snap := store.Snapshot()
			b, _ := store.Add(1, rect(0, 0, 10, 10), models.ColorYellow, 100)
			store.Restore(snap)

			c, _ := store.Add(1, rect(0, 0, 10, 10), models.ColorYellow, 100)
			Expect(c.ID).To(BeNumerically(">", b.ID))
		})
	})
})
