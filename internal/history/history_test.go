package history_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/pagemark/internal/history"
)

func cloneInts(s []int) []int {
	out := make([]int, len(s))
	copy(out, s)
	return out
}

var _ = Describe("History Engine", func() {
	var h *history.History[[]int]

	BeforeEach(func() {
		h = history.New[[]int](history.DefaultLimit, cloneInts)
	})

	It("should report nothing to undo or redo when empty", func() {
		_, ok := h.Undo([]int{1})
		Expect(ok).To(BeFalse())
		_, ok = h.Redo([]int{1})
		Expect(ok).To(BeFalse())
		Expect(h.CanUndo()).To(BeFalse())
		Expect(h.CanRedo()).To(BeFalse())
	})

	It("should restore the state recorded before a series of edits", func() {
		state := []int{1, 2}
		h.Record(state)
		state = append(state, 3)
		state = append(state, 4)
		state = state[1:]

		got, ok := h.Undo(state)
		Expect(ok).To(BeTrue())
		Expect(got).To(Equal([]int{1, 2}))
	})

	It("should redo back to the state before undo", func() {
		h.Record([]int{1})
		got, _ := h.Undo([]int{1, 2})
		Expect(got).To(Equal([]int{1}))

		again, ok := h.Redo(got)
		Expect(ok).To(BeTrue())
		Expect(again).To(Equal([]int{1, 2}))
		Expect(h.CanRedo()).To(BeFalse())
		Expect(h.CanUndo()).To(BeTrue())
	})

	It("should leave state alone when redo has nothing", func() {
		h.Record([]int{1})
		_, ok := h.Redo([]int{1, 2})
		Expect(ok).To(BeFalse())
		Expect(h.Len()).To(Equal(1))
	})

	It("should drop redo entries on a fresh record", func() {
		h.Record([]int{1})
		h.Undo([]int{1, 2})
		Expect(h.CanRedo()).To(BeTrue())

		h.Record([]int{1})
		Expect(h.CanRedo()).To(BeFalse())
	})

	It("should keep only the 50 most recent entries", func() {
		for i := 0; i < 51; i++ {
			h.Record([]int{i})
		}
		Expect(h.Len()).To(Equal(50))

		var last []int
		state := []int{-1}
		for h.CanUndo() {
			state, _ = h.Undo(state)
			last = state
		}
		Expect(last).To(Equal([]int{1}))
	})

	It("should never alias the caller's slices", func() {
		state := []int{1, 2, 3}
		h.Record(state)
		state[0] = 100

		got, _ := h.Undo(state)
		Expect(got).To(Equal([]int{1, 2, 3}))

		got[1] = 200
		back, _ := h.Redo(got)
		Expect(back).To(Equal([]int{100, 2, 3}))
	})

	It("should fall back to the default limit", func() {
		Expect(history.New[[]int](0, cloneInts).Limit()).To(Equal(history.DefaultLimit))
	})
})
