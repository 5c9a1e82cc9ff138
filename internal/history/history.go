// Package history implements a bounded undo/redo stack of value snapshots.
package history

// DefaultLimit is the number of undo entries kept before the oldest is dropped.
const DefaultLimit = 50

// History keeps deep copies of some state S. It never holds a reference to
// the caller's live value: everything going in or out passes through clone.
type History[S any] struct {
	past   []S
	future []S
	limit  int
	clone  func(S) S
}

// New returns an empty history. A limit below one uses DefaultLimit.
func New[S any](limit int, clone func(S) S) *History[S] {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &History[S]{
		limit: limit,
		clone: clone,
	}
}

// Record pushes a copy of current, drops the redo stack and evicts the oldest
// entry past the limit.
func (h *History[S]) Record(current S) {
	h.past = append(h.past, h.clone(current))
	if len(h.past) > h.limit {
		h.past = h.past[len(h.past)-h.limit:]
	}
	h.future = nil
}

// Undo returns the most recent recorded state and keeps current for Redo.
// The bool is false when there is nothing to undo.
func (h *History[S]) Undo(current S) (S, bool) {
	if len(h.past) == 0 {
		var zero S
		return zero, false
	}
	prev := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, h.clone(current))
	return h.clone(prev), true
}

// Redo is the mirror of Undo.
func (h *History[S]) Redo(current S) (S, bool) {
	if len(h.future) == 0 {
		var zero S
		return zero, false
	}
	next := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, h.clone(current))
	if len(h.past) > h.limit {
		h.past = h.past[len(h.past)-h.limit:]
	}
	return h.clone(next), true
}

func (h *History[S]) CanUndo() bool {
	return len(h.past) > 0
}

func (h *History[S]) CanRedo() bool {
	return len(h.future) > 0
}

func (h *History[S]) Len() int {
	return len(h.past)
}

func (h *History[S]) RedoLen() int {
	return len(h.future)
}

func (h *History[S]) Limit() int {
	return h.limit
}

// Clear drops both stacks.
func (h *History[S]) Clear() {
	h.past = nil
	h.future = nil
}
