// Package annotation holds the highlights of one document, partitioned by page.
package annotation

import (
	"time"

	"github.com/kpauljoseph/pagemark/internal/geometry"
	"github.com/kpauljoseph/pagemark/pkg/models"
)

// Store is an insertion-ordered list of highlights. It does not record
// history; callers snapshot before structural changes.
type Store struct {
	highlights []models.Highlight
	minSize    float64
	lastID     int64
	now        func() time.Time
}

type Option func(*Store)

// WithMinSize changes the minimum width and height accepted by Add.
func WithMinSize(px float64) Option {
	return func(s *Store) {
		s.minSize = px
	}
}

// WithClock sets the source of CreatedAt timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(options ...Option) *Store {
	s := &Store{
		minSize: geometry.DefaultMinRectSize,
		now:     time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Accepts reports whether Add would keep r.
func (s *Store) Accepts(r models.Rect) bool {
	return r.W >= s.minSize && r.H >= s.minSize
}

// Add appends a highlight with a fresh id. The bool is false when r is
// smaller than the minimum size and nothing was stored.
func (s *Store) Add(page int, r models.Rect, color models.ColorName, opacity int) (models.Highlight, bool) {
	if !s.Accepts(r) {
		return models.Highlight{}, false
	}
	s.lastID++
	h := models.Highlight{
		ID:        s.lastID,
		Page:      page,
		Color:     color,
		Opacity:   opacity,
		CreatedAt: s.now(),
	}.WithRect(r)
	s.highlights = append(s.highlights, h)
	return h, true
}

func (s *Store) Get(id int64) (models.Highlight, bool) {
	for _, h := range s.highlights {
		if h.ID == id {
			return h, true
		}
	}
	return models.Highlight{}, false
}

func (s *Store) RemoveByID(id int64) bool {
	for i, h := range s.highlights {
		if h.ID == id {
			s.highlights = append(s.highlights[:i], s.highlights[i+1:]...)
			return true
		}
	}
	return false
}

// HitTest returns the highlights on page whose box contains p, edges included.
func (s *Store) HitTest(page int, p models.Point) []models.Highlight {
	var hits []models.Highlight
	for _, h := range s.highlights {
		if h.Page == page && geometry.Contains(h.Rect(), p) {
			hits = append(hits, h)
		}
	}
	return hits
}

// RemoveAt removes every highlight on page containing p and returns how many went.
func (s *Store) RemoveAt(page int, p models.Point) int {
	return s.removeWhere(func(h models.Highlight) bool {
		return h.Page == page && geometry.Contains(h.Rect(), p)
	})
}

func (s *Store) RemoveAllOnPage(page int) int {
	return s.removeWhere(func(h models.Highlight) bool {
		return h.Page == page
	})
}

func (s *Store) removeWhere(match func(models.Highlight) bool) int {
	kept := s.highlights[:0]
	removed := 0
	for _, h := range s.highlights {
		if match(h) {
			removed++
			continue
		}
		kept = append(kept, h)
	}
	s.highlights = kept
	return removed
}

// Query returns a copy of the highlights on page in insertion order.
func (s *Store) Query(page int) []models.Highlight {
	out := []models.Highlight{}
	for _, h := range s.highlights {
		if h.Page == page {
			out = append(out, h)
		}
	}
	return out
}

// CountOnPage is Query without the copy.
func (s *Store) CountOnPage(page int) int {
	n := 0
	for _, h := range s.highlights {
		if h.Page == page {
			n++
		}
	}
	return n
}

// RewriteAll replaces every highlight with f(highlight), across all pages.
func (s *Store) RewriteAll(f func(models.Highlight) models.Highlight) {
	for i, h := range s.highlights {
		s.highlights[i] = f(h)
	}
}

func (s *Store) Len() int {
	return len(s.highlights)
}

// All returns a copy of every highlight in insertion order.
func (s *Store) All() []models.Highlight {
	return Clone(s.highlights)
}

// Snapshot is All under the name history code expects.
func (s *Store) Snapshot() []models.Highlight {
	return Clone(s.highlights)
}

// Restore replaces the contents with a copy of snapshot. The id counter never
// moves backwards, so ids stay unique after undo and redo.
func (s *Store) Restore(snapshot []models.Highlight) {
	s.highlights = Clone(snapshot)
	for _, h := range s.highlights {
		if h.ID > s.lastID {
			s.lastID = h.ID
		}
	}
}

// Clone deep-copies a highlight sequence. Highlight has no reference fields,
// so a slice copy is enough.
func Clone(hs []models.Highlight) []models.Highlight {
	out := make([]models.Highlight, len(hs))
	copy(out, hs)
	return out
}
