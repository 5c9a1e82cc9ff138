package session

import (
	"fmt"
	"math"

	"github.com/kpauljoseph/pagemark/internal/annotation"
	"github.com/kpauljoseph/pagemark/internal/geometry"
	"github.com/kpauljoseph/pagemark/internal/history"
	apperrors "github.com/kpauljoseph/pagemark/pkg/errors"
	"github.com/kpauljoseph/pagemark/pkg/logger"
	"github.com/kpauljoseph/pagemark/pkg/models"
)

const (
	MinScale = 0.25
	MaxScale = 5.0
)

// Options tunes every session a Registry opens.
type Options struct {
	HistoryLimit int
	MinRectSize  float64
}

// Availability tells the UI which history controls to enable.
type Availability struct {
	Undo bool `json:"undo"`
	Redo bool `json:"redo"`
}

// snapshot is one history entry. View state travels with the highlights
// because stored coordinates are only meaningful at the scale and rotation
// they were recorded in.
type snapshot struct {
	highlights []models.Highlight
	scale      float64
	baseScale  float64
	rotation   int
	canvas     models.PageDimensions
}

func cloneSnapshot(s snapshot) snapshot {
	s.highlights = annotation.Clone(s.highlights)
	return s
}

// Session is one open document: its view state, highlights and history.
// It is not safe for concurrent use.
type Session struct {
	id     int64
	name   string
	kind   models.DocumentKind
	source models.SourceHandle

	currentPage int
	totalPages  int
	scale       float64
	baseScale   float64
	rotation    int
	canvas      models.PageDimensions

	minRectSize float64
	store       *annotation.Store
	history     *history.History[snapshot]
	logger      *logger.Logger
}

func newSession(id int64, name string, kind models.DocumentKind, source models.SourceHandle, totalPages int, opts Options, log *logger.Logger) *Session {
	minSize := opts.MinRectSize
	if minSize <= 0 {
		minSize = geometry.DefaultMinRectSize
	}
	return &Session{
		id:          id,
		name:        name,
		kind:        kind,
		source:      source,
		currentPage: 1,
		totalPages:  totalPages,
		scale:       1,
		baseScale:   1,
		minRectSize: minSize,
		store:       annotation.NewStore(annotation.WithMinSize(minSize)),
		history:     history.New[snapshot](opts.HistoryLimit, cloneSnapshot),
		logger:      log,
	}
}

func (s *Session) ID() int64 {
	return s.id
}

func (s *Session) Name() string {
	return s.name
}

func (s *Session) Kind() models.DocumentKind {
	return s.kind
}

func (s *Session) Source() models.SourceHandle {
	return s.source
}

func (s *Session) CurrentPage() int {
	return s.currentPage
}

func (s *Session) TotalPages() int {
	return s.totalPages
}

func (s *Session) Scale() float64 {
	return s.scale
}

func (s *Session) BaseScale() float64 {
	return s.baseScale
}

func (s *Session) Rotation() int {
	return s.rotation
}

func (s *Session) CanvasSize() models.PageDimensions {
	return s.canvas
}

// SetCanvasSize stores the extents of the surface last drawn for this
// session. Only completed renders should call it.
func (s *Session) SetCanvasSize(width, height float64) {
	s.canvas = models.PageDimensions{Width: width, Height: height}
}

func (s *Session) current() snapshot {
	return snapshot{
		highlights: s.store.Snapshot(),
		scale:      s.scale,
		baseScale:  s.baseScale,
		rotation:   s.rotation,
		canvas:     s.canvas,
	}
}

func (s *Session) restore(snap snapshot) {
	s.store.Restore(snap.highlights)
	s.scale = snap.scale
	s.baseScale = snap.baseScale
	s.rotation = snap.rotation
	s.canvas = snap.canvas
}

func (s *Session) record() {
	s.history.Record(s.current())
}

func (s *Session) checkPage(page int) error {
	if page < 1 || page > s.totalPages {
		return apperrors.NewOutOfRangeError("page out of range", fmt.Sprintf("page=%d total=%d", page, s.totalPages))
	}
	return nil
}

// AddHighlight stores r on page. Undersized rectangles, pages outside the
// document and opacities outside [10,100] are declined with a validation error.
func (s *Session) AddHighlight(page int, r models.Rect, color models.ColorName, opacity int) (models.Highlight, error) {
	if err := s.checkPage(page); err != nil {
		return models.Highlight{}, err
	}
	if opacity < models.MinOpacity || opacity > models.MaxOpacity {
		return models.Highlight{}, apperrors.NewOutOfRangeError("opacity out of range", fmt.Sprintf("opacity=%d", opacity))
	}
	if !s.store.Accepts(r) {
		return models.Highlight{}, apperrors.NewValidationError("highlight too small", apperrors.ErrDegenerateRect,
			fmt.Sprintf("w=%.2f h=%.2f", r.W, r.H))
	}

	s.record()
	h, _ := s.store.Add(page, r, color, opacity)
	s.logger.Debug("session %d: added highlight %d on page %d", s.id, h.ID, page)
	return h, nil
}

// AddDrag normalises a drag on the current page and stores the result.
func (s *Session) AddDrag(start, end models.Point, color models.ColorName, opacity int) (models.Highlight, error) {
	r, ok := geometry.NormalizeRect(start, end, s.minRectSize)
	if !ok {
		return models.Highlight{}, apperrors.NewValidationError("highlight too small", apperrors.ErrDegenerateRect,
			fmt.Sprintf("w=%.2f h=%.2f", r.W, r.H))
	}
	return s.AddHighlight(s.currentPage, r, color, opacity)
}

func (s *Session) RemoveHighlight(id int64) bool {
	if _, ok := s.store.Get(id); !ok {
		return false
	}
	s.record()
	return s.store.RemoveByID(id)
}

// EraseAt removes every highlight on page under p. History is only touched
// when something is actually removed.
func (s *Session) EraseAt(page int, p models.Point) (int, error) {
	if err := s.checkPage(page); err != nil {
		return 0, err
	}
	if len(s.store.HitTest(page, p)) == 0 {
		return 0, nil
	}
	s.record()
	return s.store.RemoveAt(page, p), nil
}

func (s *Session) ClearPage(page int) (int, error) {
	if err := s.checkPage(page); err != nil {
		return 0, err
	}
	if s.store.CountOnPage(page) == 0 {
		return 0, nil
	}
	s.record()
	return s.store.RemoveAllOnPage(page), nil
}

func (s *Session) Undo() bool {
	prev, ok := s.history.Undo(s.current())
	if !ok {
		return false
	}
	s.restore(prev)
	return true
}

func (s *Session) Redo() bool {
	next, ok := s.history.Redo(s.current())
	if !ok {
		return false
	}
	s.restore(next)
	return true
}

func (s *Session) HistoryAvailable() Availability {
	return Availability{Undo: s.history.CanUndo(), Redo: s.history.CanRedo()}
}

// SetScale clamps newScale to [MinScale, MaxScale] and re-projects every
// highlight on every page.
func (s *Session) SetScale(newScale float64) error {
	return s.setScale(newScale, s.baseScale)
}

func (s *Session) setScale(newScale, newBase float64) error {
	if math.IsNaN(newScale) || math.IsInf(newScale, 0) || newScale <= 0 {
		return apperrors.NewOutOfRangeError("scale must be positive", fmt.Sprintf("scale=%v", newScale))
	}
	newScale = math.Min(MaxScale, math.Max(MinScale, newScale))
	if newScale == s.scale && newBase == s.baseScale {
		return nil
	}

	s.record()
	old := s.scale
	if newScale != old {
		s.store.RewriteAll(func(h models.Highlight) models.Highlight {
			return h.WithRect(geometry.Rescale(h.Rect(), old, newScale))
		})
		k := newScale / old
		s.canvas = models.PageDimensions{Width: s.canvas.Width * k, Height: s.canvas.Height * k}
	}
	s.scale = newScale
	s.baseScale = newBase
	s.logger.Debug("session %d: scale %.4f -> %.4f (%d%%)", s.id, old, newScale, s.ZoomPercent())
	return nil
}

// Rotate turns the view a quarter in dir. priorWidth and priorHeight are the
// canvas extents before the turn.
func (s *Session) Rotate(dir geometry.Direction, priorWidth, priorHeight float64) error {
	if priorWidth <= 0 || priorHeight <= 0 {
		return apperrors.NewValidationError("canvas size unknown", nil,
			fmt.Sprintf("width=%.2f height=%.2f", priorWidth, priorHeight))
	}

	s.record()
	s.store.RewriteAll(func(h models.Highlight) models.Highlight {
		return h.WithRect(geometry.Rotate90(h.Rect(), dir, priorWidth, priorHeight))
	})
	old := s.rotation
	s.rotation = geometry.NextRotation(s.rotation, dir)
	s.canvas = models.PageDimensions{Width: priorHeight, Height: priorWidth}
	s.logger.Debug("session %d: rotation %d -> %d", s.id, old, s.rotation)
	return nil
}

// RotateView is Rotate using the last known canvas extents.
func (s *Session) RotateView(dir geometry.Direction) error {
	return s.Rotate(dir, s.canvas.Width, s.canvas.Height)
}

func (s *Session) GotoPage(n int) error {
	if err := s.checkPage(n); err != nil {
		return err
	}
	s.currentPage = n
	return nil
}

func (s *Session) NextPage() error {
	return s.GotoPage(s.currentPage + 1)
}

func (s *Session) PrevPage() error {
	return s.GotoPage(s.currentPage - 1)
}

// FitWidth makes availableWidth the 100% reference and zooms to it.
func (s *Session) FitWidth(naturalWidth, availableWidth float64) error {
	if naturalWidth <= 0 || availableWidth <= 0 {
		return apperrors.NewOutOfRangeError("fit width needs positive widths",
			fmt.Sprintf("natural=%.2f available=%.2f", naturalWidth, availableWidth))
	}
	base := availableWidth / naturalWidth
	return s.setScale(base, base)
}

func (s *Session) ZoomPercent() int {
	if s.baseScale <= 0 {
		return 100
	}
	return int(math.Round(s.scale / s.baseScale * 100))
}

func (s *Session) PageLabel() string {
	if s.kind == models.KindRasterImage {
		return "Image"
	}
	return fmt.Sprintf("Page %d of %d", s.currentPage, s.totalPages)
}

// CurrentHighlights returns the highlights on the current page.
func (s *Session) CurrentHighlights() []models.Highlight {
	return s.store.Query(s.currentPage)
}

// PageSnapshot returns an independent copy of the highlights on page.
func (s *Session) PageSnapshot(page int) []models.Highlight {
	return s.store.Query(page)
}

// Highlights returns every highlight of the session in insertion order.
func (s *Session) Highlights() []models.Highlight {
	return s.store.All()
}

func (s *Session) HistoryLen() int {
	return s.history.Len()
}
