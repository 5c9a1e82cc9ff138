package session

import (
	"math"

	"github.com/kpauljoseph/pagemark/internal/colors"
	"github.com/kpauljoseph/pagemark/internal/geometry"
	apperrors "github.com/kpauljoseph/pagemark/pkg/errors"
	"github.com/kpauljoseph/pagemark/pkg/models"
)

// Command is one user intent. The set is closed: only types in this package
// implement it.
type Command interface {
	Name() string
	apply(e *Editor) (Result, error)
}

// Result carries whatever a command produced.
type Result struct {
	Highlight *models.Highlight `json:"highlight,omitempty"`
	Removed   int               `json:"removed,omitempty"`
	Changed   bool              `json:"changed"`
}

// AddHighlight stores the rectangle spanned by Start and End. Page 0 means
// the current page; empty Color and zero Opacity mean the editor's active values.
type AddHighlight struct {
	Page    int              `json:"page,omitempty" yaml:"page,omitempty"`
	Start   models.Point     `json:"start" yaml:"start"`
	End     models.Point     `json:"end" yaml:"end"`
	Color   models.ColorName `json:"color,omitempty" yaml:"color,omitempty"`
	Opacity int              `json:"opacity,omitempty" yaml:"opacity,omitempty"`
}

// Drag applies the active tool to a pointer drag on the current page. With a
// Viewport, Start and End are client coordinates mapped through DeviceToPage.
type Drag struct {
	Start      models.Point       `json:"start" yaml:"start"`
	End        models.Point       `json:"end" yaml:"end"`
	Viewport   *geometry.Viewport `json:"viewport,omitempty" yaml:"viewport,omitempty"`
	PixelRatio float64            `json:"pixel_ratio,omitempty" yaml:"pixel_ratio,omitempty"`
}

type EraseAt struct {
	Page  int          `json:"page,omitempty" yaml:"page,omitempty"`
	Point models.Point `json:"point" yaml:"point"`
}

type RemoveHighlight struct {
	ID int64 `json:"id" yaml:"id"`
}

type ClearPage struct {
	Page int `json:"page,omitempty" yaml:"page,omitempty"`
}

type Undo struct{}

type Redo struct{}

type SetScale struct {
	Scale float64 `json:"scale" yaml:"scale"`
}

type ZoomIn struct{}

type ZoomOut struct{}

type FitWidth struct {
	NaturalWidth   float64 `json:"natural_width" yaml:"natural_width"`
	AvailableWidth float64 `json:"available_width" yaml:"available_width"`
}

// Rotate turns the active session. Zero prior extents mean the session's
// last known canvas size.
type Rotate struct {
	Direction   string  `json:"direction" yaml:"direction"`
	PriorWidth  float64 `json:"prior_width,omitempty" yaml:"prior_width,omitempty"`
	PriorHeight float64 `json:"prior_height,omitempty" yaml:"prior_height,omitempty"`
}

type GotoPage struct {
	Page int `json:"page" yaml:"page"`
}

type NextPage struct{}

type PrevPage struct{}

type SetColor struct {
	Color models.ColorName `json:"color" yaml:"color"`
}

// SetCustomColor overwrites the custom slot and makes it the active color.
type SetCustomColor struct {
	Hex string `json:"hex" yaml:"hex"`
}

type SetOpacity struct {
	Opacity int `json:"opacity" yaml:"opacity"`
}

type SetTool struct {
	Tool string `json:"tool" yaml:"tool"`
}

func (AddHighlight) Name() string    { return "add_highlight" }
func (Drag) Name() string            { return "drag" }
func (EraseAt) Name() string         { return "erase_at" }
func (RemoveHighlight) Name() string { return "remove_highlight" }
func (ClearPage) Name() string       { return "clear_page" }
func (Undo) Name() string            { return "undo" }
func (Redo) Name() string            { return "redo" }
func (SetScale) Name() string        { return "set_scale" }
func (ZoomIn) Name() string          { return "zoom_in" }
func (ZoomOut) Name() string         { return "zoom_out" }
func (FitWidth) Name() string        { return "fit_width" }
func (Rotate) Name() string          { return "rotate" }
func (GotoPage) Name() string        { return "goto_page" }
func (NextPage) Name() string        { return "next_page" }
func (PrevPage) Name() string        { return "prev_page" }
func (SetColor) Name() string        { return "set_color" }
func (SetCustomColor) Name() string  { return "set_custom_color" }
func (SetOpacity) Name() string      { return "set_opacity" }
func (SetTool) Name() string         { return "set_tool" }

var commandFactories = map[string]func() Command{
	"add_highlight":    func() Command { return &AddHighlight{} },
	"drag":             func() Command { return &Drag{} },
	"erase_at":         func() Command { return &EraseAt{} },
	"remove_highlight": func() Command { return &RemoveHighlight{} },
	"clear_page":       func() Command { return &ClearPage{} },
	"undo":             func() Command { return &Undo{} },
	"redo":             func() Command { return &Redo{} },
	"set_scale":        func() Command { return &SetScale{} },
	"zoom_in":          func() Command { return &ZoomIn{} },
	"zoom_out":         func() Command { return &ZoomOut{} },
	"fit_width":        func() Command { return &FitWidth{} },
	"rotate":           func() Command { return &Rotate{} },
	"goto_page":        func() Command { return &GotoPage{} },
	"next_page":        func() Command { return &NextPage{} },
	"prev_page":        func() Command { return &PrevPage{} },
	"set_color":        func() Command { return &SetColor{} },
	"set_custom_color": func() Command { return &SetCustomColor{} },
	"set_opacity":      func() Command { return &SetOpacity{} },
	"set_tool":         func() Command { return &SetTool{} },
}

// ParseCommand builds the command registered under name and lets decode fill
// its fields, so the same table serves JSON and YAML callers.
func ParseCommand(name string, decode func(v interface{}) error) (Command, error) {
	factory, ok := commandFactories[name]
	if !ok {
		return nil, apperrors.NewValidationError("unknown command", nil, name)
	}
	cmd := factory()
	if decode != nil {
		if err := decode(cmd); err != nil {
			return nil, apperrors.NewValidationError("malformed command", err, name)
		}
	}
	return cmd, nil
}

func pageOrCurrent(s *Session, page int) int {
	if page == 0 {
		return s.CurrentPage()
	}
	return page
}

func (c AddHighlight) apply(e *Editor) (Result, error) {
	s, err := e.Active()
	if err != nil {
		return Result{}, err
	}
	color, err := e.resolveColor(c.Color)
	if err != nil {
		return Result{}, err
	}
	opacity, err := e.resolveOpacity(c.Opacity)
	if err != nil {
		return Result{}, err
	}
	r, ok := geometry.NormalizeRect(c.Start, c.End, s.minRectSize)
	if !ok {
		return Result{}, apperrors.NewValidationError("highlight too small", apperrors.ErrDegenerateRect)
	}
	h, err := s.AddHighlight(pageOrCurrent(s, c.Page), r, color, opacity)
	if err != nil {
		return Result{}, err
	}
	return Result{Highlight: &h, Changed: true}, nil
}

func (c Drag) apply(e *Editor) (Result, error) {
	start, end := c.Start, c.End
	if c.Viewport != nil {
		start = geometry.DeviceToPage(start.X, start.Y, *c.Viewport, c.PixelRatio)
		end = geometry.DeviceToPage(end.X, end.Y, *c.Viewport, c.PixelRatio)
	}
	if e.tool == ToolErase {
		return EraseAt{Point: end}.apply(e)
	}
	return AddHighlight{Start: start, End: end}.apply(e)
}

func (c EraseAt) apply(e *Editor) (Result, error) {
	s, err := e.Active()
	if err != nil {
		return Result{}, err
	}
	n, err := s.EraseAt(pageOrCurrent(s, c.Page), c.Point)
	if err != nil {
		return Result{}, err
	}
	return Result{Removed: n, Changed: n > 0}, nil
}

func (c RemoveHighlight) apply(e *Editor) (Result, error) {
	s, err := e.Active()
	if err != nil {
		return Result{}, err
	}
	if !s.RemoveHighlight(c.ID) {
		return Result{}, nil
	}
	return Result{Removed: 1, Changed: true}, nil
}

func (c ClearPage) apply(e *Editor) (Result, error) {
	s, err := e.Active()
	if err != nil {
		return Result{}, err
	}
	n, err := s.ClearPage(pageOrCurrent(s, c.Page))
	if err != nil {
		return Result{}, err
	}
	return Result{Removed: n, Changed: n > 0}, nil
}

func (Undo) apply(e *Editor) (Result, error) {
	s, err := e.Active()
	if err != nil {
		return Result{}, err
	}
	return Result{Changed: s.Undo()}, nil
}

func (Redo) apply(e *Editor) (Result, error) {
	s, err := e.Active()
	if err != nil {
		return Result{}, err
	}
	return Result{Changed: s.Redo()}, nil
}

func (c SetScale) apply(e *Editor) (Result, error) {
	return e.withScale(func(*Session) float64 { return c.Scale })
}

func (ZoomIn) apply(e *Editor) (Result, error) {
	return e.withScale(func(s *Session) float64 { return s.Scale() + e.zoomStep })
}

func (ZoomOut) apply(e *Editor) (Result, error) {
	return e.withScale(func(s *Session) float64 { return math.Max(MinScale, s.Scale()-e.zoomStep) })
}

func (e *Editor) withScale(next func(*Session) float64) (Result, error) {
	s, err := e.Active()
	if err != nil {
		return Result{}, err
	}
	before := s.Scale()
	if err := s.SetScale(next(s)); err != nil {
		return Result{}, err
	}
	return Result{Changed: s.Scale() != before}, nil
}

func (c FitWidth) apply(e *Editor) (Result, error) {
	s, err := e.Active()
	if err != nil {
		return Result{}, err
	}
	scale, base := s.Scale(), s.BaseScale()
	if err := s.FitWidth(c.NaturalWidth, c.AvailableWidth); err != nil {
		return Result{}, err
	}
	return Result{Changed: s.Scale() != scale || s.BaseScale() != base}, nil
}

func (c Rotate) apply(e *Editor) (Result, error) {
	s, err := e.Active()
	if err != nil {
		return Result{}, err
	}
	dir, ok := geometry.ParseDirection(c.Direction)
	if !ok {
		return Result{}, apperrors.NewValidationError("unknown rotation direction", nil, c.Direction)
	}
	if c.PriorWidth > 0 && c.PriorHeight > 0 {
		err = s.Rotate(dir, c.PriorWidth, c.PriorHeight)
	} else {
		err = s.RotateView(dir)
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Changed: true}, nil
}

func (c GotoPage) apply(e *Editor) (Result, error) {
	return e.withPage(func(s *Session) error { return s.GotoPage(c.Page) })
}

func (NextPage) apply(e *Editor) (Result, error) {
	return e.withPage(func(s *Session) error { return s.NextPage() })
}

func (PrevPage) apply(e *Editor) (Result, error) {
	return e.withPage(func(s *Session) error { return s.PrevPage() })
}

func (e *Editor) withPage(move func(*Session) error) (Result, error) {
	s, err := e.Active()
	if err != nil {
		return Result{}, err
	}
	before := s.CurrentPage()
	if err := move(s); err != nil {
		return Result{}, err
	}
	return Result{Changed: s.CurrentPage() != before}, nil
}

func (c SetColor) apply(e *Editor) (Result, error) {
	if _, err := e.colors.Resolve(c.Color); err != nil {
		return Result{}, err
	}
	e.color = c.Color
	return Result{Changed: true}, nil
}

func (c SetCustomColor) apply(e *Editor) (Result, error) {
	entry, err := colors.ParseHex(c.Hex)
	if err != nil {
		return Result{}, err
	}
	e.colors.SetCustom(entry.R, entry.G, entry.B, entry.Hex)
	e.color = models.ColorCustom
	return Result{Changed: true}, nil
}

func (c SetOpacity) apply(e *Editor) (Result, error) {
	if err := checkOpacity(c.Opacity); err != nil {
		return Result{}, err
	}
	e.opacity = c.Opacity
	return Result{Changed: true}, nil
}

func (c SetTool) apply(e *Editor) (Result, error) {
	tool, err := ParseTool(c.Tool)
	if err != nil {
		return Result{}, err
	}
	e.tool = tool
	return Result{Changed: true}, nil
}
