package session

import (
	"fmt"

	"github.com/kpauljoseph/pagemark/internal/colors"
	apperrors "github.com/kpauljoseph/pagemark/pkg/errors"
	"github.com/kpauljoseph/pagemark/pkg/logger"
	"github.com/kpauljoseph/pagemark/pkg/models"
)

type Tool int

const (
	ToolHighlight Tool = iota
	ToolErase
)

func (t Tool) String() string {
	if t == ToolErase {
		return "erase"
	}
	return "highlight"
}

func ParseTool(s string) (Tool, error) {
	switch s {
	case "highlight", "":
		return ToolHighlight, nil
	case "erase", "eraser":
		return ToolErase, nil
	}
	return ToolHighlight, apperrors.NewValidationError("unknown tool", nil, s)
}

const DefaultZoomStep = 0.25

// EditorOptions are the user-facing defaults an Editor starts with.
type EditorOptions struct {
	Sessions       Options
	DefaultColor   models.ColorName
	DefaultOpacity int
	ZoomStep       float64
}

// Editor is the application context: the open sessions, the color registry
// and the active tool, color and opacity. All commands go through Dispatch.
type Editor struct {
	sessions *Registry
	colors   *colors.Registry
	logger   *logger.Logger

	tool     Tool
	color    models.ColorName
	opacity  int
	zoomStep float64

	onClose []func(*Session)
}

func NewEditor(opts EditorOptions, log *logger.Logger) (*Editor, error) {
	if log == nil {
		log = logger.Discard()
	}
	e := &Editor{
		sessions: NewRegistry(opts.Sessions, log),
		colors:   colors.NewRegistry(),
		logger:   log,
		tool:     ToolHighlight,
		color:    models.ColorYellow,
		opacity:  models.MaxOpacity,
		zoomStep: DefaultZoomStep,
	}
	if opts.DefaultColor != "" {
		if _, err := e.colors.Resolve(opts.DefaultColor); err != nil {
			return nil, err
		}
		e.color = opts.DefaultColor
	}
	if opts.DefaultOpacity != 0 {
		if err := checkOpacity(opts.DefaultOpacity); err != nil {
			return nil, err
		}
		e.opacity = opts.DefaultOpacity
	}
	if opts.ZoomStep > 0 {
		e.zoomStep = opts.ZoomStep
	}
	return e, nil
}

func (e *Editor) Sessions() *Registry {
	return e.sessions
}

func (e *Editor) Colors() *colors.Registry {
	return e.colors
}

func (e *Editor) Tool() Tool {
	return e.tool
}

func (e *Editor) Color() models.ColorName {
	return e.color
}

func (e *Editor) Opacity() int {
	return e.opacity
}

// OnClose registers a hook run for every session the editor closes, used to
// release source handles and renderers.
func (e *Editor) OnClose(fn func(*Session)) {
	e.onClose = append(e.onClose, fn)
}

func (e *Editor) Open(name string, kind models.DocumentKind, source models.SourceHandle, totalPages int) (*Session, error) {
	return e.sessions.Open(name, kind, source, totalPages)
}

func (e *Editor) Activate(id int64) error {
	return e.sessions.Activate(id)
}

func (e *Editor) Close(id int64) error {
	closed, err := e.sessions.Close(id)
	if err != nil {
		return err
	}
	for _, fn := range e.onClose {
		fn(closed)
	}
	return nil
}

// Active returns the active session or an unknown-session error.
func (e *Editor) Active() (*Session, error) {
	s := e.sessions.Active()
	if s == nil {
		return nil, apperrors.NewNoActiveSessionError()
	}
	return s, nil
}

// Dispatch runs cmd against the editor and, for document commands, the
// active session.
func (e *Editor) Dispatch(cmd Command) (Result, error) {
	res, err := cmd.apply(e)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeValidation) {
			e.logger.Debug("Declined %s: %v", cmd.Name(), err)
		} else {
			e.logger.Error("Command %s failed: %v", cmd.Name(), err)
		}
		return Result{}, err
	}
	e.logger.Trace("Applied %s", cmd.Name())
	return res, nil
}

func (e *Editor) resolveColor(name models.ColorName) (models.ColorName, error) {
	if name == "" {
		return e.color, nil
	}
	if _, err := e.colors.Resolve(name); err != nil {
		return "", err
	}
	return name, nil
}

func (e *Editor) resolveOpacity(opacity int) (int, error) {
	if opacity == 0 {
		return e.opacity, nil
	}
	if err := checkOpacity(opacity); err != nil {
		return 0, err
	}
	return opacity, nil
}

func checkOpacity(opacity int) error {
	if opacity < models.MinOpacity || opacity > models.MaxOpacity {
		return apperrors.NewOutOfRangeError("opacity out of range", fmt.Sprintf("opacity=%d", opacity))
	}
	return nil
}
