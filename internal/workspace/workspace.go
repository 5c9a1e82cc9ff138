// Package workspace wires the editor to document sources, renderers and the
// exporter. Every editor call is serialised behind one mutex; rendering and
// export run outside it.
package workspace

import (
	"context"
	"fmt"
	"sync"

	"github.com/kpauljoseph/pagemark/internal/export"
	"github.com/kpauljoseph/pagemark/internal/render"
	"github.com/kpauljoseph/pagemark/internal/session"
	"github.com/kpauljoseph/pagemark/internal/source"
	apperrors "github.com/kpauljoseph/pagemark/pkg/errors"
	"github.com/kpauljoseph/pagemark/pkg/logger"
	"github.com/kpauljoseph/pagemark/pkg/models"
)

// RendererFactory opens a renderer for a document's bytes.
type RendererFactory func(kind models.DocumentKind, data []byte, log *logger.Logger) (render.Renderer, error)

// DefaultRenderers uses MuPDF for paged documents and the image decoders for
// raster images.
func DefaultRenderers(kind models.DocumentKind, data []byte, log *logger.Logger) (render.Renderer, error) {
	if kind == models.KindRasterImage {
		return render.NewImageRenderer(data, log)
	}
	return render.NewFitzRenderer(data, log)
}

type Workspace struct {
	mu         sync.Mutex
	editor     *session.Editor
	sources    *source.Store
	renderers  map[int64]*lease
	newRender  RendererFactory
	supervisor *render.Supervisor
	exporter   *export.Exporter
	logger     *logger.Logger
}

type Option func(*Workspace)

func WithRendererFactory(f RendererFactory) Option {
	return func(w *Workspace) {
		w.newRender = f
	}
}

func New(editor *session.Editor, log *logger.Logger, options ...Option) *Workspace {
	if log == nil {
		log = logger.Discard()
	}
	w := &Workspace{
		editor:     editor,
		sources:    source.NewStore(log),
		renderers:  make(map[int64]*lease),
		newRender:  DefaultRenderers,
		supervisor: render.NewSupervisor(log),
		exporter:   export.NewExporter(log),
		logger:     log,
	}
	for _, opt := range options {
		opt(w)
	}
	editor.OnClose(w.release)
	return w
}

// release frees everything a closed session held. Runs under w.mu. A renderer
// still used by a render or export is closed once that call finishes.
func (w *Workspace) release(s *session.Session) {
	w.supervisor.Forget(s.ID())
	if l, ok := w.renderers[s.ID()]; ok {
		delete(w.renderers, s.ID())
		l.retire(w.logger)
	}
	w.sources.Revoke(s.Source())
	w.logger.Debug("Released resources of session %d", s.ID())
}

// Open loads a document and makes it the active session.
func (w *Workspace) Open(name string, data []byte) (SessionInfo, error) {
	kind, err := source.DetectKind(name, data)
	if err != nil {
		return SessionInfo{}, err
	}
	r, err := w.newRender(kind, data, w.logger)
	if err != nil {
		return SessionInfo{}, apperrors.NewValidationError("cannot open document", err, name)
	}
	natural, err := r.NaturalSize(1)
	if err != nil {
		r.Close()
		return SessionInfo{}, apperrors.NewValidationError("cannot open document", err, name)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	handle := w.sources.Put(name, kind, data)
	s, err := w.editor.Open(name, kind, handle, r.PageCount())
	if err != nil {
		w.sources.Revoke(handle)
		r.Close()
		return SessionInfo{}, err
	}
	w.renderers[s.ID()] = newLease(s.ID(), r)
	s.SetCanvasSize(natural.Width*s.Scale(), natural.Height*s.Scale())

	w.logger.Info("Opened %q as session %d (%s, %d pages)", name, s.ID(), kind, s.TotalPages())
	return describe(s, true), nil
}

func (w *Workspace) Close(id int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.editor.Close(id)
}

func (w *Workspace) Activate(id int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.editor.Activate(id)
}

// Dispatch runs cmd on the editor. A fit-width command without a natural
// width takes it from the active page as currently rotated.
func (w *Workspace) Dispatch(cmd session.Command) (session.Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var fit *session.FitWidth
	switch c := cmd.(type) {
	case *session.FitWidth:
		fit = c
	case session.FitWidth:
		fit = &c
	}
	if fit != nil && fit.NaturalWidth <= 0 {
		filled := *fit
		if err := w.fillNaturalWidth(&filled); err != nil {
			return session.Result{}, err
		}
		cmd = filled
	}
	return w.editor.Dispatch(cmd)
}

func (w *Workspace) fillNaturalWidth(c *session.FitWidth) error {
	s, r, err := w.active()
	if err != nil {
		return err
	}
	natural, err := r.NaturalSize(s.CurrentPage())
	if err != nil {
		return apperrors.NewInternalError("page size unavailable", err)
	}
	c.NaturalWidth = natural.Width
	if s.Rotation()%180 != 0 {
		c.NaturalWidth = natural.Height
	}
	return nil
}

func (w *Workspace) active() (*session.Session, *lease, error) {
	s, err := w.editor.Active()
	if err != nil {
		return nil, nil, err
	}
	l, err := w.lease(s)
	if err != nil {
		return nil, nil, err
	}
	return s, l, nil
}

func (w *Workspace) lease(s *session.Session) (*lease, error) {
	l, ok := w.renderers[s.ID()]
	if !ok {
		return nil, apperrors.NewInternalError("no renderer for session", nil)
	}
	return l, nil
}

// Render draws a page of the active session at its current view; page 0
// means the current page. A render superseded by a newer one returns an
// ErrRenderCancelled error and changes nothing. A completed render of the
// current page records the canvas extents.
func (w *Workspace) Render(ctx context.Context, page int) (*render.Surface, error) {
	w.mu.Lock()
	s, l, err := w.active()
	if err != nil {
		w.mu.Unlock()
		return nil, err
	}
	req := render.RequestFor(s)
	if page != 0 {
		if page < 1 || page > s.TotalPages() {
			w.mu.Unlock()
			return nil, apperrors.NewOutOfRangeError("page out of range", fmt.Sprintf("page=%d total=%d", page, s.TotalPages()))
		}
		req.Page = page
	}
	l.refs++
	w.mu.Unlock()

	surface, err := w.supervisor.Render(ctx, s.ID(), l.Renderer, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	l.drop(w.logger)
	if err != nil {
		return nil, err
	}
	if l.closing {
		return nil, apperrors.NewRenderCancelledError(req.Page, context.Canceled)
	}
	if render.RequestFor(s) == req {
		s.SetCanvasSize(float64(surface.Width()), float64(surface.Height()))
	}
	return surface, nil
}

// Export composes the session (0 means the active one) with its highlights.
// Closing the session cancels an export in progress.
func (w *Workspace) Export(ctx context.Context, id int64) ([]byte, string, error) {
	w.mu.Lock()
	var (
		s   *session.Session
		err error
	)
	if id == 0 {
		s, err = w.editor.Active()
	} else {
		s, err = w.editor.Sessions().Get(id)
	}
	if err != nil {
		w.mu.Unlock()
		return nil, "", err
	}
	l, err := w.lease(s)
	if err != nil {
		w.mu.Unlock()
		return nil, "", err
	}
	job, err := export.Snapshot(s, w.editor.Colors())
	if err != nil {
		w.mu.Unlock()
		return nil, "", err
	}
	l.refs++
	w.mu.Unlock()

	ctx, cancel := l.bind(ctx)
	defer cancel()
	c := w.exporter.ComposerFor(job.Kind)
	out, err := w.exporter.Run(ctx, job, l.Renderer, c)

	w.mu.Lock()
	closed := l.closing
	l.drop(w.logger)
	w.mu.Unlock()
	if closed {
		return nil, "", apperrors.NewExportError(0, fmt.Errorf("session %d closed during export: %w", s.ID(), context.Canceled))
	}
	if err != nil {
		return nil, "", err
	}
	return out, job.FileName(c.Extension()), nil
}

// Shutdown closes every session.
func (w *Workspace) Shutdown() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range w.editor.Sessions().List() {
		if err := w.editor.Close(s.ID()); err != nil {
			w.logger.Warn("Closing session %d: %v", s.ID(), err)
		}
	}
}
