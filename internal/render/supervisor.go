package render

import (
	"context"
	"errors"
	"sync"

	apperrors "github.com/kpauljoseph/pagemark/pkg/errors"
	"github.com/kpauljoseph/pagemark/pkg/logger"
)

type ticket struct {
	cancel context.CancelFunc
}

// Supervisor keeps at most one live render per session. Starting a render
// cancels the previous one for the same session; the superseded call returns
// an ErrRenderCancelled error and its surface is dropped.
type Supervisor struct {
	mu       sync.Mutex
	inflight map[int64]*ticket
	logger   *logger.Logger
}

func NewSupervisor(log *logger.Logger) *Supervisor {
	if log == nil {
		log = logger.Discard()
	}
	return &Supervisor{
		inflight: make(map[int64]*ticket),
		logger:   log,
	}
}

func (s *Supervisor) Render(ctx context.Context, sessionID int64, r Renderer, req Request) (*Surface, error) {
	ctx, cancel := context.WithCancel(ctx)
	t := &ticket{cancel: cancel}

	s.mu.Lock()
	if prev, ok := s.inflight[sessionID]; ok {
		prev.cancel()
		s.logger.Trace("Session %d: superseding in-flight render", sessionID)
	}
	s.inflight[sessionID] = t
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.inflight[sessionID] == t {
			delete(s.inflight, sessionID)
		}
		s.mu.Unlock()
		cancel()
	}()

	surface, err := r.Render(ctx, req.Page, req.Scale, req.Rotation)

	s.mu.Lock()
	superseded := s.inflight[sessionID] != t
	s.mu.Unlock()

	if superseded || ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrClosed) {
		return nil, apperrors.NewRenderCancelledError(req.Page, context.Canceled)
	}
	if err != nil {
		return nil, err
	}
	return surface, nil
}

// Forget cancels any render for sessionID, used when the session closes.
func (s *Supervisor) Forget(sessionID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.inflight[sessionID]; ok {
		t.cancel()
		delete(s.inflight, sessionID)
	}
}

// InFlight reports whether sessionID has a render running.
func (s *Supervisor) InFlight(sessionID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[sessionID]
	return ok
}
