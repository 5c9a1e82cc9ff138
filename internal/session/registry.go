package session

import (
	"fmt"

	apperrors "github.com/kpauljoseph/pagemark/pkg/errors"
	"github.com/kpauljoseph/pagemark/pkg/logger"
	"github.com/kpauljoseph/pagemark/pkg/models"
)

// Registry owns the open sessions in tab order and tracks the active one.
type Registry struct {
	sessions []*Session
	active   *Session
	lastID   int64
	opts     Options
	logger   *logger.Logger
}

func NewRegistry(opts Options, log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Discard()
	}
	return &Registry{
		opts:   opts,
		logger: log,
	}
}

// Open registers a new session and makes it active.
func (r *Registry) Open(name string, kind models.DocumentKind, source models.SourceHandle, totalPages int) (*Session, error) {
	if totalPages < 1 {
		return nil, apperrors.NewOutOfRangeError("document has no pages", fmt.Sprintf("total=%d", totalPages))
	}
	r.lastID++
	s := newSession(r.lastID, name, kind, source, totalPages, r.opts, r.logger)
	r.sessions = append(r.sessions, s)
	r.active = s
	r.logger.Info("Opened %s %q as session %d (%d pages)", kind, name, s.id, totalPages)
	return s, nil
}

func (r *Registry) Activate(id int64) error {
	s, err := r.Get(id)
	if err != nil {
		return err
	}
	r.active = s
	r.logger.Debug("Activated session %d", id)
	return nil
}

// Close removes a session. If it was active, the tab to its left becomes
// active, or the new first tab when it was leftmost. Releasing the source
// handle is the caller's job.
func (r *Registry) Close(id int64) (*Session, error) {
	idx := r.indexOf(id)
	if idx < 0 {
		return nil, apperrors.NewUnknownSessionError(id)
	}
	closed := r.sessions[idx]
	r.sessions = append(r.sessions[:idx], r.sessions[idx+1:]...)

	if r.active == closed {
		r.active = nil
		if len(r.sessions) > 0 {
			next := idx - 1
			if next < 0 {
				next = 0
			}
			r.active = r.sessions[next]
		}
	}
	r.logger.Info("Closed session %d (%q)", id, closed.name)
	return closed, nil
}

// Active returns the active session or nil when nothing is open.
func (r *Registry) Active() *Session {
	return r.active
}

func (r *Registry) Get(id int64) (*Session, error) {
	idx := r.indexOf(id)
	if idx < 0 {
		return nil, apperrors.NewUnknownSessionError(id)
	}
	return r.sessions[idx], nil
}

// List returns the sessions in tab order.
func (r *Registry) List() []*Session {
	out := make([]*Session, len(r.sessions))
	copy(out, r.sessions)
	return out
}

func (r *Registry) Len() int {
	return len(r.sessions)
}

func (r *Registry) indexOf(id int64) int {
	for i, s := range r.sessions {
		if s.id == id {
			return i
		}
	}
	return -1
}
