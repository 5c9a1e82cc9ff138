package workspace

import (
	"context"

	"github.com/kpauljoseph/pagemark/internal/render"
	"github.com/kpauljoseph/pagemark/pkg/logger"
)

// lease owns a session's renderer. Renders and exports hold a reference while
// they run outside Workspace.mu; the renderer is closed when the session has
// closed and the last reference is dropped. All fields except ctx are guarded
// by Workspace.mu.
type lease struct {
	render.Renderer
	id      int64
	ctx     context.Context
	cancel  context.CancelFunc
	refs    int
	closing bool
}

func newLease(id int64, r render.Renderer) *lease {
	ctx, cancel := context.WithCancel(context.Background())
	return &lease{Renderer: r, id: id, ctx: ctx, cancel: cancel}
}

// bind derives a context from ctx that is also cancelled when the session closes.
func (l *lease) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(l.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (l *lease) retire(log *logger.Logger) {
	l.closing = true
	l.cancel()
	if l.refs > 0 {
		log.Debug("Renderer of session %d still in use by %d calls, closing when idle", l.id, l.refs)
		return
	}
	l.closeRenderer(log)
}

func (l *lease) drop(log *logger.Logger) {
	l.refs--
	if l.closing && l.refs == 0 {
		l.closeRenderer(log)
	}
}

func (l *lease) closeRenderer(log *logger.Logger) {
	if err := l.Renderer.Close(); err != nil {
		log.Warn("Closing renderer for session %d: %v", l.id, err)
	}
}
