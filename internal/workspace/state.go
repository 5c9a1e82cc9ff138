package workspace

import (
	"github.com/kpauljoseph/pagemark/internal/session"
	"github.com/kpauljoseph/pagemark/pkg/models"
)

// SessionInfo is the tab-strip view of one session.
type SessionInfo struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	Active      bool    `json:"active"`
	CurrentPage int     `json:"current_page"`
	TotalPages  int     `json:"total_pages"`
	PageLabel   string  `json:"page_label"`
	Scale       float64 `json:"scale"`
	ZoomPercent int     `json:"zoom_percent"`
	Rotation    int     `json:"rotation"`
}

// State is everything a UI needs to draw the editor.
type State struct {
	Tool       string                `json:"tool"`
	Color      models.ColorName      `json:"color"`
	Opacity    int                   `json:"opacity"`
	Colors     []ColorInfo           `json:"colors"`
	Sessions   []SessionInfo         `json:"sessions"`
	Active     *SessionInfo          `json:"active,omitempty"`
	Canvas     models.PageDimensions `json:"canvas"`
	History    session.Availability  `json:"history"`
	Highlights []models.Highlight    `json:"highlights"`
}

type ColorInfo struct {
	Name models.ColorName `json:"name"`
	Hex  string           `json:"hex"`
}

func describe(s *session.Session, active bool) SessionInfo {
	return SessionInfo{
		ID:          s.ID(),
		Name:        s.Name(),
		Kind:        s.Kind().String(),
		Active:      active,
		CurrentPage: s.CurrentPage(),
		TotalPages:  s.TotalPages(),
		PageLabel:   s.PageLabel(),
		Scale:       s.Scale(),
		ZoomPercent: s.ZoomPercent(),
		Rotation:    s.Rotation(),
	}
}

func (w *Workspace) Sessions() []SessionInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sessionsLocked()
}

func (w *Workspace) sessionsLocked() []SessionInfo {
	active := w.editor.Sessions().Active()
	list := w.editor.Sessions().List()
	infos := make([]SessionInfo, 0, len(list))
	for _, s := range list {
		infos = append(infos, describe(s, s == active))
	}
	return infos
}

func (w *Workspace) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	st := State{
		Tool:       w.editor.Tool().String(),
		Color:      w.editor.Color(),
		Opacity:    w.editor.Opacity(),
		Sessions:   w.sessionsLocked(),
		Highlights: []models.Highlight{},
	}
	for _, name := range w.editor.Colors().Names() {
		entry, err := w.editor.Colors().Resolve(name)
		if err != nil {
			continue
		}
		st.Colors = append(st.Colors, ColorInfo{Name: name, Hex: entry.Hex})
	}
	if s := w.editor.Sessions().Active(); s != nil {
		info := describe(s, true)
		st.Active = &info
		st.Canvas = s.CanvasSize()
		st.History = s.HistoryAvailable()
		st.Highlights = s.CurrentHighlights()
	}
	return st
}
