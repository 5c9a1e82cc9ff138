// Package httpapi exposes a workspace over JSON HTTP.
package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/kpauljoseph/pagemark/internal/workspace"
	"github.com/kpauljoseph/pagemark/pkg/logger"
	"github.com/kpauljoseph/pagemark/pkg/version"
)

// DefaultMaxUpload bounds document uploads.
const DefaultMaxUpload = 64 << 20

type Options struct {
	AllowedOrigins []string
	MaxUpload      int64
}

type Handler struct {
	ws        *workspace.Workspace
	logger    *logger.Logger
	maxUpload int64
}

// NewRouter creates the HTTP router with every route configured and CORS
// applied.
func NewRouter(ws *workspace.Workspace, log *logger.Logger, opts Options) http.Handler {
	if log == nil {
		log = logger.Discard()
	}
	if opts.MaxUpload <= 0 {
		opts.MaxUpload = DefaultMaxUpload
	}
	h := &Handler{ws: ws, logger: log, maxUpload: opts.MaxUpload}

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, struct {
			Status string `json:"status"`
			version.Info
		}{Status: "ok", Info: version.Get()})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/documents", h.OpenDocument).Methods(http.MethodPost)
	api.HandleFunc("/sessions", h.ListSessions).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id:[0-9]+}/activate", h.ActivateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id:[0-9]+}", h.CloseSession).Methods(http.MethodDelete)
	api.HandleFunc("/commands", h.Dispatch).Methods(http.MethodPost)
	api.HandleFunc("/state", h.State).Methods(http.MethodGet)
	api.HandleFunc("/pages/{page:[0-9]+}/render", h.RenderPage).Methods(http.MethodGet)
	api.HandleFunc("/export", h.Export).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
		},
		ExposedHeaders: []string{
			"Content-Disposition",
		},
		MaxAge: 300,
	})

	return c.Handler(router)
}
