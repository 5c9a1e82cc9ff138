package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/kpauljoseph/pagemark/internal/session"
	"github.com/kpauljoseph/pagemark/internal/workspace"
	apperrors "github.com/kpauljoseph/pagemark/pkg/errors"
)

// OpenDocument accepts a multipart "file" field or a raw body named by the
// "name" query parameter.
func (h *Handler) OpenDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	var (
		name string
		data []byte
		err  error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, header, ferr := r.FormFile("file")
		if ferr != nil {
			h.writeError(w, apperrors.NewValidationError("file is required", ferr))
			return
		}
		defer file.Close()
		name = header.Filename
		data, err = io.ReadAll(file)
	} else {
		name = r.URL.Query().Get("name")
		data, err = io.ReadAll(r.Body)
	}
	if err != nil {
		h.writeError(w, apperrors.NewValidationError("failed to read upload", err))
		return
	}

	name = strings.TrimSpace(filepath.Base(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "document"
	}
	if len(data) == 0 {
		h.writeError(w, apperrors.NewValidationError("empty document", nil, name))
		return
	}

	info, err := h.ws.Open(name, data)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ws.Sessions())
}

func (h *Handler) ActivateSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.ws.Activate(id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.ws.State())
}

func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.ws.Close(id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type commandEnvelope struct {
	Type string `json:"type"`
}

type commandResponse struct {
	Result session.Result  `json:"result"`
	State  workspace.State `json:"state"`
}

// Dispatch decodes {"type": "...", ...fields} into a command and runs it.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		h.writeError(w, apperrors.NewValidationError("failed to read command", err))
		return
	}
	var env commandEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		h.writeError(w, apperrors.NewValidationError("malformed command", err))
		return
	}
	cmd, err := session.ParseCommand(env.Type, func(v interface{}) error {
		return json.Unmarshal(body, v)
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	res, err := h.ws.Dispatch(cmd)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commandResponse{Result: res, State: h.ws.State()})
}

func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ws.State())
}

// RenderPage streams a PNG of the page; page 0 is the current page. A
// superseded render answers 204 with no body.
func (h *Handler) RenderPage(w http.ResponseWriter, r *http.Request) {
	page, err := pathInt(r, "page")
	if err != nil {
		h.writeError(w, err)
		return
	}
	surface, err := h.ws.Render(r.Context(), int(page))
	if err != nil {
		if errors.Is(err, apperrors.ErrRenderCancelled) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if err := png.Encode(w, surface.Image); err != nil {
		h.logger.Warn("Writing page %d: %v", page, err)
	}
}

// Export downloads the annotated document of the "session" query parameter,
// or of the active session when it is absent.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var id int64
	if raw := r.URL.Query().Get("session"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.writeError(w, apperrors.NewValidationError("invalid session id", err, raw))
			return
		}
		id = v
	}

	out, name, err := h.ws.Export(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	contentType := "application/pdf"
	if strings.HasSuffix(name, ".png") {
		contentType = "image/png"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func pathInt(r *http.Request, key string) (int64, error) {
	raw := mux.Vars(r)[key]
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid "+key, err, raw)
	}
	return v, nil
}

// writeError maps err to its status. Validation errors are routine; the
// rest point at integration bugs or real failures and are logged loudly.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := apperrors.GetStatusCode(err)
	body := map[string]string{"error": err.Error()}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		body["type"] = string(appErr.Type)
		body["error"] = appErr.Message
		if appErr.Details != "" {
			body["details"] = appErr.Details
		}
	}

	if status < http.StatusInternalServerError && apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		h.logger.Debug("Request declined: %v", err)
	} else {
		h.logger.Error("Request failed: %v", err)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
