package api

import (
	"bytes"
	"mime/multipart"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/ayusman/heroswap/internal/app"
	"github.com/ayusman/heroswap/internal/errors"
)

// MaxUploadBytes bounds a multipart upload.
const MaxUploadBytes = 32 << 20

// SceneHandler handles the upload, paste and playback endpoints.
type SceneHandler struct {
	app     *app.App
	session *app.Session
	logger  *log.Logger
}

// NewSceneHandler creates a SceneHandler. Uploads are stored in session.
func NewSceneHandler(a *app.App, session *app.Session, logger *log.Logger) *SceneHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &SceneHandler{app: a, session: session, logger: logger}
}

// Status handles GET /api/status.
func (h *SceneHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Status())
}

// Upload handles POST /api/upload with a multipart "photo" field.
func (h *SceneHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, err := formFile(w, r, "photo")
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	defer file.Close()

	res, err := h.app.Upload(r.Context(), h.session, file)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Paste handles POST /api/paste with multipart "source" and "target" fields.
func (h *SceneHandler) Paste(w http.ResponseWriter, r *http.Request) {
	source, err := formFile(w, r, "source")
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	defer source.Close()

	target, err := formFile(w, r, "target")
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	defer target.Close()

	res, err := h.app.Paste(r.Context(), source, target, "")
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Replay handles POST /api/replay.
func (h *SceneHandler) Replay(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Replay(); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /api/export and returns the canvas as a PNG download.
func (h *SceneHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.app.Export(&buf); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="heroswap.png"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func formFile(w http.ResponseWriter, r *http.Request, field string) (multipart.File, error) {
	if r.MultipartForm == nil {
		r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
		if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "Expected a multipart form upload.")
		}
	}
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "Missing %q file.", field)
	}
	return file, nil
}
