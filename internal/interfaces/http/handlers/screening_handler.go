package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/molscreen/molscreen/internal/export"
	"github.com/molscreen/molscreen/internal/infrastructure/logging"
	"github.com/molscreen/molscreen/internal/infrastructure/metrics"
	"github.com/molscreen/molscreen/internal/ingest"
	"github.com/molscreen/molscreen/internal/interfaces/http/middleware"
	"github.com/molscreen/molscreen/internal/screening"
	"github.com/molscreen/molscreen/pkg/errors"
)

// multipartFileField is the form field carrying the uploaded spreadsheet.
const multipartFileField = "file"

// ScreeningHandler handles screening submissions and result retrieval.
type ScreeningHandler struct {
	service        *screening.Service
	maxUploadBytes int64
	metrics        *metrics.Screening
	log            logging.Logger
}

// NewScreeningHandler creates a ScreeningHandler.  metrics may be nil.
func NewScreeningHandler(service *screening.Service, maxUploadBytes int64, m *metrics.Screening, log logging.Logger) *ScreeningHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ScreeningHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		metrics:        m,
		log:            log.Named("screening_handler"),
	}
}

// TextRequest is the body for a free-text submission.
type TextRequest struct {
	Text string `json:"text"`
}

// ScreeningResponse is the body returned for submissions and for the
// current-result view.
type ScreeningResponse struct {
	Source   string            `json:"source"`
	FileName string            `json:"fileName,omitempty"`
	Summary  screening.Summary `json:"summary"`
}

// SubmitText handles POST /api/v1/screenings/text.
func (h *ScreeningHandler) SubmitText(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return
	}

	summary, err := h.service.ScreenText(r.Context(), middleware.ContextSessionID(r.Context()), req.Text)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ScreeningResponse{
		Source:  string(screening.SourceText),
		Summary: summary,
	})
}

// SubmitFile handles POST /api/v1/screenings/file.  The upload arrives as
// multipart form data in the "file" field and is capped at the configured
// byte limit.
func (h *ScreeningHandler) SubmitFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeAppError(w, h.uploadError(err))
		return
	}

	file, header, err := r.FormFile(multipartFileField)
	if err != nil {
		writeAppError(w, errors.Wrap(err, errors.ErrCodeBadRequest, "missing file upload"))
		return
	}
	defer file.Close()

	// Extension is checked before the body is read so an unsupported file
	// fails fast.
	if err := ingest.ValidateExtension(header.Filename); err != nil {
		writeAppError(w, err)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeAppError(w, h.uploadError(err))
		return
	}
	h.metrics.ObserveUploadBytes(int64(len(data)))

	summary, err := h.service.ScreenFile(r.Context(), middleware.ContextSessionID(r.Context()), header.Filename, data)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ScreeningResponse{
		Source:   string(screening.SourceFile),
		FileName: header.Filename,
		Summary:  summary,
	})
}

// uploadError distinguishes the body-size cap from other read failures.
func (h *ScreeningHandler) uploadError(err error) error {
	var maxErr *http.MaxBytesError
	if stderrors.As(err, &maxErr) {
		return errors.Newf(errors.CodeInputTooLarge, "file exceeds the %d byte upload limit", h.maxUploadBytes)
	}
	return errors.Wrap(err, errors.CodeInputReadFailed, "failed to read uploaded file")
}

// Current handles GET /api/v1/screenings/current.
func (h *ScreeningHandler) Current(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.ContextSessionID(r.Context())
	summary, ok := h.service.Current(sessionID)
	if !ok {
		writeAppError(w, errors.NotFound("no prediction results available"))
		return
	}

	view := h.service.Store().Get(sessionID).Snapshot()
	writeJSON(w, http.StatusOK, ScreeningResponse{
		Source:   string(view.Source),
		FileName: view.FileName,
		Summary:  summary,
	})
}

// Clear handles DELETE /api/v1/screenings/current.
func (h *ScreeningHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.service.Clear(middleware.ContextSessionID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /api/v1/screenings/current/export, offering the
// current result table as a CSV download.
func (h *ScreeningHandler) Export(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.service.Current(middleware.ContextSessionID(r.Context()))
	if !ok {
		writeAppError(w, errors.NotFound("no prediction results available"))
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	if err := export.WriteCSV(w, summary.Rows); err != nil {
		// Headers are already out; the best we can do is log.
		h.log.Error("failed to stream CSV export", logging.Err(err))
	}
}
