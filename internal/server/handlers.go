package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/yomijipsa-art/concrete-ai/constants"
	"github.com/yomijipsa-art/concrete-ai/internal/common"
	"github.com/yomijipsa-art/concrete-ai/internal/core/report"
)

const (
	photosField       = "photos"
	defaultMaxUpload  = 64
	multipartMemLimit = 32 << 20
)

type handler struct {
	asm       ReportAssembler
	jobs      JobQueue
	logger    *slog.Logger
	maxUpload int64
}

func newHandler(config Config) *handler {
	mb := config.MaxUploadMB
	if mb <= 0 {
		mb = defaultMaxUpload
	}
	return &handler{
		asm:       config.Dependencies.Assembler,
		jobs:      config.Dependencies.Jobs,
		logger:    loggerOrDefault(config.Dependencies.Logger),
		maxUpload: int64(mb) << 20,
	}
}

func (h *handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateReport builds the report inside the request and streams the workbook.
func (h *handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	if h.asm == nil {
		h.writeError(w, r, common.NewUnavailableError("report generation is not configured"))
		return
	}
	photos, err := h.readPhotos(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.asm.Assemble(r.Context(), photos)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeReport(w, r, res)
}

func (h *handler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		h.writeError(w, r, common.NewUnavailableError("job queue is not configured"))
		return
	}
	photos, err := h.readPhotos(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := h.jobs.Submit(r.Context(), photos)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/jobs/"+id)
	h.writeJSON(w, r, http.StatusAccepted, map[string]string{
		"id":     id,
		"status": string(constants.JobStatusQueued),
	})
}

func (h *handler) GetJob(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		h.writeError(w, r, common.NewUnavailableError("job queue is not configured"))
		return
	}
	id := chi.URLParam(r, "id")
	snap, ok := h.jobs.Get(id)
	if !ok {
		h.writeError(w, r, common.NewNotFoundError("job not found: "+id))
		return
	}
	h.writeJSON(w, r, http.StatusOK, snap)
}

func (h *handler) GetJobReport(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		h.writeError(w, r, common.NewUnavailableError("job queue is not configured"))
		return
	}
	res, err := h.jobs.Result(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeReport(w, r, res)
}

func (h *handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		h.writeError(w, r, common.NewUnavailableError("job queue is not configured"))
		return
	}
	snap, err := h.jobs.Cancel(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, snap)
}

// readPhotos pulls the "photos" parts in upload order.
func (h *handler) readPhotos(w http.ResponseWriter, r *http.Request) ([]report.Photo, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(multipartMemLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, common.NewUserInputError(fmt.Sprintf("upload exceeds %d MB", h.maxUpload>>20), err)
		}
		return nil, common.NewUserInputError("expected a multipart/form-data upload", err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File[photosField]
	if len(headers) != constants.RequiredPhotos {
		return nil, common.NewUserInputError(
			fmt.Sprintf("exactly %d %q files are required, got %d", constants.RequiredPhotos, photosField, len(headers)), nil)
	}

	photos := make([]report.Photo, 0, len(headers))
	for i, fh := range headers {
		p, err := readPart(i+1, fh)
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, nil
}

func readPart(n int, fh *multipart.FileHeader) (report.Photo, error) {
	name := filepath.Base(fh.Filename)
	if ext := filepath.Ext(name); ext != "" && !constants.IsAllowedExt(ext) {
		return report.Photo{}, common.NewUserInputError(fmt.Sprintf("photo %d: unsupported file type %q", n, ext), nil)
	}
	if fh.Size > constants.MaxPhotoMB<<20 {
		return report.Photo{}, common.NewUserInputError(fmt.Sprintf("photo %d exceeds %d MB", n, constants.MaxPhotoMB), nil)
	}
	f, err := fh.Open()
	if err != nil {
		return report.Photo{}, common.NewUserInputError(fmt.Sprintf("read photo %d", n), err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return report.Photo{}, common.NewUserInputError(fmt.Sprintf("read photo %d", n), err)
	}
	if len(data) == 0 {
		return report.Photo{}, common.NewUserInputError(fmt.Sprintf("photo %d is empty", n), nil)
	}
	return report.Photo{Filename: name, Data: data}, nil
}

func (h *handler) writeReport(w http.ResponseWriter, r *http.Request, res *report.Result) {
	w.Header().Set("Content-Type", constants.XLSXMimeType)
	w.Header().Set("Content-Disposition", contentDisposition(res.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	if len(res.Missing) > 0 {
		names := make([]string, len(res.Missing))
		for i, f := range res.Missing {
			names[i] = url.QueryEscape(string(f))
		}
		w.Header().Set("X-Missing-Fields", strings.Join(names, ","))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Data); err != nil {
		common.LoggerWith(r.Context(), h.logger).Warn("http.write_report.failed", "error", err)
	}
}

// contentDisposition returns an attachment header with an ASCII fallback
// and the UTF-8 name in RFC 5987 form.
func contentDisposition(name string) string {
	fallback := "report.xlsx"
	encoded := strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
	return fmt.Sprintf(`attachment; filename=%q; filename*=UTF-8''%s`, fallback, encoded)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := common.HTTPStatus(err)
	body := errorResponse{Error: common.PublicMessage(err)}
	var ae *common.AppError
	if errors.As(err, &ae) {
		body.Code = ae.Code
	}
	log := common.LoggerWith(r.Context(), h.logger)
	if status >= http.StatusInternalServerError {
		log.Error("http.request.failed", "status", status, "error", err)
	} else {
		log.Warn("http.request.rejected", "status", status, "error", err)
	}
	h.writeJSON(w, r, status, body)
}

func (h *handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		common.LoggerWith(r.Context(), h.logger).Error("http.encode.failed", "error", err)
	}
}
