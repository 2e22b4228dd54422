package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/baechuer/careportal/internal/domain"
	"github.com/baechuer/careportal/internal/logger"
)

type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, content io.Reader) domain.Result[domain.UploadResult]
}

// UploadHandler checks size and sniffed content type before anything is forwarded.
type UploadHandler struct {
	uploader     Uploader
	maxBytes     int64
	allowedTypes []string
}

func NewUploadHandler(uploader Uploader, maxBytes int64, allowedTypes []string) *UploadHandler {
	return &UploadHandler{
		uploader:     uploader,
		maxBytes:     maxBytes,
		allowedTypes: allowedTypes,
	}
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// multipart overhead on top of the file itself
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+64<<10)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, domain.ErrFileTooLarge(h.maxBytes))
			return
		}
		writeError(w, r, domain.ErrInvalidField("file", "a file is required"))
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		writeError(w, r, domain.ErrFileTooLarge(h.maxBytes))
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		writeError(w, r, domain.ErrInvalidField("file", "unreadable file"))
		return
	}
	if int64(len(content)) > h.maxBytes {
		writeError(w, r, domain.ErrFileTooLarge(h.maxBytes))
		return
	}
	if len(content) == 0 {
		writeError(w, r, domain.ErrInvalidField("file", "file is empty"))
		return
	}

	mt := mimetype.Detect(content)
	if !h.allowed(mt) {
		logger.Ctx(r.Context()).Warn().
			Str("declared", header.Header.Get("Content-Type")).
			Str("detected", mt.String()).
			Msg("upload_type_rejected")
		writeError(w, r, domain.ErrUnsupportedMediaType(mt.String()))
		return
	}

	name := uuid.NewString() + mt.Extension()
	res := h.uploader.Upload(r.Context(), name, baseType(mt.String()), bytes.NewReader(content))
	writeResult(w, r, res, http.StatusCreated)
}

func (h *UploadHandler) allowed(mt *mimetype.MIME) bool {
	for _, a := range h.allowedTypes {
		if mt.Is(a) {
			return true
		}
	}
	return false
}

// baseType drops parameters ("text/plain; charset=utf-8" -> "text/plain").
func baseType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}
