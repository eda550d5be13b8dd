package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/newswirehq/newswire-backend/api/responses"
	"github.com/newswirehq/newswire-backend/internal/media"
	pkgerrors "github.com/newswirehq/newswire-backend/pkg/errors"
	"github.com/newswirehq/newswire-backend/pkg/logger"
)

const uploadFieldName = "file"

// multipart parse buffer before spilling to disk
const uploadMemoryLimit = 4 << 20

type blobUploader interface {
	Upload(ctx context.Context, payload []byte, originalName, contentType string) (*media.UploadResult, error)
}

// MediaUpload accepts a multipart form with a single "file" part and stores
// it under a random immutable name.
func MediaUpload(svc blobUploader, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if maxBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}

		if err := r.ParseMultipartForm(uploadMemoryLimit); err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart payload"))
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		file, header, err := r.FormFile(uploadFieldName)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "missing file part"))
			return
		}
		defer file.Close()

		payload, err := io.ReadAll(file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading upload"))
			return
		}

		result, err := svc.Upload(r.Context(), payload, header.Filename, header.Header.Get("Content-Type"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
