package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gcmn-library/backend/api/responses"
	pkgerrors "github.com/gcmn-library/backend/pkg/errors"
	"github.com/gcmn-library/backend/pkg/logger"
	"github.com/gcmn-library/backend/pkg/storage/supabase"
)

// maxUploadBytes caps multipart uploads (PDFs and images).
const maxUploadBytes = 32 << 20

// UploadFile accepts a multipart "file" part and stores it in the bucket
// named by the path. The response carries the public URL.
func UploadFile(client *supabase.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file part is required"))
			return
		}
		defer func() { _ = file.Close() }()

		data, err := io.ReadAll(file)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUpload, err, "reading upload"))
			return
		}

		url, err := client.Upload(ctx, chi.URLParam(r, "bucket"), header.Filename, data, header.Header.Get("Content-Type"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"url": url})
	}
}

// DeleteFile removes the object referenced by the url query parameter.
// Unrecognized URLs are ignored, mirroring the storage client.
func DeleteFile(client *supabase.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		url := r.URL.Query().Get("url")
		if url == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "url query parameter is required"))
			return
		}

		if err := client.Delete(ctx, url); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
