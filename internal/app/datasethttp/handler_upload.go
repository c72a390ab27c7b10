package datasethttp

import (
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/sir_venger/dataset_lite/internal/auth"
	"github.com/sir_venger/dataset_lite/internal/usecase/datasetsvc"
	"github.com/sir_venger/dataset_lite/pkg/httperrors"
)

// maxUploadMemory — буфер разбора multipart form, остальное уходит на диск.
const maxUploadMemory = 32 << 20

// upload принимает multipart-загрузку: ровно один файл в поле "file"
// и JSON-метаданные в поле "meta". Файл сохраняется во временное
// расположение, дальше работает конвейер сервиса.
func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		httperrors.BadRequest(w, "Invalid request")
		return
	}

	rawMeta := r.FormValue("meta")
	if rawMeta == "" {
		httperrors.BadRequest(w, "Invalid request")
		return
	}

	// ровно один файл на загрузку
	if len(r.MultipartForm.File["file"]) > 1 {
		httperrors.BadRequest(w, "Invalid request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httperrors.BadRequest(w, "Invalid request")
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp(s.svc.DataFolder, "upload-*")
	if err != nil {
		s.log.Error("could not create transient upload", slog.String("error", err.Error()))
		httperrors.Write(w, err, "Error uploading data set")
		return
	}
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		httperrors.Write(w, err, "Error uploading data set")
		return
	}
	tmp.Close()

	up := datasetsvc.UploadedFile{
		Path:         tmp.Name(),
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
	}

	created, err := s.svc.Upload(r.Context(), principal.UserID(), []byte(rawMeta), up)
	if err != nil {
		s.log.Error("error creating data set", slog.String("error", err.Error()))
		httperrors.Write(w, err, "Error uploading data set")
		return
	}
	writeJSON(w, created)
}
