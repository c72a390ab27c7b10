package datasethttp

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/sir_venger/dataset_lite/internal/models"
	"github.com/sir_venger/dataset_lite/pkg/httperrors"
)

// image отдаёт содержимое изображения. Запись уже найдена и допущена
// шлюзом binaryAccess; здесь остаётся строгая проверка типа IMAGE.
func (s *Server) image(w http.ResponseWriter, r *http.Request) {
	ds, ok := dataSetFromContext(r.Context())
	if !ok {
		httperrors.Write(w, models.ErrNotFound, "Not found")
		return
	}
	if ds.Type != models.TypeImage {
		httperrors.Write(w, models.ErrInvalidRequest, "Invalid request")
		return
	}

	rc, mime, err := s.svc.OpenImage(ds)
	if err != nil {
		s.log.Error("could not serve image",
			slog.String("data_set_id", ds.ID),
			slog.String("error", err.Error()),
		)
		httperrors.Write(w, err, "Unable to send image")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", mime)
	if _, err := io.Copy(w, rc); err != nil {
		s.log.Warn("image stream interrupted", slog.String("data_set_id", ds.ID))
	}
}

// binary отдаёт содержимое файла с сохранённым mime-типом как есть.
func (s *Server) binary(w http.ResponseWriter, r *http.Request) {
	ds, ok := dataSetFromContext(r.Context())
	if !ok {
		httperrors.Write(w, models.ErrNotFound, "Not found")
		return
	}
	if !ds.Type.HasFile() {
		httperrors.Write(w, models.ErrInvalidRequest, "Invalid request")
		return
	}

	rc, mime, err := s.svc.OpenBinary(ds)
	if err != nil {
		s.log.Error("could not serve binary",
			slog.String("data_set_id", ds.ID),
			slog.String("error", err.Error()),
		)
		httperrors.Write(w, err, "Unable to send binary")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", mime)
	if _, err := io.Copy(w, rc); err != nil {
		s.log.Warn("binary stream interrupted", slog.String("data_set_id", ds.ID))
	}
}
