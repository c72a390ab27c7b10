package datasethttp

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sir_venger/dataset_lite/internal/models"
	"github.com/sir_venger/dataset_lite/pkg/httperrors"
)

// deleteResp — тело ответа на удаление.
type deleteResp struct {
	Deleted   bool   `json:"deleted"`
	DataSetID string `json:"dataSetId"`
}

// update накладывает патч метаданных и возвращает обновлённую запись.
func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "dataSetID")

	var patch models.MetaPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httperrors.BadRequest(w, "Invalid request")
		return
	}

	updated, err := s.svc.Update(r.Context(), id, patch)
	if err != nil {
		s.log.Error("error updating data set",
			slog.String("data_set_id", id),
			slog.String("error", err.Error()),
		)
		httperrors.Write(w, err, "Error updating data set")
		return
	}
	writeJSON(w, updated)
}

// remove удаляет запись и её размещённый файл.
func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "dataSetID")

	if _, err := s.svc.Delete(r.Context(), id); err != nil {
		s.log.Error("error deleting data set",
			slog.String("data_set_id", id),
			slog.String("error", err.Error()),
		)
		httperrors.Write(w, err, "Error deleting data set")
		return
	}
	writeJSON(w, deleteResp{Deleted: true, DataSetID: id})
}
