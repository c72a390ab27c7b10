package datasethttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sir_venger/dataset_lite/internal/models"
	"github.com/sir_venger/dataset_lite/internal/usecase/datasetsvc"
	"github.com/sir_venger/dataset_lite/pkg/httperrors"
)

// list отдаёт метаданные с необязательными фильтрами
// assignment / assignmentType / dataType.
func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := datasetsvc.ListFilter{
		Assignment:     q.Get("assignment"),
		AssignmentType: q.Get("assignmentType"),
		DataType:       q.Get("dataType"),
	}

	sets, err := s.svc.List(r.Context(), filter)
	if err != nil {
		httperrors.Write(w, err, "Error retrieving data sets")
		return
	}
	if sets == nil {
		sets = []models.DataSet{}
	}
	writeJSON(w, sets)
}

// meta отдаёт метаданные одной записи.
func (s *Server) meta(w http.ResponseWriter, r *http.Request) {
	ds, err := s.svc.Meta(r.Context(), chi.URLParam(r, "dataSetID"))
	if err != nil {
		httperrors.Write(w, err, "Error retrieving data set")
		return
	}
	writeJSON(w, ds)
}

// get отдаёт полную запись вместе с payload'ом.
func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	ds, err := s.svc.Get(r.Context(), chi.URLParam(r, "dataSetID"))
	if err != nil {
		httperrors.Write(w, err, "Error loading data set")
		return
	}
	writeJSON(w, ds)
}

// relations отдаёт записи, связанные с указанной.
func (s *Server) relations(w http.ResponseWriter, r *http.Request) {
	sets, err := s.svc.Relations(r.Context(), chi.URLParam(r, "dataSetID"))
	if err != nil {
		httperrors.Write(w, err, "Error loading data set relations")
		return
	}
	if sets == nil {
		sets = []models.DataSet{}
	}
	writeJSON(w, sets)
}
