package datasethttp

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sir_venger/dataset_lite/internal/models"
	"github.com/sir_venger/dataset_lite/internal/usecase/datasetsvc"
	"github.com/sir_venger/dataset_lite/pkg/httperrors"
)

// ctxKey — тип для ключей контекста (избегаем коллизий).
type ctxKey string

const dataSetKey ctxKey = "current_data_set"

// binaryAccess — шлюз доступа к файловым endpoint'ам. Находит запись,
// отсекает несуществующие (404) и нефайловые (400), затем решает:
// публичная выдача (глобальная настройка или publicFlag записи) либо
// передача запроса через auth gate.
func (s *Server) binaryAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "dataSetID")

		ds, err := s.svc.Get(r.Context(), id)
		if err != nil {
			httperrors.Write(w, err, "Error loading data set")
			return
		}

		r = r.WithContext(context.WithValue(r.Context(), dataSetKey, ds))

		switch datasetsvc.Decide(ds, s.allowPublic) {
		case datasetsvc.AccessInvalid:
			httperrors.Write(w, models.ErrInvalidRequest, "Invalid request")
		case datasetsvc.AccessPublic:
			next.ServeHTTP(w, r)
		case datasetsvc.AccessAuth:
			s.auth(next).ServeHTTP(w, r)
		}
	})
}

// dataSetFromContext достаёт запись, положенную шлюзом binaryAccess.
func dataSetFromContext(ctx context.Context) (models.DataSet, bool) {
	ds, ok := ctx.Value(dataSetKey).(models.DataSet)
	return ds, ok
}
