package datasethttp

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sir_venger/dataset_lite/internal/usecase/datasetsvc"
)

// Middleware — внедряемый auth gate: обычный http middleware, который
// либо пропускает запрос дальше, либо сам отвечает отказом.
type Middleware func(http.Handler) http.Handler

// Options — настройки маршрутного слоя.
type Options struct {
	// APIPrefix — префикс маршрутов; пустая строка = /api/data-sets.
	APIPrefix string
	// AllowPublicBinaryAccess — глобально разрешить выдачу файлов
	// без аутентификации.
	AllowPublicBinaryAccess bool
}

// Server — обработчики Data Set API.
type Server struct {
	svc         *datasetsvc.Service
	auth        Middleware
	prefix      string
	allowPublic bool
	log         *slog.Logger
}

// NewServer собирает маршрутный слой поверх сервиса и auth gate.
func NewServer(svc *datasetsvc.Service, auth Middleware, opts Options, log *slog.Logger) *Server {
	prefix := opts.APIPrefix
	if prefix == "" {
		prefix = "/api/data-sets"
	}
	return &Server{
		svc:         svc,
		auth:        auth,
		prefix:      prefix,
		allowPublic: opts.AllowPublicBinaryAccess,
		log:         log.With(slog.String("component", "dataset_http")),
	}
}

// Handler возвращает готовый http.Handler с собственным роутером.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Mount(r)
	return r
}

// Mount регистрирует маршруты на уже существующем роутере хост-приложения.
func (s *Server) Mount(r chi.Router) {
	r.Route(s.prefix, func(pr chi.Router) {
		pr.Group(func(gr chi.Router) {
			gr.Use(s.auth)
			gr.Get("/", s.list)
			gr.Post("/", s.upload)
			gr.Get("/{dataSetID}", s.get)
			gr.Post("/{dataSetID}", s.update)
			gr.Delete("/{dataSetID}", s.remove)
			gr.Get("/{dataSetID}/meta", s.meta)
			gr.Get("/{dataSetID}/relations", s.relations)
		})
		pr.Group(func(gr chi.Router) {
			gr.Use(s.binaryAccess)
			gr.Get("/{dataSetID}/image", s.image)
			gr.Get("/{dataSetID}/binary", s.binary)
		})
	})
}

// writeJSON сериализует успешный ответ.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
