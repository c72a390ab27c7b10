// Package httperrors — преобразование ошибок сервиса в JSON-ответы
// формата {"status": "<message>"}.
package httperrors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sir_venger/dataset_lite/internal/models"
)

// statusBody — тело ответа об ошибке.
type statusBody struct {
	Status string `json:"status"`
}

// writeStatus пишет JSON-ответ с указанным кодом и сообщением.
func writeStatus(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(statusBody{Status: message})
}

// Write преобразует ошибку в HTTP-ответ. Для неклассифицированных ошибок
// используется fallback-сообщение (текст самой ошибки наружу не уходит).
func Write(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeStatus(w, http.StatusNotFound, "Not found")
	case errors.Is(err, models.ErrInvalidRequest):
		writeStatus(w, http.StatusBadRequest, "Invalid request")
	case errors.Is(err, models.ErrUploadRejected):
		writeStatus(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrContentType):
		writeStatus(w, http.StatusInternalServerError, "Unable to send image")
	default:
		writeStatus(w, http.StatusInternalServerError, fallback)
	}
}

// Unauthorized — 401 без аутентификации.
func Unauthorized(w http.ResponseWriter) {
	writeStatus(w, http.StatusUnauthorized, "Unauthorized")
}

// BadRequest — 400 с произвольным сообщением.
func BadRequest(w http.ResponseWriter, message string) {
	writeStatus(w, http.StatusBadRequest, message)
}
