// Package datasetsvc — прикладная логика data set API: приём загрузок,
// разбор типизированных payload'ов, размещение файлов и выборки.
package datasetsvc

import (
	"log/slog"
	"os"

	"github.com/sir_venger/dataset_lite/internal/repo"
)

// UploadedFile описывает файл, принятый во временное расположение.
type UploadedFile struct {
	// Path — транзитный путь файла внутри каталога данных.
	Path string
	// OriginalName — имя файла на стороне клиента.
	OriginalName string
	// MimeType — mime из multipart-части; может быть пуст.
	MimeType string
}

// Deps — зависимости сервиса.
type Deps struct {
	Store      repo.Store
	DataFolder string
	Log        *slog.Logger
}

// Service реализует конвейер загрузки и операции чтения/изменения.
type Service struct {
	Deps
}

// New конструирует сервис с заданными зависимостями.
func New(deps Deps) *Service {
	return &Service{Deps: deps}
}

// cleanup удаляет транзитный файл; ошибка удаления только логируется,
// на исход запроса она не влияет.
func (s *Service) cleanup(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.Log.Warn("failed to remove transient upload",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}
