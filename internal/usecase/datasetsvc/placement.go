package datasetsvc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sir_venger/dataset_lite/internal/models"
	"github.com/sir_venger/dataset_lite/internal/typereg"
)

// place переносит транзитный файл на постоянный путь <dataFolder>/<id><ext>.
// Расширение выводится для IMAGE из mime через реестр, для BINARY из
// исходного имени файла. Для типов без файла транзитная копия удаляется,
// возвращается пустой путь. Невыводимое расширение у файлового типа —
// отказ размещения: транзитный файл удаляется, путь не создаётся.
func (s *Service) place(up UploadedFile, id string, t models.DataType) (string, error) {
	ext := ""
	switch t {
	case models.TypeImage:
		ext = typereg.Extension(up.MimeType)
	case models.TypeBinary:
		ext = strings.ToLower(filepath.Ext(up.OriginalName))
	case models.TypeTimeSeries, models.TypeJSON:
	}

	if ext == "" {
		s.cleanup(up.Path)
		if t.HasFile() {
			return "", models.UploadRejected("No file extension could be derived")
		}
		return "", nil
	}

	target := filepath.Join(s.DataFolder, id+ext)
	if err := os.Rename(up.Path, target); err != nil {
		return "", fmt.Errorf("place upload: %w", err)
	}
	return target, nil
}
