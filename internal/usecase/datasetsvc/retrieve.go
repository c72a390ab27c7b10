package datasetsvc

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sir_venger/dataset_lite/internal/models"
	"github.com/sir_venger/dataset_lite/internal/typereg"
)

// ListFilter — необязательные фильтры списка; пустая строка = не задан.
type ListFilter struct {
	Assignment     string
	AssignmentType string
	DataType       string
}

// List выбирает метаданные по фильтрам. Предикаты взаимоисключающие,
// выигрывает первый подходящий: (assignment и dataType) →
// (assignment и assignmentType) → assignment → dataType → все записи.
func (s *Service) List(ctx context.Context, f ListFilter) ([]models.DataSet, error) {
	switch {
	case f.Assignment != "" && f.DataType != "":
		return s.Store.FindByAssignmentAndType(ctx, f.Assignment, models.DataType(f.DataType))
	case f.Assignment != "" && f.AssignmentType != "":
		return s.Store.FindByAssignmentType(ctx, f.Assignment, f.AssignmentType)
	case f.Assignment != "":
		return s.Store.FindByAssignment(ctx, f.Assignment)
	case f.DataType != "":
		return s.Store.FindByType(ctx, models.DataType(f.DataType))
	default:
		return s.Store.AllMeta(ctx)
	}
}

// Meta возвращает метаданные записи.
func (s *Service) Meta(ctx context.Context, id string) (models.DataSet, error) {
	return s.Store.GetMeta(ctx, id)
}

// Get возвращает полную запись вместе с payload'ом.
func (s *Service) Get(ctx context.Context, id string) (models.DataSet, error) {
	return s.Store.Get(ctx, id)
}

// Relations возвращает записи, связанные с указанной. Запрос связей
// выполняется только если сама запись существует.
func (s *Service) Relations(ctx context.Context, id string) ([]models.DataSet, error) {
	if _, err := s.Store.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.Store.FindByRelation(ctx, id)
}

// OpenImage открывает файл изображения и определяет content type:
// сначала сохранённый mime, затем legacy-фоллбек по суффиксу пути.
// Неопределимый mime — внутренняя ошибка, файл не отдаётся.
func (s *Service) OpenImage(ds models.DataSet) (io.ReadCloser, string, error) {
	if ds.Type != models.TypeImage {
		return nil, "", models.ErrInvalidRequest
	}
	fp, ok := ds.FilePayload()
	if !ok || fp.TargetFile == "" {
		return nil, "", fmt.Errorf("data set %s has no placed file", ds.ID)
	}

	mime := fp.MimeType
	if mime == "" {
		mime = typereg.MimeForPath(fp.TargetFile)
	}
	if mime == "" {
		return nil, "", models.ErrContentType
	}

	f, err := os.Open(fp.TargetFile)
	if err != nil {
		return nil, "", fmt.Errorf("open image file: %w", err)
	}
	return f, mime, nil
}

// OpenBinary открывает файл записи и возвращает сохранённый mime как есть
// (фоллбека для BINARY нет).
func (s *Service) OpenBinary(ds models.DataSet) (io.ReadCloser, string, error) {
	if !ds.Type.HasFile() {
		return nil, "", models.ErrInvalidRequest
	}
	fp, ok := ds.FilePayload()
	if !ok || fp.TargetFile == "" {
		return nil, "", fmt.Errorf("data set %s has no placed file", ds.ID)
	}

	f, err := os.Open(fp.TargetFile)
	if err != nil {
		return nil, "", fmt.Errorf("open binary file: %w", err)
	}
	return f, fp.MimeType, nil
}
