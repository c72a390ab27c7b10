package datasetsvc

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/sir_venger/dataset_lite/internal/models"
)

// Update накладывает патч метаданных и возвращает обновлённую запись.
// Тип и файловые поля payload'а через патч не меняются.
func (s *Service) Update(ctx context.Context, id string, patch models.MetaPatch) (models.DataSet, error) {
	if _, err := s.Store.GetMeta(ctx, id); err != nil {
		return models.DataSet{}, err
	}
	if err := s.Store.Update(ctx, id, patch); err != nil {
		return models.DataSet{}, fmt.Errorf("update data set: %w", err)
	}
	return s.Store.GetMeta(ctx, id)
}

// Delete удаляет запись, затем её файл, если он был размещён.
// Шаги не атомарны: если файл удалить не удалось, запись уже
// отсутствует и файл остаётся осиротевшим.
func (s *Service) Delete(ctx context.Context, id string) (models.DataSet, error) {
	existing, err := s.Store.GetMeta(ctx, id)
	if err != nil {
		return models.DataSet{}, err
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		return models.DataSet{}, fmt.Errorf("delete data set: %w", err)
	}

	if fp, ok := existing.FilePayload(); ok && fp.TargetFile != "" {
		if err := os.Remove(fp.TargetFile); err != nil && !os.IsNotExist(err) {
			s.Log.Warn("data file orphaned after record deletion",
				slog.String("data_set_id", id),
				slog.String("target_file", fp.TargetFile),
			)
			return models.DataSet{}, fmt.Errorf("remove data file: %w", err)
		}
	}
	return existing, nil
}
