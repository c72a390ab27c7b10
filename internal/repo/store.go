// Package repo — хранилище data set'ов. Интерфейс Store внедряется в
// маршрутный слой снаружи; в комплекте три реализации: BadgerDB
// (встроенная, по умолчанию), Postgres и in-memory для тестов.
package repo

import (
	"context"

	"github.com/sir_venger/dataset_lite/internal/models"
)

// Store описывает контракт хранилища data set'ов. Все методы выборки
// списков возвращают записи без тел payload'ов (метаданные); порядок
// записей определяется хранилищем, слой выше его не фиксирует.
type Store interface {
	// Create сохраняет новую запись и возвращает назначенный id.
	Create(ctx context.Context, ds models.DataSet) (string, error)
	// Get возвращает полную запись вместе с payload'ом.
	Get(ctx context.Context, id string) (models.DataSet, error)
	// GetMeta возвращает запись без тела payload'а.
	GetMeta(ctx context.Context, id string) (models.DataSet, error)
	// UpdateTargetFile фиксирует окончательный путь и mime файла
	// после размещения.
	UpdateTargetFile(ctx context.Context, id, targetFile, mimeType string) error
	// Update накладывает патч метаданных на существующую запись.
	Update(ctx context.Context, id string, patch models.MetaPatch) error
	// Delete удаляет запись.
	Delete(ctx context.Context, id string) error

	FindByAssignmentAndType(ctx context.Context, assignment string, dataType models.DataType) ([]models.DataSet, error)
	FindByAssignmentType(ctx context.Context, assignment, assignmentType string) ([]models.DataSet, error)
	FindByAssignment(ctx context.Context, assignment string) ([]models.DataSet, error)
	FindByType(ctx context.Context, dataType models.DataType) ([]models.DataSet, error)
	AllMeta(ctx context.Context) ([]models.DataSet, error)
	// FindByRelation возвращает записи, ссылающиеся на указанный id.
	FindByRelation(ctx context.Context, id string) ([]models.DataSet, error)
}
