package repo

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/sir_venger/dataset_lite/internal/models"
)

// MemoryStore хранит записи только в оперативной памяти; удобно для тестов.
type MemoryStore struct {
	mu   sync.RWMutex
	sets map[string]models.DataSet
}

// NewMemoryStore создаёт пустое in-memory хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sets: map[string]models.DataSet{}}
}

var _ Store = (*MemoryStore)(nil)

// cloneDataSet копирует запись через JSON, чтобы не делиться срезами
// и вложенными структурами payload'а с вызывающим кодом.
func cloneDataSet(ds models.DataSet) models.DataSet {
	raw, err := json.Marshal(ds)
	if err != nil {
		return ds
	}
	var out models.DataSet
	if err := json.Unmarshal(raw, &out); err != nil {
		return ds
	}
	return out
}

// Create сохраняет запись и возвращает назначенный id.
func (s *MemoryStore) Create(_ context.Context, ds models.DataSet) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds.ID = uuid.NewString()
	s.sets[ds.ID] = cloneDataSet(ds)
	return ds.ID, nil
}

// Get возвращает полную запись по id.
func (s *MemoryStore) Get(_ context.Context, id string) (models.DataSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.sets[id]
	if !ok {
		return models.DataSet{}, models.ErrNotFound
	}
	return cloneDataSet(ds), nil
}

// GetMeta возвращает запись без тела payload'а.
func (s *MemoryStore) GetMeta(ctx context.Context, id string) (models.DataSet, error) {
	ds, err := s.Get(ctx, id)
	if err != nil {
		return models.DataSet{}, err
	}
	return ds.Meta(), nil
}

// UpdateTargetFile фиксирует путь и mime размещённого файла.
func (s *MemoryStore) UpdateTargetFile(_ context.Context, id, targetFile, mimeType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.sets[id]
	if !ok {
		return models.ErrNotFound
	}
	if !ds.Type.HasFile() {
		return models.ErrInvalidRequest
	}
	fp, _ := ds.FilePayload()
	fp.TargetFile = targetFile
	fp.MimeType = mimeType
	ds.Payload = fp
	s.sets[id] = ds
	return nil
}

// Update накладывает патч метаданных.
func (s *MemoryStore) Update(_ context.Context, id string, patch models.MetaPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.sets[id]
	if !ok {
		return models.ErrNotFound
	}
	patch.Apply(&ds)
	s.sets[id] = ds
	return nil
}

// Delete удаляет запись.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sets[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.sets, id)
	return nil
}

// find возвращает метаданные записей, прошедших предикат.
func (s *MemoryStore) find(pred func(models.DataSet) bool) []models.DataSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := lo.Filter(lo.Values(s.sets), func(ds models.DataSet, _ int) bool {
		return pred(ds)
	})
	return lo.Map(matched, func(ds models.DataSet, _ int) models.DataSet {
		return cloneDataSet(ds).Meta()
	})
}

func (s *MemoryStore) FindByAssignmentAndType(_ context.Context, assignment string, dataType models.DataType) ([]models.DataSet, error) {
	return s.find(func(ds models.DataSet) bool {
		return ds.Assignment == assignment && ds.Type == dataType
	}), nil
}

func (s *MemoryStore) FindByAssignmentType(_ context.Context, assignment, assignmentType string) ([]models.DataSet, error) {
	return s.find(func(ds models.DataSet) bool {
		return ds.Assignment == assignment && ds.AssignmentType == assignmentType
	}), nil
}

func (s *MemoryStore) FindByAssignment(_ context.Context, assignment string) ([]models.DataSet, error) {
	return s.find(func(ds models.DataSet) bool {
		return ds.Assignment == assignment
	}), nil
}

func (s *MemoryStore) FindByType(_ context.Context, dataType models.DataType) ([]models.DataSet, error) {
	return s.find(func(ds models.DataSet) bool {
		return ds.Type == dataType
	}), nil
}

func (s *MemoryStore) AllMeta(_ context.Context) ([]models.DataSet, error) {
	return s.find(func(models.DataSet) bool { return true }), nil
}

func (s *MemoryStore) FindByRelation(_ context.Context, id string) ([]models.DataSet, error) {
	return s.find(func(ds models.DataSet) bool {
		return lo.Contains(ds.Relations, id)
	}), nil
}
