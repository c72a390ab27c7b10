package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/sir_venger/dataset_lite/internal/models"
)

const badgerKeyPrefix = "dataset:"

// BadgerStore — встроенное документное хранилище поверх BadgerDB.
// Каждая запись лежит под ключом "dataset:<id>" как JSON-документ.
type BadgerStore struct {
	db  *badger.DB
	log *slog.Logger
}

// OpenBadger открывает (или создаёт) базу в указанном каталоге.
func OpenBadger(path string, log *slog.Logger) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return &BadgerStore{
		db:  db,
		log: log.With(slog.String("component", "badger_store")),
	}, nil
}

// Close закрывает базу.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

var _ Store = (*BadgerStore)(nil)

func badgerKey(id string) []byte {
	return []byte(badgerKeyPrefix + id)
}

// Create сохраняет запись под новым id.
func (s *BadgerStore) Create(_ context.Context, ds models.DataSet) (string, error) {
	ds.ID = uuid.NewString()
	raw, err := json.Marshal(ds)
	if err != nil {
		return "", fmt.Errorf("marshal data set: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(ds.ID), raw)
	})
	if err != nil {
		return "", fmt.Errorf("store data set: %w", err)
	}
	return ds.ID, nil
}

// Get возвращает полную запись по id.
func (s *BadgerStore) Get(_ context.Context, id string) (models.DataSet, error) {
	var ds models.DataSet
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			return json.Unmarshal(v, &ds)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.DataSet{}, models.ErrNotFound
	}
	if err != nil {
		return models.DataSet{}, fmt.Errorf("load data set %s: %w", id, err)
	}
	return ds, nil
}

// GetMeta возвращает запись без тела payload'а.
func (s *BadgerStore) GetMeta(ctx context.Context, id string) (models.DataSet, error) {
	ds, err := s.Get(ctx, id)
	if err != nil {
		return models.DataSet{}, err
	}
	return ds.Meta(), nil
}

// mutate выполняет read-modify-write одной записи в одной транзакции.
func (s *BadgerStore) mutate(id string, fn func(*models.DataSet) error) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(id))
		if err != nil {
			return err
		}
		var ds models.DataSet
		if err := item.Value(func(v []byte) error {
			return json.Unmarshal(v, &ds)
		}); err != nil {
			return err
		}
		if err := fn(&ds); err != nil {
			return err
		}
		raw, err := json.Marshal(ds)
		if err != nil {
			return err
		}
		return txn.Set(badgerKey(id), raw)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.ErrNotFound
	}
	return err
}

// UpdateTargetFile фиксирует путь и mime размещённого файла.
func (s *BadgerStore) UpdateTargetFile(_ context.Context, id, targetFile, mimeType string) error {
	return s.mutate(id, func(ds *models.DataSet) error {
		if !ds.Type.HasFile() {
			return models.ErrInvalidRequest
		}
		fp, _ := ds.FilePayload()
		fp.TargetFile = targetFile
		fp.MimeType = mimeType
		ds.Payload = fp
		return nil
	})
}

// Update накладывает патч метаданных.
func (s *BadgerStore) Update(_ context.Context, id string, patch models.MetaPatch) error {
	return s.mutate(id, func(ds *models.DataSet) error {
		patch.Apply(ds)
		return nil
	})
}

// Delete удаляет запись.
func (s *BadgerStore) Delete(_ context.Context, id string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(badgerKey(id)); err != nil {
			return err
		}
		return txn.Delete(badgerKey(id))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.ErrNotFound
	}
	return err
}

// find сканирует все записи и возвращает метаданные прошедших предикат.
func (s *BadgerStore) find(pred func(models.DataSet) bool) ([]models.DataSet, error) {
	var out []models.DataSet
	prefix := []byte(badgerKeyPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var ds models.DataSet
			err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &ds)
			})
			if err != nil {
				return fmt.Errorf("decode data set: %w", err)
			}
			if pred(ds) {
				out = append(out, ds.Meta())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BadgerStore) FindByAssignmentAndType(_ context.Context, assignment string, dataType models.DataType) ([]models.DataSet, error) {
	return s.find(func(ds models.DataSet) bool {
		return ds.Assignment == assignment && ds.Type == dataType
	})
}

func (s *BadgerStore) FindByAssignmentType(_ context.Context, assignment, assignmentType string) ([]models.DataSet, error) {
	return s.find(func(ds models.DataSet) bool {
		return ds.Assignment == assignment && ds.AssignmentType == assignmentType
	})
}

func (s *BadgerStore) FindByAssignment(_ context.Context, assignment string) ([]models.DataSet, error) {
	return s.find(func(ds models.DataSet) bool {
		return ds.Assignment == assignment
	})
}

func (s *BadgerStore) FindByType(_ context.Context, dataType models.DataType) ([]models.DataSet, error) {
	return s.find(func(ds models.DataSet) bool {
		return ds.Type == dataType
	})
}

func (s *BadgerStore) AllMeta(_ context.Context) ([]models.DataSet, error) {
	return s.find(func(models.DataSet) bool { return true })
}

func (s *BadgerStore) FindByRelation(_ context.Context, id string) ([]models.DataSet, error) {
	return s.find(func(ds models.DataSet) bool {
		return lo.Contains(ds.Relations, id)
	})
}
