package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sir_venger/dataset_lite/internal/models"
)

const dataSetsTable = "data_sets"

// psql — билдер запросов с $-плейсхолдерами Postgres.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PGStore сохраняет data set'ы в Postgres: фильтруемые поля лежат в
// отдельных колонках, вся запись целиком — в JSONB-колонке doc.
type PGStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres создаёт пул подключений к Postgres.
func OpenPostgres(ctx context.Context, dsn string) (*PGStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("meta dsn is empty")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	return &PGStore{pool: pool}, nil
}

// Close освобождает подключения пула.
func (s *PGStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

var _ Store = (*PGStore)(nil)

// Create сохраняет новую запись и возвращает назначенный id.
func (s *PGStore) Create(ctx context.Context, ds models.DataSet) (string, error) {
	ds.ID = uuid.NewString()

	doc, err := json.Marshal(ds)
	if err != nil {
		return "", fmt.Errorf("marshal data set: %w", err)
	}

	sqlStr, args, err := psql.
		Insert(dataSetsTable).
		Columns("id", "type", "assignment", "assignment_type", "doc").
		Values(ds.ID, string(ds.Type), ds.Assignment, ds.AssignmentType, doc).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.pool.Exec(ctx, sqlStr, args...); err != nil {
		return "", fmt.Errorf("exec insert: %w", err)
	}
	return ds.ID, nil
}

// Get возвращает полную запись по id.
func (s *PGStore) Get(ctx context.Context, id string) (models.DataSet, error) {
	sqlStr, args, err := psql.
		Select("doc").
		From(dataSetsTable).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return models.DataSet{}, fmt.Errorf("build select: %w", err)
	}

	var doc []byte
	if err := s.pool.QueryRow(ctx, sqlStr, args...).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.DataSet{}, models.ErrNotFound
		}
		return models.DataSet{}, fmt.Errorf("scan data set row: %w", err)
	}

	var ds models.DataSet
	if err := json.Unmarshal(doc, &ds); err != nil {
		return models.DataSet{}, fmt.Errorf("unmarshal data set: %w", err)
	}
	if ds.ID == "" {
		ds.ID = id
	}
	return ds, nil
}

// GetMeta возвращает запись без тела payload'а.
func (s *PGStore) GetMeta(ctx context.Context, id string) (models.DataSet, error) {
	ds, err := s.Get(ctx, id)
	if err != nil {
		return models.DataSet{}, err
	}
	return ds.Meta(), nil
}

// save перезаписывает doc и фильтруемые колонки существующей записи.
func (s *PGStore) save(ctx context.Context, tx pgx.Tx, ds models.DataSet) error {
	doc, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("marshal data set: %w", err)
	}

	sqlStr, args, err := psql.
		Update(dataSetsTable).
		Set("assignment", ds.Assignment).
		Set("assignment_type", ds.AssignmentType).
		Set("doc", doc).
		Where(sq.Eq{"id": ds.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := tx.Exec(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("exec update: %w", err)
	}
	return nil
}

// mutate выполняет read-modify-write записи в одной транзакции
// с блокировкой строки.
func (s *PGStore) mutate(ctx context.Context, id string, fn func(*models.DataSet) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var doc []byte
	row := tx.QueryRow(ctx,
		fmt.Sprintf("SELECT doc FROM %s WHERE id = $1 FOR UPDATE", dataSetsTable), id)
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrNotFound
		}
		return fmt.Errorf("scan data set row: %w", err)
	}

	var ds models.DataSet
	if err := json.Unmarshal(doc, &ds); err != nil {
		return fmt.Errorf("unmarshal data set: %w", err)
	}
	if ds.ID == "" {
		ds.ID = id
	}

	if err := fn(&ds); err != nil {
		return err
	}
	if err := s.save(ctx, tx, ds); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UpdateTargetFile фиксирует путь и mime размещённого файла.
func (s *PGStore) UpdateTargetFile(ctx context.Context, id, targetFile, mimeType string) error {
	return s.mutate(ctx, id, func(ds *models.DataSet) error {
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
func (s *PGStore) Update(ctx context.Context, id string, patch models.MetaPatch) error {
	return s.mutate(ctx, id, func(ds *models.DataSet) error {
		patch.Apply(ds)
		return nil
	})
}

// Delete удаляет запись.
func (s *PGStore) Delete(ctx context.Context, id string) error {
	sqlStr, args, err := psql.
		Delete(dataSetsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := s.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("exec delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// query выполняет select doc с произвольным предикатом и возвращает
// метаданные найденных записей.
func (s *PGStore) query(ctx context.Context, where any, args ...any) ([]models.DataSet, error) {
	builder := psql.Select("doc").From(dataSetsTable)
	if where != nil {
		builder = builder.Where(where, args...)
	}

	sqlStr, sqlArgs, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.pool.Query(ctx, sqlStr, sqlArgs...)
	if err != nil {
		return nil, fmt.Errorf("query data sets: %w", err)
	}
	defer rows.Close()

	var out []models.DataSet
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan data set row: %w", err)
		}
		var ds models.DataSet
		if err := json.Unmarshal(doc, &ds); err != nil {
			return nil, fmt.Errorf("unmarshal data set: %w", err)
		}
		out = append(out, ds.Meta())
	}
	return out, rows.Err()
}

func (s *PGStore) FindByAssignmentAndType(ctx context.Context, assignment string, dataType models.DataType) ([]models.DataSet, error) {
	return s.query(ctx, sq.Eq{"assignment": assignment, "type": string(dataType)})
}

func (s *PGStore) FindByAssignmentType(ctx context.Context, assignment, assignmentType string) ([]models.DataSet, error) {
	return s.query(ctx, sq.Eq{"assignment": assignment, "assignment_type": assignmentType})
}

func (s *PGStore) FindByAssignment(ctx context.Context, assignment string) ([]models.DataSet, error) {
	return s.query(ctx, sq.Eq{"assignment": assignment})
}

func (s *PGStore) FindByType(ctx context.Context, dataType models.DataType) ([]models.DataSet, error) {
	return s.query(ctx, sq.Eq{"type": string(dataType)})
}

func (s *PGStore) AllMeta(ctx context.Context) ([]models.DataSet, error) {
	return s.query(ctx, nil)
}

func (s *PGStore) FindByRelation(ctx context.Context, id string) ([]models.DataSet, error) {
	ref, err := json.Marshal([]string{id})
	if err != nil {
		return nil, err
	}
	return s.query(ctx, sq.Expr("doc->'relations' @> ?", ref))
}
