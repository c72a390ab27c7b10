package datasetsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gabriel-vasile/mimetype"

	"github.com/sir_venger/dataset_lite/internal/models"
	"github.com/sir_venger/dataset_lite/internal/typereg"
)

// Upload — конвейер приёма загрузки: разбор метаданных, типозависимая
// обработка payload'а, создание записи, размещение файла и фиксация
// его пути. На любом отказе до создания записи транзитный файл
// гарантированно удаляется.
func (s *Service) Upload(ctx context.Context, userID string, rawMeta []byte, up UploadedFile) (models.DataSet, error) {
	var ds models.DataSet
	if err := json.Unmarshal(rawMeta, &ds); err != nil {
		s.cleanup(up.Path)
		return models.DataSet{}, fmt.Errorf("%w: malformed meta document", models.ErrInvalidRequest)
	}
	if !ds.Type.Valid() {
		s.cleanup(up.Path)
		return models.DataSet{}, fmt.Errorf("%w: unknown data set type %q", models.ErrInvalidRequest, ds.Type)
	}

	// id назначает хранилище, userId берётся из аутентификации,
	// клиентские значения этих полей игнорируются.
	ds.ID = ""
	ds.UserID = userID

	if up.MimeType == "" {
		// multipart-часть без Content-Type: определяем mime по содержимому
		if mt, err := mimetype.DetectFile(up.Path); err == nil {
			up.MimeType = mt.String()
		}
	}

	switch ds.Type {
	case models.TypeTimeSeries:
		f, err := os.Open(up.Path)
		if err != nil {
			s.cleanup(up.Path)
			return models.DataSet{}, fmt.Errorf("open upload: %w", err)
		}
		rows, err := parseTimeSeries(f)
		f.Close()
		if err != nil {
			s.cleanup(up.Path)
			return models.DataSet{}, fmt.Errorf("read time series: %w", err)
		}
		ds.Payload = models.TimeSeriesPayload{Data: rows}

	case models.TypeImage:
		if !typereg.Known(up.MimeType) {
			s.cleanup(up.Path)
			return models.DataSet{}, models.UploadRejected("Could not recognise mime type of image")
		}
		fp, _ := ds.FilePayload()
		ds.Payload = fp

	case models.TypeJSON:
		raw, err := os.ReadFile(up.Path)
		if err != nil {
			s.cleanup(up.Path)
			return models.DataSet{}, fmt.Errorf("read upload: %w", err)
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			s.cleanup(up.Path)
			return models.DataSet{}, fmt.Errorf("%w: malformed json payload", models.ErrInvalidRequest)
		}
		ds.Payload = models.DocumentPayload{Data: doc}

	case models.TypeBinary:
		// содержимое не трансформируется, файл идёт на размещение как есть
		fp, _ := ds.FilePayload()
		ds.Payload = fp
	}

	id, err := s.Store.Create(ctx, ds)
	if err != nil {
		s.cleanup(up.Path)
		return models.DataSet{}, fmt.Errorf("create data set: %w", err)
	}

	// Отказ размещения после создания записи оставляет запись без
	// targetFile — окно несогласованности компенсирующим удалением
	// не закрывается, это осознанное поведение.
	target, err := s.place(up, id, ds.Type)
	if err != nil {
		return models.DataSet{}, err
	}
	if target != "" {
		if err := s.Store.UpdateTargetFile(ctx, id, target, up.MimeType); err != nil {
			return models.DataSet{}, fmt.Errorf("finalize target file: %w", err)
		}
	}

	return s.Store.GetMeta(ctx, id)
}
