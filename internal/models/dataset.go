package models

import (
	"encoding/json"
	"fmt"
)

// DataType перечисляет поддерживаемые виды data set'ов.
type DataType string

const (
	TypeTimeSeries DataType = "TIME_SERIES"
	TypeImage      DataType = "IMAGE"
	TypeJSON       DataType = "JSON"
	TypeBinary     DataType = "BINARY"
)

// AllTypes — полный список типов в порядке объявления.
var AllTypes = []DataType{TypeTimeSeries, TypeImage, TypeJSON, TypeBinary}

// Valid сообщает, входит ли тип в список поддерживаемых.
func (t DataType) Valid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

// HasFile сообщает, хранит ли данный тип файл на диске.
func (t DataType) HasFile() bool {
	return t == TypeImage || t == TypeBinary
}

// Row — одна строка временного ряда. Ячейки типизируются независимо:
// int64, float64 либо исходная строка, если число не распозналось.
type Row []any

// Payload — вариантная часть data set'а. Закрытый интерфейс: конкретный
// вариант однозначно определяется полем Type владеющего DataSet,
// потребители обязаны делать исчерпывающий type switch.
type Payload interface {
	payload()
}

// TimeSeriesPayload — разобранные строки CSV для TIME_SERIES.
type TimeSeriesPayload struct {
	Data []Row `json:"data"`
}

// DocumentPayload — произвольное JSON-дерево для типа JSON.
type DocumentPayload struct {
	Data any `json:"data"`
}

// FilePayload — ссылка на файл для IMAGE и BINARY.
// Пустой TargetFile означает, что размещение файла ещё не завершено
// (или завершилось ошибкой).
type FilePayload struct {
	TargetFile string `json:"targetFile,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	PublicFlag bool   `json:"publicFlag,omitempty"`
}

func (TimeSeriesPayload) payload() {}
func (DocumentPayload) payload()   {}
func (FilePayload) payload()       {}

// DataSet — центральная сущность: один загруженный элемент и его
// типизированный payload. ID назначается хранилищем при создании,
// Type после создания не меняется.
type DataSet struct {
	ID             string   `json:"id,omitempty"`
	Type           DataType `json:"type"`
	Name           string   `json:"name,omitempty"`
	Description    string   `json:"description,omitempty"`
	Assignment     string   `json:"assignment,omitempty"`
	AssignmentType string   `json:"assignmentType,omitempty"`
	UserID         string   `json:"userId,omitempty"`
	Relations      []string `json:"relations,omitempty"`
	Payload        Payload  `json:"payload,omitempty"`
}

// FilePayload возвращает файловый вариант payload'а, если он есть.
func (d DataSet) FilePayload() (FilePayload, bool) {
	fp, ok := d.Payload.(FilePayload)
	return fp, ok
}

// Meta возвращает копию записи без тела payload'а: строки временного ряда
// и JSON-документ отбрасываются, файловые поля (targetFile, mimeType,
// publicFlag) остаются — они нужны для удаления и выдачи файлов.
func (d DataSet) Meta() DataSet {
	meta := d
	switch d.Payload.(type) {
	case TimeSeriesPayload, DocumentPayload:
		meta.Payload = nil
	}
	return meta
}

// dataSetAlias разрывает рекурсию при (де)сериализации.
type dataSetAlias DataSet

type dataSetJSON struct {
	dataSetAlias
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MarshalJSON сериализует DataSet вместе с конкретным вариантом payload'а.
func (d DataSet) MarshalJSON() ([]byte, error) {
	out := dataSetJSON{dataSetAlias: dataSetAlias(d)}
	out.dataSetAlias.Payload = nil
	if d.Payload != nil {
		raw, err := json.Marshal(d.Payload)
		if err != nil {
			return nil, err
		}
		out.Payload = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON восстанавливает вариант payload'а по полю type.
func (d *DataSet) UnmarshalJSON(data []byte) error {
	var in dataSetJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*d = DataSet(in.dataSetAlias)
	d.Payload = nil

	if len(in.Payload) == 0 || string(in.Payload) == "null" {
		return nil
	}

	switch in.Type {
	case TypeTimeSeries:
		var p TimeSeriesPayload
		if err := json.Unmarshal(in.Payload, &p); err != nil {
			return err
		}
		d.Payload = p
	case TypeJSON:
		var p DocumentPayload
		if err := json.Unmarshal(in.Payload, &p); err != nil {
			return err
		}
		d.Payload = p
	case TypeImage, TypeBinary:
		var p FilePayload
		if err := json.Unmarshal(in.Payload, &p); err != nil {
			return err
		}
		d.Payload = p
	default:
		return fmt.Errorf("%w: unknown data set type %q", ErrInvalidRequest, in.Type)
	}
	return nil
}

// MetaPatch — частичное обновление метаданных. nil-поле означает
// «не трогать». ID, тип и файловые поля payload'а через патч не меняются.
type MetaPatch struct {
	Name           *string   `json:"name,omitempty"`
	Description    *string   `json:"description,omitempty"`
	Assignment     *string   `json:"assignment,omitempty"`
	AssignmentType *string   `json:"assignmentType,omitempty"`
	Relations      *[]string `json:"relations,omitempty"`
}

// Apply накладывает патч на запись.
func (p MetaPatch) Apply(ds *DataSet) {
	if p.Name != nil {
		ds.Name = *p.Name
	}
	if p.Description != nil {
		ds.Description = *p.Description
	}
	if p.Assignment != nil {
		ds.Assignment = *p.Assignment
	}
	if p.AssignmentType != nil {
		ds.AssignmentType = *p.AssignmentType
	}
	if p.Relations != nil {
		ds.Relations = append([]string{}, (*p.Relations)...)
	}
}
