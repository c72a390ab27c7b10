package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_UnmarshalJSON_PayloadVariants(t *testing.T) {
	req := require.New(t)

	var ts DataSet
	req.NoError(json.Unmarshal([]byte(`{"type":"TIME_SERIES","payload":{"data":[[1,2.5],["foo",3]]}}`), &ts))
	_, ok := ts.Payload.(TimeSeriesPayload)
	req.True(ok, "TIME_SERIES must decode into TimeSeriesPayload")

	var doc DataSet
	req.NoError(json.Unmarshal([]byte(`{"type":"JSON","payload":{"data":{"a":1}}}`), &doc))
	dp, ok := doc.Payload.(DocumentPayload)
	req.True(ok, "JSON must decode into DocumentPayload")
	req.Equal(map[string]any{"a": float64(1)}, dp.Data)

	var img DataSet
	req.NoError(json.Unmarshal([]byte(`{"type":"IMAGE","payload":{"targetFile":"_data/x.png","mimeType":"image/png","publicFlag":true}}`), &img))
	fp, ok := img.Payload.(FilePayload)
	req.True(ok, "IMAGE must decode into FilePayload")
	req.True(fp.PublicFlag)
	req.Equal("_data/x.png", fp.TargetFile)

	var unknown DataSet
	err := json.Unmarshal([]byte(`{"type":"VIDEO","payload":{"data":1}}`), &unknown)
	req.ErrorIs(err, ErrInvalidRequest)
}

func Test_Meta_StripsPayloadBodies(t *testing.T) {
	req := require.New(t)

	ts := DataSet{Type: TypeTimeSeries, Payload: TimeSeriesPayload{Data: []Row{{int64(1)}}}}
	req.Nil(ts.Meta().Payload)

	doc := DataSet{Type: TypeJSON, Payload: DocumentPayload{Data: map[string]any{"a": 1}}}
	req.Nil(doc.Meta().Payload)

	// файловые поля нужны для удаления и выдачи, из меты не пропадают
	img := DataSet{Type: TypeImage, Payload: FilePayload{TargetFile: "_data/x.png", MimeType: "image/png"}}
	fp, ok := img.Meta().FilePayload()
	req.True(ok)
	req.Equal("_data/x.png", fp.TargetFile)
}

func Test_MetaPatch_Apply(t *testing.T) {
	req := require.New(t)

	name := "renamed"
	rels := []string{"other"}
	ds := DataSet{ID: "1", Type: TypeJSON, Name: "orig", Assignment: "a1"}
	patch := MetaPatch{Name: &name, Relations: &rels}
	patch.Apply(&ds)

	req.Equal("renamed", ds.Name)
	req.Equal([]string{"other"}, ds.Relations)
	// незаданные поля не трогаются
	req.Equal("a1", ds.Assignment)
	req.Equal(TypeJSON, ds.Type)
}

func Test_MarshalJSON_RoundTrip(t *testing.T) {
	req := require.New(t)

	in := DataSet{
		ID:      "id-1",
		Type:    TypeBinary,
		UserID:  "user@example.com",
		Payload: FilePayload{TargetFile: "_data/id-1.bin", MimeType: "application/pdf"},
	}
	raw, err := json.Marshal(in)
	req.NoError(err)

	var out DataSet
	req.NoError(json.Unmarshal(raw, &out))
	req.Equal(in, out)
}
