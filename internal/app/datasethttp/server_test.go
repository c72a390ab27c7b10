package datasethttp

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sir_venger/dataset_lite/internal/auth"
	"github.com/sir_venger/dataset_lite/internal/models"
	"github.com/sir_venger/dataset_lite/internal/repo"
	"github.com/sir_venger/dataset_lite/internal/usecase/datasetsvc"
	"github.com/sir_venger/dataset_lite/pkg/httperrors"
)

const testToken = "Bearer test-token"

// fakeAuth пропускает только запросы с тестовым токеном, подменяя
// полноценный JWT gate.
func fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != testToken {
			httperrors.Unauthorized(w)
			return
		}
		p := auth.Principal{Email: "alice@example.com", Username: "alice"}
		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
	})
}

func newTestAPI(t *testing.T, store repo.Store, allowPublic bool) (http.Handler, *datasetsvc.Service) {
	t.Helper()
	svc := datasetsvc.New(datasetsvc.Deps{
		Store:      store,
		DataFolder: t.TempDir(),
		Log:        slog.Default(),
	})
	srv := NewServer(svc, fakeAuth, Options{
		AllowPublicBinaryAccess: allowPublic,
	}, slog.Default())
	return srv.Handler(), svc
}

func doReq(h http.Handler, method, path string, withAuth bool) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, nil)
	if withAuth {
		r.Header.Set("Authorization", testToken)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

// seedFileRecord кладёт в хранилище запись файлового типа с уже
// размещённым файлом.
func seedFileRecord(t *testing.T, store repo.Store, svc *datasetsvc.Service, dt models.DataType, public bool) (string, string) {
	t.Helper()
	target := filepath.Join(svc.DataFolder, "seed.png")
	require.NoError(t, os.WriteFile(target, []byte("png bytes"), 0o644))

	id, err := store.Create(context.Background(), models.DataSet{
		Type: dt,
		Payload: models.FilePayload{
			TargetFile: target,
			MimeType:   "image/png",
			PublicFlag: public,
		},
	})
	require.NoError(t, err)
	return id, target
}

func Test_Routes_RequireAuth(t *testing.T) {
	h, _ := newTestAPI(t, repo.NewMemoryStore(), false)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/data-sets/"},
		{http.MethodPost, "/api/data-sets/"},
		{http.MethodGet, "/api/data-sets/some-id"},
		{http.MethodPost, "/api/data-sets/some-id"},
		{http.MethodDelete, "/api/data-sets/some-id"},
		{http.MethodGet, "/api/data-sets/some-id/meta"},
		{http.MethodGet, "/api/data-sets/some-id/relations"},
	}
	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			w := doReq(h, p.method, p.path, false)
			require.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func Test_List_EmptyStore(t *testing.T) {
	req := require.New(t)
	h, _ := newTestAPI(t, repo.NewMemoryStore(), false)

	w := doReq(h, http.MethodGet, "/api/data-sets/", true)
	req.Equal(http.StatusOK, w.Code)
	// пустой список сериализуется как [], не null
	req.Equal("[]", strings.TrimSpace(w.Body.String()))
}

// recordingStore фиксирует, какой метод выборки был вызван.
type recordingStore struct {
	repo.Store
	called string
}

func (r *recordingStore) FindByAssignmentAndType(ctx context.Context, assignment string, dt models.DataType) ([]models.DataSet, error) {
	r.called = "FindByAssignmentAndType"
	return r.Store.FindByAssignmentAndType(ctx, assignment, dt)
}

func (r *recordingStore) FindByAssignmentType(ctx context.Context, assignment, assignmentType string) ([]models.DataSet, error) {
	r.called = "FindByAssignmentType"
	return r.Store.FindByAssignmentType(ctx, assignment, assignmentType)
}

func (r *recordingStore) FindByAssignment(ctx context.Context, assignment string) ([]models.DataSet, error) {
	r.called = "FindByAssignment"
	return r.Store.FindByAssignment(ctx, assignment)
}

func (r *recordingStore) FindByType(ctx context.Context, dt models.DataType) ([]models.DataSet, error) {
	r.called = "FindByType"
	return r.Store.FindByType(ctx, dt)
}

func (r *recordingStore) AllMeta(ctx context.Context) ([]models.DataSet, error) {
	r.called = "AllMeta"
	return r.Store.AllMeta(ctx)
}

func Test_List_FilterPrecedence(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"?assignment=a1&dataType=IMAGE", "FindByAssignmentAndType"},
		{"?assignment=a1&dataType=IMAGE&assignmentType=report", "FindByAssignmentAndType"},
		{"?assignment=a1&assignmentType=report", "FindByAssignmentType"},
		{"?assignment=a1", "FindByAssignment"},
		{"?dataType=IMAGE", "FindByType"},
		{"?assignmentType=report", "AllMeta"},
		{"", "AllMeta"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			store := &recordingStore{Store: repo.NewMemoryStore()}
			h, _ := newTestAPI(t, store, false)

			w := doReq(h, http.MethodGet, "/api/data-sets/"+tt.query, true)
			require.Equal(t, http.StatusOK, w.Code)
			require.Equal(t, tt.want, store.called)
		})
	}
}

func Test_Get_NotFound(t *testing.T) {
	h, _ := newTestAPI(t, repo.NewMemoryStore(), false)

	for _, path := range []string{
		"/api/data-sets/no-such-id",
		"/api/data-sets/no-such-id/meta",
		"/api/data-sets/no-such-id/relations",
	} {
		t.Run(path, func(t *testing.T) {
			w := doReq(h, http.MethodGet, path, true)
			require.Equal(t, http.StatusNotFound, w.Code)
			require.JSONEq(t, `{"status":"Not found"}`, w.Body.String())
		})
	}
}

func Test_Upload_TimeSeriesEndToEnd(t *testing.T) {
	req := require.New(t)
	h, _ := newTestAPI(t, repo.NewMemoryStore(), false)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	req.NoError(mw.WriteField("meta", `{"type":"TIME_SERIES","name":"series","assignment":"a1"}`))
	part, err := mw.CreateFormFile("file", "series.csv")
	req.NoError(err)
	_, err = part.Write([]byte("h1,h2\n1,2.5\nfoo,3\n"))
	req.NoError(err)
	req.NoError(mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/data-sets/", &buf)
	r.Header.Set("Authorization", testToken)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	req.Equal(http.StatusOK, w.Code)

	var created models.DataSet
	req.NoError(json.Unmarshal(w.Body.Bytes(), &created))
	req.NotEmpty(created.ID)
	req.Equal(models.TypeTimeSeries, created.Type)
	req.Equal("alice@example.com", created.UserID)
	req.Nil(created.Payload)

	// полная запись доступна с payload'ом
	full := doReq(h, http.MethodGet, "/api/data-sets/"+created.ID, true)
	req.Equal(http.StatusOK, full.Code)
	var got models.DataSet
	req.NoError(json.Unmarshal(full.Body.Bytes(), &got))
	ts, ok := got.Payload.(models.TimeSeriesPayload)
	req.True(ok)
	req.Len(ts.Data, 2)
}

func Test_Upload_MissingMeta(t *testing.T) {
	req := require.New(t)
	h, _ := newTestAPI(t, repo.NewMemoryStore(), false)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "series.csv")
	req.NoError(err)
	_, err = part.Write([]byte("h\n1\n"))
	req.NoError(err)
	req.NoError(mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/data-sets/", &buf)
	r.Header.Set("Authorization", testToken)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	req.Equal(http.StatusBadRequest, w.Code)
	req.JSONEq(`{"status":"Invalid request"}`, w.Body.String())
}

func Test_Upload_MultipleFilesRejected(t *testing.T) {
	req := require.New(t)
	h, _ := newTestAPI(t, repo.NewMemoryStore(), false)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	req.NoError(mw.WriteField("meta", `{"type":"TIME_SERIES"}`))
	for _, name := range []string{"a.csv", "b.csv"} {
		part, err := mw.CreateFormFile("file", name)
		req.NoError(err)
		_, err = part.Write([]byte("h\n1\n"))
		req.NoError(err)
	}
	req.NoError(mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/data-sets/", &buf)
	r.Header.Set("Authorization", testToken)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	req.Equal(http.StatusBadRequest, w.Code)
	req.JSONEq(`{"status":"Invalid request"}`, w.Body.String())
}

func Test_Upload_UnknownImageMime_WireMessage(t *testing.T) {
	req := require.New(t)
	h, _ := newTestAPI(t, repo.NewMemoryStore(), false)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	req.NoError(mw.WriteField("meta", `{"type":"IMAGE"}`))
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="pic.tiff"`)
	hdr.Set("Content-Type", "image/tiff")
	part, err := mw.CreatePart(hdr)
	req.NoError(err)
	_, err = part.Write([]byte("tiff bytes"))
	req.NoError(err)
	req.NoError(mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/data-sets/", &buf)
	r.Header.Set("Authorization", testToken)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	// сообщение отказа уходит клиенту дословно, без служебного префикса
	req.Equal(http.StatusBadRequest, w.Code)
	req.JSONEq(`{"status":"Could not recognise mime type of image"}`, w.Body.String())
}

func Test_Update(t *testing.T) {
	req := require.New(t)
	store := repo.NewMemoryStore()
	h, _ := newTestAPI(t, store, false)

	id, err := store.Create(context.Background(), models.DataSet{Type: models.TypeJSON, Name: "orig"})
	req.NoError(err)

	r := httptest.NewRequest(http.MethodPost, "/api/data-sets/"+id, strings.NewReader(`{"name":"renamed"}`))
	r.Header.Set("Authorization", testToken)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	req.Equal(http.StatusOK, w.Code)
	var updated models.DataSet
	req.NoError(json.Unmarshal(w.Body.Bytes(), &updated))
	req.Equal("renamed", updated.Name)

	// несуществующая запись
	r = httptest.NewRequest(http.MethodPost, "/api/data-sets/no-such-id", strings.NewReader(`{"name":"x"}`))
	r.Header.Set("Authorization", testToken)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	req.Equal(http.StatusNotFound, w.Code)

	// некорректное тело
	r = httptest.NewRequest(http.MethodPost, "/api/data-sets/"+id, strings.NewReader(`{broken`))
	r.Header.Set("Authorization", testToken)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	req.Equal(http.StatusBadRequest, w.Code)
}

func Test_Remove_DeletesRecordAndFile(t *testing.T) {
	req := require.New(t)
	store := repo.NewMemoryStore()
	h, svc := newTestAPI(t, store, false)

	id, target := seedFileRecord(t, store, svc, models.TypeImage, true)

	w := doReq(h, http.MethodDelete, "/api/data-sets/"+id, true)
	req.Equal(http.StatusOK, w.Code)
	req.JSONEq(`{"deleted":true,"dataSetId":"`+id+`"}`, w.Body.String())

	_, err := os.Stat(target)
	req.True(os.IsNotExist(err), "placed file must be removed with the record")

	// файл и запись исчезли, последующая выдача отвечает 404
	w = doReq(h, http.MethodGet, "/api/data-sets/"+id+"/image", true)
	req.Equal(http.StatusNotFound, w.Code)
}

func Test_Image_LegacyMimeFallbackFromPathSuffix(t *testing.T) {
	req := require.New(t)
	store := repo.NewMemoryStore()
	h, svc := newTestAPI(t, store, false)

	// старая запись без сохранённого mime: тип определяется по суффиксу
	// пути, без учёта регистра
	target := filepath.Join(svc.DataFolder, "legacy.JPG")
	req.NoError(os.WriteFile(target, []byte("jpeg bytes"), 0o644))
	id, err := store.Create(context.Background(), models.DataSet{
		Type: models.TypeImage,
		Payload: models.FilePayload{
			TargetFile: target,
			PublicFlag: true,
		},
	})
	req.NoError(err)

	w := doReq(h, http.MethodGet, "/api/data-sets/"+id+"/image", false)
	req.Equal(http.StatusOK, w.Code)
	req.Equal("image/jpeg", w.Header().Get("Content-Type"))
	req.Equal("jpeg bytes", w.Body.String())
}

func Test_Image_UndeterminedMimeIsServerError(t *testing.T) {
	req := require.New(t)
	store := repo.NewMemoryStore()
	h, svc := newTestAPI(t, store, false)

	// ни сохранённого mime, ни известного суффикса — файл не отдаётся
	target := filepath.Join(svc.DataFolder, "legacy.dat")
	req.NoError(os.WriteFile(target, []byte("opaque"), 0o644))
	id, err := store.Create(context.Background(), models.DataSet{
		Type: models.TypeImage,
		Payload: models.FilePayload{
			TargetFile: target,
			PublicFlag: true,
		},
	})
	req.NoError(err)

	w := doReq(h, http.MethodGet, "/api/data-sets/"+id+"/image", false)
	req.Equal(http.StatusInternalServerError, w.Code)
	req.JSONEq(`{"status":"Unable to send image"}`, w.Body.String())
}

func Test_Image_PublicFlagServesWithoutAuth(t *testing.T) {
	req := require.New(t)
	store := repo.NewMemoryStore()
	h, svc := newTestAPI(t, store, false)

	id, _ := seedFileRecord(t, store, svc, models.TypeImage, true)

	w := doReq(h, http.MethodGet, "/api/data-sets/"+id+"/image", false)
	req.Equal(http.StatusOK, w.Code)
	req.Equal("image/png", w.Header().Get("Content-Type"))
	req.Equal("png bytes", w.Body.String())
}

func Test_Image_PrivateRequiresAuth(t *testing.T) {
	req := require.New(t)
	store := repo.NewMemoryStore()
	h, svc := newTestAPI(t, store, false)

	id, _ := seedFileRecord(t, store, svc, models.TypeImage, false)

	w := doReq(h, http.MethodGet, "/api/data-sets/"+id+"/image", false)
	req.Equal(http.StatusUnauthorized, w.Code)

	w = doReq(h, http.MethodGet, "/api/data-sets/"+id+"/image", true)
	req.Equal(http.StatusOK, w.Code)
	req.Equal("png bytes", w.Body.String())
}

func Test_Binary_GlobalOverrideOpensPrivateRecord(t *testing.T) {
	req := require.New(t)
	store := repo.NewMemoryStore()
	h, svc := newTestAPI(t, store, true)

	id, _ := seedFileRecord(t, store, svc, models.TypeBinary, false)

	w := doReq(h, http.MethodGet, "/api/data-sets/"+id+"/binary", false)
	req.Equal(http.StatusOK, w.Code)
	req.Equal("image/png", w.Header().Get("Content-Type"))
}

func Test_FileEndpoints_RejectFilelessTypes(t *testing.T) {
	req := require.New(t)
	store := repo.NewMemoryStore()
	// глобальное разрешение не обходит проверку типа
	h, _ := newTestAPI(t, store, true)

	id, err := store.Create(context.Background(), models.DataSet{Type: models.TypeJSON})
	req.NoError(err)

	for _, suffix := range []string{"/image", "/binary"} {
		w := doReq(h, http.MethodGet, "/api/data-sets/"+id+suffix, false)
		req.Equal(http.StatusBadRequest, w.Code)
		req.JSONEq(`{"status":"Invalid request"}`, w.Body.String())
	}
}

func Test_FileEndpoints_UnknownID(t *testing.T) {
	req := require.New(t)
	h, _ := newTestAPI(t, repo.NewMemoryStore(), false)

	// шлюз находит запись до аутентификации, несуществующий id — 404
	w := doReq(h, http.MethodGet, "/api/data-sets/no-such-id/image", false)
	req.Equal(http.StatusNotFound, w.Code)
	req.JSONEq(`{"status":"Not found"}`, w.Body.String())
}

func Test_Image_BinaryRecordRejected(t *testing.T) {
	req := require.New(t)
	store := repo.NewMemoryStore()
	h, svc := newTestAPI(t, store, false)

	// BINARY-запись проходит шлюз, но image endpoint принимает только IMAGE
	id, _ := seedFileRecord(t, store, svc, models.TypeBinary, true)

	w := doReq(h, http.MethodGet, "/api/data-sets/"+id+"/image", false)
	req.Equal(http.StatusBadRequest, w.Code)
	req.JSONEq(`{"status":"Invalid request"}`, w.Body.String())
}

func Test_Binary_ServesImageRecord(t *testing.T) {
	req := require.New(t)
	store := repo.NewMemoryStore()
	h, svc := newTestAPI(t, store, false)

	// binary endpoint отдаёт любой файловый тип, IMAGE в том числе
	id, _ := seedFileRecord(t, store, svc, models.TypeImage, true)

	w := doReq(h, http.MethodGet, "/api/data-sets/"+id+"/binary", false)
	req.Equal(http.StatusOK, w.Code)
	req.Equal("png bytes", w.Body.String())
}

func Test_Relations(t *testing.T) {
	req := require.New(t)
	store := repo.NewMemoryStore()
	h, _ := newTestAPI(t, store, false)

	anchor, err := store.Create(context.Background(), models.DataSet{Type: models.TypeJSON, Name: "anchor"})
	req.NoError(err)
	_, err = store.Create(context.Background(), models.DataSet{Type: models.TypeJSON, Name: "linked", Relations: []string{anchor}})
	req.NoError(err)

	w := doReq(h, http.MethodGet, "/api/data-sets/"+anchor+"/relations", true)
	req.Equal(http.StatusOK, w.Code)

	var sets []models.DataSet
	req.NoError(json.Unmarshal(w.Body.Bytes(), &sets))
	req.Len(sets, 1)
	req.Equal("linked", sets[0].Name)
}
