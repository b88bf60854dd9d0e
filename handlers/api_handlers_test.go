package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"classroom-notes-go/auth"
	"classroom-notes-go/db"
	"classroom-notes-go/models"
)

// memoryNotes is a NotesRepository backed by a map.
type memoryNotes struct {
	mu      sync.Mutex
	records map[string]models.NoteRecord
	clock   time.Time
	err     error
}

func newMemoryNotes() *memoryNotes {
	return &memoryNotes{
		records: make(map[string]models.NoteRecord),
		clock:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memoryNotes) GetNotes(_ context.Context, id string) (models.NoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.NoteRecord{}, &db.StoreError{Op: "get", ClassroomID: id, Err: m.err}
	}
	return m.records[id], nil
}

func (m *memoryNotes) PutNotes(_ context.Context, id, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return &db.StoreError{Op: "put", ClassroomID: id, Err: m.err}
	}
	m.clock = m.clock.Add(time.Second)
	m.records[id] = models.NoteRecord{ClassroomID: id, Content: &content, LastUpdated: models.FormatTimestamp(m.clock)}
	return nil
}

func (m *memoryNotes) ListClasses(context.Context) ([]models.NoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, &db.StoreError{Op: "list", Err: m.err}
	}
	all := make([]models.NoteRecord, 0, len(m.records))
	for _, r := range m.records {
		all = append(all, r)
	}
	return models.SortByRecency(all), nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(notes db.NotesRepository) *gin.Engine {
	return NewRouter(
		NewAPIHandler(notes, nil),
		NewAuthHandler(auth.AcceptAny{}, nil),
		zap.NewNop(),
		RouterOptions{SessionSecret: "test-secret", AllowedOrigins: []string{"*"}},
	)
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetNotesMissingIsEmptyObject(t *testing.T) {
	router := newTestRouter(newMemoryNotes())

	w := do(t, router, http.MethodGet, "/api/notes/nonexistent", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())
}

func TestSaveThenGetNotes(t *testing.T) {
	router := newTestRouter(newMemoryNotes())

	w := do(t, router, http.MethodPost, "/api/notes/c1", `{"content":"hello"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success"}`, w.Body.String())

	w = do(t, router, http.MethodGet, "/api/notes/c1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var record models.NoteRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, "c1", record.ClassroomID)
	assert.Equal(t, "hello", record.Text())
	assert.NotEmpty(t, record.LastUpdated)
}

func TestSaveNotesAcceptsEmptyContent(t *testing.T) {
	notes := newMemoryNotes()
	router := newTestRouter(notes)

	w := do(t, router, http.MethodPost, "/api/notes/c1", `{"content":""}`)
	require.Equal(t, http.StatusOK, w.Code)

	got, _ := notes.GetNotes(context.Background(), "c1")
	require.NotNil(t, got.Content)
	assert.Equal(t, "", *got.Content)
}

func TestSaveNotesRejectsBadBody(t *testing.T) {
	router := newTestRouter(newMemoryNotes())

	for _, body := range []string{`{}`, `{"content":null}`, `not json`, `{"content":5}`} {
		w := do(t, router, http.MethodPost, "/api/notes/c1", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestStoreErrorsBecome500WithMessage(t *testing.T) {
	notes := newMemoryNotes()
	notes.err = errors.New("ProvisionedThroughputExceededException")
	router := newTestRouter(notes)

	tests := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/api/notes/c1", ""},
		{http.MethodPost, "/api/notes/c1", `{"content":"x"}`},
		{http.MethodGet, "/api/classes", ""},
		{http.MethodGet, "/api/classes/export", ""},
	}
	for _, tt := range tests {
		w := do(t, router, tt.method, tt.path, tt.body)
		assert.Equal(t, http.StatusInternalServerError, w.Code, tt.path)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Contains(t, body["error"], "ProvisionedThroughputExceededException", tt.path)
	}
}

func TestGetAllClassesOrdered(t *testing.T) {
	notes := newMemoryNotes()
	router := newTestRouter(notes)

	w := do(t, router, http.MethodGet, "/api/classes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	do(t, router, http.MethodPost, "/api/notes/older", `{"content":"a"}`)
	do(t, router, http.MethodPost, "/api/notes/newer", `{"content":"b"}`)

	w = do(t, router, http.MethodGet, "/api/classes", "")
	require.Equal(t, http.StatusOK, w.Code)

	var classes []models.NoteRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &classes))
	require.Len(t, classes, 2)
	assert.Equal(t, "newer", classes[0].ClassroomID)
	assert.Equal(t, "older", classes[1].ClassroomID)
}

func TestExportClasses(t *testing.T) {
	notes := newMemoryNotes()
	router := newTestRouter(notes)
	do(t, router, http.MethodPost, "/api/notes/c1", `{"content":"x"}`)

	w := do(t, router, http.MethodGet, "/api/classes/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "classes.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(db.ClassesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "c1", rows[1][0])
}

func TestImportNotes(t *testing.T) {
	notes := newMemoryNotes()
	router := newTestRouter(notes)

	book := excelize.NewFile()
	require.NoError(t, book.SetSheetRow("Sheet1", "A1", &[]interface{}{"classroom_id", "content"}))
	require.NoError(t, book.SetSheetRow("Sheet1", "A2", &[]interface{}{"c1", "imported"}))
	var xlsx bytes.Buffer
	_, err := book.WriteTo(&xlsx)
	require.NoError(t, err)
	require.NoError(t, book.Close())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "notes.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsx.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import/notes", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"message":"Import successful","importedCount":1}`, w.Body.String())

	got, _ := notes.GetNotes(context.Background(), "c1")
	assert.Equal(t, "imported", got.Text())
}

func TestImportNotesWithoutFile(t *testing.T) {
	router := newTestRouter(newMemoryNotes())

	w := do(t, router, http.MethodPost, "/api/import/notes", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPing(t *testing.T) {
	w := do(t, newTestRouter(newMemoryNotes()), http.MethodGet, "/api/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Pong!"}`, w.Body.String())
}

func TestRequestIDIsEchoedOrGenerated(t *testing.T) {
	router := newTestRouter(newMemoryNotes())

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))

	w = do(t, router, http.MethodGet, "/api/ping", "")
	assert.Len(t, w.Header().Get(requestIDHeader), 36)
}

func TestCORSAllowsCredentials(t *testing.T) {
	router := newTestRouter(newMemoryNotes())

	req := httptest.NewRequest(http.MethodGet, "/api/classes", nil)
	req.Header.Set("Origin", "http://viewer.test")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "http://viewer.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
