package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"braincore/domain/core/entities"
	"braincore/domain/core/valueobjects"
	memorystore "braincore/infrastructure/persistence/memory"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMemoryTestRouter(t *testing.T) (*chi.Mux, *memorystore.DocumentStore) {
	t.Helper()
	store := memorystore.NewDocumentStore()
	handler := NewMemoryHandler(store, zap.NewNop())

	r := chi.NewRouter()
	r.Get("/memories", handler.ListMemories)
	r.Get("/memories/{memoryID}", handler.GetMemory)
	r.Get("/contacts", handler.GetContact)
	return r, store
}

func seedEmail(t *testing.T, store *memorystore.DocumentStore, subject string) *entities.EmailMemory {
	t.Helper()
	memory, err := entities.NewEmailMemory(entities.EmailDocument{
		From:    valueobjects.ParseSender("john@example.com"),
		Subject: subject,
	}, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, store.InsertOne(context.Background(), memory))
	return memory
}

func TestGetMemory_Found(t *testing.T) {
	router, store := newMemoryTestRouter(t)
	memory := seedEmail(t, store, "hello")

	req := httptest.NewRequest(http.MethodGet, "/memories/"+memory.ID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, memory.ID, doc["id"])
	assert.Equal(t, "hello", doc["subject"])
}

func TestGetMemory_NotFound(t *testing.T) {
	router, _ := newMemoryTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/memories/does-not-exist", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetContact_NormalizesEmailParam(t *testing.T) {
	router, store := newMemoryTestRouter(t)

	contact, err := entities.NewContactFromSender(valueobjects.ParseSender("Jane <jane@corp.io>"), time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, store.InsertOne(context.Background(), contact))

	req := httptest.NewRequest(http.MethodGet, "/contacts?email=JANE@CORP.IO", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var found entities.Contact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	assert.Equal(t, contact.ID, found.ID)
}

func TestGetContact_RequiresEmailParam(t *testing.T) {
	router, _ := newMemoryTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListMemories_FilteredByKind(t *testing.T) {
	router, store := newMemoryTestRouter(t)
	seedEmail(t, store, "one")
	seedEmail(t, store, "two")

	task, err := entities.NewTaskMemory(entities.TaskDocument{Title: "chore"}, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, store.InsertOne(context.Background(), task))

	req := httptest.NewRequest(http.MethodGet, "/memories?kind=email", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Memories []map[string]interface{} `json:"memories"`
		Count    int                      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Len(t, resp.Memories, 2)
}
