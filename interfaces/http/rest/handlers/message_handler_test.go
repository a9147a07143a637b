package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"braincore/application/services"
	memorystore "braincore/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMessageHandler() (*MessageHandler, *memorystore.DocumentStore) {
	store := memorystore.NewDocumentStore()
	former := services.NewMemoryFormer(store, nil, nil, zap.NewNop())
	return NewMessageHandler(former, zap.NewNop()), store
}

func postJSON(t *testing.T, handler http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", bytes.NewReader(data))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestIngestMessage_Success(t *testing.T) {
	handler, _ := newTestMessageHandler()

	rec := postJSON(t, handler.IngestMessage, IngestMessageRequest{
		From:    "John Doe <john@example.com>",
		Subject: "URGENT: need help",
		Text:    "Please call me back.",
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp IngestMessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.MemoryID)
	assert.Equal(t, "high", resp.Importance)
	assert.NotEmpty(t, resp.ContactID)
	assert.NotEmpty(t, resp.EdgeID)
}

func TestIngestMessage_MissingFrom(t *testing.T) {
	handler, _ := newTestMessageHandler()

	rec := postJSON(t, handler.IngestMessage, IngestMessageRequest{
		Subject: "no sender",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestMessage_InvalidBody(t *testing.T) {
	handler, _ := newTestMessageHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.IngestMessage(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestMessage_UnattributedSenderStillMemorizes(t *testing.T) {
	handler, store := newTestMessageHandler()

	rec := postJSON(t, handler.IngestMessage, IngestMessageRequest{
		From:    "no address here",
		Subject: "anonymous tip",
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp IngestMessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.MemoryID)
	assert.Empty(t, resp.ContactID)
	assert.Empty(t, resp.EdgeID)

	count, err := store.CountDocuments(context.Background(), map[string]interface{}{"kind": "email"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
