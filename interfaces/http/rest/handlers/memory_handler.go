package handlers

import (
	"net/http"
	"strings"

	"braincore/application/ports"
	"braincore/domain/core/entities"
	"braincore/domain/core/valueobjects"
	pkgerrors "braincore/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MemoryHandler serves read access to the memory graph
type MemoryHandler struct {
	store  ports.DocumentStore
	logger *zap.Logger
}

// NewMemoryHandler creates a new memory handler
func NewMemoryHandler(store ports.DocumentStore, logger *zap.Logger) *MemoryHandler {
	return &MemoryHandler{store: store, logger: logger}
}

// GetMemory handles GET /memories/{memoryID}
func (h *MemoryHandler) GetMemory(w http.ResponseWriter, r *http.Request) {
	memoryID := chi.URLParam(r, "memoryID")
	if memoryID == "" {
		respondError(w, pkgerrors.NewValidationError("memory id is required"))
		return
	}

	var doc map[string]interface{}
	if err := h.store.FindOne(r.Context(), ports.Filter{"id": memoryID}, &doc); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// GetContact handles GET /contacts?email=
func (h *MemoryHandler) GetContact(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("email")))
	if email == "" {
		respondError(w, pkgerrors.NewValidationError("email query parameter is required"))
		return
	}

	var contact entities.Contact
	filter := ports.Filter{
		"kind":  string(valueobjects.KindContact),
		"email": email,
	}
	if err := h.store.FindOne(r.Context(), filter, &contact); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, contact)
}

// ListMemories handles GET /memories?kind=
func (h *MemoryHandler) ListMemories(w http.ResponseWriter, r *http.Request) {
	filter := ports.Filter{}
	if kind := r.URL.Query().Get("kind"); kind != "" {
		filter["kind"] = kind
	}

	docs, err := h.store.Find(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list memories", zap.Error(err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"memories": docs,
		"count":    len(docs),
	})
}
