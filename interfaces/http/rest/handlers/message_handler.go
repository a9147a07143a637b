package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"braincore/application/services"
	"braincore/domain/core/entities"
	"braincore/domain/core/valueobjects"
	pkgerrors "braincore/pkg/errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// MessageHandler ingests parsed inbound messages into the memory graph
type MessageHandler struct {
	former   *services.MemoryFormer
	validate *validator.Validate
	logger   *zap.Logger
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(former *services.MemoryFormer, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{
		former:   former,
		validate: validator.New(),
		logger:   logger,
	}
}

// IngestMessageRequest is one parsed message as the mail collaborator
// delivers it
type IngestMessageRequest struct {
	From      string     `json:"from" validate:"required"`
	To        []string   `json:"to,omitempty"`
	Subject   string     `json:"subject,omitempty"`
	Text      string     `json:"text,omitempty"`
	HTML      string     `json:"html,omitempty"`
	Date      *time.Time `json:"date,omitempty"`
	MessageID string     `json:"messageId,omitempty"`
	Folder    string     `json:"folder,omitempty"`
	Flags     []string   `json:"flags,omitempty"`
}

// IngestMessageResponse reports what the former persisted
type IngestMessageResponse struct {
	MemoryID   string `json:"memoryId"`
	Importance string `json:"importance"`
	ContactID  string `json:"contactId,omitempty"`
	EdgeID     string `json:"edgeId,omitempty"`
}

// IngestMessage handles POST /messages
func (h *MessageHandler) IngestMessage(w http.ResponseWriter, r *http.Request) {
	var req IngestMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, pkgerrors.NewValidationError("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, pkgerrors.NewValidationError(err.Error()))
		return
	}

	doc := entities.EmailDocument{
		From:      valueobjects.ParseSender(req.From),
		To:        req.To,
		Subject:   req.Subject,
		Text:      req.Text,
		HTML:      req.HTML,
		MessageID: req.MessageID,
		Folder:    req.Folder,
		Flags:     req.Flags,
	}
	if req.Date != nil {
		doc.Date = *req.Date
	}

	result, err := h.former.FormMemory(r.Context(), doc)
	if err != nil {
		h.logger.Error("Failed to form memory", zap.Error(err))
		respondError(w, err)
		return
	}

	resp := IngestMessageResponse{
		MemoryID: result.Memory.MemoryID(),
	}
	if email, ok := result.Memory.(*entities.EmailMemory); ok {
		resp.Importance = string(email.Importance)
	}
	if result.Contact != nil {
		resp.ContactID = result.Contact.ID
	}
	if result.Edge != nil {
		resp.EdgeID = result.Edge.ID
	}

	respondJSON(w, http.StatusCreated, resp)
}
