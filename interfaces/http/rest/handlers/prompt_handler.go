package handlers

import (
	"encoding/json"
	"net/http"

	"braincore/domain/services/leadsignals"
	"braincore/domain/services/prompting"
	pkgerrors "braincore/pkg/errors"
	"braincore/pkg/observability"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// PersonalitySource serves the personality configuration in effect
type PersonalitySource interface {
	Current() prompting.Personality
}

// PromptHandler composes generation prompts for inbound messages
type PromptHandler struct {
	personality PersonalitySource
	metrics     *observability.Metrics
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewPromptHandler creates a new prompt handler
func NewPromptHandler(personality PersonalitySource, metrics *observability.Metrics, logger *zap.Logger) *PromptHandler {
	return &PromptHandler{
		personality: personality,
		metrics:     metrics,
		validate:    validator.New(),
		logger:      logger,
	}
}

// ComposePromptRequest carries the message to respond to
type ComposePromptRequest struct {
	FromName       string `json:"fromName,omitempty"`
	FromEmail      string `json:"fromEmail" validate:"required,email"`
	Subject        string `json:"subject,omitempty"`
	Body           string `json:"body" validate:"required"`
	PriorExchanges int    `json:"priorExchanges,omitempty" validate:"gte=0"`
}

// ComposePromptResponse returns the prompt and the signals behind it
type ComposePromptResponse struct {
	Prompt  string              `json:"prompt"`
	Signals leadsignals.Signals `json:"signals"`
}

// ComposePrompt handles POST /prompts
func (h *PromptHandler) ComposePrompt(w http.ResponseWriter, r *http.Request) {
	var req ComposePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, pkgerrors.NewValidationError("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, pkgerrors.NewValidationError(err.Error()))
		return
	}

	msg := prompting.Message{
		FromName:  req.FromName,
		FromEmail: req.FromEmail,
		Subject:   req.Subject,
		Body:      req.Body,
	}
	history := make([]prompting.Exchange, req.PriorExchanges)

	prompt := prompting.Compose(h.personality.Current(), msg, history)
	signals := leadsignals.Classify(req.Subject + " " + req.Body)

	h.metrics.MessageClassified(r.Context(), string(signals.Temperature))
	h.logger.Debug("Composed prompt",
		zap.String("temperature", string(signals.Temperature)),
		zap.Int("priorExchanges", req.PriorExchanges),
	)

	respondJSON(w, http.StatusOK, ComposePromptResponse{
		Prompt:  prompt,
		Signals: signals,
	})
}
