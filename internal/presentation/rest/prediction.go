package rest

import (
	"log/slog"
	"net/http"

	"github.com/AtharvaDeo101/KARA/internal/application/dto"
	"github.com/AtharvaDeo101/KARA/internal/application/usecase"
)

// PredictionHandler serves completion predictions and the chat relay.
type PredictionHandler struct {
	predict *usecase.PredictCompletion
	chat    *usecase.Chat
	logger  *slog.Logger
}

// NewPredictionHandler creates a new PredictionHandler.
func NewPredictionHandler(predict *usecase.PredictCompletion, chat *usecase.Chat, logger *slog.Logger) *PredictionHandler {
	return &PredictionHandler{predict: predict, chat: chat, logger: logger}
}

// RegisterRoutes registers prediction and chat endpoints on the provided ServeMux.
func (h *PredictionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /predict", h.Predict)
	mux.HandleFunc("POST /chat", h.Chat)
}

// Predict scores one learner-course record.
func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := readJSON(r, &raw); err != nil {
		writeDomainError(w, err)
		return
	}
	if raw == nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON object")
		return
	}

	resp, err := h.predict.Execute(r.Context(), raw)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Chat relays a question to the learning assistant.
func (h *PredictionHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req dto.ChatRequest
	if err := readJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	resp, err := h.chat.Execute(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
