package api

import (
	"log/slog"
	"net/http"

	"github.com/feedscribe/feedscribe/internal/api/shared"
	"github.com/feedscribe/feedscribe/internal/service"
)

// TranslatorHandler serves translation provider endpoints.
type TranslatorHandler struct {
	translatorService service.TranslatorService
	logger            *slog.Logger
}

// NewTranslatorHandler creates a new TranslatorHandler with the given dependencies.
func NewTranslatorHandler(translatorService service.TranslatorService, logger *slog.Logger) *TranslatorHandler {
	return &TranslatorHandler{
		translatorService: translatorService,
		logger:            logger.With(slog.String("component", "translator_handler")),
	}
}

// Validate handles POST /translator/validate. The live probe runs in the
// background; the response names the task to poll for the outcome.
func (h *TranslatorHandler) Validate(w http.ResponseWriter, r *http.Request) {
	handle, err := h.translatorService.ValidateProvider(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.logger.InfoContext(r.Context(), "provider validation submitted",
		slog.String("task", handle.Name()))
	shared.RespondWithJSON(w, r, http.StatusAccepted, TaskSubmittedResponse{TaskName: handle.Name()})
}
