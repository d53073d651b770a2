package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/feedscribe/feedscribe/internal/api/shared"
	"github.com/feedscribe/feedscribe/internal/domain"
	"github.com/feedscribe/feedscribe/internal/service"
)

// defaultEntryLimit bounds GET /feeds/{id}/entries when no limit is given.
const defaultEntryLimit = 50

// FeedHandler serves feed CRUD and refresh endpoints.
type FeedHandler struct {
	feedService service.FeedService
	logger      *slog.Logger
}

// NewFeedHandler creates a new FeedHandler with the given dependencies.
func NewFeedHandler(feedService service.FeedService, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
		logger:      logger.With(slog.String("component", "feed_handler")),
	}
}

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.ErrInvalidID
	}
	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidID
	}
	return id, nil
}

// Create handles POST /feeds.
func (h *FeedHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateFeedRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	targetLanguage := req.TargetLanguage
	if targetLanguage == "" {
		targetLanguage = "English"
	}

	feed, err := domain.NewFeed(req.FeedURL, targetLanguage)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if req.Name != "" {
		feed.Name = req.Name
	}
	if req.MaxPosts > 0 {
		feed.MaxPosts = req.MaxPosts
	}
	feed.TranslateTitle = req.TranslateTitle
	feed.TranslateContent = req.TranslateContent
	feed.Summarize = req.Summarize
	feed.SummaryDetail = req.SummaryDetail

	if err := h.feedService.CreateFeed(r.Context(), feed); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, feed)
}

// List handles GET /feeds.
func (h *FeedHandler) List(w http.ResponseWriter, r *http.Request) {
	feeds, err := h.feedService.ListFeeds(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, feeds)
}

// Get handles GET /feeds/{id}.
func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "Invalid feed ID")
		return
	}

	feed, err := h.feedService.GetFeed(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, feed)
}

// Update handles PUT /feeds/{id}.
func (h *FeedHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "Invalid feed ID")
		return
	}

	var req UpdateFeedRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	feed, err := h.feedService.GetFeed(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if req.Name != nil {
		feed.Name = *req.Name
	}
	if req.TargetLanguage != nil {
		feed.TargetLanguage = *req.TargetLanguage
	}
	if req.MaxPosts != nil {
		feed.MaxPosts = *req.MaxPosts
	}
	if req.TranslateTitle != nil {
		feed.TranslateTitle = *req.TranslateTitle
	}
	if req.TranslateContent != nil {
		feed.TranslateContent = *req.TranslateContent
	}
	if req.Summarize != nil {
		feed.Summarize = *req.Summarize
	}
	if req.SummaryDetail != nil {
		feed.SummaryDetail = *req.SummaryDetail
	}

	if err := h.feedService.UpdateFeed(r.Context(), feed); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, feed)
}

// Delete handles DELETE /feeds/{id}.
func (h *FeedHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "Invalid feed ID")
		return
	}

	if err := h.feedService.DeleteFeed(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Entries handles GET /feeds/{id}/entries.
func (h *FeedHandler) Entries(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "Invalid feed ID")
		return
	}

	limit := defaultEntryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	entries, err := h.feedService.ListEntries(r.Context(), id, limit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, entries)
}

// Refresh handles POST /feeds/{id}/refresh. It submits a background refresh
// task and returns its name for later status polling.
func (h *FeedHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "Invalid feed ID")
		return
	}

	handle, err := h.feedService.RefreshFeed(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.logger.Info("feed refresh submitted",
		slog.String("feed_id", id.String()),
		slog.String("task_name", handle.Name()))

	shared.RespondWithJSON(w, r, http.StatusAccepted, TaskSubmittedResponse{
		TaskName: handle.Name(),
	})
}

// RefreshAll handles POST /feeds/refresh.
func (h *FeedHandler) RefreshAll(w http.ResponseWriter, r *http.Request) {
	handle, err := h.feedService.RefreshAllFeeds(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.logger.Info("bulk feed refresh submitted",
		slog.String("task_name", handle.Name()))

	shared.RespondWithJSON(w, r, http.StatusAccepted, TaskSubmittedResponse{
		TaskName: handle.Name(),
	})
}
