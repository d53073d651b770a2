package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/feedscribe/feedscribe/internal/api/shared"
	"github.com/feedscribe/feedscribe/internal/service"
)

// dayLayout is the path format for digest days.
const dayLayout = "2006-01-02"

// defaultDigestLimit bounds GET /digests when no limit is given.
const defaultDigestLimit = 30

// DigestHandler serves daily digest endpoints.
type DigestHandler struct {
	digestService service.DigestService
	logger        *slog.Logger
}

// NewDigestHandler creates a new DigestHandler with the given dependencies.
func NewDigestHandler(digestService service.DigestService, logger *slog.Logger) *DigestHandler {
	return &DigestHandler{
		digestService: digestService,
		logger:        logger.With(slog.String("component", "digest_handler")),
	}
}

// getPathDay extracts and parses a YYYY-MM-DD path parameter.
func getPathDay(r *http.Request) (time.Time, error) {
	return time.Parse(dayLayout, chi.URLParam(r, "day"))
}

// List handles GET /digests.
func (h *DigestHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultDigestLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	digests, err := h.digestService.ListDigests(r.Context(), limit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, digests)
}

// Get handles GET /digests/{day}.
func (h *DigestHandler) Get(w http.ResponseWriter, r *http.Request) {
	day, err := getPathDay(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid day, expected YYYY-MM-DD")
		return
	}

	digest, err := h.digestService.GetDigest(r.Context(), day)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, digest)
}

// Generate handles POST /digests/{day}. Generation runs in the background;
// the response names the task to poll.
func (h *DigestHandler) Generate(w http.ResponseWriter, r *http.Request) {
	day, err := getPathDay(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid day, expected YYYY-MM-DD")
		return
	}

	handle, err := h.digestService.GenerateDigest(r.Context(), day)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.logger.InfoContext(r.Context(), "digest generation submitted",
		slog.String("task", handle.Name()))
	shared.RespondWithJSON(w, r, http.StatusAccepted, TaskSubmittedResponse{TaskName: handle.Name()})
}
