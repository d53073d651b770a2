package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/feedscribe/feedscribe/internal/api/shared"
	"github.com/feedscribe/feedscribe/internal/config"
	"github.com/feedscribe/feedscribe/internal/service/auth"
)

// AuthHandler issues admin tokens.
type AuthHandler struct {
	jwtService auth.JWTService
	verifier   auth.PasswordVerifier
	authConfig config.AuthConfig
	logger     *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	jwtService auth.JWTService,
	verifier auth.PasswordVerifier,
	authConfig config.AuthConfig,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		jwtService: jwtService,
		verifier:   verifier,
		authConfig: authConfig,
		logger:     logger.With(slog.String("component", "auth_handler")),
	}
}

// Token handles POST /auth/token. It verifies the admin password and returns
// a signed access token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	if err := h.verifier.Compare(h.authConfig.AdminPasswordHash, req.Password); err != nil {
		// No detail for the client; repeated failures are visible in logs.
		h.logger.Warn("admin authentication failed",
			slog.String("remote_addr", r.RemoteAddr))
		HandleAPIError(w, r, auth.ErrInvalidCredentials, "")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to issue token")
		return
	}

	expiresAt := time.Now().
		Add(time.Duration(h.authConfig.TokenLifetimeMin) * time.Minute).
		UTC().Format(time.RFC3339)

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
	})
}
