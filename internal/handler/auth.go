package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/programmer-battle/internal/apperror"
	"github.com/sakif/programmer-battle/internal/auth"
	"github.com/sakif/programmer-battle/internal/serializer"
	"github.com/sakif/programmer-battle/internal/service"
)

// AuthHandler issues API tokens and reports the current user.
//
//   - HandleToken → exchange a username and password for a JWT
//   - HandleMe    → return the profile of the user the token belongs to
type AuthHandler struct {
	service *service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: svc,
		logger:  logger,
	}
}

// credentials is the body of POST /api/tokens.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned when a token is issued.
type TokenResponse struct {
	Token string `json:"token"`
}

// HandleToken issues a bearer token.
//
// HTTP: POST /api/tokens
// REQUEST BODY: {"username": "weaverryan", "password": "foo"}
// RESPONSE: 201 {"token": "<jwt>"}, or 401 when the credentials are wrong.
//
// Clients send the token back as "Authorization: Bearer <jwt>".
func (h *AuthHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&creds); err != nil {
		h.logger.Warn("invalid token request JSON", slog.String("error", err.Error()))
		writeError(w, h.logger, apperror.ValidationFailed("body", "request body must be a JSON object with username and password"))
		return
	}

	token, err := h.service.IssueToken(r.Context(), creds.Username, creds.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, TokenResponse{Token: token})
}

// HandleMe returns the authenticated user.
//
// HTTP: GET /api/me
//
// Must be mounted behind auth.RequireAuth.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	user, err := h.service.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, serializer.User(user))
}
