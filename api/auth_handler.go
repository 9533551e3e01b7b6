package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mreyes-dev/portfolio-site-backend/database"
	"github.com/mreyes-dev/portfolio-site-backend/errs"
	"github.com/mreyes-dev/portfolio-site-backend/services"
)

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	admins    *database.AdminRepo
	tokens    *services.TokenService
}

func newAuthHandler(admins *database.AdminRepo, tokens *services.TokenService) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder: NewResponder(logger),
		logger:    logger,
		admins:    admins,
		tokens:    tokens,
	}
}

// login verifies credentials against the admins table and returns a signed
// bearer token
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var credentials struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}

		credentials.Email = strings.TrimSpace(credentials.Email)
		if credentials.Email == "" || credentials.Password == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("email and password are required"))
			return
		}

		admin, err := h.admins.FindByEmail(credentials.Email)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "admin", err))
			return
		}
		if admin == nil || !services.CheckPassword(admin.PasswordHash, credentials.Password) {
			h.responder.WriteError(w, errs.NewUnauthorizedError("invalid credentials"))
			return
		}

		token, err := h.tokens.Issue(admin.ID)
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to sign token")
			h.responder.WriteError(w, errs.NewInternalError("failed to issue token"))
			return
		}

		h.responder.WriteJSON(w, map[string]string{"token": token})
	}
}

// me returns the account behind the bearer token; used by the dashboard to
// restore a session
func (h authHandler) me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admin := adminFromCtx(r.Context())
		if admin == nil {
			h.responder.WriteError(w, errs.NewUnauthorizedError("not authenticated"))
			return
		}
		h.responder.WriteJSON(w, admin)
	}
}
