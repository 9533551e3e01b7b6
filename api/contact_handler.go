package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mreyes-dev/portfolio-site-backend/database"
	"github.com/mreyes-dev/portfolio-site-backend/errs"
	"github.com/mreyes-dev/portfolio-site-backend/models"
	"github.com/mreyes-dev/portfolio-site-backend/services"
)

type contactHandler struct {
	responder Responder
	logger    zerolog.Logger
	contacts  *database.ContactRepo
	mailer    services.Mailer
}

func newContactHandler(contacts *database.ContactRepo, mailer services.Mailer) contactHandler {
	logger := log.With().Str("handlerName", "contactHandler").Logger()

	return contactHandler{
		responder: NewResponder(logger),
		logger:    logger,
		contacts:  contacts,
		mailer:    mailer,
	}
}

// submit persists a public contact-form message and sends the notification
// email in a single attempt
func (h contactHandler) submit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Name    string `json:"name"`
			Email   string `json:"email"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}

		for field, value := range map[string]string{
			"name":    payload.Name,
			"email":   payload.Email,
			"message": payload.Message,
		} {
			if strings.TrimSpace(value) == "" {
				h.responder.WriteError(w, errs.NewMissingRequiredFieldError(field))
				return
			}
		}

		submission := models.ContactSubmission{
			Name:    payload.Name,
			Email:   payload.Email,
			Message: payload.Message,
		}
		if err := h.contacts.Add(&submission); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "contact submission", err))
			return
		}

		if err := h.mailer.SendContactNotification(r.Context(), submission); err != nil {
			h.logger.Error().Err(err).Str("submissionId", submission.ID.String()).Msg("Failed to send contact notification")
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, submission)
	}
}

// list returns all submissions for the admin dashboard, newest first
func (h contactHandler) list() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		submissions, err := h.contacts.FindAll()
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "contact submissions", err))
			return
		}
		if submissions == nil {
			submissions = []*models.ContactSubmission{}
		}
		h.responder.WriteJSON(w, submissions)
	}
}

// delete removes one submission
func (h contactHandler) delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idStr := chi.URLParam(r, "submissionID")
		id, err := uuid.Parse(idStr)
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid submission id"))
			return
		}

		if err := h.contacts.Delete(id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "contact submission", err))
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"message": "contact submission deleted successfully",
		})
	}
}
