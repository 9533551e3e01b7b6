package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mreyes-dev/portfolio-site-backend/database"
	"github.com/mreyes-dev/portfolio-site-backend/errs"
	"github.com/mreyes-dev/portfolio-site-backend/models"
)

type settingHandler struct {
	responder Responder
	logger    zerolog.Logger
	settings  *database.SettingRepo
}

func newSettingHandler(settings *database.SettingRepo) settingHandler {
	logger := log.With().Str("handlerName", "settingHandler").Logger()

	return settingHandler{
		responder: NewResponder(logger),
		logger:    logger,
		settings:  settings,
	}
}

func (h settingHandler) list() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := h.settings.FindAll()
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "settings", err))
			return
		}
		if settings == nil {
			settings = []*models.Setting{}
		}
		h.responder.WriteJSON(w, settings)
	}
}

func (h settingHandler) set() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		if key == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("missing setting key"))
			return
		}

		var payload struct {
			Value string `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}

		setting, err := h.settings.Set(key, payload.Value)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "setting", err))
			return
		}
		h.responder.WriteJSON(w, setting)
	}
}
