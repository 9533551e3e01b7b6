package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type healthHandler struct {
	responder   Responder
	logger      zerolog.Logger
	db          *gorm.DB
	startupTime time.Time
}

func newHealthHandler(db *gorm.DB, startupTime time.Time) healthHandler {
	logger := log.With().Str("handlerName", "healthHandler").Logger()

	return healthHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		db:          db,
		startupTime: startupTime,
	}
}

// health reports liveness plus a database ping
func (h healthHandler) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbStatus := "up"
		if sqlDB, err := h.db.DB(); err != nil {
			dbStatus = "down"
		} else if err := sqlDB.PingContext(r.Context()); err != nil {
			dbStatus = "down"
		}

		status := "ok"
		if dbStatus != "up" {
			status = "degraded"
		}

		h.responder.WriteJSON(w, map[string]any{
			"status":   status,
			"uptime":   time.Since(h.startupTime).String(),
			"database": dbStatus,
		})
	}
}
