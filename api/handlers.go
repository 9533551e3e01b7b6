package api

import (
	"time"

	"github.com/mreyes-dev/portfolio-site-backend/database"
	"github.com/mreyes-dev/portfolio-site-backend/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(db database.Database, items *services.ItemService, mailer services.Mailer, tokens *services.TokenService, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		itemHandler:    newItemHandler(items),
		authHandler:    newAuthHandler(db.AdminRepo(), tokens),
		contactHandler: newContactHandler(db.ContactRepo(), mailer),
		settingHandler: newSettingHandler(db.SettingRepo()),
		healthHandler:  newHealthHandler(db.DB(), startupTime),
	}
}
