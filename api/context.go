package api

import (
	"context"

	"github.com/mreyes-dev/portfolio-site-backend/models"
)

type keyType string

const adminKey keyType = "admin"

// ctxWithAdmin attaches the authenticated admin account to the context
func ctxWithAdmin(ctx context.Context, admin *models.Admin) context.Context {
	return context.WithValue(ctx, adminKey, admin)
}

// adminFromCtx retrieves the authenticated admin, or nil when the request
// never passed the auth middleware
func adminFromCtx(ctx context.Context) *models.Admin {
	admin, _ := ctx.Value(adminKey).(*models.Admin)
	return admin
}
