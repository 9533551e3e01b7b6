package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	itemHandler    itemHandler
	authHandler    authHandler
	contactHandler contactHandler
	settingHandler settingHandler
	healthHandler  healthHandler
}
