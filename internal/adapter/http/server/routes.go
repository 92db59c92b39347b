package server

import (
	_ "github.com/Temutjin2k/campus-radar/docs"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// setupRoutes - setups http routes
func (a *API) setupRoutes() {
	mux, routes, m := a.mux, a.routes, a.m

	// System Health
	mux.HandleFunc("GET /health", routes.health.HealthCheck)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Locations
	mux.Handle("POST /locations", m.RequireUser(routes.location.UpdateLocation))
	mux.Handle("GET /locations/nearby", m.RequireUser(routes.location.FindNearby))
	mux.Handle("GET /locations/building", m.RequireUser(routes.location.GetBuilding))
	mux.Handle("PUT /locations/sharing", m.RequireUser(routes.location.ToggleSharing))
	mux.Handle("PUT /locations/incognito", m.RequireUser(routes.location.ToggleIncognito))
	mux.Handle("GET /locations/history", m.RequireUser(routes.location.GetHistory))

	// Privacy
	mux.Handle("GET /privacy/settings", m.RequireUser(routes.privacy.GetSettings))
	mux.Handle("PATCH /privacy/settings", m.RequireUser(routes.privacy.UpdateSettings))
	mux.Handle("POST /privacy/can-view", m.RequireUser(routes.privacy.CanView))

	// Profiles
	mux.Handle("POST /profiles/filtered", m.RequireUser(routes.profile.Filtered))
}
