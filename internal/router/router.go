package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/jsteinbach/mineral-catalog/internal/config"     // rate limit configuration for the login route
	"github.com/jsteinbach/mineral-catalog/internal/handler"    // import the handlers that implement business logic
	"github.com/jsteinbach/mineral-catalog/internal/middleware" // import middleware for session authentication and rate limiting
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the admin login and password rotation routes.  The
// login endpoint sits behind a redis token bucket so the single admin
// credential cannot be brute forced; password rotation additionally requires
// a valid session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, rlCfg config.RateLimitConfig, rdb *redis.Client, sessionSecret string) {
	g := e.Group("/v1/auth")
	// Login is throttled per client IP.
	g.POST("/login", a.Login, middleware.NewLoginRateLimit(rlCfg, rdb))
	// Password rotation requires an authorized session on top of knowing
	// the current password.
	g.POST("/password", a.ChangePassword, middleware.AdminAuth(sessionSecret))
}

// RegisterPublic registers the unauthenticated browse endpoints.  These
// routes return sanitized catalog data for guests: showcases with live
// counts, shelves with their full codes, the filterable mineral listing,
// dropdown options, homepage statistics, the catalog number probe and the
// stored images.  No session middleware is applied.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler) {
	// Showcase overview with shelf and mineral counts
	e.GET("/v1/showcases", p.ListShowcases)
	// Single showcase details
	e.GET("/v1/showcases/:id", p.GetShowcase)
	// Shelves of a showcase in display order, with full codes
	e.GET("/v1/showcases/:id/shelves", p.ListShelvesByShowcase)
	// Single shelf details
	e.GET("/v1/shelves/:id", p.GetShelf)
	// Filterable, sortable mineral listing (search/color/location/rock_type/sort)
	e.GET("/v1/minerals", p.ListMinerals)
	// Distinct values for the filter dropdowns; static segments must be
	// registered alongside the :id route below (echo matches them first)
	e.GET("/v1/minerals/filter-options", p.GetFilterOptions)
	// Live catalog number probe for form validation
	e.GET("/v1/minerals/check-number", p.CheckNumber)
	// Single mineral details
	e.GET("/v1/minerals/:id", p.GetMineral)
	// Homepage statistics and most recent change timestamp
	e.GET("/v1/stats", p.GetStats)
	// Stored specimen images
	e.GET("/v1/images/:ref", p.GetImage)
}

// RegisterAdmin registers the mutating catalog routes.  Every route in this
// group passes the AdminAuth middleware first, so the authorization decision
// is made before any handler validation runs.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, sessionSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.AdminAuth(sessionSecret))

	// Showcase mutations
	g.POST("/showcases", a.CreateShowcase)
	g.PUT("/showcases/:id", a.UpdateShowcase)
	g.DELETE("/showcases/:id", a.DeleteShowcase)

	// Shelf mutations
	g.POST("/shelves", a.CreateShelf)
	g.PUT("/shelves/:id", a.UpdateShelf)
	g.DELETE("/shelves/:id", a.DeleteShelf)

	// Mineral mutations
	g.POST("/minerals", a.CreateMineral)
	g.PUT("/minerals/:id", a.UpdateMineral)
	g.DELETE("/minerals/:id", a.DeleteMineral)
}
