// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/yuri-shui/FlightBooking/internal/handler"
	"github.com/yuri-shui/FlightBooking/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.  The
// unauthenticated operations live under /v1/auth; protected endpoints
// live under /v1 behind the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issues a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Revokes a single session by refresh token; no JWT required.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	// With a bearer token and no body this revokes every session.
	auth.POST("/logout", a.Logout)
}

// RegisterSearch registers the public itinerary search endpoint.  The
// cache middleware, when backed by a live Redis client, short-circuits
// repeat searches for the same date and city pair.
func RegisterSearch(e *echo.Echo, s *handler.SearchHandler, cache echo.MiddlewareFunc) {
	if cache != nil {
		e.GET("/v1/itineraries", s.Search, cache)
		return
	}
	e.GET("/v1/itineraries", s.Search)
}

// RegisterReservations registers the authenticated booking endpoints.
func RegisterReservations(e *echo.Echo, r *handler.ReservationHandler, jwtSecret string) {
	g := e.Group("/v1/reservations")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.POST("", r.Book)
	g.GET("", r.List)
	g.DELETE("", r.Cancel)
}
