package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/salonhub/salon-booking/internal/auth"
	"github.com/salonhub/salon-booking/internal/handler"
	"github.com/salonhub/salon-booking/internal/middleware"
	"github.com/salonhub/salon-booking/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers and monitoring to verify the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes. Credential
// endpoints live under /v1/auth and carry the rate limiter; protected
// endpoints live under /v1 behind the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	if limiter != nil {
		// Throttle credential guessing; token issuance is the expensive
		// and abusable surface.
		g.Use(limiter)
	}
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token: the presented token is single-use.
	g.POST("/refresh", a.Refresh)
	// Revokes one session. No JWT required; possession of the refresh
	// token is the credential being surrendered.
	g.POST("/logout", a.Logout)

	authed := e.Group("/v1")
	authed.Use(middleware.JWTAuth(jwtSecret))
	authed.GET("/me", a.Me)
	// "Sign out everywhere" needs a proven identity, not a refresh token.
	authed.POST("/auth/logout-all", a.LogoutAll)
}

// RegisterSalons registers tenant bootstrap and membership administration.
// Member management is guarded per salon by the RBAC resolver; the
// members.manage permission is resolved against the store on every call.
func RegisterSalons(e *echo.Echo, s *handler.SalonHandler, resolver *auth.Resolver, jwtSecret string) {
	g := e.Group("/v1/salons")
	g.Use(middleware.JWTAuth(jwtSecret))

	g.POST("", s.CreateSalon)
	g.GET("/:salon_id", s.GetSalon)
	g.GET("/:salon_id/permissions", s.MyPermissions)

	members := g.Group("/:salon_id/members")
	members.Use(middleware.RequirePermission(resolver, model.PermMembersManage))
	members.POST("", s.GrantMemberRole)
	members.POST("/revoke", s.RevokeMemberRole)
}
