package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"mundox-portal-bff/internal/mw"
)

const availabilityPath = "/lab-reservations/availability"

// NewRouter creates and configures the portal's gin engine.
func NewRouter(d Deps) (*gin.Engine, error) {
	cfg := d.Config
	handler := NewHandler(d)
	log := handler.log

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	r.Use(mw.RequestID(), mw.AccessLog(log), gin.Recovery())
	if len(cfg.Server.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", mw.HeaderRequestID},
			ExposeHeaders:    []string{mw.HeaderRequestID, "Retry-After"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(
		mw.Security(d.Guard, d.Store, d.Notifier, cfg.Security.MaxBodyBytes, log),
		mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst, d.Store, log),
		mw.Audit(d.Store, log),
	)

	caching := mw.Cache(d.Cache, cfg.Cache.TTL)
	// Booking changes make the cached availability grid stale.
	staleAvailability := mw.InvalidateOnSuccess(d.Cache, "/api"+availabilityPath)

	r.GET("/healthz", handler.Health)

	api := r.Group("/api")
	{
		api.POST("/auth/login", handler.Login)
		api.POST("/auth/logout", handler.Logout)

		catalog := api.Group("/lab", caching)
		catalog.GET("/time-blocks", handler.GetTimeBlocks)
		catalog.GET("/computers", handler.GetComputers)
		catalog.GET("/options", handler.GetLabOptions)
	}

	authed := api.Group("", mw.RequireAuth(d.Verifier, cfg.Auth.CookieName))
	{
		authed.GET("/auth/me", handler.Me)

		authed.GET("/lab-reservations", handler.Proxy("lab-reservations"))
		authed.POST("/lab-reservations", staleAvailability, handler.CreateReservation)
		authed.GET(availabilityPath, caching, handler.GetAvailability)
		authed.GET("/lab-reservations/:id", handler.Proxy("lab-reservations/:id"))
		authed.DELETE("/lab-reservations/:id", staleAvailability, handler.Proxy("lab-reservations/:id"))

		authed.GET("/products", handler.Proxy("products"))
		authed.GET("/products/rfid/:hex", handler.GetProductByRFID)
		authed.GET("/products/:id", handler.Proxy("products/:id"))

		authed.GET("/lens-request", handler.Proxy("lens-request"))
		authed.POST("/lens-request", handler.Proxy("lens-request"))
		authed.GET("/lens-request/:id", handler.Proxy("lens-request/:id"))
	}

	admin := authed.Group("", mw.RequireRole(cfg.Auth.AdminRoles...))
	{
		admin.PATCH("/lab-reservations/:id/status", staleAvailability, handler.UpdateReservationStatus)

		admin.POST("/products", handler.SaveProduct)
		admin.PUT("/products/:id", handler.SaveProduct)
		admin.DELETE("/products/:id", handler.Proxy("products/:id"))
		admin.POST("/products/:id/actions/:action", handler.ProductAction)

		admin.Any("/admin/*path", handler.AdminProxy)

		admin.GET("/portal/security-events", handler.ListSecurityEvents)
		admin.GET("/portal/vapid-public-key", handler.GetVAPIDPublicKey)
		admin.PUT("/portal/push-subscriptions", handler.PutSubscription)
		admin.DELETE("/portal/push-subscriptions", handler.DeleteSubscription)
	}

	r.NoRoute(func(c *gin.Context) {
		mw.AbortJSON(c, http.StatusNotFound, "Recurso no encontrado")
	})

	return r, nil
}
