package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"fleetbook/internal/infra/config"
	"fleetbook/internal/infra/obs"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	GetByReference(c *gin.Context)
	PaymentIntent(c *gin.Context)
	Confirm(c *gin.Context)
	Cancel(c *gin.Context)
	Reject(c *gin.Context)
	Activate(c *gin.Context)
	Complete(c *gin.Context)
	AssignChauffeur(c *gin.Context)
	UnassignChauffeur(c *gin.Context)
}

type Handlers struct {
	Booking BookingHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/bookings/:id", h.Booking.Get)
		api.GET("/bookings/reference/:reference", h.Booking.GetByReference)
		api.POST("/bookings/:id/payment-intent", h.Booking.PaymentIntent)
		api.POST("/bookings/:id/confirm", h.Booking.Confirm)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
		api.POST("/bookings/:id/reject", h.Booking.Reject)
		api.POST("/bookings/:id/activate", h.Booking.Activate)
		api.POST("/bookings/:id/complete", h.Booking.Complete)
		api.POST("/bookings/:id/chauffeur", h.Booking.AssignChauffeur)
		api.DELETE("/bookings/:id/chauffeur", h.Booking.UnassignChauffeur)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
