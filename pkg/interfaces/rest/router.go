package rest

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/embunadw/wms/pkg/config"
	"github.com/embunadw/wms/pkg/interfaces/rest/handler"
	"github.com/embunadw/wms/pkg/interfaces/rest/middleware"
)

// NewRouter wires the middleware chain and the API routes
func NewRouter(cfg *config.Config, h *handler.Handlers, logger *zap.Logger) (*gin.Engine, error) {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS())

	r.GET("/health", h.Health.Health)

	api := r.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		limit, err := middleware.RateLimit(cfg.RateLimit.Rate)
		if err != nil {
			return nil, err
		}
		api.Use(limit)
	}
	api.Use(middleware.Identity())

	draftRoutes := api.Group("/drafts")
	{
		draftRoutes.POST("", h.Draft.Create)
		draftRoutes.GET("/:id", h.Draft.Get)
		draftRoutes.DELETE("/:id", h.Draft.Discard)
		draftRoutes.PUT("/:id/source", h.Draft.SelectSource)
		draftRoutes.POST("/:id/lines", h.Draft.AddLine)
		draftRoutes.DELETE("/:id/lines/:index", h.Draft.RemoveLine)
		draftRoutes.POST("/:id/submit", h.Draft.Submit)
		draftRoutes.GET("/:id/history", h.Draft.History)
	}

	deliveryRoutes := api.Group("/deliveries")
	{
		deliveryRoutes.GET("/:id/action", h.Delivery.NextAction)
		deliveryRoutes.PATCH("/:id/status", h.Delivery.UpdateStatus)
	}

	api.PUT("/purchase-orders/:id/status", h.Delivery.UpdatePurchaseOrderStatus)

	return r, nil
}
