package router

import (
	"time"

	"github.com/NomadCrew/neoevents/config"
	"github.com/NomadCrew/neoevents/docs"
	"github.com/NomadCrew/neoevents/handlers"
	"github.com/NomadCrew/neoevents/internal/websocket"
	"github.com/NomadCrew/neoevents/middleware"
	"github.com/NomadCrew/neoevents/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies holds everything the routes need.
type Dependencies struct {
	Config              *config.Config
	DiscoveryHandler    *handlers.DiscoveryHandler
	FavoritesHandler    *handlers.FavoritesHandler
	NotificationHandler *handlers.NotificationHandler
	HealthHandler       *handlers.HealthHandler
	WSHandler           *websocket.Handler
	SearchLimiter       services.RateLimiter
}

// SetupRouter builds the gin engine with all routes.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.SecurityHeadersMiddleware(deps.Config))
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))

	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if deps.Config.Server.Version != "" {
		docs.SwaggerInfo.Version = deps.Config.Server.Version
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/v1")
	{
		v1.GET("/ws", deps.WSHandler.HandleWebSocket)
		v1.GET("/map", deps.DiscoveryHandler.GetMapHandler)

		v1.PUT("/location", deps.DiscoveryHandler.UpdateLocationHandler)
		v1.POST("/location/reset", deps.DiscoveryHandler.ResetLocationHandler)
		v1.PUT("/filter", deps.DiscoveryHandler.SetFilterHandler)

		search := []gin.HandlerFunc{deps.DiscoveryHandler.SearchHandler}
		if deps.SearchLimiter != nil {
			rl := deps.Config.RateLimit
			limit := middleware.RateLimiter(deps.SearchLimiter, "search", rl.SearchRequestsPerMinute,
				time.Duration(rl.WindowSeconds)*time.Second)
			search = append([]gin.HandlerFunc{limit}, search...)
		}
		v1.POST("/search", search...)

		eventRoutes := v1.Group("/events")
		{
			eventRoutes.GET("", deps.DiscoveryHandler.ListEventsHandler)
			eventRoutes.POST("/refresh", deps.DiscoveryHandler.RefreshEventsHandler)
			eventRoutes.PUT("/:id/select", deps.DiscoveryHandler.SelectEventHandler)
			eventRoutes.GET("/:id/directions", deps.DiscoveryHandler.DirectionsHandler)
		}

		favoriteRoutes := v1.Group("/favorites")
		{
			favoriteRoutes.GET("", deps.FavoritesHandler.ListFavoritesHandler)
			favoriteRoutes.GET("/calendar.ics", deps.FavoritesHandler.CalendarHandler)
			favoriteRoutes.POST("/:id/toggle", deps.FavoritesHandler.ToggleFavoriteHandler)
		}

		v1.GET("/notifications/permission", deps.NotificationHandler.GetPermissionHandler)
		v1.POST("/notifications/permission", deps.NotificationHandler.SetPermissionHandler)
	}

	return r
}
