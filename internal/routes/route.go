package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/PaoComPlanta/rota-da-festa/internal/container"
	"github.com/PaoComPlanta/rota-da-festa/internal/handlers"
	"github.com/PaoComPlanta/rota-da-festa/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.New()

	origins := []string{"http://localhost:3000"}
	if container.Config != nil && container.Config.FrontendURL != "" {
		origins = strings.Split(container.Config.FrontendURL, ",")
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	if container.Metrics != nil {
		r.GET("/metrics", gin.WrapH(container.Metrics.Handler()))
	}

	// API version 1
	var refresher middleware.TokenRefresher
	if container.AuthService != nil {
		refresher = container.AuthService
	}

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Session())
	v1.Use(middleware.OptionalAuth(container.TokenValidator, refresher, container.Logger))
	{
		v1.GET("/health", func(c *gin.Context) {
			loadedAt, loaded := container.EventService.LoadedAt()
			status := http.StatusOK
			if !loaded {
				status = http.StatusServiceUnavailable
			}
			c.JSON(status, gin.H{
				"status":           http.StatusText(status),
				"service":          "rota-da-festa-api",
				"events_loaded":    loaded,
				"events_loaded_at": loadedAt,
			})
		})

		v1.POST("/login", handlers.Login(container.AuthService))
		v1.POST("/logout", handlers.Logout())

		v1.GET("/locations", handlers.ListLocations(container.LocationService))
		v1.PUT("/location", handlers.ChooseLocation(container.LocationService))
	}

	eventRoutes := v1.Group("/events")
	{
		eventRoutes.GET("", handlers.ListEvents(container.EventService, container.LocationService))
		eventRoutes.GET("/map", handlers.EventMarkers(container.EventService, container.LocationService))
		eventRoutes.GET("/:id", handlers.GetEvent(container.EventService, container.LocationService, container.Now))
		eventRoutes.GET("/:id/calendar", handlers.DownloadCalendar(container.EventService))
	}

	favouriteRoutes := v1.Group("/favourites")
	{
		favouriteRoutes.GET("", handlers.GetFavourites(container.FavouritesService))
		favouriteRoutes.POST("/:id/toggle", handlers.ToggleFavourite(container.FavouritesService))
	}

	return r
}
