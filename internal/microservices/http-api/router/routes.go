// Package router assembles the gin engine serving the blog API.
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"bloghub/internal/microservices/http-api/handler"
	"bloghub/internal/microservices/http-api/middleware"
)

// Handlers groups everything mounted under /api.
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Category     *handler.CategoryHandler
	Post         *handler.PostHandler
	Comment      *handler.CommentHandler
	Notification *handler.NotificationHandler
	// WebSocket upgrades GET /api/ws; optional.
	WebSocket gin.HandlerFunc
}

type Options struct {
	CORSOrigins []string
	// AccessLog enables gin's request logger.
	AccessLog bool
}

// New builds the engine. Everything under /api except /api/auth requires a
// bearer token.
func New(validator middleware.TokenValidator, h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	if opts.AccessLog {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	h.Auth.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(validator))
	{
		h.User.RegisterRoutes(protected)
		h.Category.RegisterRoutes(protected)
		h.Post.RegisterRoutes(protected)
		h.Comment.RegisterRoutes(protected)
		h.Notification.RegisterRoutes(protected)
		if h.WebSocket != nil {
			protected.GET("/ws", h.WebSocket)
		}
	}
	return r
}
