package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionName = "classnotes_session"

// RouterOptions configures the middleware around the API routes.
type RouterOptions struct {
	SessionSecret  string
	AllowedOrigins []string // "*" allows any origin
}

// NewRouter builds the gin engine with every API route mounted under /api.
func NewRouter(api *APIHandler, authHandler *AuthHandler, logger *zap.Logger, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(logger))
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))
	router.Use(sessions.Sessions(sessionName, cookie.NewStore([]byte(opts.SessionSecret))))

	// Setup API routes
	r := router.Group("/api")
	{
		// Notes routes
		r.GET("/notes/:classroomId", api.GetNotes)
		r.POST("/notes/:classroomId", api.SaveNotes)

		// Class routes
		r.GET("/classes", api.GetAllClasses)
		r.GET("/classes/export", api.ExportClasses)

		// Import route
		r.POST("/import/notes", api.ImportNotes)

		// Session routes
		r.POST("/login", authHandler.Login)
		r.POST("/logout", authHandler.Logout)

		r.GET("/ping", PingHandler)
	}
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			// Credentials rule out a literal "*", so echo the caller's origin.
			cfg.AllowOriginFunc = func(string) bool { return true }
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return false }
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
