package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer builds the gallery HTTP server with all routes configured.
func NewServer(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware, the gallery frontend may be served from elsewhere
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	api := r.Group("/api")
	{
		api.GET("/artworks", handler.ListArtworks)
		api.GET("/artworks/:id", handler.GetArtwork)
		api.DELETE("/artworks/:id", handler.DeleteArtwork)
		api.GET("/artworks/:id/pages/:num", handler.GetArtworkPage)
		api.GET("/tags", handler.ListTags)
		api.GET("/tags/:name", handler.GetArtworksByTag)
		api.GET("/authors/:id", handler.GetAuthor)
		api.GET("/bookmarks/:type", handler.ListBookmarks)
	}

	r.GET("/health", handler.GetHealth)
	r.GET("/stats", handler.GetStats)

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "pixiv-dl gallery",
			"version": handler.version,
			"endpoints": map[string]string{
				"artworks":  "/api/artworks?page=<n>&sort=<asc|desc>",
				"artwork":   "/api/artworks/<id>",
				"pages":     "/api/artworks/<id>/pages/<num>",
				"tags":      "/api/tags",
				"tag":       "/api/tags/<name>",
				"authors":   "/api/authors/<id>",
				"bookmarks": "/api/bookmarks/<public|private>",
				"health":    "/health",
				"stats":     "/stats",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}
