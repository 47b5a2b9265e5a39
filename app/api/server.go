package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type ServerOptions struct {
	APIAccessKey string
	CORSOrigins  []string
	Debug        bool
}

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, opts ServerOptions) *gin.Engine {
	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

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
		SkipPaths: []string{"/health"},
	}))

	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.Error("Panic recovered", "method", c.Request.Method, "path", c.Request.URL.Path, "error", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}))

	r.Use(corsMiddleware(opts.CORSOrigins))

	setupRoutes(r, handler, opts.APIAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/news/:count", handler.GetNews)
	r.GET("/articles", handler.GetArticles)
	r.GET("/articles.rss", handler.GetArticlesFeed)
	r.GET("/sources", handler.ListSources)

	if apiAccessKey != "" {
		r.POST("/scrape", authMiddleware(apiAccessKey), handler.Scrape)
		slog.Info("Scrape endpoint protected with API key")
	} else {
		r.POST("/scrape", handler.Scrape)
	}

	r.GET("/health", handler.GetHealth)
	r.GET("/about", handler.GetAbout)
	r.GET("/About", handler.GetAbout)

	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"news":     "/news/<count>",
			"articles": "/articles?limit=<n>",
			"rss":      "/articles.rss?limit=<n>",
			"scrape":   "/scrape?n=<count> (POST)",
			"sources":  "/sources",
			"health":   "/health",
			"about":    "/about",
		}

		if apiAccessKey != "" {
			endpoints["scrape"] = "/scrape?n=<count> (POST, requires X-API-Key header)"
		}

		c.JSON(http.StatusOK, gin.H{
			"service":   "Pulse",
			"version":   handler.opts.Version,
			"endpoints": endpoints,
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// corsMiddleware allows the configured origins. A "*" entry allows any origin.
func corsMiddleware(origins []string) gin.HandlerFunc {
	allowAll := slices.Contains(origins, "*")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowAll || slices.Contains(origins, origin)) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-API-Key")
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// authMiddleware creates authentication middleware for API endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		// Also check Authorization header with Bearer prefix
		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
