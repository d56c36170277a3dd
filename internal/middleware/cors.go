// internal/middleware/cors.go
package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/averbacoes/backoffice/internal/config"
)

func CORS(cfg config.FrontendConfig) gin.HandlerFunc {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 && cfg.BaseURL != "" {
		origins = []string{cfg.BaseURL}
	}

	if len(origins) == 0 {
		// No browser origin configured: allow any, without credentials
		return cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:    []string{"Origin", "Authorization", "Content-Type", "Accept-Language"},
			ExposeHeaders:   []string{"Content-Disposition", "X-Total-Count", "X-Request-ID"},
		})
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Accept-Language"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Total-Count", "X-Page", "X-Per-Page", "X-Total-Pages", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
