package middleware

import (
	"strings"
	"time"

	"github.com/NomadCrew/neoevents/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware lets the map frontend call the API. An empty origin list or
// "*" allows every origin; entries of the form "*.example.com" match any
// subdomain. Requests from other origins are rejected with 403.
func CORSMiddleware(cfg *config.ServerConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Length", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{
			requestIDHeader,
			"Retry-After",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
		},
		AllowWebSockets: true,
		MaxAge:          12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 0 || containsOrigin(cfg.AllowedOrigins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		origins := append([]string(nil), cfg.AllowedOrigins...)
		corsConfig.AllowOriginFunc = func(origin string) bool {
			return originAllowed(origins, origin)
		}
		corsConfig.AllowCredentials = true
	}

	return cors.New(corsConfig)
}

func originAllowed(allowed []string, origin string) bool {
	for _, a := range allowed {
		if a == origin {
			return true
		}
		if strings.HasPrefix(a, "*.") && strings.HasSuffix(origin, a[1:]) {
			return true
		}
	}
	return false
}

func containsOrigin(s []string, str string) bool {
	for _, v := range s {
		if v == str {
			return true
		}
	}
	return false
}
