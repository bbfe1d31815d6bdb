package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// ReportOverflowHeader flags a PDF download whose content ran past the page.
const ReportOverflowHeader = "X-Report-Overflow"

// CORS creates a middleware that handles Cross-Origin Resource Sharing (CORS).
// Download headers are exposed so browser clients can read the suggested
// filename and the overflow flag.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader},
		ExposeHeaders:    []string{RequestIDHeader, "Content-Disposition", ReportOverflowHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	return cors.New(config)
}
