package api

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/BerylCAtieno/kicks-match/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestLoggingMiddleware tags each request with an id and logs its outcome.
// Bodies are not logged since they carry images.
func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		start := time.Now()
		log.Printf("=== INCOMING REQUEST [%s] %s %s (content-length=%d)", requestID, c.Request.Method, c.Request.URL.Path, c.Request.ContentLength)

		c.Next()

		log.Printf("=== RESPONSE [%s] status=%d latency=%s", requestID, c.Writer.Status(), time.Since(start))
	}
}

// JSONRecovery turns a panic into the same {ok:false} envelope as other failures.
func JSONRecovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Printf("ERROR: Recovered from panic: %v", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.Failure(fmt.Sprint(recovered)))
	})
}
