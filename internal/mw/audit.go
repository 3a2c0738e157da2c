package mw

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mundox-portal-bff/internal/model"
	"mundox-portal-bff/internal/store"
)

// Audit records every non-GET /api request once it has been handled. Store
// failures are logged and never change the response.
func Audit(st store.Store, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead || c.Request.Method == http.MethodOptions ||
			!strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		entry := &model.AuditEntry{
			At:         start.UTC(),
			RequestID:  GetRequestID(c),
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			ClientIP:   c.ClientIP(),
			Status:     c.Writer.Status(),
			DurationMS: time.Since(start).Milliseconds(),
		}
		if claims := GetClaims(c); claims != nil {
			entry.UserID = claims.UserID()
			entry.Role = claims.Role
		}

		if err := st.RecordAudit(c.Request.Context(), entry); err != nil {
			log.Warn("Failed to record audit entry", zap.String("path", entry.Path), zap.Error(err))
		}
	}
}
