package mw

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mundox-portal-bff/internal/model"
	"mundox-portal-bff/internal/notification"
	"mundox-portal-bff/internal/security"
	"mundox-portal-bff/internal/store"
)

// Notifier queues an admin push message.
type Notifier interface {
	Dispatch(msg notification.Message) bool
}

// RouteKey maps a request path to its rate-limit key: "login" for the login
// endpoint, otherwise the first segment under /api.
func RouteKey(path string) string {
	if path == "/api/auth/login" {
		return "login"
	}
	rest := strings.TrimPrefix(path, "/api/")
	if rest == path {
		return "other"
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" {
		return "api"
	}
	return rest
}

// Security runs the guard on every request. The block list and rate limit
// are checked before the body is read; the body, whatever the method, is
// then size-capped, scanned and restored for the handlers. Rejections are
// answered with 403, 413 or 429 and reported rejections are recorded as
// security events.
func Security(guard *security.Guard, st store.Store, notifier Notifier, maxBody int64, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		key := RouteKey(c.Request.URL.Path)

		if verdict := guard.Admit(ip, key); !verdict.Allowed {
			reject(c, verdict, ip, key, st, notifier, log)
			return
		}

		var body []byte
		if c.Request.Body != nil && c.Request.Body != http.NoBody {
			data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBody+1))
			c.Request.Body.Close()
			if err != nil {
				AbortJSON(c, http.StatusBadRequest, MsgRejected)
				return
			}
			if int64(len(data)) > maxBody {
				AbortJSON(c, http.StatusRequestEntityTooLarge, MsgTooLarge)
				return
			}
			body = data
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		if verdict := guard.Scan(ip, body); !verdict.Allowed {
			reject(c, verdict, ip, key, st, notifier, log)
			return
		}
		c.Next()
	}
}

func reject(c *gin.Context, verdict security.Verdict, ip, key string, st store.Store, notifier Notifier, log *zap.Logger) {
	if verdict.Report {
		log.Warn("Request rejected by security guard",
			zap.String("ip", ip),
			zap.String("kind", string(verdict.Kind)),
			zap.String("key", key),
			zap.String("detail", verdict.Detail),
		)

		event := &model.SecurityEvent{
			At:     time.Now().UTC(),
			IP:     ip,
			Kind:   string(verdict.Kind),
			Key:    key,
			Detail: verdict.Detail,
		}
		if err := st.RecordSecurityEvent(c.Request.Context(), event); err != nil {
			log.Error("Failed to record security event", zap.Error(err))
		}
	}

	if verdict.NewlyBlocked && notifier != nil {
		notifier.Dispatch(notification.Message{
			Title: "IP bloqueada",
			Body:  "Se bloqueó " + ip + " por contenido sospechoso",
		})
	}

	switch verdict.Kind {
	case security.KindRateLimited:
		seconds := int(verdict.RetryAfter.Round(time.Second) / time.Second)
		if seconds < 1 {
			seconds = 1
		}
		c.Header("Retry-After", strconv.Itoa(seconds))
		AbortJSON(c, http.StatusTooManyRequests, MsgTooManyRequests)
	case security.KindSuspicious:
		AbortJSON(c, http.StatusForbidden, MsgRejected)
	default:
		AbortJSON(c, http.StatusForbidden, MsgForbidden)
	}
}
