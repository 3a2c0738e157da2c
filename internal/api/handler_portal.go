package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mundox-portal-bff/internal/model"
	"mundox-portal-bff/internal/mw"
	"mundox-portal-bff/internal/store"
)

// Health reports liveness and whether the audit database answers.
func (h *Handler) Health(c *gin.Context) {
	status := http.StatusOK
	database := "ok"

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if !h.pingDB(ctx) {
		status = http.StatusServiceUnavailable
		database = "unavailable"
	}
	c.JSON(status, gin.H{"status": http.StatusText(status), "database": database})
}

func (h *Handler) pingDB(ctx context.Context) bool {
	gdb := h.store.DB()
	if gdb == nil {
		return false
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(ctx) == nil
}

// ListSecurityEvents handles GET /api/portal/security-events.
func (h *Handler) ListSecurityEvents(c *gin.Context) {
	filter := store.SecurityEventFilter{IP: c.Query("ip"), Kind: c.Query("kind")}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			mw.AbortJSON(c, http.StatusBadRequest, msgInvalidLimit)
			return
		}
		filter.Limit = limit
	}

	events, err := h.store.ListSecurityEvents(c.Request.Context(), filter)
	if err != nil {
		h.internalError(c, err)
		return
	}
	if events == nil {
		events = []model.SecurityEvent{}
	}
	c.JSON(http.StatusOK, gin.H{
		"events":  events,
		"blocked": h.guard.BlockList().List(),
	})
}

// GetVAPIDPublicKey returns the VAPID public key to the client.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		mw.AbortJSON(c, http.StatusServiceUnavailable, msgPushUnavailable)
		return
	}

	c.JSON(http.StatusOK, gin.H{"public_key": h.webpush.VAPIDPublicKey})
}

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

// PutSubscription registers the calling admin's browser for push.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mw.AbortJSON(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	subscription := model.PushSubscription{
		Endpoint: req.Endpoint,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}
	if claims := mw.GetClaims(c); claims != nil {
		subscription.UserID = claims.UserID()
	}

	if err := h.store.UpsertPushSubscription(c.Request.Context(), &subscription); err != nil {
		h.internalError(c, err)
		return
	}
	h.log.Info("Push subscription saved", zap.String("user_id", subscription.UserID))
	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription handles the deletion of a subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mw.AbortJSON(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if err := h.store.DeletePushSubscription(c.Request.Context(), req.Endpoint); err != nil {
		h.internalError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
