package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agrobridge/tradeapi/internal/api/middleware"
	"github.com/agrobridge/tradeapi/internal/domain"
	"github.com/agrobridge/tradeapi/internal/service"
)

// NotificationResponse represents a notification payload
type NotificationResponse struct {
	ID          string                  `json:"id"`
	Type        domain.NotificationType `json:"type"`
	Title       string                  `json:"title"`
	Message     string                  `json:"message"`
	IsRead      bool                    `json:"is_read"`
	RelatedKind domain.EntityKind       `json:"related_kind,omitempty"`
	RelatedID   string                  `json:"related_id,omitempty"`
	ExpiresAt   string                  `json:"expires_at"`
	CreatedAt   string                  `json:"created_at"`
}

// HandleListNotifications handles GET /v1/notifications
func HandleListNotifications(notifications *service.NotificationService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.GetActorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		opts := pageOptions(c, 20)
		unreadOnly := c.Query("unread") == "true"

		list, total, err := notifications.List(c.Request.Context(), actor, unreadOnly, opts)
		if err != nil {
			logger.Error("Failed to list notifications", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		responses := make([]NotificationResponse, len(list))
		for i, n := range list {
			responses[i] = NotificationResponse{
				ID:          n.ID.String(),
				Type:        n.Type,
				Title:       n.Title,
				Message:     n.Message,
				IsRead:      n.IsRead,
				RelatedKind: n.RelatedKind,
				RelatedID:   n.RelatedID.String(),
				ExpiresAt:   formatTime(n.ExpiresAt),
				CreatedAt:   formatTime(n.CreatedAt),
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"notifications": responses,
			"total":         total,
			"total_pages":   totalPages(total, opts.Limit),
			"current_page":  opts.Page,
		})
	}
}

// HandleMarkNotificationRead handles POST /v1/notifications/:id/read
func HandleMarkNotificationRead(notifications *service.NotificationService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.GetActorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification ID"})
			return
		}

		if err := notifications.MarkRead(c.Request.Context(), actor, id); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// HandleMarkAllNotificationsRead handles POST /v1/notifications/read-all
func HandleMarkAllNotificationsRead(notifications *service.NotificationService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.GetActorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if err := notifications.MarkAllRead(c.Request.Context(), actor); err != nil {
			logger.Error("Failed to mark notifications read", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// HandleUnreadCount handles GET /v1/notifications/unread-count
func HandleUnreadCount(notifications *service.NotificationService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.GetActorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		count, err := notifications.CountUnread(c.Request.Context(), actor)
		if err != nil {
			logger.Error("Failed to count unread notifications", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"unread": count})
	}
}
