package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agrobridge/tradeapi/internal/api/middleware"
	"github.com/agrobridge/tradeapi/internal/domain"
	"github.com/agrobridge/tradeapi/internal/repository"
	"github.com/agrobridge/tradeapi/internal/service"
)

// ActivityResponse represents one audit log entry
type ActivityResponse struct {
	ID          string                 `json:"id"`
	UserID      string                 `json:"user_id"`
	Type        domain.ActivityType    `json:"type"`
	Description string                 `json:"description"`
	RelatedKind domain.EntityKind      `json:"related_kind"`
	RelatedID   string                 `json:"related_id"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt   string                 `json:"created_at"`
}

// HandleListActivities handles GET /v1/activities
func HandleListActivities(activities *service.ActivityService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.GetActorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		filter := repository.ActivityFilter{ListOptions: pageOptions(c, 10)}
		if userStr := c.Query("user_id"); userStr != "" {
			userID, err := uuid.Parse(userStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
				return
			}
			filter.UserID = &userID
		}
		if typeStr := c.Query("type"); typeStr != "" {
			activityType := domain.ActivityType(typeStr)
			filter.Type = &activityType
		}
		if kindStr := c.Query("related_kind"); kindStr != "" {
			kind := domain.EntityKind(kindStr)
			filter.RelatedKind = &kind
		}
		if relatedStr := c.Query("related_id"); relatedStr != "" {
			relatedID, err := uuid.Parse(relatedStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid related ID"})
				return
			}
			filter.RelatedID = &relatedID
		}

		list, total, err := activities.List(c.Request.Context(), actor, filter)
		if err != nil {
			writeError(c, err)
			return
		}

		responses := make([]ActivityResponse, len(list))
		for i, activity := range list {
			responses[i] = ActivityResponse{
				ID:          activity.ID.String(),
				UserID:      activity.UserID.String(),
				Type:        activity.Type,
				Description: activity.Description,
				RelatedKind: activity.RelatedKind,
				RelatedID:   activity.RelatedID.String(),
				Metadata:    activity.Metadata,
				CreatedAt:   formatTime(activity.CreatedAt),
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"activities":   responses,
			"total":        total,
			"total_pages":  totalPages(total, filter.Limit),
			"current_page": filter.Page,
		})
	}
}
