package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agrobridge/tradeapi/internal/domain"
	"github.com/agrobridge/tradeapi/internal/repository"
	"github.com/agrobridge/tradeapi/pkg/errors"
)

// ActivityService is the append-only audit log. Recording is best-effort: a
// failed write is logged and swallowed so it can never undo a state change
// that already happened.
type ActivityService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewActivityService creates a new activity service
func NewActivityService(repos *repository.Repositories, logger *zap.Logger) *ActivityService {
	return &ActivityService{
		repos:  repos,
		logger: logger,
	}
}

// Record appends one audit entry
func (s *ActivityService) Record(ctx context.Context, actor domain.Actor, activityType domain.ActivityType, description string, kind domain.EntityKind, relatedID uuid.UUID, metadata map[string]interface{}) {
	activity := &domain.Activity{
		UserID:      actor.ID,
		Type:        activityType,
		Description: description,
		RelatedKind: kind,
		RelatedID:   relatedID,
		Metadata:    metadata,
	}

	if err := s.repos.Activity.Create(ctx, activity); err != nil {
		s.logger.Warn("Failed to record activity",
			zap.String("type", string(activityType)),
			zap.String("related_id", relatedID.String()),
			zap.Error(err),
		)
	}
}

// List returns audit entries, admin/manager only
func (s *ActivityService) List(ctx context.Context, actor domain.Actor, filter repository.ActivityFilter) ([]*domain.Activity, int, error) {
	if !actor.Role.IsStaff() {
		return nil, 0, &errors.ErrForbidden{Message: "only managers may view the activity log"}
	}
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	return s.repos.Activity.List(ctx, filter)
}
