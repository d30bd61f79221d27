package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agrobridge/tradeapi/internal/domain"
	"github.com/agrobridge/tradeapi/internal/repository"
)

// NotificationService is the read side of notifications: users list and
// acknowledge their own messages.
type NotificationService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(repos *repository.Repositories, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		repos:  repos,
		logger: logger,
	}
}

// List returns the actor's notifications, newest first
func (s *NotificationService) List(ctx context.Context, actor domain.Actor, unreadOnly bool, opts repository.ListOptions) ([]*domain.Notification, int, error) {
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	return s.repos.Notification.ListByUser(ctx, actor.ID, unreadOnly, opts)
}

// MarkRead acknowledges one of the actor's notifications
func (s *NotificationService) MarkRead(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	return s.repos.Notification.MarkRead(ctx, id, actor.ID)
}

// MarkAllRead acknowledges every unread notification of the actor
func (s *NotificationService) MarkAllRead(ctx context.Context, actor domain.Actor) error {
	return s.repos.Notification.MarkAllRead(ctx, actor.ID)
}

// CountUnread returns the actor's unread notification count
func (s *NotificationService) CountUnread(ctx context.Context, actor domain.Actor) (int, error) {
	return s.repos.Notification.CountUnread(ctx, actor.ID)
}
