package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agrobridge/tradeapi/internal/domain"
	"github.com/agrobridge/tradeapi/internal/repository"
)

// Dispatcher fans lifecycle events out to the users who need to hear about
// them. Delivery is fire-and-forget: failures are logged and never fail the
// triggering transition.
type Dispatcher struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewDispatcher creates a new notification dispatcher
func NewDispatcher(repos *repository.Repositories, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		repos:  repos,
		logger: logger,
	}
}

// FanOut creates one notification per recipient
func (d *Dispatcher) FanOut(ctx context.Context, recipients []uuid.UUID, notificationType domain.NotificationType, title, message string, kind domain.EntityKind, relatedID uuid.UUID) {
	for _, userID := range recipients {
		notification := &domain.Notification{
			UserID:      userID,
			Type:        notificationType,
			Title:       title,
			Message:     message,
			RelatedKind: kind,
			RelatedID:   relatedID,
		}
		if err := d.repos.Notification.Create(ctx, notification); err != nil {
			d.logger.Warn("Failed to deliver notification",
				zap.String("user_id", userID.String()),
				zap.String("title", title),
				zap.Error(err),
			)
		}
	}
}

// Managers resolves all active managers, the counter-party of any supplier action
func (d *Dispatcher) Managers(ctx context.Context) []uuid.UUID {
	managers, err := d.repos.User.ListByRole(ctx, domain.RoleManager)
	if err != nil {
		d.logger.Warn("Failed to resolve managers for notification", zap.Error(err))
		return nil
	}
	ids := make([]uuid.UUID, 0, len(managers))
	for _, m := range managers {
		ids = append(ids, m.ID)
	}
	return ids
}

// offerCounterparty returns who must hear about an offer change: a supplier
// acting means all managers, staff acting means the offer's supplier.
func (d *Dispatcher) offerCounterparty(ctx context.Context, offer *domain.Offer, acting domain.Role) []uuid.UUID {
	if acting == domain.RoleSupplier {
		return d.Managers(ctx)
	}
	return []uuid.UUID{offer.SupplierID}
}

// orderCounterparty returns who must hear about an order change: a supplier
// acting means the customer, anyone else means the supplier.
func orderCounterparty(order *domain.Order, acting domain.Role) []uuid.UUID {
	if acting == domain.RoleSupplier {
		return []uuid.UUID{order.CustomerID}
	}
	return []uuid.UUID{order.SupplierID}
}
