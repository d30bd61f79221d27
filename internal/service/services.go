package service

import (
	"go.uber.org/zap"

	"github.com/agrobridge/tradeapi/internal/clock"
	"github.com/agrobridge/tradeapi/internal/repository"
)

// Services bundles the lifecycle services for injection
type Services struct {
	Offers        *OfferService
	Orders        *OrderService
	Activities    *ActivityService
	Notifications *NotificationService
}

// New wires the lifecycle services over the given repositories
func New(repos *repository.Repositories, clk clock.Clock, logger *zap.Logger) *Services {
	activities := NewActivityService(repos, logger)
	dispatcher := NewDispatcher(repos, logger)
	return &Services{
		Offers:        NewOfferService(repos, activities, dispatcher, clk, logger),
		Orders:        NewOrderService(repos, activities, dispatcher, clk, logger),
		Activities:    activities,
		Notifications: NewNotificationService(repos, logger),
	}
}
