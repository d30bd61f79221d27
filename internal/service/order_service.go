package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agrobridge/tradeapi/internal/clock"
	"github.com/agrobridge/tradeapi/internal/domain"
	"github.com/agrobridge/tradeapi/internal/repository"
	"github.com/agrobridge/tradeapi/pkg/errors"
)

// OrderService owns the order lifecycle: creation from approved offers,
// status transitions, payment side effects and history entries.
type OrderService struct {
	repos      *repository.Repositories
	activities *ActivityService
	dispatcher *Dispatcher
	clock      clock.Clock
	logger     *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(repos *repository.Repositories, activities *ActivityService, dispatcher *Dispatcher, clk clock.Clock, logger *zap.Logger) *OrderService {
	return &OrderService{
		repos:      repos,
		activities: activities,
		dispatcher: dispatcher,
		clock:      clk,
		logger:     logger,
	}
}

// CreateFromOffer converts an approved offer into an order. The offer's
// price, quantity and unit are snapshotted into a line item; later offer
// edits never touch the order.
func (s *OrderService) CreateFromOffer(ctx context.Context, actor domain.Actor, req CreateOrderRequest) (*domain.Order, error) {
	if !actor.Role.IsStaff() {
		return nil, &errors.ErrForbidden{Message: "only managers may create orders"}
	}

	offerID, err := uuid.Parse(req.OfferID)
	if err != nil {
		return nil, &errors.ErrValidation{Field: "offer_id", Message: "must be a valid UUID"}
	}

	offer, err := s.repos.Offer.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.Status != domain.OfferStatusApproved {
		return nil, &errors.ErrInvalidState{Entity: "offer", Status: string(offer.Status), Action: "create order from"}
	}

	now := s.clock.Now()
	orderNumber, err := s.nextOrderNumber(ctx, now)
	if err != nil {
		return nil, err
	}

	item := domain.OrderItem{
		ProductID: offer.ProductID,
		Quantity:  offer.Quantity,
		Price:     offer.Price.Value,
		Unit:      offer.Unit,
		Subtotal:  offer.Price.Value * offer.Quantity,
	}

	order := &domain.Order{
		ID:          uuid.New(),
		OrderNumber: orderNumber,
		SupplierID:  offer.SupplierID,
		CustomerID:  actor.ID,
		OfferID:     offer.ID,
		Items:       []domain.OrderItem{item},
		Currency:    offer.Price.Currency,
		Status:      domain.OrderStatusNew,
		DeliveryDetails: domain.DeliveryDetails{
			Address:               req.Delivery.Address,
			City:                  req.Delivery.City,
			Country:               req.Delivery.Country,
			PostalCode:            req.Delivery.PostalCode,
			ContactPerson:         req.Delivery.ContactPerson,
			ContactPhone:          req.Delivery.ContactPhone,
			EstimatedDeliveryDate: req.Delivery.EstimatedDeliveryDate,
			TrackingNumber:        req.Delivery.TrackingNumber,
			ShippingMethod:        req.Delivery.ShippingMethod,
		},
		PaymentDetails: domain.PaymentDetails{
			Method:        req.Payment.Method,
			Status:        domain.PaymentStatusPending,
			TransactionID: req.Payment.TransactionID,
			DueDate:       req.Payment.DueDate,
		},
		History: []domain.HistoryEntry{{
			Status:    string(domain.OrderStatusNew),
			UpdatedBy: actor.ID,
			UpdatedAt: now,
			Note:      "Order created",
		}},
		CreatedBy: actor.ID,
		UpdatedBy: actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	order.RecomputeTotal()

	if err := s.repos.Order.Create(ctx, order); err != nil {
		return nil, err
	}

	s.activities.Record(ctx, actor, domain.ActivityOrderCreated,
		fmt.Sprintf("Order %s was created from offer", order.OrderNumber),
		domain.EntityOrder, order.ID, nil)

	s.dispatcher.FanOut(ctx, []uuid.UUID{order.SupplierID},
		domain.NotificationOrderStatusChange,
		"New Order Created",
		fmt.Sprintf("A new order (%s) has been created from your approved offer", order.OrderNumber),
		domain.EntityOrder, order.ID)

	return order, nil
}

// Transition is the authoritative order state-machine operation
func (s *OrderService) Transition(ctx context.Context, actor domain.Actor, orderID uuid.UUID, req TransitionRequest) (*domain.Order, error) {
	next := domain.OrderStatus(req.Status)
	if !next.IsValid() {
		return nil, &errors.ErrValidation{Field: "status", Message: fmt.Sprintf("unknown status %q", req.Status)}
	}

	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.checkRelationship(actor, order, "update"); err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, &errors.ErrInvalidState{Entity: "order", Status: string(order.Status), Action: "transition"}
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, &errors.ErrInvalidTransition{Entity: "order", From: string(order.Status), To: string(next)}
	}
	if actor.Role == domain.RoleSupplier && !order.Status.CanSupplierTransitionTo(next) {
		return nil, &errors.ErrInvalidTransition{Entity: "order", From: string(order.Status), To: string(next)}
	}

	now := s.clock.Now()
	patch := repository.OrderStatusPatch{UpdatedBy: actor.ID}

	switch next {
	case domain.OrderStatusShipped:
		if order.DeliveryDetails.ActualDeliveryDate == nil {
			patch.ActualDeliveryDate = &now
		}
	case domain.OrderStatusDelivered:
		// Cash on delivery: the handover is the payment.
		if order.PaymentDetails.Method == "cash" && order.PaymentDetails.Status == domain.PaymentStatusPending {
			paid := domain.PaymentStatusPaid
			patch.PaymentStatus = &paid
			patch.PaidAt = &now
		}
	}

	message := fmt.Sprintf("Order %s has been %s", order.OrderNumber, statusLabel(string(next)))
	if req.Note != "" {
		message += ". Notes: " + req.Note
	}

	if err := s.applyTransition(ctx, actor, order, next, patch, req.Note,
		fmt.Sprintf("Order %s", statusLabel(string(next))), message); err != nil {
		return nil, err
	}

	if patch.ActualDeliveryDate != nil {
		order.DeliveryDetails.ActualDeliveryDate = patch.ActualDeliveryDate
	}
	if patch.PaymentStatus != nil {
		order.PaymentDetails.Status = *patch.PaymentStatus
		order.PaymentDetails.PaidAt = patch.PaidAt
	}
	return order, nil
}

// Cancel terminates an order. Admin/manager only, and only from new,
// confirmed or error status.
func (s *OrderService) Cancel(ctx context.Context, actor domain.Actor, orderID uuid.UUID, req CancelRequest) (*domain.Order, error) {
	if !actor.Role.IsStaff() {
		return nil, &errors.ErrForbidden{Message: "only managers may cancel orders"}
	}

	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsCancellable() {
		return nil, &errors.ErrInvalidState{Entity: "order", Status: string(order.Status), Action: "cancel"}
	}

	reason := req.Reason
	if reason == "" {
		reason = "Order cancelled"
	}
	message := fmt.Sprintf("Order %s has been cancelled. Reason: %s", order.OrderNumber, reason)

	patch := repository.OrderStatusPatch{UpdatedBy: actor.ID}
	if err := s.applyTransition(ctx, actor, order, domain.OrderStatusCancelled, patch,
		reason, "Order Cancelled", message); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateDetails changes delivery/payment details without touching status.
// Allowed only while the order is still in motion.
func (s *OrderService) UpdateDetails(ctx context.Context, actor domain.Actor, orderID uuid.UUID, req UpdateOrderRequest) (*domain.Order, error) {
	if !actor.Role.IsStaff() {
		return nil, &errors.ErrForbidden{Message: "only managers may update order details"}
	}

	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsDetailUpdatable() {
		return nil, &errors.ErrInvalidState{Entity: "order", Status: string(order.Status), Action: "update"}
	}

	if req.Delivery != nil {
		d := req.Delivery
		order.DeliveryDetails.Address = d.Address
		order.DeliveryDetails.City = d.City
		order.DeliveryDetails.Country = d.Country
		order.DeliveryDetails.PostalCode = d.PostalCode
		order.DeliveryDetails.ContactPerson = d.ContactPerson
		order.DeliveryDetails.ContactPhone = d.ContactPhone
		order.DeliveryDetails.EstimatedDeliveryDate = d.EstimatedDeliveryDate
		if d.TrackingNumber != nil {
			order.DeliveryDetails.TrackingNumber = d.TrackingNumber
		}
		order.DeliveryDetails.ShippingMethod = d.ShippingMethod
	}
	if req.Payment != nil {
		p := req.Payment
		order.PaymentDetails.Method = p.Method
		if p.TransactionID != nil {
			order.PaymentDetails.TransactionID = p.TransactionID
		}
		order.PaymentDetails.DueDate = p.DueDate
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
	}
	order.UpdatedBy = actor.ID

	if err := s.repos.Order.UpdateDetails(ctx, order); err != nil {
		return nil, err
	}

	entry := domain.HistoryEntry{
		Status:    string(order.Status),
		UpdatedBy: actor.ID,
		UpdatedAt: s.clock.Now(),
		Note:      "Order details updated",
	}
	if err := s.repos.Order.AppendHistory(ctx, order.ID, entry); err != nil {
		return nil, err
	}
	order.History = append(order.History, entry)

	s.activities.Record(ctx, actor, domain.ActivityOrderUpdated,
		fmt.Sprintf("Order %s was updated", order.OrderNumber),
		domain.EntityOrder, order.ID, nil)

	s.dispatcher.FanOut(ctx, []uuid.UUID{order.SupplierID},
		domain.NotificationOrderStatusChange,
		"Order Updated",
		fmt.Sprintf("Order %s details have been updated", order.OrderNumber),
		domain.EntityOrder, order.ID)

	return order, nil
}

// AddDocument appends a document reference. Permitted to the order's
// supplier or to admin/manager; never changes status.
func (s *OrderService) AddDocument(ctx context.Context, actor domain.Actor, orderID uuid.UUID, req AddDocumentRequest) (*domain.Order, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.checkRelationship(actor, order, "attach documents to"); err != nil {
		return nil, err
	}

	doc := domain.Document{
		OrderID:    order.ID,
		Type:       req.Type,
		URL:        req.URL,
		UploadedAt: s.clock.Now(),
		UploadedBy: actor.ID,
	}
	if err := s.repos.Order.AddDocument(ctx, &doc); err != nil {
		return nil, err
	}
	order.Documents = append(order.Documents, doc)

	s.activities.Record(ctx, actor, domain.ActivityDocumentUploaded,
		fmt.Sprintf("Document (%s) was added to order %s", req.Type, order.OrderNumber),
		domain.EntityOrder, order.ID, nil)

	return order, nil
}

// Get returns one order; suppliers only see their own
func (s *OrderService) Get(ctx context.Context, actor domain.Actor, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleSupplier && order.SupplierID != actor.ID {
		return nil, &errors.ErrForbidden{Message: "you do not have permission to view this order"}
	}
	return order, nil
}

// List returns orders matching the filter; suppliers are scoped to their own
func (s *OrderService) List(ctx context.Context, actor domain.Actor, filter repository.OrderFilter) ([]*domain.Order, int, error) {
	if actor.Role == domain.RoleSupplier {
		filter.SupplierID = &actor.ID
	}
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	return s.repos.Order.List(ctx, filter)
}

func (s *OrderService) checkRelationship(actor domain.Actor, order *domain.Order, action string) error {
	if actor.Role.IsStaff() {
		return nil
	}
	if actor.Role == domain.RoleSupplier && order.SupplierID == actor.ID {
		return nil
	}
	if order.CustomerID == actor.ID {
		return nil
	}
	return &errors.ErrForbidden{Message: fmt.Sprintf("you do not have permission to %s this order", action)}
}

// nextOrderNumber builds ORD-<YY><MM>-<seq> from the atomically incremented
// per-month sequence.
func (s *OrderService) nextOrderNumber(ctx context.Context, now time.Time) (string, error) {
	period := now.Format("0601")
	seq, err := s.repos.Order.NextOrderNumber(ctx, period)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%s-%06d", period, seq), nil
}

// applyTransition performs the fixed transition sequence: conditional status
// write, history append, audit record, notification fan-out.
func (s *OrderService) applyTransition(ctx context.Context, actor domain.Actor, order *domain.Order, next domain.OrderStatus, patch repository.OrderStatusPatch, note, title, message string) error {
	if err := s.repos.Order.UpdateStatus(ctx, order.ID, order.Status, next, patch); err != nil {
		return err
	}

	entry := domain.HistoryEntry{
		Status:    string(next),
		UpdatedBy: actor.ID,
		UpdatedAt: s.clock.Now(),
		Note:      note,
	}
	if err := s.repos.Order.AppendHistory(ctx, order.ID, entry); err != nil {
		s.logger.Error("Failed to append order history",
			zap.String("order_id", order.ID.String()), zap.Error(err))
		return err
	}

	order.Status = next
	order.UpdatedBy = actor.ID
	order.History = append(order.History, entry)

	s.activities.Record(ctx, actor, domain.ActivityOrderStatusChanged,
		fmt.Sprintf("Order %s status changed to %s", order.OrderNumber, next),
		domain.EntityOrder, order.ID, map[string]interface{}{"status": string(next)})

	s.dispatcher.FanOut(ctx, orderCounterparty(order, actor.Role),
		domain.NotificationOrderStatusChange, title, message,
		domain.EntityOrder, order.ID)

	return nil
}
