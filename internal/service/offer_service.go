package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agrobridge/tradeapi/internal/clock"
	"github.com/agrobridge/tradeapi/internal/domain"
	"github.com/agrobridge/tradeapi/internal/repository"
	"github.com/agrobridge/tradeapi/pkg/errors"
)

// OfferService owns the offer lifecycle: status transitions, permission
// checks and history entries. Nothing else mutates offer status.
type OfferService struct {
	repos      *repository.Repositories
	activities *ActivityService
	dispatcher *Dispatcher
	clock      clock.Clock
	logger     *zap.Logger
}

// NewOfferService creates a new offer service
func NewOfferService(repos *repository.Repositories, activities *ActivityService, dispatcher *Dispatcher, clk clock.Clock, logger *zap.Logger) *OfferService {
	return &OfferService{
		repos:      repos,
		activities: activities,
		dispatcher: dispatcher,
		clock:      clk,
		logger:     logger,
	}
}

// Create registers a new offer in negotiating status
func (s *OfferService) Create(ctx context.Context, actor domain.Actor, req OfferTermsRequest) (*domain.Offer, error) {
	if actor.Role != domain.RoleSupplier {
		return nil, &errors.ErrForbidden{Message: "only suppliers may create offers"}
	}

	terms, err := buildOfferTerms(req)
	if err != nil {
		return nil, err
	}

	product, err := s.repos.Product.GetByID(ctx, terms.ProductID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	offer := &domain.Offer{
		ID:            uuid.New(),
		ProductID:     product.ID,
		SupplierID:    actor.ID,
		Price:         terms.Price,
		Quantity:      terms.Quantity,
		Unit:          terms.Unit,
		Status:        domain.OfferStatusNegotiating,
		ExpiresAt:     terms.ExpiresAt,
		DeliveryTerms: terms.Delivery,
		PaymentTerms:  terms.Payment,
		Notes:         terms.Notes,
		History: []domain.HistoryEntry{{
			Status:    string(domain.OfferStatusNegotiating),
			UpdatedBy: actor.ID,
			UpdatedAt: now,
			Note:      "Offer created",
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if offer.ExpiresAt.IsZero() {
		offer.ExpiresAt = now.Add(domain.DefaultOfferTTL)
	}

	if err := s.repos.Offer.Create(ctx, offer); err != nil {
		return nil, err
	}

	s.activities.Record(ctx, actor, domain.ActivityOfferCreated,
		fmt.Sprintf("Offer for %s was created", product.Name),
		domain.EntityOffer, offer.ID, nil)

	s.dispatcher.FanOut(ctx, s.dispatcher.Managers(ctx),
		domain.NotificationOfferStatusChange,
		"New Offer Created",
		fmt.Sprintf("A new offer for %s has been created", product.Name),
		domain.EntityOffer, offer.ID)

	return offer, nil
}

// Update replaces the mutable commercial terms of an offer without changing
// its status. Allowed only while the offer is still under negotiation or review.
func (s *OfferService) Update(ctx context.Context, actor domain.Actor, offerID uuid.UUID, req OfferTermsRequest) (*domain.Offer, error) {
	offer, err := s.repos.Offer.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}

	if actor.Role == domain.RoleSupplier && offer.SupplierID != actor.ID {
		return nil, &errors.ErrForbidden{Message: "you do not have permission to update this offer"}
	}
	if !offer.IsEditable() {
		return nil, &errors.ErrInvalidState{Entity: "offer", Status: string(offer.Status), Action: "update"}
	}

	terms, err := buildOfferTerms(req)
	if err != nil {
		return nil, err
	}

	offer.Price = terms.Price
	offer.Quantity = terms.Quantity
	offer.Unit = terms.Unit
	if !terms.ExpiresAt.IsZero() {
		offer.ExpiresAt = terms.ExpiresAt
	}
	offer.DeliveryTerms = terms.Delivery
	offer.PaymentTerms = terms.Payment
	offer.Notes = terms.Notes

	if err := s.repos.Offer.UpdateTerms(ctx, offer); err != nil {
		return nil, err
	}

	entry := domain.HistoryEntry{
		Status:    string(offer.Status),
		UpdatedBy: actor.ID,
		UpdatedAt: s.clock.Now(),
		Note:      "Offer updated",
	}
	if err := s.repos.Offer.AppendHistory(ctx, offer.ID, entry); err != nil {
		return nil, err
	}
	offer.History = append(offer.History, entry)

	s.activities.Record(ctx, actor, domain.ActivityOfferUpdated,
		fmt.Sprintf("Offer %s was updated", offer.ID),
		domain.EntityOffer, offer.ID, nil)

	s.dispatcher.FanOut(ctx, s.dispatcher.offerCounterparty(ctx, offer, actor.Role),
		domain.NotificationOfferStatusChange,
		"Offer Updated",
		"Offer terms have been updated",
		domain.EntityOffer, offer.ID)

	return offer, nil
}

// RequestApproval moves a negotiating offer to pending approval. Only the
// offer's own supplier may submit it.
func (s *OfferService) RequestApproval(ctx context.Context, actor domain.Actor, offerID uuid.UUID) (*domain.Offer, error) {
	offer, err := s.repos.Offer.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}

	if offer.SupplierID != actor.ID {
		return nil, &errors.ErrForbidden{Message: "you do not have permission to submit this offer"}
	}
	if offer.Status != domain.OfferStatusNegotiating {
		return nil, &errors.ErrInvalidTransition{
			Entity: "offer",
			From:   string(offer.Status),
			To:     string(domain.OfferStatusPendingApproval),
		}
	}

	return s.applyTransition(ctx, actor, offer, domain.OfferStatusPendingApproval,
		repository.OfferStatusPatch{}, "Submitted for approval",
		"Offer Submitted for Approval",
		"An offer has been submitted for approval by its supplier")
}

// Review approves or rejects a pending offer. Admin/manager only; rejection
// requires a reason.
func (s *OfferService) Review(ctx context.Context, actor domain.Actor, offerID uuid.UUID, req ReviewRequest) (*domain.Offer, error) {
	if !actor.Role.IsStaff() {
		return nil, &errors.ErrForbidden{Message: "only managers may review offers"}
	}

	decision := domain.OfferStatus(req.Decision)
	if decision != domain.OfferStatusApproved && decision != domain.OfferStatusRejected {
		return nil, &errors.ErrValidation{Field: "decision", Message: "must be approved or rejected"}
	}
	if decision == domain.OfferStatusRejected && req.RejectionReason == "" {
		return nil, &errors.ErrValidation{Field: "rejection_reason", Message: "required when rejecting an offer"}
	}

	offer, err := s.repos.Offer.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}

	if offer.Status != domain.OfferStatusPendingApproval {
		return nil, &errors.ErrInvalidTransition{
			Entity: "offer",
			From:   string(offer.Status),
			To:     string(decision),
		}
	}

	now := s.clock.Now()
	patch := repository.OfferStatusPatch{
		ReviewedBy: &actor.ID,
		ReviewedAt: &now,
	}
	note := "Offer approved"
	message := fmt.Sprintf("Your offer has been %s", statusLabel(string(decision)))
	if decision == domain.OfferStatusRejected {
		note = req.RejectionReason
		patch.RejectionReason = &req.RejectionReason
		message += ". Reason: " + req.RejectionReason
	}

	offer, err = s.applyTransition(ctx, actor, offer, decision, patch, note,
		fmt.Sprintf("Offer %s", statusLabel(string(decision))), message)
	if err != nil {
		return nil, err
	}

	offer.ReviewedBy = &actor.ID
	offer.ReviewedAt = &now
	if decision == domain.OfferStatusRejected {
		offer.RejectionReason = &req.RejectionReason
	}
	return offer, nil
}

// Expire moves an overdue offer to expired. Triggered by the background
// sweep, not by users; re-running on an already-expired offer is a no-op.
func (s *OfferService) Expire(ctx context.Context, offerID uuid.UUID) error {
	offer, err := s.repos.Offer.GetByID(ctx, offerID)
	if err != nil {
		return err
	}

	if offer.Status.IsTerminal() {
		return nil
	}
	now := s.clock.Now()
	if !now.After(offer.ExpiresAt) {
		return nil
	}

	system := domain.Actor{ID: uuid.Nil, Role: domain.RoleAdmin}
	_, err = s.applyTransition(ctx, system, offer, domain.OfferStatusExpired,
		repository.OfferStatusPatch{}, "Offer expired",
		"Offer Expired",
		"Your offer has expired without a decision")
	return err
}

// ExpireDue sweeps every overdue offer. Used by the scheduler CLI.
func (s *OfferService) ExpireDue(ctx context.Context) (int, error) {
	offers, err := s.repos.Offer.ListExpirable(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, offer := range offers {
		if err := s.Expire(ctx, offer.ID); err != nil {
			s.logger.Warn("Failed to expire offer",
				zap.String("offer_id", offer.ID.String()), zap.Error(err))
			continue
		}
		expired++
	}
	return expired, nil
}

// Delete removes an offer. Permitted only in negotiating or rejected status.
func (s *OfferService) Delete(ctx context.Context, actor domain.Actor, offerID uuid.UUID) error {
	offer, err := s.repos.Offer.GetByID(ctx, offerID)
	if err != nil {
		return err
	}

	if actor.Role == domain.RoleSupplier && offer.SupplierID != actor.ID {
		return &errors.ErrForbidden{Message: "you do not have permission to delete this offer"}
	}
	if !offer.IsDeletable() {
		return &errors.ErrInvalidState{Entity: "offer", Status: string(offer.Status), Action: "delete"}
	}

	if err := s.repos.Offer.Delete(ctx, offerID); err != nil {
		return err
	}

	s.activities.Record(ctx, actor, domain.ActivityOfferStatusChanged,
		fmt.Sprintf("Offer %s was deleted", offer.ID),
		domain.EntityOffer, offer.ID, nil)

	return nil
}

// Get returns one offer; suppliers only see their own
func (s *OfferService) Get(ctx context.Context, actor domain.Actor, offerID uuid.UUID) (*domain.Offer, error) {
	offer, err := s.repos.Offer.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleSupplier && offer.SupplierID != actor.ID {
		return nil, &errors.ErrForbidden{Message: "you do not have permission to view this offer"}
	}
	return offer, nil
}

// List returns offers matching the filter; suppliers are scoped to their own
func (s *OfferService) List(ctx context.Context, actor domain.Actor, filter repository.OfferFilter) ([]*domain.Offer, int, error) {
	if actor.Role == domain.RoleSupplier {
		filter.SupplierID = &actor.ID
	}
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	return s.repos.Offer.List(ctx, filter)
}

// applyTransition performs the fixed transition sequence: conditional status
// write, history append, audit record, notification fan-out. The write is
// conditional on the status the permission check saw, so a lost race surfaces
// as ErrConflict instead of an illegal transition landing in storage.
func (s *OfferService) applyTransition(ctx context.Context, actor domain.Actor, offer *domain.Offer, next domain.OfferStatus, patch repository.OfferStatusPatch, note, title, message string) (*domain.Offer, error) {
	if err := s.repos.Offer.UpdateStatus(ctx, offer.ID, offer.Status, next, patch); err != nil {
		return nil, err
	}

	entry := domain.HistoryEntry{
		Status:    string(next),
		UpdatedBy: actor.ID,
		UpdatedAt: s.clock.Now(),
		Note:      note,
	}
	if err := s.repos.Offer.AppendHistory(ctx, offer.ID, entry); err != nil {
		s.logger.Error("Failed to append offer history",
			zap.String("offer_id", offer.ID.String()), zap.Error(err))
		return nil, err
	}

	offer.Status = next
	offer.History = append(offer.History, entry)

	s.activities.Record(ctx, actor, domain.ActivityOfferStatusChanged,
		fmt.Sprintf("Offer status changed to %s", next),
		domain.EntityOffer, offer.ID, map[string]interface{}{"status": string(next)})

	s.dispatcher.FanOut(ctx, s.dispatcher.offerCounterparty(ctx, offer, actor.Role),
		domain.NotificationOfferStatusChange, title, message,
		domain.EntityOffer, offer.ID)

	return offer, nil
}

// offerTerms is the validated form of OfferTermsRequest
type offerTerms struct {
	ProductID uuid.UUID
	Price     domain.Price
	Quantity  float64
	Unit      domain.Unit
	ExpiresAt time.Time
	Delivery  domain.DeliveryTerms
	Payment   domain.PaymentTerms
	Notes     string
}

func buildOfferTerms(req OfferTermsRequest) (*offerTerms, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, &errors.ErrValidation{Field: "product_id", Message: "must be a valid UUID"}
	}

	currency := domain.Currency(req.Currency)
	if !currency.IsValid() {
		return nil, &errors.ErrValidation{Field: "currency", Message: fmt.Sprintf("unknown currency %q", req.Currency)}
	}
	unit := domain.Unit(req.Unit)
	if !unit.IsValid() {
		return nil, &errors.ErrValidation{Field: "unit", Message: fmt.Sprintf("unknown unit %q", req.Unit)}
	}
	if req.Quantity <= 0 {
		return nil, &errors.ErrValidation{Field: "quantity", Message: "must be greater than zero"}
	}
	if req.PriceValue <= 0 {
		return nil, &errors.ErrValidation{Field: "price_value", Message: "must be greater than zero"}
	}

	terms := &offerTerms{
		ProductID: productID,
		Price:     domain.Price{Value: req.PriceValue, Currency: currency},
		Quantity:  req.Quantity,
		Unit:      unit,
		Delivery: domain.DeliveryTerms{
			Region:         req.Delivery.Region,
			EstimatedDays:  req.Delivery.EstimatedDays,
			ShippingMethod: req.Delivery.ShippingMethod,
			Incoterm:       req.Delivery.Incoterm,
		},
		Payment: domain.PaymentTerms{
			Method:        req.Payment.Method,
			DaysToPayment: req.Payment.DaysToPayment,
		},
		Notes: req.Notes,
	}
	if req.ExpiresAt != nil {
		terms.ExpiresAt = *req.ExpiresAt
	}
	return terms, nil
}

func statusLabel(status string) string {
	return strings.ReplaceAll(status, "_", " ")
}
