package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agrobridge/tradeapi/internal/domain"
)

// ListOptions carry the common pagination contract: 1-based page, default
// limit per entity kind, newest first unless Sort overrides.
type ListOptions struct {
	Page  int
	Limit int
	Sort  string
}

// Offset converts the 1-based page into a row offset
func (o ListOptions) Offset() int {
	page := o.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * o.Limit
}

// OfferFilter narrows offer listings
type OfferFilter struct {
	SupplierID *uuid.UUID
	ProductID  *uuid.UUID
	Status     *domain.OfferStatus
	ListOptions
}

// OrderFilter narrows order listings
type OrderFilter struct {
	SupplierID *uuid.UUID
	CustomerID *uuid.UUID
	Status     *domain.OrderStatus
	ListOptions
}

// ActivityFilter narrows audit listings
type ActivityFilter struct {
	UserID      *uuid.UUID
	Type        *domain.ActivityType
	RelatedKind *domain.EntityKind
	RelatedID   *uuid.UUID
	ListOptions
}

// OfferStatusPatch carries the review fields written together with a status change
type OfferStatusPatch struct {
	ReviewedBy      *uuid.UUID
	ReviewedAt      *time.Time
	RejectionReason *string
}

// OrderStatusPatch carries the side-effect fields written together with a status change
type OrderStatusPatch struct {
	UpdatedBy          uuid.UUID
	ActualDeliveryDate *time.Time
	PaymentStatus      *domain.PaymentStatus
	PaidAt             *time.Time
}

// OfferRepository persists offers. UpdateStatus and UpdateTerms are
// conditional writes: UpdateStatus matches the expected current status and
// UpdateTerms requires the row to still be editable, reporting ErrConflict
// when another writer got there first.
type OfferRepository interface {
	Create(ctx context.Context, offer *domain.Offer) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Offer, error)
	UpdateTerms(ctx context.Context, offer *domain.Offer) error
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, next domain.OfferStatus, patch OfferStatusPatch) error
	AppendHistory(ctx context.Context, id uuid.UUID, entry domain.HistoryEntry) error
	List(ctx context.Context, filter OfferFilter) ([]*domain.Offer, int, error)
	ListExpirable(ctx context.Context, now time.Time) ([]*domain.Offer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderRepository persists orders. Create inserts the order, its item
// snapshot and the initial history entry in one transaction. UpdateStatus and
// UpdateDetails are conditional writes reporting ErrConflict on a lost race.
// NextOrderNumber atomically increments the per-month sequence backing order
// numbers.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, next domain.OrderStatus, patch OrderStatusPatch) error
	UpdateDetails(ctx context.Context, order *domain.Order) error
	AppendHistory(ctx context.Context, id uuid.UUID, entry domain.HistoryEntry) error
	AddDocument(ctx context.Context, doc *domain.Document) error
	NextOrderNumber(ctx context.Context, period string) (int64, error)
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, int, error)
}

// ProductRepository is the read-only slice of the catalog lifecycle code needs
type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
}

// UserRepository resolves actors and notification recipients
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}

// ActivityRepository is the append-only audit store
type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.Activity) error
	List(ctx context.Context, filter ActivityFilter) ([]*domain.Activity, int, error)
}

// NotificationRepository persists per-recipient notifications
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, opts ListOptions) ([]*domain.Notification, int, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// Repositories bundles all repositories for injection
type Repositories struct {
	Offer        OfferRepository
	Order        OrderRepository
	Product      ProductRepository
	User         UserRepository
	Activity     ActivityRepository
	Notification NotificationRepository
}
