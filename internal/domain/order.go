package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is a snapshot of commercial terms captured from the offer at
// order creation. Later offer edits never touch it.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  float64
	Price     float64
	Unit      Unit
	Subtotal  float64
}

// DeliveryDetails hold the shipping side of an order
type DeliveryDetails struct {
	Address               string
	City                  string
	Country               string
	PostalCode            string
	ContactPerson         string
	ContactPhone          string
	EstimatedDeliveryDate time.Time
	ActualDeliveryDate    *time.Time
	TrackingNumber        *string
	ShippingMethod        string
}

// PaymentDetails hold the payment side of an order
type PaymentDetails struct {
	Method        string
	Status        PaymentStatus
	TransactionID *string
	PaidAt        *time.Time
	DueDate       time.Time
}

// Document is an append-only attachment reference
type Document struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	Type       string
	URL        string
	UploadedAt time.Time
	UploadedBy uuid.UUID
}

// Order represents a confirmed commercial transaction derived from an
// approved offer, tracked through fulfillment.
type Order struct {
	ID              uuid.UUID
	OrderNumber     string
	SupplierID      uuid.UUID
	CustomerID      uuid.UUID
	OfferID         uuid.UUID
	Items           []OrderItem
	TotalAmount     float64
	Currency        Currency
	Status          OrderStatus
	DeliveryDetails DeliveryDetails
	PaymentDetails  PaymentDetails
	Documents       []Document
	Notes           string
	History         []HistoryEntry
	CreatedBy       uuid.UUID
	UpdatedBy       uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RecomputeTotal keeps totalAmount equal to the sum of item subtotals
func (o *Order) RecomputeTotal() {
	total := 0.0
	for _, item := range o.Items {
		total += item.Subtotal
	}
	o.TotalAmount = total
}

// IsDetailUpdatable reports whether delivery/payment details may still change
func (o *Order) IsDetailUpdatable() bool {
	switch o.Status {
	case OrderStatusNew, OrderStatusConfirmed, OrderStatusInProgress:
		return true
	default:
		return false
	}
}

// IsCancellable reports whether the order may still be cancelled
func (o *Order) IsCancellable() bool {
	switch o.Status {
	case OrderStatusNew, OrderStatusConfirmed, OrderStatusError:
		return true
	default:
		return false
	}
}
