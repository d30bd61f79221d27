package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultOfferTTL is how long a new offer stays open for review when no
// explicit expiry is given.
const DefaultOfferTTL = 7 * 24 * time.Hour

// Price is an amount in a supported currency
type Price struct {
	Value    float64
	Currency Currency
}

// DeliveryTerms describe how the supplier proposes to deliver
type DeliveryTerms struct {
	Region         string
	EstimatedDays  int
	ShippingMethod string
	Incoterm       string
}

// PaymentTerms describe how the supplier expects to be paid
type PaymentTerms struct {
	Method        string
	DaysToPayment int
}

// HistoryEntry is one append-only record of a status-affecting operation.
// Entries are never edited or removed.
type HistoryEntry struct {
	Status    string
	UpdatedBy uuid.UUID
	UpdatedAt time.Time
	Note      string
}

// Offer represents a supplier's proposed commercial terms for a product
type Offer struct {
	ID              uuid.UUID
	ProductID       uuid.UUID
	SupplierID      uuid.UUID
	Price           Price
	Quantity        float64
	Unit            Unit
	Status          OfferStatus
	ExpiresAt       time.Time
	DeliveryTerms   DeliveryTerms
	PaymentTerms    PaymentTerms
	Notes           string
	ReviewedBy      *uuid.UUID
	ReviewedAt      *time.Time
	RejectionReason *string
	History         []HistoryEntry
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsDeletable reports whether the offer may be physically removed
func (o *Offer) IsDeletable() bool {
	return o.Status == OfferStatusNegotiating || o.Status == OfferStatusRejected
}

// IsEditable reports whether commercial terms may still be replaced
func (o *Offer) IsEditable() bool {
	return o.Status == OfferStatusNegotiating || o.Status == OfferStatusPendingApproval
}
