package service

import "time"

// OfferTermsRequest carries the mutable commercial terms of an offer
type OfferTermsRequest struct {
	ProductID  string              `json:"product_id" binding:"required,uuid"`
	PriceValue float64             `json:"price_value" binding:"required,gt=0"`
	Currency   string              `json:"currency" binding:"required"`
	Quantity   float64             `json:"quantity" binding:"required,gt=0"`
	Unit       string              `json:"unit" binding:"required"`
	ExpiresAt  *time.Time          `json:"expires_at,omitempty"`
	Delivery   DeliveryTermsInput  `json:"delivery_terms" binding:"required"`
	Payment    PaymentTermsInput   `json:"payment_terms" binding:"required"`
	Notes      string              `json:"notes,omitempty"`
}

type DeliveryTermsInput struct {
	Region         string `json:"region" binding:"required"`
	EstimatedDays  int    `json:"estimated_days" binding:"required,min=1"`
	ShippingMethod string `json:"shipping_method" binding:"required"`
	Incoterm       string `json:"incoterm" binding:"required"`
}

type PaymentTermsInput struct {
	Method        string `json:"method" binding:"required"`
	DaysToPayment int    `json:"days_to_payment" binding:"min=0"`
}

// ReviewRequest carries an approve/reject decision
type ReviewRequest struct {
	Decision        string `json:"decision" binding:"required,oneof=approved rejected"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

// CreateOrderRequest creates an order from an approved offer
type CreateOrderRequest struct {
	OfferID  string               `json:"offer_id" binding:"required,uuid"`
	Delivery DeliveryDetailsInput `json:"delivery_details" binding:"required"`
	Payment  PaymentDetailsInput  `json:"payment_details" binding:"required"`
}

type DeliveryDetailsInput struct {
	Address               string    `json:"address" binding:"required"`
	City                  string    `json:"city" binding:"required"`
	Country               string    `json:"country" binding:"required"`
	PostalCode            string    `json:"postal_code,omitempty"`
	ContactPerson         string    `json:"contact_person" binding:"required"`
	ContactPhone          string    `json:"contact_phone" binding:"required"`
	EstimatedDeliveryDate time.Time `json:"estimated_delivery_date" binding:"required"`
	TrackingNumber        *string   `json:"tracking_number,omitempty"`
	ShippingMethod        string    `json:"shipping_method" binding:"required"`
}

type PaymentDetailsInput struct {
	Method        string    `json:"method" binding:"required"`
	TransactionID *string   `json:"transaction_id,omitempty"`
	DueDate       time.Time `json:"due_date" binding:"required"`
}

// UpdateOrderRequest updates delivery/payment details without a status change
type UpdateOrderRequest struct {
	Delivery *DeliveryDetailsInput `json:"delivery_details,omitempty"`
	Payment  *PaymentDetailsInput  `json:"payment_details,omitempty"`
	Notes    *string               `json:"notes,omitempty"`
}

// TransitionRequest asks for an order status change
type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note,omitempty"`
}

// CancelRequest cancels an order
type CancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// AddDocumentRequest attaches a document reference to an order
type AddDocumentRequest struct {
	Type string `json:"type" binding:"required"`
	URL  string `json:"url" binding:"required,url"`
}
