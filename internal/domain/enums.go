package domain

// OfferStatus represents the status of an offer
type OfferStatus string

const (
	OfferStatusNegotiating     OfferStatus = "negotiating"
	OfferStatusPendingApproval OfferStatus = "pending_approval"
	OfferStatusApproved        OfferStatus = "approved"
	OfferStatusRejected        OfferStatus = "rejected"
	OfferStatusExpired         OfferStatus = "expired"
)

// IsValid checks if the offer status is valid
func (s OfferStatus) IsValid() bool {
	switch s {
	case OfferStatusNegotiating,
		OfferStatusPendingApproval,
		OfferStatusApproved,
		OfferStatusRejected,
		OfferStatusExpired:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is permitted
func (s OfferStatus) IsTerminal() bool {
	switch s {
	case OfferStatusApproved, OfferStatusRejected, OfferStatusExpired:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a status transition is valid
func (s OfferStatus) CanTransitionTo(next OfferStatus) bool {
	switch s {
	case OfferStatusNegotiating:
		return next == OfferStatusPendingApproval || next == OfferStatusExpired
	case OfferStatusPendingApproval:
		return next == OfferStatusApproved ||
			next == OfferStatusRejected ||
			next == OfferStatusExpired
	default:
		return false
	}
}

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusPreOrder   OrderStatus = "pre_order"
	OrderStatusNew        OrderStatus = "new"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusError      OrderStatus = "error"
)

// orderTransitions is the role-independent ceiling: a transition absent here
// is rejected no matter who asks.
var orderTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPreOrder: {
		OrderStatusNew:       true,
		OrderStatusConfirmed: true,
		OrderStatusCancelled: true,
		OrderStatusError:     true,
	},
	OrderStatusNew: {
		OrderStatusConfirmed: true,
		OrderStatusCancelled: true,
		OrderStatusError:     true,
	},
	OrderStatusConfirmed: {
		OrderStatusInProgress: true,
		OrderStatusCancelled:  true,
		OrderStatusError:      true,
	},
	OrderStatusInProgress: {
		OrderStatusShipped: true,
		OrderStatusError:   true,
	},
	OrderStatusShipped: {
		OrderStatusDelivered: true,
		OrderStatusError:     true,
	},
	OrderStatusDelivered: {
		OrderStatusCompleted: true,
		OrderStatusError:     true,
	},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
	OrderStatusError: {
		OrderStatusNew:        true,
		OrderStatusConfirmed:  true,
		OrderStatusInProgress: true,
	},
}

// supplierOrderTransitions is the subset a supplier actor may drive. Error
// recovery is deliberately absent: it stays admin/manager-only.
var supplierOrderTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusNew: {
		OrderStatusConfirmed: true,
		OrderStatusError:     true,
	},
	OrderStatusConfirmed: {
		OrderStatusInProgress: true,
		OrderStatusError:      true,
	},
	OrderStatusInProgress: {
		OrderStatusShipped: true,
		OrderStatusError:   true,
	},
}

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// IsTerminal reports whether no further transition is permitted
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransitionTo checks the role-independent transition table
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return orderTransitions[s][next]
}

// CanSupplierTransitionTo checks the supplier-restricted transition table
func (s OrderStatus) CanSupplierTransitionTo(next OrderStatus) bool {
	return supplierOrderTransitions[s][next]
}

// PaymentStatus represents the payment state of an order
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	default:
		return false
	}
}

// Role represents a user's role
type Role string

const (
	RoleSupplier Role = "supplier"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleSupplier, RoleManager, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsStaff reports whether the role may review offers and manage orders
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleManager
}

// Currency represents an accepted offer currency
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyAZN Currency = "AZN"
	CurrencyRUB Currency = "RUB"
)

// IsValid checks if the currency is valid
func (c Currency) IsValid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyAZN, CurrencyRUB:
		return true
	default:
		return false
	}
}

// Unit represents an accepted quantity unit
type Unit string

const (
	UnitKg     Unit = "kg"
	UnitTon    Unit = "ton"
	UnitPiece  Unit = "piece"
	UnitBox    Unit = "box"
	UnitPallet Unit = "pallet"
)

// IsValid checks if the unit is valid
func (u Unit) IsValid() bool {
	switch u {
	case UnitKg, UnitTon, UnitPiece, UnitBox, UnitPallet:
		return true
	default:
		return false
	}
}

// EntityKind identifies which aggregate an activity or notification refers to
type EntityKind string

const (
	EntityOffer   EntityKind = "offer"
	EntityOrder   EntityKind = "order"
	EntityProduct EntityKind = "product"
	EntityUser    EntityKind = "user"
)

// ActivityType classifies audit log entries
type ActivityType string

const (
	ActivityOfferCreated       ActivityType = "offer_created"
	ActivityOfferUpdated       ActivityType = "offer_updated"
	ActivityOfferStatusChanged ActivityType = "offer_status_changed"
	ActivityOrderCreated       ActivityType = "order_created"
	ActivityOrderUpdated       ActivityType = "order_updated"
	ActivityOrderStatusChanged ActivityType = "order_status_changed"
	ActivityDocumentUploaded   ActivityType = "document_uploaded"
)

// NotificationType classifies notifications
type NotificationType string

const (
	NotificationOfferStatusChange NotificationType = "offer_status_change"
	NotificationOrderStatusChange NotificationType = "order_status_change"
	NotificationSystemMessage     NotificationType = "system_message"
)
