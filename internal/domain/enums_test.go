package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOfferStatusTransitions(t *testing.T) {
	tests := []struct {
		from    OfferStatus
		to      OfferStatus
		allowed bool
	}{
		{OfferStatusNegotiating, OfferStatusPendingApproval, true},
		{OfferStatusNegotiating, OfferStatusExpired, true},
		{OfferStatusNegotiating, OfferStatusApproved, false},
		{OfferStatusNegotiating, OfferStatusRejected, false},
		{OfferStatusPendingApproval, OfferStatusApproved, true},
		{OfferStatusPendingApproval, OfferStatusRejected, true},
		{OfferStatusPendingApproval, OfferStatusExpired, true},
		{OfferStatusPendingApproval, OfferStatusNegotiating, false},
		{OfferStatusApproved, OfferStatusRejected, false},
		{OfferStatusRejected, OfferStatusNegotiating, false},
		{OfferStatusExpired, OfferStatusPendingApproval, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestOfferStatusTerminal(t *testing.T) {
	assert.False(t, OfferStatusNegotiating.IsTerminal())
	assert.False(t, OfferStatusPendingApproval.IsTerminal())
	assert.True(t, OfferStatusApproved.IsTerminal())
	assert.True(t, OfferStatusRejected.IsTerminal())
	assert.True(t, OfferStatusExpired.IsTerminal())
}

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPreOrder, OrderStatusNew, true},
		{OrderStatusPreOrder, OrderStatusConfirmed, true},
		{OrderStatusPreOrder, OrderStatusCancelled, true},
		{OrderStatusNew, OrderStatusConfirmed, true},
		{OrderStatusNew, OrderStatusCancelled, true},
		{OrderStatusNew, OrderStatusError, true},
		{OrderStatusNew, OrderStatusShipped, false},
		{OrderStatusConfirmed, OrderStatusInProgress, true},
		{OrderStatusConfirmed, OrderStatusDelivered, false},
		{OrderStatusInProgress, OrderStatusShipped, true},
		{OrderStatusInProgress, OrderStatusCancelled, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusInProgress, false},
		{OrderStatusDelivered, OrderStatusCompleted, true},
		{OrderStatusDelivered, OrderStatusShipped, false},
		{OrderStatusCompleted, OrderStatusNew, false},
		{OrderStatusCancelled, OrderStatusNew, false},
		{OrderStatusError, OrderStatusNew, true},
		{OrderStatusError, OrderStatusConfirmed, true},
		{OrderStatusError, OrderStatusInProgress, true},
		{OrderStatusError, OrderStatusShipped, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestOrderStatusSupplierTransitions(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusNew, OrderStatusConfirmed, true},
		{OrderStatusNew, OrderStatusError, true},
		{OrderStatusNew, OrderStatusCancelled, false},
		{OrderStatusConfirmed, OrderStatusInProgress, true},
		{OrderStatusInProgress, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, false},
		{OrderStatusDelivered, OrderStatusCompleted, false},
		{OrderStatusError, OrderStatusNew, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanSupplierTransitionTo(tt.to),
			"supplier %s -> %s", tt.from, tt.to)
	}
}

func TestOrderStatusValidity(t *testing.T) {
	for _, status := range []OrderStatus{
		OrderStatusPreOrder, OrderStatusNew, OrderStatusConfirmed,
		OrderStatusInProgress, OrderStatusShipped, OrderStatusDelivered,
		OrderStatusCompleted, OrderStatusCancelled, OrderStatusError,
	} {
		assert.True(t, status.IsValid(), "%s", status)
	}
	assert.False(t, OrderStatus("lost").IsValid())
	assert.False(t, OrderStatus("").IsValid())
}

func TestRoleIsStaff(t *testing.T) {
	assert.True(t, RoleAdmin.IsStaff())
	assert.True(t, RoleManager.IsStaff())
	assert.False(t, RoleSupplier.IsStaff())
}

func TestOfferGuards(t *testing.T) {
	for status, deletable := range map[OfferStatus]bool{
		OfferStatusNegotiating:     true,
		OfferStatusRejected:        true,
		OfferStatusPendingApproval: false,
		OfferStatusApproved:        false,
		OfferStatusExpired:         false,
	} {
		offer := Offer{Status: status}
		assert.Equal(t, deletable, offer.IsDeletable(), "%s", status)
	}

	for status, editable := range map[OfferStatus]bool{
		OfferStatusNegotiating:     true,
		OfferStatusPendingApproval: true,
		OfferStatusApproved:        false,
		OfferStatusRejected:        false,
		OfferStatusExpired:         false,
	} {
		offer := Offer{Status: status}
		assert.Equal(t, editable, offer.IsEditable(), "%s", status)
	}
}

func TestOrderGuards(t *testing.T) {
	for status, cancellable := range map[OrderStatus]bool{
		OrderStatusNew:       true,
		OrderStatusConfirmed: true,
		OrderStatusError:     true,
		OrderStatusShipped:   false,
		OrderStatusDelivered: false,
		OrderStatusCompleted: false,
		OrderStatusCancelled: false,
	} {
		order := Order{Status: status}
		assert.Equal(t, cancellable, order.IsCancellable(), "%s", status)
	}
}

func TestOrderRecomputeTotal(t *testing.T) {
	order := Order{Items: []OrderItem{
		{Subtotal: 2500},
		{Subtotal: 180.5},
	}}
	order.RecomputeTotal()
	assert.Equal(t, 2680.5, order.TotalAmount)

	order.Items = nil
	order.RecomputeTotal()
	assert.Equal(t, 0.0, order.TotalAmount)
}
