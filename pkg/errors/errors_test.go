package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{&ErrNotFound{Resource: "offer"}, http.StatusNotFound},
		{&ErrForbidden{}, http.StatusForbidden},
		{&ErrInvalidState{Entity: "order", Status: "completed", Action: "transition"}, http.StatusBadRequest},
		{&ErrInvalidTransition{Entity: "order", From: "new", To: "shipped"}, http.StatusBadRequest},
		{&ErrValidation{Field: "currency", Message: "unknown"}, http.StatusUnprocessableEntity},
		{&ErrConflict{Resource: "offer", ID: "abc"}, http.StatusConflict},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, HTTPStatus(tt.err), "%v", tt.err)
	}
}

func TestHTTPStatusWrapped(t *testing.T) {
	err := fmt.Errorf("loading offer: %w", &ErrNotFound{Resource: "offer", ID: "42"})
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "offer not found", (&ErrNotFound{Resource: "offer"}).Error())
	assert.Equal(t, "offer 42 not found", (&ErrNotFound{Resource: "offer", ID: "42"}).Error())
	assert.Equal(t, "access denied", (&ErrForbidden{}).Error())
	assert.Equal(t, "cannot cancel order in shipped status",
		(&ErrInvalidState{Entity: "order", Status: "shipped", Action: "cancel"}).Error())
	assert.Equal(t, "cannot change order status from new to shipped",
		(&ErrInvalidTransition{Entity: "order", From: "new", To: "shipped"}).Error())
	assert.Equal(t, "currency: unknown", (&ErrValidation{Field: "currency", Message: "unknown"}).Error())
}
