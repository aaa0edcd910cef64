package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewOrderNumber_Format(t *testing.T) {
	// LP-YYYYMMDD-六位数字
	pattern := regexp.MustCompile(`^LP-\d{8}-\d{6}$`)
	for i := 0; i < 10; i++ {
		assert.Regexp(t, pattern, newOrderNumber())
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	s := NewOrderService(nil, nil, nil)
	_, err := s.Checkout(context.Background(), &CheckoutInput{
		UserID:           1,
		DeliveryLocation: "psg campus",
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	s := NewOrderService(nil, nil, nil)
	err := s.UpdateStatus(context.Background(), 1, "placed", "teleported")
	assert.ErrorIs(t, err, ErrBadOrderStatus)

	err = s.UpdateStatus(context.Background(), 1, "", "delivered")
	assert.ErrorIs(t, err, ErrBadOrderStatus)
}

func TestCheckout_MissingLocation(t *testing.T) {
	s := NewOrderService(nil, nil, nil)
	_, err := s.Checkout(context.Background(), &CheckoutInput{
		UserID:           1,
		DeliveryLocation: "   ",
		Items:            []CartItemInput{{ProductID: 1, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrMissingLocation)
}
