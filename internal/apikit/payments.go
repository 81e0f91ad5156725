package apikit

import (
	"context"
	"fmt"
)

// PaymentsService bridges orders to the payment widget. The backend issues a
// widget client secret for an order; the widget confirms it out of band; the
// completion call tells the backend to reconcile. No payment logic lives here.
type PaymentsService struct {
	client *Client
}

// PaymentIntent is the server-issued handle the widget consumes.
type PaymentIntent struct {
	ID           string `json:"id"`
	OrderID      string `json:"order_id"`
	ClientSecret string `json:"client_secret"`
	AmountCents  int64  `json:"amount_cents"`
	Currency     string `json:"currency"`
}

// CreateIntent asks the backend for a payment intent on an order.
func (service *PaymentsService) CreateIntent(ctx context.Context, orderID string) (*PaymentIntent, error) {
	payload := struct {
		OrderID string `json:"order_id"`
	}{OrderID: orderID}
	var intent PaymentIntent
	if err := service.client.postJSON(ctx, "payments/intents", payload, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// Complete reports the widget outcome so the backend can reconcile the order.
func (service *PaymentsService) Complete(ctx context.Context, intentID string) (*Order, error) {
	var order Order
	if err := service.client.postJSON(ctx, fmt.Sprintf("payments/%s/complete", intentID), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
