package apikit

import (
	"context"
	"fmt"
)

// OrdersService reads billing orders.
type OrdersService struct {
	client *Client
}

// Order is a payable invoice for one or more enrollments.
type Order struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	TotalCents int64      `json:"total_cents"`
	Currency   string     `json:"currency"`
	LineItems  []LineItem `json:"line_items"`
	CreatedAt  string     `json:"created_at"`
	PaidAt     string     `json:"paid_at,omitempty"`
}

// LineItem is one charge on an order.
type LineItem struct {
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
}

// List returns the caller's orders.
func (service *OrdersService) List(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := service.client.getJSON(ctx, "orders", &orders, ""); err != nil {
		return nil, err
	}
	return orders, nil
}

// Get returns one order by id.
func (service *OrdersService) Get(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	if err := service.client.getJSON(ctx, fmt.Sprintf("orders/%s", orderID), &order, ""); err != nil {
		return nil, err
	}
	return &order, nil
}
