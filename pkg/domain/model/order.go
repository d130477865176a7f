package model

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPaid      OrderStatus = "PAID"
	OrderCancelled OrderStatus = "CANCELLED"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderCompleted OrderStatus = "COMPLETED"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

type Order struct {
	ID         int64
	CustomerID int64
	Customer   *Customer
	Status     OrderStatus
	// Total is the discounted cart total captured when the order was created,
	// rounded to cents.
	Total         decimal.Decimal
	ShippingCost  decimal.Decimal
	PaymentStatus PaymentStatus
	TransactionID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewOrder(customer *Customer) *Order {
	now := time.Now().UTC()
	return &Order{
		CustomerID:    customer.ID,
		Customer:      customer,
		Status:        OrderPending,
		Total:         customer.CartTotal().Round(2),
		ShippingCost:  decimal.Zero,
		PaymentStatus: PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (o *Order) MarkAsPaid()      { o.Status = OrderPaid }
func (o *Order) MarkAsCancelled() { o.Status = OrderCancelled }
func (o *Order) MarkAsShipped()   { o.Status = OrderShipped }
func (o *Order) MarkAsCompleted() { o.Status = OrderCompleted }

func (o *Order) UpdatePaymentInfo(transactionID string, paymentStatus PaymentStatus, shippingCost decimal.Decimal) {
	o.TransactionID = transactionID
	o.PaymentStatus = paymentStatus
	o.ShippingCost = shippingCost

	if paymentStatus == PaymentCompleted {
		o.MarkAsPaid()
	}
}

func (o *Order) IsSettled() bool {
	return o.PaymentStatus == PaymentCompleted
}

func (o *Order) TotalWithShipping() decimal.Decimal {
	return o.Total.Add(o.ShippingCost)
}

type OrderSummary struct {
	ID                int64           `json:"id"`
	Status            OrderStatus     `json:"status"`
	Total             decimal.Decimal `json:"total"`
	ShippingCost      decimal.Decimal `json:"shippingCost"`
	TotalWithShipping decimal.Decimal `json:"totalWithShipping"`
	PaymentStatus     PaymentStatus   `json:"paymentStatus"`
	TransactionID     string          `json:"transactionId,omitempty"`
	CustomerID        int64           `json:"customerId"`
	CustomerName      string          `json:"customerName,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func (o *Order) Summary() OrderSummary {
	summary := OrderSummary{
		ID:                o.ID,
		Status:            o.Status,
		Total:             o.Total,
		ShippingCost:      o.ShippingCost,
		TotalWithShipping: o.TotalWithShipping(),
		PaymentStatus:     o.PaymentStatus,
		TransactionID:     o.TransactionID,
		CustomerID:        o.CustomerID,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
	if o.Customer != nil {
		summary.CustomerName = o.Customer.Name
	}
	return summary
}

type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	Update(ctx context.Context, order *Order) error
	// Find loads the order together with its customer.
	Find(ctx context.Context, id int64) (*Order, error)
	FindAll(ctx context.Context) ([]*Order, error)
}
