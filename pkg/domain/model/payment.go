package model

import (
	"context"

	"github.com/shopspring/decimal"
)

type PaymentResult struct {
	Success       bool
	TransactionID string
	Status        PaymentStatus
	TotalAmount   decimal.Decimal
	ShippingCost  decimal.Decimal
	Message       string
}

// PaymentGateway settles an amount for a customer. A declined payment is a
// result with Success == false, not an error.
type PaymentGateway interface {
	ProcessPayment(ctx context.Context, amount decimal.Decimal, customerType CustomerType, customerName string) (PaymentResult, error)
}
