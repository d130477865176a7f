package model

import "github.com/shopspring/decimal"

type ProductAdded struct {
	ProductID int64
	Name      string
}

func (e ProductAdded) Type() string { return "ProductAdded" }

type ProductRestocked struct {
	ProductID int64
	Quantity  int
	NewStock  int
	Notified  int
}

func (e ProductRestocked) Type() string { return "ProductRestocked" }

type CustomerRegistered struct {
	CustomerID   int64
	Name         string
	CustomerType CustomerType
	Tier         Tier
}

func (e CustomerRegistered) Type() string { return "CustomerRegistered" }

type OrderCreated struct {
	OrderID    int64
	CustomerID int64
	Total      decimal.Decimal
}

func (e OrderCreated) Type() string { return "OrderCreated" }

type OrderPaymentCompleted struct {
	OrderID       int64
	TransactionID string
	ShippingCost  decimal.Decimal
}

func (e OrderPaymentCompleted) Type() string { return "OrderPaymentCompleted" }

type OrderPaymentFailed struct {
	OrderID       int64
	TransactionID string
	Reason        string
}

func (e OrderPaymentFailed) Type() string { return "OrderPaymentFailed" }
