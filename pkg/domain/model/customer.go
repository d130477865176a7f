package model

import (
	"context"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type CustomerType string

const (
	Regular CustomerType = "regular"
	Premium CustomerType = "premium"
)

func ParseCustomerType(value string) (CustomerType, error) {
	switch CustomerType(strings.ToLower(strings.TrimSpace(value))) {
	case Regular, "":
		return Regular, nil
	case Premium:
		return Premium, nil
	default:
		return "", errors.Wrapf(ErrInvalidArgument, "unknown customer type %q, expected one of: %s, %s", value, Regular, Premium)
	}
}

// Tier is the premium sub-category; it decides the discount rate.
type Tier string

const (
	Silver   Tier = "SILVER"
	Gold     Tier = "GOLD"
	Platinum Tier = "PLATINUM"
)

var Tiers = []Tier{Silver, Gold, Platinum}

func ParseTier(value string) (Tier, error) {
	switch Tier(strings.ToUpper(strings.TrimSpace(value))) {
	case "", Gold:
		return Gold, nil
	case Silver:
		return Silver, nil
	case Platinum:
		return Platinum, nil
	default:
		return "", errors.Wrapf(ErrInvalidArgument, "invalid tier %q, valid tiers are: %s, %s, %s", value, Silver, Gold, Platinum)
	}
}

var tierDiscountRates = map[Tier]decimal.Decimal{
	Silver:   decimal.RequireFromString("0.05"),
	Gold:     decimal.RequireFromString("0.10"),
	Platinum: decimal.RequireFromString("0.15"),
}

func (t Tier) DiscountRate() decimal.Decimal {
	if rate, ok := tierDiscountRates[t]; ok {
		return rate
	}
	return tierDiscountRates[Gold]
}

// Only the most recent restock alerts are kept per customer.
const maxRestockAlerts = 20

type CartItem struct {
	Product  Product
	Quantity int
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Customer struct {
	ID    int64
	Name  string
	Type  CustomerType
	Birth *time.Time
	// Tier is set only for premium customers.
	Tier Tier

	// mu guards cart and restockAlerts; HTTP requests share live customers.
	mu            sync.Mutex
	cart          []CartItem
	restockAlerts []Product
}

func NewRegularCustomer(name string, birth *time.Time) *Customer {
	return &Customer{Name: name, Type: Regular, Birth: birth}
}

func NewPremiumCustomer(name string, birth *time.Time, tier Tier) *Customer {
	return &Customer{Name: name, Type: Premium, Birth: birth, Tier: tier}
}

func (c *Customer) IsPremium() bool {
	return c.Type == Premium
}

func (c *Customer) DiscountRate() decimal.Decimal {
	switch c.Type {
	case Premium:
		return c.Tier.DiscountRate()
	default:
		return decimal.Zero
	}
}

func (c *Customer) AddToCart(product *Product, quantity int) error {
	if product == nil || product.ID <= 0 {
		return errors.Wrap(ErrInvalidArgument, "product is required and must have an id")
	}
	if quantity <= 0 {
		return errors.Wrapf(ErrInvalidArgument, "quantity must be a positive integer, got %d", quantity)
	}
	if product.Price.IsNegative() {
		return errors.Wrapf(ErrInvalidArgument, "product price cannot be negative, got %s", product.Price)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.cart {
		if c.cart[i].Product.ID == product.ID {
			c.cart[i].Quantity += quantity
			return nil
		}
	}
	c.cart = append(c.cart, CartItem{Product: *product, Quantity: quantity})
	return nil
}

func (c *Customer) Cart() []CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	cart := make([]CartItem, len(c.cart))
	copy(cart, c.cart)
	return cart
}

// IterateCart yields copies of the cart lines as of the start of the
// traversal; every call starts over.
func (c *Customer) IterateCart() iter.Seq[CartItem] {
	return func(yield func(CartItem) bool) {
		for _, item := range c.Cart() {
			if !yield(item) {
				return
			}
		}
	}
}

func (c *Customer) CartTotal() decimal.Decimal {
	subtotal := decimal.Zero
	for item := range c.IterateCart() {
		subtotal = subtotal.Add(item.Subtotal())
	}
	return decimal.NewFromInt(1).Sub(c.DiscountRate()).Mul(subtotal)
}

func (c *Customer) ClearCart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cart = nil
}

// ShippingCost is a premium-only operation.
func (c *Customer) ShippingCost() (decimal.Decimal, error) {
	if err := RequirePremium(c, "ShippingCost"); err != nil {
		return decimal.Zero, err
	}
	return decimal.Zero, nil
}

func (c *Customer) SubscriberID() int64 {
	return c.ID
}

// Update receives a restock alert for the given product.
func (c *Customer) Update(product Product) {
	c.mu.Lock()
	c.restockAlerts = append(c.restockAlerts, product)
	if overflow := len(c.restockAlerts) - maxRestockAlerts; overflow > 0 {
		c.restockAlerts = append(c.restockAlerts[:0], c.restockAlerts[overflow:]...)
	}
	c.mu.Unlock()

	log.WithFields(log.Fields{
		"customerID":   c.ID,
		"customer":     c.Name,
		"customerType": c.Type,
		"product":      product.Name,
	}).Info("customer notified about restocked product")
}

// RestockAlerts returns the latest alerts, oldest first.
func (c *Customer) RestockAlerts() []Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	alerts := make([]Product, len(c.restockAlerts))
	copy(alerts, c.restockAlerts)
	return alerts
}

// RequirePremium guards premium-only operations.
func RequirePremium(c *Customer, operation string) error {
	if c == nil || !c.IsPremium() {
		return &PremiumRequiredError{Operation: operation}
	}
	return nil
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *Customer) error
	Find(ctx context.Context, id int64) (*Customer, error)
	FindAll(ctx context.Context) ([]*Customer, error)
	// FindByNameAndBirth matches on name alone when birth is nil.
	FindByNameAndBirth(ctx context.Context, name string, birth *time.Time) (*Customer, error)
}
