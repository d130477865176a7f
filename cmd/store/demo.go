package main

import (
	"context"
	"math/rand/v2"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/sk-intls/ecommerce-simulation/pkg/domain/model"
	"github.com/sk-intls/ecommerce-simulation/pkg/domain/service"
)

var (
	expensiveThreshold = decimal.NewFromInt(500)
	midRangeLow        = decimal.NewFromInt(50)
	midRangeHigh       = decimal.NewFromInt(200)
)

const (
	expensiveRestock = 500
	cheapRestock     = 2000
)

func runDemo(ctx context.Context, store service.Store) error {
	customers, err := store.GetCustomers(ctx)
	if err != nil {
		return err
	}
	products, err := store.GetProducts(ctx)
	if err != nil {
		return err
	}
	if len(products) < 3 {
		return errors.Errorf("demo needs at least 3 products, got %d", len(products))
	}

	var regular, premium *model.Customer
	for _, c := range customers {
		if c.IsPremium() && premium == nil {
			premium = c
		}
		if !c.IsPremium() && regular == nil {
			regular = c
		}
	}
	if regular == nil || premium == nil {
		return errors.New("could not find both customer types")
	}

	expensive := findProduct(products, products[0], func(p *model.Product) bool {
		return p.Price.GreaterThan(expensiveThreshold)
	})
	midRange := findProduct(products, products[1], func(p *model.Product) bool {
		return p.Price.GreaterThan(midRangeLow) && p.Price.LessThan(midRangeHigh)
	})
	cheap := findProduct(products, products[2], func(p *model.Product) bool {
		return p.Price.LessThan(midRangeLow)
	})

	if err := customerJourney(ctx, store, premium, expensive, midRange); err != nil {
		return err
	}
	if err := customerJourney(ctx, store, regular, cheap); err != nil {
		return err
	}

	for _, c := range customers {
		if _, err := store.Subscribe(c); err != nil {
			return err
		}
	}
	defer store.ClearAllSubscriptions()

	if _, err := store.RestockProduct(ctx, expensive.ID, expensiveRestock); err != nil {
		return err
	}
	_, err = store.RestockProduct(ctx, cheap.ID, cheapRestock)
	return err
}

func customerJourney(ctx context.Context, store service.Store, customer *model.Customer, products ...*model.Product) error {
	logger := log.WithFields(log.Fields{
		"customer": customer.Name,
		"type":     customer.Type,
	})
	if customer.IsPremium() {
		logger = logger.WithFields(log.Fields{
			"tier":         customer.Tier,
			"discountRate": customer.DiscountRate().String(),
		})
	}

	for _, product := range products {
		quantity := rand.N(3) + 1
		if err := customer.AddToCart(product, quantity); err != nil {
			return err
		}
		logger.Infof("added %dx %s ($%s each)", quantity, product.Name, product.Price.StringFixed(2))
	}

	subtotal := decimal.Zero
	for item := range customer.IterateCart() {
		subtotal = subtotal.Add(item.Subtotal())
	}
	logger.WithFields(log.Fields{
		"subtotal": subtotal.StringFixed(2),
		"discount": subtotal.Mul(customer.DiscountRate()).StringFixed(2),
	}).Info("cart ready for checkout")

	order, err := store.CreateOrder(ctx, customer)
	if err != nil {
		return err
	}
	order, err = store.ProcessOrderPayment(ctx, order.ID)
	if err != nil {
		return err
	}

	summary := order.Summary()
	logger.WithFields(log.Fields{
		"orderID":       summary.ID,
		"status":        summary.Status,
		"paymentStatus": summary.PaymentStatus,
		"total":         summary.Total.StringFixed(2),
		"shipping":      summary.ShippingCost.StringFixed(2),
		"totalPaid":     summary.TotalWithShipping.StringFixed(2),
		"transactionID": summary.TransactionID,
	}).Info("order processed")
	return nil
}

func findProduct(products []*model.Product, fallback *model.Product, match func(*model.Product) bool) *model.Product {
	for _, p := range products {
		if match(p) {
			return p
		}
	}
	return fallback
}
