package payment

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/sk-intls/ecommerce-simulation/pkg/domain/model"
)

var DefaultShippingFee = decimal.RequireFromString("9.99")

type Config struct {
	// SuccessRate is the probability in [0, 1] that a payment goes through.
	SuccessRate float64
	MinDelay    time.Duration
	MaxDelay    time.Duration
	ShippingFee decimal.Decimal
}

func DefaultConfig() Config {
	return Config{
		SuccessRate: 0.85,
		MinDelay:    time.Second,
		MaxDelay:    3 * time.Second,
		ShippingFee: DefaultShippingFee,
	}
}

// Simulator fakes a card processor: it waits a random time and then approves
// or declines the charge at random.
type Simulator struct {
	config Config
}

var _ model.PaymentGateway = (*Simulator)(nil)

func NewSimulator(config Config) *Simulator {
	if config.MaxDelay < config.MinDelay {
		config.MaxDelay = config.MinDelay
	}
	return &Simulator{config: config}
}

func (s *Simulator) ProcessPayment(
	ctx context.Context,
	amount decimal.Decimal,
	customerType model.CustomerType,
	customerName string,
) (model.PaymentResult, error) {
	shippingCost := s.config.ShippingFee
	if customerType == model.Premium {
		shippingCost = decimal.Zero
	}
	totalAmount := amount.Add(shippingCost)

	logger := log.WithFields(log.Fields{
		"customer":     customerName,
		"customerType": customerType,
		"amount":       totalAmount.StringFixed(2),
	})
	logger.Info("processing payment")

	if err := s.wait(ctx); err != nil {
		return model.PaymentResult{}, err
	}

	transactionID := newTransactionID()
	if rand.Float64() < s.config.SuccessRate {
		logger.WithField("transactionID", transactionID).Info("payment successful")
		return model.PaymentResult{
			Success:       true,
			TransactionID: transactionID,
			Status:        model.PaymentCompleted,
			TotalAmount:   totalAmount,
			ShippingCost:  shippingCost,
			Message:       fmt.Sprintf("Payment of $%s processed successfully", totalAmount.StringFixed(2)),
		}, nil
	}

	logger.WithField("transactionID", transactionID).Warn("payment declined")
	return model.PaymentResult{
		Success:       false,
		TransactionID: transactionID,
		Status:        model.PaymentFailed,
		TotalAmount:   totalAmount,
		ShippingCost:  shippingCost,
		Message:       "Payment failed - please check your payment method and try again",
	}, nil
}

func (s *Simulator) wait(ctx context.Context) error {
	delay := s.config.MinDelay
	if spread := s.config.MaxDelay - s.config.MinDelay; spread > 0 {
		delay += rand.N(spread)
	}
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func newTransactionID() string {
	millis := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
	return fmt.Sprintf("TXN_%s_%s", millis, suffix)
}
