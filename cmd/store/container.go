package main

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/sk-intls/ecommerce-simulation/pkg/domain/model"
	"github.com/sk-intls/ecommerce-simulation/pkg/domain/service"
	"github.com/sk-intls/ecommerce-simulation/pkg/infrastructure/event"
	"github.com/sk-intls/ecommerce-simulation/pkg/infrastructure/mysql"
	"github.com/sk-intls/ecommerce-simulation/pkg/infrastructure/payment"
	"github.com/sk-intls/ecommerce-simulation/pkg/infrastructure/seeder"
)

type container struct {
	config   *config
	db       *sqlx.DB
	migrator *mysql.Migrator
	store    service.Store
}

func newContainer(ctx context.Context) (*container, error) {
	cfg, err := parseEnv()
	if err != nil {
		return nil, err
	}
	setupLogger(cfg.LogLevel)

	paymentConfig, err := cfg.payment()
	if err != nil {
		return nil, err
	}

	db, err := mysql.Open(ctx, cfg.database())
	if err != nil {
		return nil, err
	}

	migrator := mysql.NewMigrator(cfg.database())
	store := service.NewStore(
		mysql.NewProductRepository(db),
		mysql.NewCustomerRepository(db),
		mysql.NewOrderRepository(db),
		payment.NewSimulator(paymentConfig),
		migrator,
		newDispatcher(),
	)

	return &container{
		config:   cfg,
		db:       db,
		migrator: migrator,
		store:    store,
	}, nil
}

func (c *container) seed(ctx context.Context) error {
	client := &http.Client{Timeout: 30 * time.Second}
	products, err := seeder.NewProductSeeder(c.store, client, c.config.ProductsURL).Seed(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to seed products")
	}
	customers := seeder.NewCustomerSeeder(c.store).Seed(ctx)

	log.WithFields(log.Fields{
		"products":  products,
		"customers": customers,
	}).Info("store seeded")
	return nil
}

func (c *container) close() {
	if err := c.db.Close(); err != nil {
		log.WithError(err).Error("failed to close database")
	}
}

func newDispatcher() *event.Dispatcher {
	dispatcher := event.NewDispatcher()
	dispatcher.Subscribe(model.OrderPaymentFailed{}.Type(), func(e service.Event) error {
		failed, ok := e.(model.OrderPaymentFailed)
		if !ok {
			return nil
		}
		log.WithFields(log.Fields{
			"orderID":       failed.OrderID,
			"transactionID": failed.TransactionID,
		}).Warn(failed.Reason)
		return nil
	})
	dispatcher.Subscribe(model.ProductRestocked{}.Type(), func(e service.Event) error {
		restocked, ok := e.(model.ProductRestocked)
		if !ok {
			return nil
		}
		log.WithFields(log.Fields{
			"productID": restocked.ProductID,
			"stock":     restocked.NewStock,
			"notified":  restocked.Notified,
		}).Info("product restocked")
		return nil
	})
	return dispatcher
}

func setupLogger(level string) {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.WithError(err).Warnf("unknown log level %q, using info", level)
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
}
