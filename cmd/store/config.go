package main

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/sk-intls/ecommerce-simulation/pkg/infrastructure/mysql"
	"github.com/sk-intls/ecommerce-simulation/pkg/infrastructure/payment"
)

const appID = "store"

type config struct {
	LogLevel string `envconfig:"log_level" default:"info"`
	HTTPAddr string `envconfig:"http_addr" default:":8080"`

	DBUser           string `envconfig:"db_user" default:"root"`
	DBPassword       string `envconfig:"db_password" default:""`
	DBHost           string `envconfig:"db_host" default:"localhost:3306"`
	DBName           string `envconfig:"db_name" default:"ecommerce"`
	DBMaxConnections int    `envconfig:"db_max_connections" default:"10"`

	ProductsURL string `envconfig:"products_url" default:"https://fakestoreapi.com/products"`

	PaymentSuccessRate float64       `envconfig:"payment_success_rate" default:"0.85"`
	PaymentMinDelay    time.Duration `envconfig:"payment_min_delay" default:"1s"`
	PaymentMaxDelay    time.Duration `envconfig:"payment_max_delay" default:"3s"`
	ShippingFee        string        `envconfig:"shipping_fee" default:"9.99"`
}

func parseEnv() (*config, error) {
	c := new(config)
	if err := envconfig.Process(appID, c); err != nil {
		return nil, errors.Wrap(err, "failed to parse env")
	}
	return c, nil
}

func (c *config) database() mysql.Config {
	return mysql.Config{
		User:           c.DBUser,
		Password:       c.DBPassword,
		Host:           c.DBHost,
		Name:           c.DBName,
		MaxConnections: c.DBMaxConnections,
	}
}

func (c *config) payment() (payment.Config, error) {
	fee, err := decimal.NewFromString(c.ShippingFee)
	if err != nil {
		return payment.Config{}, errors.Wrapf(err, "invalid shipping fee %q", c.ShippingFee)
	}
	if c.PaymentSuccessRate < 0 || c.PaymentSuccessRate > 1 {
		return payment.Config{}, errors.Errorf("payment success rate must be within [0, 1], got %v", c.PaymentSuccessRate)
	}
	return payment.Config{
		SuccessRate: c.PaymentSuccessRate,
		MinDelay:    c.PaymentMinDelay,
		MaxDelay:    c.PaymentMaxDelay,
		ShippingFee: fee,
	}, nil
}
