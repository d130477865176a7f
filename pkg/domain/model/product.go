package model

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64
	Name        string
	Price       decimal.Decimal
	Stock       int
	Description string
	Category    string
}

// AddStock is the only way stock changes; it never lets stock go down.
func (p *Product) AddStock(quantity int) error {
	if quantity <= 0 {
		return errors.Wrapf(ErrInvalidArgument, "quantity to add must be positive, got %d", quantity)
	}
	p.Stock += quantity
	return nil
}

func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.Wrap(ErrInvalidArgument, "product name is required")
	}
	if p.Price.IsNegative() {
		return errors.Wrapf(ErrInvalidArgument, "product price cannot be negative, got %s", p.Price)
	}
	if p.Stock < 0 {
		return errors.Wrapf(ErrInvalidArgument, "stock cannot be negative, got %d", p.Stock)
	}
	return nil
}

type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	Find(ctx context.Context, id int64) (*Product, error)
	FindAll(ctx context.Context) ([]*Product, error)
}
