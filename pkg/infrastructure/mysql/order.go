package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/sk-intls/ecommerce-simulation/pkg/domain/model"
)

type sqlxOrder struct {
	ID            int64           `db:"id"`
	CustomerID    int64           `db:"customer_id"`
	Status        string          `db:"status"`
	Total         decimal.Decimal `db:"total"`
	ShippingCost  decimal.Decimal `db:"shipping_cost"`
	TransactionID sql.NullString  `db:"transaction_id"`
	PaymentStatus string          `db:"payment_status"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`

	CustomerName  string              `db:"customer_name"`
	CustomerType  string              `db:"customer_type"`
	CustomerBirth sql.NullTime        `db:"customer_birth"`
	CustomerRate  decimal.NullDecimal `db:"customer_discount_rate"`
	CustomerTier  sql.NullString      `db:"customer_tier"`
}

func (o sqlxOrder) toModel() *model.Order {
	customer := sqlxCustomer{
		ID:           o.CustomerID,
		Name:         o.CustomerName,
		CustomerType: o.CustomerType,
		Birth:        o.CustomerBirth,
		DiscountRate: o.CustomerRate,
		Tier:         o.CustomerTier,
	}.toModel()

	return &model.Order{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		Customer:      customer,
		Status:        model.OrderStatus(o.Status),
		Total:         o.Total,
		ShippingCost:  o.ShippingCost,
		PaymentStatus: model.PaymentStatus(o.PaymentStatus),
		TransactionID: o.TransactionID.String,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func NewOrderRepository(db *sqlx.DB) model.OrderRepository {
	return &orderRepository{db: db}
}

type orderRepository struct {
	db *sqlx.DB
}

// Orders are always read together with their customer.
const selectOrders = `SELECT
		o.id, o.customer_id, o.status, o.total, o.shipping_cost, o.transaction_id,
		o.payment_status, o.created_at, o.updated_at,
		c.name AS customer_name, c.customer_type AS customer_type, c.birth AS customer_birth,
		c.discount_rate AS customer_discount_rate, c.tier AS customer_tier
	FROM orders o
	INNER JOIN customers c ON c.id = o.customer_id`

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO orders (customer_id, status, total, shipping_cost, transaction_id, payment_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		order.CustomerID, order.Status, order.Total, order.ShippingCost, nullString(order.TransactionID),
		order.PaymentStatus, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert order")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return errors.WithStack(err)
	}
	order.ID = id
	return nil
}

// Update never touches total: it is fixed when the order is created.
func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, shipping_cost = ?, transaction_id = ?, payment_status = ?, updated_at = ? WHERE id = ?`,
		order.Status, order.ShippingCost, nullString(order.TransactionID), order.PaymentStatus, order.UpdatedAt, order.ID,
	)
	return errors.Wrapf(err, "failed to update order %d", order.ID)
}

func (r *orderRepository) Find(ctx context.Context, id int64) (*model.Order, error) {
	var row sqlxOrder
	err := r.db.GetContext(ctx, &row, selectOrders+` WHERE o.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(model.ErrOrderNotFound, "order id %d", id)
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return row.toModel(), nil
}

func (r *orderRepository) FindAll(ctx context.Context) ([]*model.Order, error) {
	var rows []sqlxOrder
	if err := r.db.SelectContext(ctx, &rows, selectOrders+` ORDER BY o.id`); err != nil {
		return nil, errors.WithStack(err)
	}
	orders := make([]*model.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.toModel())
	}
	return orders, nil
}
