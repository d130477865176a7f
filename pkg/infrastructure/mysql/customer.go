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

const birthLayout = "2006-01-02"

type sqlxCustomer struct {
	ID           int64               `db:"id"`
	Name         string              `db:"name"`
	CustomerType string              `db:"customer_type"`
	Birth        sql.NullTime        `db:"birth"`
	DiscountRate decimal.NullDecimal `db:"discount_rate"`
	Tier         sql.NullString      `db:"tier"`
}

func (c sqlxCustomer) toModel() *model.Customer {
	var birth *time.Time
	if c.Birth.Valid {
		value := c.Birth.Time
		birth = &value
	}

	if model.CustomerType(c.CustomerType) == model.Premium {
		tier, err := model.ParseTier(c.Tier.String)
		if err != nil {
			tier = model.Gold
		}
		customer := model.NewPremiumCustomer(c.Name, birth, tier)
		customer.ID = c.ID
		return customer
	}

	customer := model.NewRegularCustomer(c.Name, birth)
	customer.ID = c.ID
	return customer
}

func fromModelCustomer(customer *model.Customer) sqlxCustomer {
	row := sqlxCustomer{
		ID:           customer.ID,
		Name:         customer.Name,
		CustomerType: string(customer.Type),
	}
	if customer.Birth != nil {
		row.Birth = sql.NullTime{Time: *customer.Birth, Valid: true}
	}
	if customer.IsPremium() {
		row.DiscountRate = decimal.NewNullDecimal(customer.DiscountRate())
		row.Tier = sql.NullString{String: string(customer.Tier), Valid: true}
	}
	return row
}

func NewCustomerRepository(db *sqlx.DB) model.CustomerRepository {
	return &customerRepository{db: db}
}

type customerRepository struct {
	db *sqlx.DB
}

const selectCustomers = `SELECT id, name, customer_type, birth, discount_rate, tier FROM customers`

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	row := fromModelCustomer(customer)
	result, err := r.db.NamedExecContext(ctx,
		`INSERT INTO customers (name, customer_type, birth, discount_rate, tier)
		VALUES (:name, :customer_type, :birth, :discount_rate, :tier)`,
		row,
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert customer")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return errors.WithStack(err)
	}
	customer.ID = id
	return nil
}

func (r *customerRepository) Find(ctx context.Context, id int64) (*model.Customer, error) {
	var row sqlxCustomer
	err := r.db.GetContext(ctx, &row, selectCustomers+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(model.ErrCustomerNotFound, "customer id %d", id)
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return row.toModel(), nil
}

func (r *customerRepository) FindAll(ctx context.Context) ([]*model.Customer, error) {
	var rows []sqlxCustomer
	if err := r.db.SelectContext(ctx, &rows, selectCustomers+` ORDER BY id`); err != nil {
		return nil, errors.WithStack(err)
	}
	customers := make([]*model.Customer, 0, len(rows))
	for _, row := range rows {
		customers = append(customers, row.toModel())
	}
	return customers, nil
}

func (r *customerRepository) FindByNameAndBirth(ctx context.Context, name string, birth *time.Time) (*model.Customer, error) {
	query := selectCustomers + ` WHERE name = ?`
	args := []interface{}{name}
	if birth != nil {
		query += ` AND birth = ?`
		args = append(args, birth.Format(birthLayout))
	}

	var row sqlxCustomer
	err := r.db.GetContext(ctx, &row, query+` ORDER BY id LIMIT 1`, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(model.ErrCustomerNotFound, "customer %q", name)
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return row.toModel(), nil
}
