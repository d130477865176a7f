package mysql

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/sk-intls/ecommerce-simulation/pkg/domain/model"
)

type sqlxProduct struct {
	ID          int64           `db:"id"`
	Name        string          `db:"name"`
	Price       decimal.Decimal `db:"price"`
	Stock       int             `db:"stock"`
	Description sql.NullString  `db:"description"`
	Category    sql.NullString  `db:"category"`
}

func (p sqlxProduct) toModel() *model.Product {
	return &model.Product{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Stock:       p.Stock,
		Description: p.Description.String,
		Category:    p.Category.String,
	}
}

func NewProductRepository(db *sqlx.DB) model.ProductRepository {
	return &productRepository{db: db}
}

type productRepository struct {
	db *sqlx.DB
}

const selectProducts = `SELECT id, name, price, stock, description, category FROM products`

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO products (name, price, stock, description, category) VALUES (?, ?, ?, ?, ?)`,
		product.Name, product.Price, product.Stock, nullString(product.Description), nullString(product.Category),
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert product")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return errors.WithStack(err)
	}
	product.ID = id
	return nil
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE products SET name = ?, price = ?, stock = ?, description = ?, category = ? WHERE id = ?`,
		product.Name, product.Price, product.Stock, nullString(product.Description), nullString(product.Category), product.ID,
	)
	return errors.Wrapf(err, "failed to update product %d", product.ID)
}

func (r *productRepository) Find(ctx context.Context, id int64) (*model.Product, error) {
	var row sqlxProduct
	err := r.db.GetContext(ctx, &row, selectProducts+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(model.ErrProductNotFound, "product id %d", id)
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return row.toModel(), nil
}

func (r *productRepository) FindAll(ctx context.Context) ([]*model.Product, error) {
	var rows []sqlxProduct
	if err := r.db.SelectContext(ctx, &rows, selectProducts+` ORDER BY id`); err != nil {
		return nil, errors.WithStack(err)
	}
	products := make([]*model.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toModel())
	}
	return products, nil
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
