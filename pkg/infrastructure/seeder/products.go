package seeder

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/sk-intls/ecommerce-simulation/pkg/domain/model"
	"github.com/sk-intls/ecommerce-simulation/pkg/domain/service"
)

const DefaultProductsURL = "https://fakestoreapi.com/products"

// fakeStoreProduct uses pointers so that missing fields can be told apart
// from zero values.
type fakeStoreProduct struct {
	ID          *float64         `json:"id"`
	Title       *string          `json:"title"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Image       *string          `json:"image"`
	Rating      *struct {
		Rate  *float64 `json:"rate"`
		Count *int     `json:"count"`
	} `json:"rating"`
}

func (p fakeStoreProduct) complete() bool {
	return p.ID != nil && p.Title != nil && p.Price != nil && p.Description != nil &&
		p.Category != nil && p.Image != nil && p.Rating != nil &&
		p.Rating.Rate != nil && p.Rating.Count != nil
}

type ProductSeeder struct {
	store  service.Store
	client *http.Client
	url    string
}

func NewProductSeeder(store service.Store, client *http.Client, url string) *ProductSeeder {
	if client == nil {
		client = http.DefaultClient
	}
	if url == "" {
		url = DefaultProductsURL
	}
	return &ProductSeeder{store: store, client: client, url: url}
}

func (s *ProductSeeder) FetchProducts(ctx context.Context) ([]service.NewProduct, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	response, err := s.client.Do(request)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch products from %s", s.url)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(model.ErrUpstreamData, "unexpected status %d from %s", response.StatusCode, s.url)
	}

	var items []fakeStoreProduct
	if err := json.NewDecoder(response.Body).Decode(&items); err != nil {
		return nil, errors.Wrapf(model.ErrUpstreamData, "invalid product data format: %v", err)
	}

	products := make([]service.NewProduct, 0, len(items))
	for i, item := range items {
		if !item.complete() {
			return nil, errors.Wrapf(model.ErrUpstreamData, "invalid product data format at index %d", i)
		}
		products = append(products, service.NewProduct{
			Name:        *item.Title,
			Price:       *item.Price,
			Stock:       *item.Rating.Count,
			Description: *item.Description,
			Category:    *item.Category,
		})
	}
	return products, nil
}

func (s *ProductSeeder) Seed(ctx context.Context) (int, error) {
	products, err := s.FetchProducts(ctx)
	if err != nil {
		log.WithError(err).Error("failed to fetch products")
		return 0, err
	}

	for _, product := range products {
		if _, err := s.store.AddProduct(ctx, product); err != nil {
			log.WithError(err).WithField("product", product.Name).Error("failed to seed product")
			return 0, err
		}
	}
	log.WithField("count", len(products)).Info("products seeded successfully")
	return len(products), nil
}
