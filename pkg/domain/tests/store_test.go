package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sk-intls/ecommerce-simulation/pkg/domain/model"
	"github.com/sk-intls/ecommerce-simulation/pkg/domain/service"
	"github.com/sk-intls/ecommerce-simulation/pkg/infrastructure/payment"
)

type fixture struct {
	store       service.Store
	products    *mockProductRepository
	customers   *mockCustomerRepository
	orders      *mockOrderRepository
	gateway     *mockPaymentGateway
	initializer *mockInitializer
	dispatcher  *mockEventDispatcher
}

func setup(t *testing.T) *fixture {
	return setupWithGateway(t, &mockPaymentGateway{succeed: true, shippingCost: decimal.RequireFromString("9.99")})
}

func setupWithGateway(t *testing.T, gateway model.PaymentGateway) *fixture {
	t.Helper()
	f := &fixture{
		products:    &mockProductRepository{store: make(map[int64]*model.Product)},
		customers:   &mockCustomerRepository{store: make(map[int64]*model.Customer)},
		initializer: &mockInitializer{},
		dispatcher:  &mockEventDispatcher{},
	}
	f.orders = &mockOrderRepository{store: make(map[int64]*model.Order), customers: f.customers}
	if mock, ok := gateway.(*mockPaymentGateway); ok {
		f.gateway = mock
	}
	f.store = service.NewStore(f.products, f.customers, f.orders, gateway, f.initializer, f.dispatcher)
	require.NoError(t, f.store.Init(context.Background()))
	f.dispatcher.Reset()
	return f
}

func (f *fixture) addProduct(t *testing.T, name, price string, stock int) *model.Product {
	t.Helper()
	product, err := f.store.AddProduct(context.Background(), service.NewProduct{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	})
	require.NoError(t, err)
	return product
}

func (f *fixture) addCustomer(t *testing.T, name, customerType, tier string) *model.Customer {
	t.Helper()
	customer, err := f.store.AddCustomer(context.Background(), service.NewCustomer{
		Name: name,
		Type: customerType,
		Tier: tier,
	})
	require.NoError(t, err)
	return customer
}

func TestInit(t *testing.T) {
	initializer := &mockInitializer{}
	store := service.NewStore(
		&mockProductRepository{store: make(map[int64]*model.Product)},
		&mockCustomerRepository{store: make(map[int64]*model.Customer)},
		&mockOrderRepository{store: make(map[int64]*model.Order)},
		&mockPaymentGateway{succeed: true},
		initializer,
		&mockEventDispatcher{},
	)
	ctx := context.Background()

	t.Run("Fail before initialization", func(t *testing.T) {
		_, err := store.GetProducts(ctx)
		assert.ErrorIs(t, err, model.ErrStoreNotInitialized)
	})

	t.Run("Second init is a no-op", func(t *testing.T) {
		require.NoError(t, store.Init(ctx))
		require.NoError(t, store.Init(ctx))
		assert.Equal(t, 1, initializer.calls)

		_, err := store.GetProducts(ctx)
		assert.NoError(t, err)
	})
}

func TestInit_Failure(t *testing.T) {
	initializer := &mockInitializer{err: errors.New("database is down")}
	store := service.NewStore(nil, nil, nil, nil, initializer, nil)

	err := store.Init(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is down")

	initializer.err = nil
	require.NoError(t, store.Init(context.Background()))
	assert.Equal(t, 2, initializer.calls)
}

func TestAddProduct(t *testing.T) {
	f := setup(t)

	t.Run("Success", func(t *testing.T) {
		product := f.addProduct(t, "Backpack", "109.95", 120)

		assert.Positive(t, product.ID)
		saved, err := f.products.Find(context.Background(), product.ID)
		require.NoError(t, err)
		assert.Equal(t, "Backpack", saved.Name)
		assert.Equal(t, 120, saved.Stock)

		require.Len(t, f.dispatcher.events, 1)
		_, ok := f.dispatcher.events[0].(model.ProductAdded)
		assert.True(t, ok)
	})

	t.Run("Fail on negative price", func(t *testing.T) {
		_, err := f.store.AddProduct(context.Background(), service.NewProduct{Name: "Broken", Price: decimal.NewFromInt(-1)})
		assert.ErrorIs(t, err, model.ErrInvalidArgument)
	})
}

func TestRestockProduct_Broadcast(t *testing.T) {
	f := setup(t)
	cheap := f.addProduct(t, "T-Shirt", "22.30", 10)

	regular := &recordingSubscriber{id: 1}
	premium := &recordingSubscriber{id: 2, premium: true}
	_, _ = f.store.Subscribe(regular)
	_, _ = f.store.Subscribe(premium)

	restocked, err := f.store.RestockProduct(context.Background(), cheap.ID, 5)

	require.NoError(t, err)
	assert.Equal(t, 15, restocked.Stock)
	require.Len(t, regular.updates, 1)
	require.Len(t, premium.updates, 1)
	assert.Equal(t, cheap.ID, regular.updates[0].ID)
	assert.Equal(t, cheap.ID, premium.updates[0].ID)

	require.Len(t, f.dispatcher.events, 2)
	event, ok := f.dispatcher.events[1].(model.ProductRestocked)
	require.True(t, ok)
	assert.Equal(t, 2, event.Notified)
}

func TestRestockProduct_PremiumNarrowcast(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, price := range []string{"50", "109.95"} {
		t.Run(price, func(t *testing.T) {
			f.store.ClearAllSubscriptions()
			expensive := f.addProduct(t, "Jacket "+price, price, 3)

			regular := &recordingSubscriber{id: 1}
			premium := &recordingSubscriber{id: 2, premium: true}
			_, _ = f.store.Subscribe(regular)
			_, _ = f.store.Subscribe(premium)

			_, err := f.store.RestockProduct(ctx, expensive.ID, 500)

			require.NoError(t, err)
			assert.Empty(t, regular.updates)
			require.Len(t, premium.updates, 1)
			assert.Equal(t, expensive.ID, premium.updates[0].ID)
		})
	}
}

func TestRestockProduct_NotifiesRealCustomers(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	regular := f.addCustomer(t, "Bob Smith", "regular", "")
	premium := f.addCustomer(t, "Alice Johnson", "premium", "SILVER")
	_, _ = f.store.Subscribe(regular)
	_, _ = f.store.Subscribe(premium)

	cheap := f.addProduct(t, "Ring", "9.99", 1)
	expensive := f.addProduct(t, "Monitor", "999.99", 1)

	_, err := f.store.RestockProduct(ctx, cheap.ID, 2000)
	require.NoError(t, err)
	_, err = f.store.RestockProduct(ctx, expensive.ID, 500)
	require.NoError(t, err)

	require.Len(t, regular.RestockAlerts(), 1)
	assert.Equal(t, "Ring", regular.RestockAlerts()[0].Name)
	require.Len(t, premium.RestockAlerts(), 2)
}

func TestRestockProduct_Failures(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	product := f.addProduct(t, "Mug", "5", 10)
	subscriber := &recordingSubscriber{id: 1, premium: true}
	_, _ = f.store.Subscribe(subscriber)

	t.Run("Fail on non-positive quantity", func(t *testing.T) {
		for _, quantity := range []int{0, -1, -100} {
			_, err := f.store.RestockProduct(ctx, product.ID, quantity)
			assert.ErrorIs(t, err, model.ErrInvalidArgument)
		}
		saved, _ := f.products.Find(ctx, product.ID)
		assert.Equal(t, 10, saved.Stock)
		assert.Empty(t, subscriber.updates)
	})

	t.Run("Fail on unknown product", func(t *testing.T) {
		_, err := f.store.RestockProduct(ctx, 404, 5)
		assert.ErrorIs(t, err, model.ErrNotFound)
		assert.ErrorIs(t, err, model.ErrProductNotFound)
		assert.Empty(t, subscriber.updates)
	})
}

func TestRestockProduct_UnsubscribeDuringNotification(t *testing.T) {
	f := setup(t)
	product := f.addProduct(t, "Socks", "3", 1)

	first := &recordingSubscriber{id: 1}
	second := &recordingSubscriber{id: 2}
	first.onUpdate = func() { _, _ = f.store.Unsubscribe(second) }
	second.onUpdate = func() { _, _ = f.store.Unsubscribe(first) }
	_, _ = f.store.Subscribe(first)
	_, _ = f.store.Subscribe(second)

	_, err := f.store.RestockProduct(context.Background(), product.ID, 1)

	require.NoError(t, err)
	assert.Len(t, first.updates, 1)
	assert.Len(t, second.updates, 1)
}

func TestAddCustomer(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	birth := time.Date(1988, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("Premium with default tier", func(t *testing.T) {
		customer := f.addCustomer(t, "Grace Chen", "premium", "")
		assert.Equal(t, model.Premium, customer.Type)
		assert.Equal(t, model.Gold, customer.Tier)
		assert.True(t, decimal.RequireFromString("0.10").Equal(customer.DiscountRate()))

		require.Len(t, f.dispatcher.events, 1)
		_, ok := f.dispatcher.events[0].(model.CustomerRegistered)
		assert.True(t, ok)
	})

	t.Run("Returns existing record on duplicate", func(t *testing.T) {
		first, err := f.store.AddCustomer(ctx, service.NewCustomer{Name: "Alice Johnson", Type: "premium", Birth: &birth, Tier: "PLATINUM"})
		require.NoError(t, err)
		f.dispatcher.Reset()

		second, err := f.store.AddCustomer(ctx, service.NewCustomer{Name: "Alice Johnson", Type: "regular", Birth: &birth})
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, model.Premium, second.Type)
		assert.Equal(t, model.Platinum, second.Tier)
		assert.Empty(t, f.dispatcher.events)
	})

	t.Run("Same name with another birth date is a new customer", func(t *testing.T) {
		other := time.Date(1990, 1, 30, 0, 0, 0, 0, time.UTC)
		customer, err := f.store.AddCustomer(ctx, service.NewCustomer{Name: "Alice Johnson", Type: "regular", Birth: &other})
		require.NoError(t, err)
		assert.Equal(t, model.Regular, customer.Type)
	})

	t.Run("Fail on invalid tier", func(t *testing.T) {
		_, err := f.store.AddCustomer(ctx, service.NewCustomer{Name: "Carol Davis", Type: "premium", Tier: "BRONZE"})
		require.ErrorIs(t, err, model.ErrInvalidArgument)
		assert.Contains(t, err.Error(), "SILVER")
		assert.Contains(t, err.Error(), "GOLD")
		assert.Contains(t, err.Error(), "PLATINUM")
	})

	t.Run("Fail on invalid type", func(t *testing.T) {
		_, err := f.store.AddCustomer(ctx, service.NewCustomer{Name: "Henry Rodriguez", Type: "vip"})
		assert.ErrorIs(t, err, model.ErrInvalidArgument)
	})
}

func TestCreateOrder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		customer := f.addCustomer(t, "Bob Smith", "regular", "")
		require.NoError(t, customer.AddToCart(f.addProduct(t, "Cable", "12", 5), 2))
		f.dispatcher.Reset()

		order, err := f.store.CreateOrder(ctx, customer)

		require.NoError(t, err)
		assert.Positive(t, order.ID)
		assert.Equal(t, customer.ID, order.CustomerID)
		assert.Equal(t, model.OrderPending, order.Status)
		assert.Equal(t, model.PaymentPending, order.PaymentStatus)
		assert.True(t, decimal.NewFromInt(24).Equal(order.Total))
		assert.True(t, order.ShippingCost.IsZero())
		assert.Empty(t, order.TransactionID)

		require.Len(t, f.dispatcher.events, 1)
		_, ok := f.dispatcher.events[0].(model.OrderCreated)
		assert.True(t, ok)
	})

	t.Run("Total is a snapshot", func(t *testing.T) {
		customer := f.addCustomer(t, "David Wilson", "regular", "")
		require.NoError(t, customer.AddToCart(f.addProduct(t, "Pen", "2", 5), 5))

		order, err := f.store.CreateOrder(ctx, customer)
		require.NoError(t, err)

		customer.ClearCart()
		require.NoError(t, customer.AddToCart(f.addProduct(t, "Desk", "300", 1), 1))

		saved, err := f.orders.Find(ctx, order.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(10).Equal(saved.Total))
	})

	t.Run("Total is rounded to cents", func(t *testing.T) {
		customer := f.addCustomer(t, "Emma Thompson", "premium", "PLATINUM")
		require.NoError(t, customer.AddToCart(f.addProduct(t, "Backpack", "109.95", 5), 1))
		assert.Equal(t, "93.4575", customer.CartTotal().String())

		order, err := f.store.CreateOrder(ctx, customer)
		require.NoError(t, err)
		assert.Equal(t, "93.46", order.Total.String())

		saved, err := f.orders.Find(ctx, order.ID)
		require.NoError(t, err)
		assert.True(t, order.Total.Equal(saved.Total))
	})

	t.Run("Fail on unknown customer", func(t *testing.T) {
		_, err := f.store.CreateOrder(ctx, &model.Customer{ID: 999, Name: "Ghost", Type: model.Regular})
		assert.ErrorIs(t, err, model.ErrNotFound)

		_, err = f.store.CreateOrder(ctx, model.NewRegularCustomer("Unsaved", nil))
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestProcessOrderPayment_Idempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	customer := f.addCustomer(t, "Frank Miller", "regular", "")
	require.NoError(t, customer.AddToCart(f.addProduct(t, "Lamp", "30", 3), 1))
	order, err := f.store.CreateOrder(ctx, customer)
	require.NoError(t, err)

	first, err := f.store.ProcessOrderPayment(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, model.PaymentCompleted, first.PaymentStatus)
	require.NotEmpty(t, f.dispatcher.events)
	paid, ok := f.dispatcher.events[len(f.dispatcher.events)-1].(model.OrderPaymentCompleted)
	require.True(t, ok)
	assert.Equal(t, order.ID, paid.OrderID)
	assert.Equal(t, first.TransactionID, paid.TransactionID)
	f.dispatcher.Reset()

	second, err := f.store.ProcessOrderPayment(ctx, order.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, f.gateway.calls)
	assert.Equal(t, first.TransactionID, second.TransactionID)
	assert.Equal(t, first.Status, second.Status)
	assert.True(t, first.ShippingCost.Equal(second.ShippingCost))
	assert.Empty(t, f.dispatcher.events)
}

func TestProcessOrderPayment_Failure(t *testing.T) {
	f := setup(t)
	f.gateway.succeed = false
	ctx := context.Background()
	customer := f.addCustomer(t, "Jack Anderson", "regular", "")
	require.NoError(t, customer.AddToCart(f.addProduct(t, "Hat", "15", 3), 1))
	order, err := f.store.CreateOrder(ctx, customer)
	require.NoError(t, err)
	f.dispatcher.Reset()

	settled, err := f.store.ProcessOrderPayment(ctx, order.ID)

	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, settled.Status)
	assert.Equal(t, model.PaymentFailed, settled.PaymentStatus)
	assert.NotEmpty(t, settled.TransactionID)
	assert.Len(t, customer.Cart(), 1)

	require.Len(t, f.dispatcher.events, 1)
	_, ok := f.dispatcher.events[0].(model.OrderPaymentFailed)
	assert.True(t, ok)

	t.Run("Caller retries", func(t *testing.T) {
		f.gateway.succeed = true
		retried, err := f.store.ProcessOrderPayment(ctx, order.ID)

		require.NoError(t, err)
		assert.Equal(t, model.OrderPaid, retried.Status)
		assert.Equal(t, 2, f.gateway.calls)
		assert.Empty(t, customer.Cart())
	})
}

func TestProcessOrderPayment_Errors(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	t.Run("Fail on unknown order", func(t *testing.T) {
		_, err := f.store.ProcessOrderPayment(ctx, 12345)
		assert.ErrorIs(t, err, model.ErrNotFound)
		assert.Zero(t, f.gateway.calls)
	})

	t.Run("Gateway error propagates", func(t *testing.T) {
		customer := f.addCustomer(t, "Isabella Martinez", "premium", "GOLD")
		order, err := f.store.CreateOrder(ctx, customer)
		require.NoError(t, err)

		f.gateway.err = errors.New("connection reset")
		_, err = f.store.ProcessOrderPayment(ctx, order.ID)
		assert.EqualError(t, err, "connection reset")

		saved, _ := f.orders.Find(ctx, order.ID)
		assert.Equal(t, model.PaymentPending, saved.PaymentStatus)
	})
}

func TestSubscriptions(t *testing.T) {
	f := setup(t)
	customer := &recordingSubscriber{id: 3}

	subscribed, err := f.store.Subscribe(customer)
	require.NoError(t, err)
	assert.True(t, subscribed)

	subscribed, err = f.store.Subscribe(customer)
	require.NoError(t, err)
	assert.False(t, subscribed)

	unsubscribed, err := f.store.Unsubscribe(customer)
	require.NoError(t, err)
	assert.True(t, unsubscribed)

	unsubscribed, err = f.store.Unsubscribe(customer)
	require.NoError(t, err)
	assert.False(t, unsubscribed)

	_, err = f.store.Subscribe(&recordingSubscriber{id: 0})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
	_, err = f.store.Unsubscribe(&recordingSubscriber{id: -1})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
	_, err = f.store.Subscribe(nil)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	for id := int64(1); id <= 4; id++ {
		_, _ = f.store.Subscribe(&recordingSubscriber{id: id})
	}
	assert.Equal(t, 4, f.store.ClearAllSubscriptions())
	assert.Equal(t, 0, f.store.ClearAllSubscriptions())
}

func TestEndToEnd_PremiumPlatinum(t *testing.T) {
	f := setupWithGateway(t, payment.NewSimulator(payment.Config{SuccessRate: 1, ShippingFee: payment.DefaultShippingFee}))
	ctx := context.Background()

	customer := f.addCustomer(t, "Emma Thompson", "premium", "PLATINUM")
	product := f.addProduct(t, "Camera", "100", 10)
	require.NoError(t, customer.AddToCart(product, 2))
	assert.True(t, decimal.NewFromInt(170).Equal(customer.CartTotal()))

	order, err := f.store.CreateOrder(ctx, customer)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(170).Equal(order.Total))

	settled, err := f.store.ProcessOrderPayment(ctx, order.ID)
	require.NoError(t, err)

	assert.Equal(t, model.PaymentCompleted, settled.PaymentStatus)
	assert.Equal(t, model.OrderPaid, settled.Status)
	assert.True(t, settled.ShippingCost.IsZero())
	assert.Empty(t, customer.Cart())
	assert.True(t, decimal.NewFromInt(170).Equal(settled.Summary().TotalWithShipping))
}

func TestEndToEnd_Regular(t *testing.T) {
	f := setupWithGateway(t, payment.NewSimulator(payment.Config{SuccessRate: 1, ShippingFee: payment.DefaultShippingFee}))
	ctx := context.Background()

	customer := f.addCustomer(t, "Bob Smith", "regular", "")
	product := f.addProduct(t, "Notebook", "20", 10)
	require.NoError(t, customer.AddToCart(product, 1))
	assert.True(t, decimal.NewFromInt(20).Equal(customer.CartTotal()))

	order, err := f.store.CreateOrder(ctx, customer)
	require.NoError(t, err)

	settled, err := f.store.ProcessOrderPayment(ctx, order.ID)
	require.NoError(t, err)

	assert.Equal(t, model.OrderPaid, settled.Status)
	assert.True(t, payment.DefaultShippingFee.Equal(settled.ShippingCost))
	assert.False(t, settled.ShippingCost.IsZero())
	assert.Empty(t, customer.Cart())
}

func TestProcessOrderPayment_ClearsCartOfLoadedCustomer(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.addCustomer(t, "Carol Davis", "premium", "SILVER")

	customers, err := f.store.GetCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	customer := customers[0]
	require.NoError(t, customer.AddToCart(f.addProduct(t, "Chair", "80", 2), 1))

	order, err := f.store.CreateOrder(ctx, customer)
	require.NoError(t, err)
	_, err = f.store.ProcessOrderPayment(ctx, order.ID)
	require.NoError(t, err)

	assert.Empty(t, customer.Cart())
	assert.True(t, decimal.NewFromInt(76).Equal(order.Total))
}

// --- Mocks ---

var _ model.ProductRepository = &mockProductRepository{}

type mockProductRepository struct {
	store  map[int64]*model.Product
	lastID int64
}

func (m *mockProductRepository) Create(_ context.Context, p *model.Product) error {
	m.lastID++
	p.ID = m.lastID
	clone := *p
	m.store[p.ID] = &clone
	return nil
}

func (m *mockProductRepository) Update(_ context.Context, p *model.Product) error {
	if _, ok := m.store[p.ID]; !ok {
		return model.ErrProductNotFound
	}
	clone := *p
	m.store[p.ID] = &clone
	return nil
}

func (m *mockProductRepository) Find(_ context.Context, id int64) (*model.Product, error) {
	if p, ok := m.store[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, model.ErrProductNotFound
}

func (m *mockProductRepository) FindAll(_ context.Context) ([]*model.Product, error) {
	products := make([]*model.Product, 0, len(m.store))
	for id := int64(1); id <= m.lastID; id++ {
		if p, ok := m.store[id]; ok {
			clone := *p
			products = append(products, &clone)
		}
	}
	return products, nil
}

var _ model.CustomerRepository = &mockCustomerRepository{}

type mockCustomerRepository struct {
	store  map[int64]*model.Customer
	lastID int64
}

func (m *mockCustomerRepository) Create(_ context.Context, c *model.Customer) error {
	m.lastID++
	c.ID = m.lastID
	m.store[c.ID] = &model.Customer{ID: c.ID, Name: c.Name, Type: c.Type, Birth: c.Birth, Tier: c.Tier}
	return nil
}

func (m *mockCustomerRepository) Find(_ context.Context, id int64) (*model.Customer, error) {
	if c, ok := m.store[id]; ok {
		return m.load(c), nil
	}
	return nil, model.ErrCustomerNotFound
}

func (m *mockCustomerRepository) FindAll(_ context.Context) ([]*model.Customer, error) {
	customers := make([]*model.Customer, 0, len(m.store))
	for id := int64(1); id <= m.lastID; id++ {
		if c, ok := m.store[id]; ok {
			customers = append(customers, m.load(c))
		}
	}
	return customers, nil
}

func (m *mockCustomerRepository) FindByNameAndBirth(_ context.Context, name string, birth *time.Time) (*model.Customer, error) {
	for id := int64(1); id <= m.lastID; id++ {
		c, ok := m.store[id]
		if !ok || c.Name != name {
			continue
		}
		if birth == nil || (c.Birth != nil && c.Birth.Equal(*birth)) {
			return m.load(c), nil
		}
	}
	return nil, model.ErrCustomerNotFound
}

// load returns a fresh instance, the way a database read would.
func (m *mockCustomerRepository) load(c *model.Customer) *model.Customer {
	return &model.Customer{ID: c.ID, Name: c.Name, Type: c.Type, Birth: c.Birth, Tier: c.Tier}
}

var _ model.OrderRepository = &mockOrderRepository{}

type mockOrderRepository struct {
	store     map[int64]*model.Order
	customers *mockCustomerRepository
	lastID    int64
}

func (m *mockOrderRepository) Create(_ context.Context, o *model.Order) error {
	m.lastID++
	o.ID = m.lastID
	clone := *o
	m.store[o.ID] = &clone
	return nil
}

func (m *mockOrderRepository) Update(_ context.Context, o *model.Order) error {
	if _, ok := m.store[o.ID]; !ok {
		return model.ErrOrderNotFound
	}
	clone := *o
	m.store[o.ID] = &clone
	return nil
}

func (m *mockOrderRepository) Find(ctx context.Context, id int64) (*model.Order, error) {
	o, ok := m.store[id]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	clone := *o
	if m.customers != nil {
		customer, err := m.customers.Find(ctx, o.CustomerID)
		if err != nil {
			return nil, err
		}
		clone.Customer = customer
	}
	return &clone, nil
}

func (m *mockOrderRepository) FindAll(ctx context.Context) ([]*model.Order, error) {
	orders := make([]*model.Order, 0, len(m.store))
	for id := int64(1); id <= m.lastID; id++ {
		if _, ok := m.store[id]; ok {
			o, err := m.Find(ctx, id)
			if err != nil {
				return nil, err
			}
			orders = append(orders, o)
		}
	}
	return orders, nil
}

var _ model.PaymentGateway = &mockPaymentGateway{}

type mockPaymentGateway struct {
	succeed      bool
	shippingCost decimal.Decimal
	err          error
	calls        int
}

func (m *mockPaymentGateway) ProcessPayment(_ context.Context, amount decimal.Decimal, customerType model.CustomerType, _ string) (model.PaymentResult, error) {
	m.calls++
	if m.err != nil {
		return model.PaymentResult{}, m.err
	}

	shipping := m.shippingCost
	if customerType == model.Premium {
		shipping = decimal.Zero
	}
	result := model.PaymentResult{
		Success:       m.succeed,
		TransactionID: "TXN_TEST_" + string(rune('A'+m.calls)),
		TotalAmount:   amount.Add(shipping),
		ShippingCost:  shipping,
	}
	if m.succeed {
		result.Status = model.PaymentCompleted
	} else {
		result.Status = model.PaymentFailed
		result.Message = "card declined"
	}
	return result, nil
}

type mockInitializer struct {
	calls int
	err   error
}

func (m *mockInitializer) Init(_ context.Context) error {
	m.calls++
	return m.err
}

var _ service.EventDispatcher = &mockEventDispatcher{}

type mockEventDispatcher struct {
	events []service.Event
}

func (m *mockEventDispatcher) Dispatch(event service.Event) error {
	m.events = append(m.events, event)
	return nil
}

func (m *mockEventDispatcher) Reset() {
	m.events = nil
}

var _ model.Subscriber = &recordingSubscriber{}

type recordingSubscriber struct {
	id       int64
	premium  bool
	updates  []model.Product
	onUpdate func()
}

func (r *recordingSubscriber) SubscriberID() int64 { return r.id }
func (r *recordingSubscriber) IsPremium() bool     { return r.premium }
func (r *recordingSubscriber) Update(product model.Product) {
	r.updates = append(r.updates, product)
	if r.onUpdate != nil {
		r.onUpdate()
	}
}
