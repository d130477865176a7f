package service

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/sk-intls/ecommerce-simulation/pkg/domain/model"
)

// Products priced below this are announced to every subscriber on restock,
// the rest only to premium subscribers.
var broadcastPriceLimit = decimal.NewFromInt(50)

type Event interface {
	Type() string
}

type EventDispatcher interface {
	Dispatch(event Event) error
}

// Initializer prepares the backing storage, e.g. by applying migrations.
type Initializer interface {
	Init(ctx context.Context) error
}

type NewProduct struct {
	Name        string
	Price       decimal.Decimal
	Stock       int
	Description string
	Category    string
}

type NewCustomer struct {
	Name string
	Type string
	// Birth is optional and participates in duplicate detection when set.
	Birth *time.Time
	Tier  string
}

type Store interface {
	Init(ctx context.Context) error

	AddProduct(ctx context.Context, data NewProduct) (*model.Product, error)
	GetProducts(ctx context.Context) ([]*model.Product, error)
	GetProduct(ctx context.Context, productID int64) (*model.Product, error)
	RestockProduct(ctx context.Context, productID int64, quantity int) (*model.Product, error)

	AddCustomer(ctx context.Context, data NewCustomer) (*model.Customer, error)
	GetCustomers(ctx context.Context) ([]*model.Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (*model.Customer, error)

	CreateOrder(ctx context.Context, customer *model.Customer) (*model.Order, error)
	ProcessOrderPayment(ctx context.Context, orderID int64) (*model.Order, error)
	GetOrders(ctx context.Context) ([]*model.Order, error)

	Subscribe(subscriber model.Subscriber) (bool, error)
	Unsubscribe(subscriber model.Subscriber) (bool, error)
	ClearAllSubscriptions() int
}

func NewStore(
	products model.ProductRepository,
	customers model.CustomerRepository,
	orders model.OrderRepository,
	payments model.PaymentGateway,
	initializer Initializer,
	dispatcher EventDispatcher,
) Store {
	return &store{
		products:      products,
		customers:     customers,
		orders:        orders,
		payments:      payments,
		initializer:   initializer,
		dispatcher:    dispatcher,
		liveCustomers: make(map[int64]*model.Customer),
		subscribers:   make(map[int64]model.Subscriber),
	}
}

type store struct {
	products    model.ProductRepository
	customers   model.CustomerRepository
	orders      model.OrderRepository
	payments    model.PaymentGateway
	initializer Initializer
	dispatcher  EventDispatcher

	mu          sync.Mutex
	initialized bool
	// liveCustomers keeps the instances whose carts callers fill, so that a
	// settled order clears the same cart.
	liveCustomers map[int64]*model.Customer
	subscribers   map[int64]model.Subscriber
}

func (s *store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		log.Warn("store is already initialized")
		return nil
	}

	log.Info("initializing store")
	if s.initializer != nil {
		if err := s.initializer.Init(ctx); err != nil {
			log.WithError(err).Error("failed to initialize store")
			return errors.Wrap(err, "failed to initialize store")
		}
	}
	s.initialized = true
	log.Info("store initialized successfully")
	return nil
}

func (s *store) AddProduct(ctx context.Context, data NewProduct) (*model.Product, error) {
	if err := s.checkInitialized(); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:        data.Name,
		Price:       data.Price,
		Stock:       data.Stock,
		Description: data.Description,
		Category:    data.Category,
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	s.dispatch(model.ProductAdded{ProductID: product.ID, Name: product.Name})
	return product, nil
}

func (s *store) GetProducts(ctx context.Context) ([]*model.Product, error) {
	if err := s.checkInitialized(); err != nil {
		return nil, err
	}
	return s.products.FindAll(ctx)
}

func (s *store) GetProduct(ctx context.Context, productID int64) (*model.Product, error) {
	if err := s.checkInitialized(); err != nil {
		return nil, err
	}
	return s.products.Find(ctx, productID)
}

func (s *store) RestockProduct(ctx context.Context, productID int64, quantity int) (*model.Product, error) {
	if err := s.checkInitialized(); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, errors.Wrapf(model.ErrInvalidArgument, "restock quantity must be a positive integer, got %d", quantity)
	}
	if productID <= 0 {
		return nil, errors.Wrap(model.ErrInvalidArgument, "product id is required")
	}

	product, err := s.products.Find(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := product.AddStock(quantity); err != nil {
		return nil, err
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	notified := s.notifySubscribers(*product)

	log.WithFields(log.Fields{
		"productID": product.ID,
		"quantity":  quantity,
		"stock":     product.Stock,
		"notified":  notified,
	}).Info("product restocked")

	s.dispatch(model.ProductRestocked{
		ProductID: product.ID,
		Quantity:  quantity,
		NewStock:  product.Stock,
		Notified:  notified,
	})
	return product, nil
}

func (s *store) AddCustomer(ctx context.Context, data NewCustomer) (*model.Customer, error) {
	if err := s.checkInitialized(); err != nil {
		return nil, err
	}

	customerType, err := model.ParseCustomerType(data.Type)
	if err != nil {
		return nil, err
	}

	existing, err := s.customers.FindByNameAndBirth(ctx, data.Name, data.Birth)
	if err == nil {
		log.WithFields(log.Fields{"customerID": existing.ID, "name": existing.Name}).Info("customer already exists")
		return s.remember(existing), nil
	}
	if !errors.Is(err, model.ErrCustomerNotFound) {
		return nil, err
	}

	var customer *model.Customer
	switch customerType {
	case model.Premium:
		tier, err := model.ParseTier(data.Tier)
		if err != nil {
			return nil, err
		}
		customer = model.NewPremiumCustomer(data.Name, data.Birth, tier)
	default:
		customer = model.NewRegularCustomer(data.Name, data.Birth)
	}

	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}

	s.dispatch(model.CustomerRegistered{
		CustomerID:   customer.ID,
		Name:         customer.Name,
		CustomerType: customer.Type,
		Tier:         customer.Tier,
	})
	return s.remember(customer), nil
}

func (s *store) GetCustomers(ctx context.Context) ([]*model.Customer, error) {
	if err := s.checkInitialized(); err != nil {
		return nil, err
	}

	customers, err := s.customers.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i, customer := range customers {
		customers[i] = s.remember(customer)
	}
	return customers, nil
}

func (s *store) GetCustomer(ctx context.Context, customerID int64) (*model.Customer, error) {
	if err := s.checkInitialized(); err != nil {
		return nil, err
	}
	return s.loadCustomer(ctx, customerID)
}

func (s *store) CreateOrder(ctx context.Context, customer *model.Customer) (*model.Order, error) {
	if err := s.checkInitialized(); err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, errors.Wrap(model.ErrInvalidArgument, "customer is required")
	}
	if customer.ID <= 0 {
		return nil, errors.Wrapf(model.ErrCustomerNotFound, "customer id %d", customer.ID)
	}

	if _, err := s.customers.Find(ctx, customer.ID); err != nil {
		return nil, err
	}
	s.adopt(customer)

	order := model.NewOrder(customer)
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"orderID":    order.ID,
		"customerID": customer.ID,
		"total":      order.Total.StringFixed(2),
	}).Info("order created")

	s.dispatch(model.OrderCreated{OrderID: order.ID, CustomerID: customer.ID, Total: order.Total})
	return order, nil
}

func (s *store) ProcessOrderPayment(ctx context.Context, orderID int64) (*model.Order, error) {
	if err := s.checkInitialized(); err != nil {
		return nil, err
	}

	order, err := s.orders.Find(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.IsSettled() {
		log.WithField("orderID", order.ID).Info("order payment already completed")
		return order, nil
	}

	customer, err := s.loadCustomer(ctx, order.CustomerID)
	if err != nil {
		return nil, err
	}
	order.Customer = customer

	result, err := s.payments.ProcessPayment(ctx, order.Total, customer.Type, customer.Name)
	if err != nil {
		return nil, err
	}

	order.UpdatePaymentInfo(result.TransactionID, result.Status, result.ShippingCost)
	order.UpdatedAt = time.Now().UTC()

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	fields := log.Fields{
		"orderID":       order.ID,
		"transactionID": result.TransactionID,
		"paymentStatus": order.PaymentStatus,
	}
	if result.Success {
		customer.ClearCart()
		log.WithFields(fields).Info("order paid")
		s.dispatch(model.OrderPaymentCompleted{
			OrderID:       order.ID,
			TransactionID: result.TransactionID,
			ShippingCost:  result.ShippingCost,
		})
	} else {
		log.WithFields(fields).Warn(result.Message)
		s.dispatch(model.OrderPaymentFailed{
			OrderID:       order.ID,
			TransactionID: result.TransactionID,
			Reason:        result.Message,
		})
	}
	return order, nil
}

func (s *store) GetOrders(ctx context.Context) ([]*model.Order, error) {
	if err := s.checkInitialized(); err != nil {
		return nil, err
	}
	return s.orders.FindAll(ctx)
}

func (s *store) Subscribe(subscriber model.Subscriber) (bool, error) {
	if subscriber == nil || subscriber.SubscriberID() <= 0 {
		return false, errors.Wrap(model.ErrInvalidArgument, "subscriber must have a valid id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := subscriber.SubscriberID()
	if _, ok := s.subscribers[id]; ok {
		log.WithField("customerID", id).Info("customer is already subscribed")
		return false, nil
	}
	s.subscribers[id] = subscriber
	log.WithField("customerID", id).Info("customer subscribed to restock alerts")
	return true, nil
}

func (s *store) Unsubscribe(subscriber model.Subscriber) (bool, error) {
	if subscriber == nil || subscriber.SubscriberID() <= 0 {
		return false, errors.Wrap(model.ErrInvalidArgument, "subscriber must have a valid id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := subscriber.SubscriberID()
	if _, ok := s.subscribers[id]; !ok {
		log.WithField("customerID", id).Info("customer is not subscribed")
		return false, nil
	}
	delete(s.subscribers, id)
	log.WithField("customerID", id).Info("customer unsubscribed from restock alerts")
	return true, nil
}

func (s *store) ClearAllSubscriptions() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.subscribers)
	s.subscribers = make(map[int64]model.Subscriber)
	log.WithField("removed", count).Info("all subscriptions cleared")
	return count
}

func (s *store) notifySubscribers(product model.Product) int {
	premiumOnly := product.Price.GreaterThanOrEqual(broadcastPriceLimit)

	s.mu.Lock()
	snapshot := make([]model.Subscriber, 0, len(s.subscribers))
	for _, subscriber := range s.subscribers {
		snapshot = append(snapshot, subscriber)
	}
	s.mu.Unlock()

	notified := 0
	for _, subscriber := range snapshot {
		if premiumOnly && !subscriber.IsPremium() {
			continue
		}
		subscriber.Update(product)
		notified++
	}
	return notified
}

func (s *store) loadCustomer(ctx context.Context, customerID int64) (*model.Customer, error) {
	s.mu.Lock()
	customer, ok := s.liveCustomers[customerID]
	s.mu.Unlock()
	if ok {
		return customer, nil
	}

	customer, err := s.customers.Find(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.remember(customer), nil
}

// remember returns the live instance for the customer id, registering the
// given one if none is known yet.
func (s *store) remember(customer *model.Customer) *model.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if live, ok := s.liveCustomers[customer.ID]; ok {
		return live
	}
	s.liveCustomers[customer.ID] = customer
	return customer
}

// adopt makes the given instance the live one for its id.
func (s *store) adopt(customer *model.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveCustomers[customer.ID] = customer
}

func (s *store) checkInitialized() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return model.ErrStoreNotInitialized
	}
	return nil
}

func (s *store) dispatch(event Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Dispatch(event); err != nil {
		log.WithError(err).WithField("event", event.Type()).Error("failed to dispatch event")
	}
}
