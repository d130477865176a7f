package transport

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/sk-intls/ecommerce-simulation/pkg/domain/model"
	"github.com/sk-intls/ecommerce-simulation/pkg/domain/service"
)

type Handler struct {
	store service.Store
}

func Router(store service.Store) http.Handler {
	handler := &Handler{store: store}

	r := mux.NewRouter()
	r.HandleFunc("/products", handler.listProducts).Methods(http.MethodGet)
	r.HandleFunc("/products", handler.addProduct).Methods(http.MethodPost)
	r.HandleFunc("/products/{id:[0-9]+}/restock", handler.restockProduct).Methods(http.MethodPost)

	r.HandleFunc("/customers", handler.listCustomers).Methods(http.MethodGet)
	r.HandleFunc("/customers", handler.addCustomer).Methods(http.MethodPost)
	r.HandleFunc("/customers/{id:[0-9]+}/cart", handler.getCart).Methods(http.MethodGet)
	r.HandleFunc("/customers/{id:[0-9]+}/cart", handler.addToCart).Methods(http.MethodPost)
	r.HandleFunc("/customers/{id:[0-9]+}/subscription", handler.subscribe).Methods(http.MethodPut)
	r.HandleFunc("/customers/{id:[0-9]+}/subscription", handler.unsubscribe).Methods(http.MethodDelete)
	r.HandleFunc("/customers/{id:[0-9]+}/orders", handler.createOrder).Methods(http.MethodPost)

	r.HandleFunc("/orders", handler.listOrders).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id:[0-9]+}/payment", handler.processPayment).Methods(http.MethodPost)

	return logMiddleware(r)
}

type productResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
}

func toProductResponse(p *model.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Stock:       p.Stock,
		Description: p.Description,
		Category:    p.Category,
	}
}

type customerResponse struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	CustomerType string          `json:"customerType"`
	Birth        string          `json:"birth,omitempty"`
	Tier         string          `json:"tier,omitempty"`
	DiscountRate decimal.Decimal `json:"discountRate"`
}

func toCustomerResponse(c *model.Customer) customerResponse {
	response := customerResponse{
		ID:           c.ID,
		Name:         c.Name,
		CustomerType: string(c.Type),
		Tier:         string(c.Tier),
		DiscountRate: c.DiscountRate(),
	}
	if c.Birth != nil {
		response.Birth = c.Birth.Format(time.DateOnly)
	}
	return response
}

type cartLineResponse struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type cartResponse struct {
	Items []cartLineResponse `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

func toCartResponse(c *model.Customer) cartResponse {
	response := cartResponse{Items: []cartLineResponse{}, Total: c.CartTotal()}
	for item := range c.IterateCart() {
		response.Items = append(response.Items, cartLineResponse{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			Price:     item.Product.Price,
			Quantity:  item.Quantity,
		})
	}
	return response
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.GetProducts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response := make([]productResponse, 0, len(products))
	for _, p := range products {
		response = append(response, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Name        string          `json:"name"`
		Price       decimal.Decimal `json:"price"`
		Stock       int             `json:"stock"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
	}
	if !readJSON(w, r, &request) {
		return
	}

	product, err := h.store.AddProduct(r.Context(), service.NewProduct{
		Name:        request.Name,
		Price:       request.Price,
		Stock:       request.Stock,
		Description: request.Description,
		Category:    request.Category,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

func (h *Handler) restockProduct(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Quantity int `json:"quantity"`
	}
	if !readJSON(w, r, &request) {
		return
	}

	product, err := h.store.RestockProduct(r.Context(), pathID(r), request.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.store.GetCustomers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response := make([]customerResponse, 0, len(customers))
	for _, c := range customers {
		response = append(response, toCustomerResponse(c))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) addCustomer(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Name         string `json:"name"`
		CustomerType string `json:"customerType"`
		Birth        string `json:"birth"`
		Tier         string `json:"tier"`
	}
	if !readJSON(w, r, &request) {
		return
	}

	data := service.NewCustomer{Name: request.Name, Type: request.CustomerType, Tier: request.Tier}
	if request.Birth != "" {
		birth, err := time.Parse(time.DateOnly, request.Birth)
		if err != nil {
			writeError(w, errors.Wrapf(model.ErrInvalidArgument, "birth must be YYYY-MM-DD, got %q", request.Birth))
			return
		}
		data.Birth = &birth
	}

	customer, err := h.store.AddCustomer(r.Context(), data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerResponse(customer))
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	customer, err := h.store.GetCustomer(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(customer))
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ProductID int64 `json:"productId"`
		Quantity  int   `json:"quantity"`
	}
	if !readJSON(w, r, &request) {
		return
	}
	if request.Quantity == 0 {
		request.Quantity = 1
	}

	customer, err := h.store.GetCustomer(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	product, err := h.store.GetProduct(r.Context(), request.ProductID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := customer.AddToCart(product, request.Quantity); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(customer))
}

func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	h.changeSubscription(w, r, h.store.Subscribe)
}

func (h *Handler) unsubscribe(w http.ResponseWriter, r *http.Request) {
	h.changeSubscription(w, r, h.store.Unsubscribe)
}

func (h *Handler) changeSubscription(w http.ResponseWriter, r *http.Request, change func(model.Subscriber) (bool, error)) {
	customer, err := h.store.GetCustomer(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	changed, err := change(customer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"changed": changed})
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	customer, err := h.store.GetCustomer(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	order, err := h.store.CreateOrder(r.Context(), customer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order.Summary())
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.GetOrders(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response := make([]model.OrderSummary, 0, len(orders))
	for _, o := range orders {
		response = append(response, o.Summary())
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) processPayment(w http.ResponseWriter, r *http.Request) {
	order, err := h.store.ProcessOrderPayment(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order.Summary())
}

// pathID relies on the router's numeric pattern for validation.
func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func readJSON(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeError(w, errors.Wrapf(model.ErrInvalidArgument, "malformed request body: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("failed to write response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, model.ErrUpstreamData):
		return http.StatusBadGateway
	case errors.Is(err, model.ErrStoreNotInitialized):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func logMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.WithFields(log.Fields{
			"method":     r.Method,
			"url":        r.URL,
			"remoteAddr": r.RemoteAddr,
			"userAgent":  r.UserAgent(),
		}).Info("got a new request")
		h.ServeHTTP(w, r)
	})
}
