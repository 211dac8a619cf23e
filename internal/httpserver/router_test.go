package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"grocery-api/internal/domain"
	cartsvc "grocery-api/internal/service/cart"
	catalogsvc "grocery-api/internal/service/catalog"
	customersvc "grocery-api/internal/service/customer"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]domain.Product)
	return products, args.Error(1)
}

func (m *mockCatalog) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*domain.Product)
	return p, args.Error(1)
}

func (m *mockCatalog) CreateProduct(ctx context.Context, in catalogsvc.ProductInput) (*domain.Product, error) {
	args := m.Called(ctx, in)
	p, _ := args.Get(0).(*domain.Product)
	return p, args.Error(1)
}

func (m *mockCatalog) DeleteProduct(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCatalog) ListInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]domain.InventoryItem)
	return items, args.Error(1)
}

func (m *mockCatalog) SetStock(ctx context.Context, productID int64, stock *int) error {
	return m.Called(ctx, productID, stock).Error(0)
}

type stubCustomers struct {
	created customersvc.Input
	err     error
}

func (s *stubCustomers) List(context.Context) ([]domain.Customer, error) {
	return []domain.Customer{{ID: 1, Name: "Ada", Email: "ada@example.com"}}, s.err
}

func (s *stubCustomers) Get(_ context.Context, id int64) (*domain.Customer, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Customer{ID: id, Name: "Ada", Email: "ada@example.com"}, nil
}

func (s *stubCustomers) Create(_ context.Context, in customersvc.Input) (*domain.Customer, error) {
	s.created = in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Customer{ID: 7, Name: in.Name, Email: in.Email}, nil
}

func (s *stubCustomers) Update(_ context.Context, id int64, in customersvc.Input) (*domain.Customer, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Customer{ID: id, Name: in.Name, Email: in.Email}, nil
}

func (s *stubCustomers) Delete(context.Context, int64) error {
	return s.err
}

type stubCart struct {
	lines []domain.CartLine
	added cartsvc.AddInput
	err   error
}

func (s *stubCart) View(context.Context, int64) ([]domain.CartLine, error) {
	return s.lines, s.err
}

func (s *stubCart) Add(_ context.Context, in cartsvc.AddInput) (int, error) {
	s.added = in
	if s.err != nil {
		return 0, s.err
	}
	if in.Quantity == nil {
		return cartsvc.DefaultQuantity, nil
	}
	return *in.Quantity, nil
}

func (s *stubCart) Remove(context.Context, int64, int64) error {
	return s.err
}

type stubOrders struct {
	orders []domain.Order
	filter *int64
	err    error
	block  bool
}

func (s *stubOrders) Place(ctx context.Context, customerID int64) (*domain.Order, error) {
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Order{ID: 42, CustomerID: customerID}, nil
}

func (s *stubOrders) List(_ context.Context, customerID *int64) ([]domain.Order, error) {
	s.filter = customerID
	return s.orders, s.err
}

func (s *stubOrders) UpdateStatus(_ context.Context, _ int64, status string) (domain.OrderStatus, error) {
	if s.err != nil {
		return "", s.err
	}
	st, ok := domain.ParseOrderStatus(status)
	if !ok {
		return "", domain.Invalid("Invalid status")
	}
	return st, nil
}

func (s *stubOrders) Delete(context.Context, int64) error {
	return s.err
}

type fixture struct {
	router    *gin.Engine
	catalog   *mockCatalog
	customers *stubCustomers
	cart      *stubCart
	orders    *stubOrders
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := &fixture{
		catalog:   &mockCatalog{},
		customers: &stubCustomers{},
		cart:      &stubCart{},
		orders:    &stubOrders{},
	}
	router, err := buildRouter(log.New(io.Discard, "", 0), nil, Deps{
		CatalogSvc:  f.catalog,
		CustomerSvc: f.customers,
		CartSvc:     f.cart,
		OrderSvc:    f.orders,
	}, opts)
	require.NoError(t, err)
	f.router = router
	t.Cleanup(func() { f.catalog.AssertExpectations(t) })
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestBuildRouterRequiresAllServices(t *testing.T) {
	_, err := buildRouter(log.New(io.Discard, "", 0), nil, Deps{CatalogSvc: &mockCatalog{}}, Options{})
	assert.EqualError(t, err, "customer service is required")
}

func TestHealthAndReadiness(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	f := newFixture(t, Options{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))

	rec = f.do(http.MethodGet, "/healthz", "")
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)
}

func TestListProducts(t *testing.T) {
	f := newFixture(t, Options{})
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	f.catalog.On("ListProducts", mock.Anything).Return([]domain.Product{
		{ID: 1, Name: "Apples", Price: decimal.RequireFromString("1.25"), Description: "Red", CreatedAt: created},
	}, nil)

	rec := f.do(http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Apples","price":1.25,"description":"Red","created_at":"2024-01-02T03:04:05Z"}]`, rec.Body.String())
}

func TestCreateProduct(t *testing.T) {
	f := newFixture(t, Options{})
	f.catalog.On("CreateProduct", mock.Anything, mock.MatchedBy(func(in catalogsvc.ProductInput) bool {
		return in.Name == "Pears" && in.Price.Equal(decimal.RequireFromString("2.5"))
	})).Return(&domain.Product{ID: 9}, nil).Twice()

	rec := f.do(http.MethodPost, "/api/products", `{"name":"Pears","price":2.5,"description":"Green"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Product added successfully", body["message"])
	assert.EqualValues(t, 9, body["product_id"])

	rec = f.do(http.MethodPost, "/api/products", `{"name":"Pears","price":"2.50","description":"Green"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestGetProduct(t *testing.T) {
	f := newFixture(t, Options{})
	f.catalog.On("GetProduct", mock.Anything, int64(1)).
		Return(&domain.Product{ID: 1, Name: "Apples", Price: decimal.RequireFromString("1.25"), Description: "Red"}, nil)
	f.catalog.On("GetProduct", mock.Anything, int64(2)).Return(nil, domain.NotFound("Product not found"))

	rec := f.do(http.MethodGet, "/api/products/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Apples", body["name"])
	assert.Equal(t, 1.25, body["price"])

	rec = f.do(http.MethodGet, "/api/products/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", decodeBody(t, rec)["error"])
}

func TestCreateProductRejectsBadInput(t *testing.T) {
	f := newFixture(t, Options{})

	cases := []struct {
		body string
		msg  string
	}{
		{`{"name":"Pears","description":"Green"}`, "Missing required fields"},
		{`{"name":"","price":1,"description":"Green"}`, "Missing required fields"},
		{`not json`, "Missing required fields"},
		{`{"name":"Pears","price":"abc","description":"Green"}`, "Invalid price format"},
		{`{"name":"Pears","price":true,"description":"Green"}`, "Invalid price format"},
	}
	for _, tc := range cases {
		rec := f.do(http.MethodPost, "/api/products", tc.body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.body)
		assert.Equal(t, tc.msg, decodeBody(t, rec)["error"], tc.body)
	}
}

func TestCreateProductConflict(t *testing.T) {
	f := newFixture(t, Options{})
	f.catalog.On("CreateProduct", mock.Anything, mock.Anything).
		Return(nil, &domain.ConflictError{Msg: "Product 'Pears' already exists", Err: domain.ErrAlreadyExists})

	rec := f.do(http.MethodPost, "/api/products", `{"name":"Pears","price":1,"description":"Green"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Product 'Pears' already exists", decodeBody(t, rec)["error"])
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture(t, Options{})
	f.catalog.On("DeleteProduct", mock.Anything, int64(3)).Return(nil)
	f.catalog.On("DeleteProduct", mock.Anything, int64(4)).Return(domain.NotFound("Product not found"))

	rec := f.do(http.MethodDelete, "/api/products/3", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Product deleted successfully", decodeBody(t, rec)["message"])

	rec = f.do(http.MethodDelete, "/api/products/4", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", decodeBody(t, rec)["error"])

	rec = f.do(http.MethodDelete, "/api/products/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInventory(t *testing.T) {
	f := newFixture(t, Options{})
	five := 5
	f.catalog.On("ListInventory", mock.Anything).Return([]domain.InventoryItem{
		{ProductID: 1, Name: "Apples", Price: decimal.RequireFromString("1.25"), StockLevel: &five},
		{ProductID: 2, Name: "Pears", Price: decimal.RequireFromString("2")},
	}, nil)
	f.catalog.On("SetStock", mock.Anything, int64(1), mock.MatchedBy(func(v *int) bool { return v != nil && *v == 8 })).Return(nil)
	f.catalog.On("SetStock", mock.Anything, int64(1), (*int)(nil)).Return(domain.Invalid("Missing stock level"))

	rec := f.do(http.MethodGet, "/api/inventory", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"product_id":1,"name":"Apples","price":1.25,"stock_level":5},{"product_id":2,"name":"Pears","price":2,"stock_level":null}]`, rec.Body.String())

	rec = f.do(http.MethodPut, "/api/inventory/1", `{"stock_level":8}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Stock updated successfully", decodeBody(t, rec)["message"])

	rec = f.do(http.MethodPut, "/api/inventory/1", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing stock level", decodeBody(t, rec)["error"])

	rec = f.do(http.MethodPut, "/api/inventory/1", `{"stock_level":"many"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid stock level", decodeBody(t, rec)["error"])
}

func TestAddToCart(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(http.MethodPost, "/api/cart", `{"customer_id":1,"product_id":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Added 1 of product 2 to cart", decodeBody(t, rec)["message"])
	assert.Nil(t, f.cart.added.Quantity)

	rec = f.do(http.MethodPost, "/api/cart", `{"customer_id":1,"product_id":2,"quantity":3}`)
	assert.Equal(t, "Added 3 of product 2 to cart", decodeBody(t, rec)["message"])

	for _, body := range []string{
		`{"product_id":2}`,
		`{"customer_id":1,"product_id":2,"quantity":0}`,
		`{"customer_id":1,"product_id":-2}`,
		`{"customer_id":"x","product_id":2}`,
	} {
		rec = f.do(http.MethodPost, "/api/cart", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "Invalid customer ID, product ID, or quantity", decodeBody(t, rec)["error"], body)
	}
}

func TestAddToCartErrors(t *testing.T) {
	f := newFixture(t, Options{})

	f.cart.err = &domain.InsufficientStockError{ProductID: 2, Available: 2}
	rec := f.do(http.MethodPost, "/api/cart", `{"customer_id":1,"product_id":2,"quantity":4}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Only 2 units of this product are available", decodeBody(t, rec)["error"])

	f.cart.err = domain.NotFound("Product not found in inventory")
	rec = f.do(http.MethodPost, "/api/cart", `{"customer_id":1,"product_id":2}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found in inventory", decodeBody(t, rec)["error"])
}

func TestViewCart(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(http.MethodGet, "/api/cart/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cart is empty", decodeBody(t, rec)["message"])

	f.cart.lines = []domain.CartLine{{ID: 5, CustomerID: 1, ProductID: 2, Name: "Apples", Price: decimal.RequireFromString("1.25"), Quantity: 3}}
	rec = f.do(http.MethodGet, "/api/cart/1", "")
	assert.JSONEq(t, `[{"cart_id":5,"product_id":2,"name":"Apples","price":1.25,"quantity":3}]`, rec.Body.String())
}

func TestRemoveFromCart(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(http.MethodDelete, "/api/cart/1/2", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Item deleted successfully", decodeBody(t, rec)["message"])

	f.cart.err = domain.NotFound("Item not found in cart")
	rec = f.do(http.MethodDelete, "/api/cart/1/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Item not found in cart", decodeBody(t, rec)["error"])
}

func TestCustomers(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(http.MethodGet, "/api/customers", "")
	assert.JSONEq(t, `[{"id":1,"name":"Ada","email":"ada@example.com","address":null}]`, rec.Body.String())

	rec = f.do(http.MethodPost, "/api/customers", `{"name":"Ada","email":"ada@example.com","address":"1 Main St"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Customer created successfully", body["message"])
	assert.EqualValues(t, 7, body["customer_id"])
	require.NotNil(t, f.customers.created.Address)
	assert.Equal(t, "1 Main St", *f.customers.created.Address)

	rec = f.do(http.MethodPost, "/api/customers", `{"name":"Ada"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Name and email are required", decodeBody(t, rec)["error"])

	rec = f.do(http.MethodGet, "/api/customers/1", "")
	assert.Equal(t, "ada@example.com", decodeBody(t, rec)["email"])

	rec = f.do(http.MethodGet, "/api/customers/x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPut, "/api/customers/1", `{"name":"Ada","email":"ada@example.com"}`)
	assert.Equal(t, "Customer updated successfully", decodeBody(t, rec)["message"])

	rec = f.do(http.MethodDelete, "/api/customers/1", "")
	assert.Equal(t, "Customer deleted successfully", decodeBody(t, rec)["message"])

	f.customers.err = &domain.ConflictError{Msg: "Email 'ada@example.com' is already in use", Err: domain.ErrAlreadyExists}
	rec = f.do(http.MethodPost, "/api/customers", `{"name":"Ada","email":"ada@example.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email 'ada@example.com' is already in use", decodeBody(t, rec)["error"])

	f.customers.err = domain.NotFound("Customer not found")
	rec = f.do(http.MethodDelete, "/api/customers/9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Customer not found", decodeBody(t, rec)["error"])
}

func TestListOrders(t *testing.T) {
	f := newFixture(t, Options{})
	created := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	f.orders.orders = []domain.Order{{
		ID:           3,
		CustomerID:   1,
		CustomerName: "Ada",
		TotalAmount:  decimal.RequireFromString("3.75"),
		Status:       domain.OrderStatusPending,
		CreatedAt:    created,
		Lines: []domain.OrderLine{
			{OrderID: 3, ProductID: 2, ProductName: "Apples", Quantity: 3, Price: decimal.RequireFromString("1.25")},
		},
	}}

	rec := f.do(http.MethodGet, "/api/orders?customer_id=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.orders.filter)
	assert.Equal(t, int64(1), *f.orders.filter)
	assert.JSONEq(t, `[{"order_id":3,"customer_id":1,"customer_name":"Ada","total_amount":3.75,"status":"Pending",
		"created_at":"2024-05-06T07:08:09Z","items":[{"product_id":2,"product_name":"Apples","quantity":3,"price":1.25}]}]`, rec.Body.String())

	f.do(http.MethodGet, "/api/orders", "")
	assert.Nil(t, f.orders.filter)

	rec = f.do(http.MethodGet, "/api/orders?customer_id=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid customer ID", decodeBody(t, rec)["error"])
}

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(http.MethodPost, "/api/orders", `{"customer_id":1}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Order created successfully", body["message"])
	assert.EqualValues(t, 42, body["order_id"])

	rec = f.do(http.MethodPost, "/api/orders", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Customer ID is required", decodeBody(t, rec)["error"])

	f.orders.err = domain.ErrEmptyCart
	rec = f.do(http.MethodPost, "/api/orders", `{"customer_id":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cart is empty", decodeBody(t, rec)["error"])
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(http.MethodPut, "/api/orders/3/status", `{"status":"Complete"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Order status updated to Complete", decodeBody(t, rec)["message"])

	rec = f.do(http.MethodPut, "/api/orders/3/status", `{"status":"Shipped"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid status", decodeBody(t, rec)["error"])

	f.orders.err = domain.NotFound("Order not found")
	rec = f.do(http.MethodPut, "/api/orders/99/status", `{"status":"Complete"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodDelete, "/api/orders/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Order not found", decodeBody(t, rec)["error"])
}

func TestUnexpectedErrorsAreHidden(t *testing.T) {
	f := newFixture(t, Options{})
	f.catalog.On("ListProducts", mock.Anything).Return(nil, errors.New("connection refused"))

	rec := f.do(http.MethodGet, "/api/products", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decodeBody(t, rec)["error"])
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestRequestTimeout(t *testing.T) {
	f := newFixture(t, Options{RequestTimeout: 20 * time.Millisecond})
	f.orders.block = true

	rec := f.do(http.MethodPost, "/api/orders", `{"customer_id":1}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Request timed out", decodeBody(t, rec)["error"])
}
