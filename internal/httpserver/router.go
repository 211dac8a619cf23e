package httpserver

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"grocery-api/internal/domain"
	cartsvc "grocery-api/internal/service/cart"
	catalogsvc "grocery-api/internal/service/catalog"
	customersvc "grocery-api/internal/service/customer"
)

// CatalogService covers products and inventory.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, in catalogsvc.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListInventory(ctx context.Context) ([]domain.InventoryItem, error)
	SetStock(ctx context.Context, productID int64, stock *int) error
}

type CustomerService interface {
	List(ctx context.Context) ([]domain.Customer, error)
	Get(ctx context.Context, id int64) (*domain.Customer, error)
	Create(ctx context.Context, in customersvc.Input) (*domain.Customer, error)
	Update(ctx context.Context, id int64, in customersvc.Input) (*domain.Customer, error)
	Delete(ctx context.Context, id int64) error
}

type CartService interface {
	View(ctx context.Context, customerID int64) ([]domain.CartLine, error)
	Add(ctx context.Context, in cartsvc.AddInput) (int, error)
	Remove(ctx context.Context, customerID, productID int64) error
}

type OrderService interface {
	Place(ctx context.Context, customerID int64) (*domain.Order, error)
	List(ctx context.Context, customerID *int64) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) (domain.OrderStatus, error)
	Delete(ctx context.Context, id int64) error
}

// Deps groups the services behind the API routes.
type Deps struct {
	CatalogSvc  CatalogService
	CustomerSvc CustomerService
	CartSvc     CartService
	OrderSvc    OrderService
}

func (d Deps) validate() error {
	switch {
	case d.CatalogSvc == nil:
		return errors.New("catalog service is required")
	case d.CustomerSvc == nil:
		return errors.New("customer service is required")
	case d.CartSvc == nil:
		return errors.New("cart service is required")
	case d.OrderSvc == nil:
		return errors.New("order service is required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, opts Options) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "grocery-api"
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}

	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.LoggerWithWriter(logger.Writer()),
		gin.Recovery(),
		requestIDMiddleware(),
		otelgin.Middleware(opts.ServiceName),
		corsMiddleware(opts.CORSOrigins),
	)

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{logger: logger, deps: deps}
	api := router.Group("/api", timeoutMiddleware(opts.RequestTimeout))

	api.GET("/products", h.listProducts)
	api.POST("/products", h.createProduct)
	api.GET("/products/:id", h.getProduct)
	api.DELETE("/products/:id", h.deleteProduct)

	api.GET("/inventory", h.listInventory)
	api.PUT("/inventory/:product_id", h.setStock)

	api.POST("/cart", h.addToCart)
	api.GET("/cart/:customer_id", h.viewCart)
	api.DELETE("/cart/:customer_id/:product_id", h.removeFromCart)

	api.GET("/customers", h.listCustomers)
	api.POST("/customers", h.createCustomer)
	api.GET("/customers/:id", h.getCustomer)
	api.PUT("/customers/:id", h.updateCustomer)
	api.DELETE("/customers/:id", h.deleteCustomer)

	api.GET("/orders", h.listOrders)
	api.POST("/orders", h.placeOrder)
	api.PUT("/orders/:id/status", h.updateOrderStatus)
	api.DELETE("/orders/:id", h.deleteOrder)

	return router, nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
