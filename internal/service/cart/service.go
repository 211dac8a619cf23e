package cart

import (
	"context"
	"errors"
	"io"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"grocery-api/internal/db"
	"grocery-api/internal/domain"
)

type cartRepo interface {
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.CartLine, error)
	AddQuantity(ctx context.Context, q db.Querier, customerID, productID int64, quantity int) error
	RemoveLine(ctx context.Context, q db.Querier, customerID, productID int64) (int, error)
}

type stockRepo interface {
	LockStock(ctx context.Context, q db.Querier, productID int64) (int, error)
	Decrement(ctx context.Context, q db.Querier, productID int64, quantity int) error
	Increment(ctx context.Context, q db.Querier, productID int64, quantity int) error
}

type transactor interface {
	InTx(ctx context.Context, fn db.TxFunc) error
}

// DefaultQuantity is used when an add request omits the quantity.
const DefaultQuantity = 1

type Service struct {
	carts    cartRepo
	stock    stockRepo
	tx       transactor
	logger   *log.Logger
	tracer   trace.Tracer
	added    metric.Int64Counter
	rejected metric.Int64Counter
}

func New(carts cartRepo, stock stockRepo, tx transactor, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	meter := otel.Meter("grocery-api/cart")
	added, _ := meter.Int64Counter("cart.units_added",
		metric.WithDescription("Units moved from inventory into carts"))
	rejected, _ := meter.Int64Counter("cart.insufficient_stock",
		metric.WithDescription("Add-to-cart requests rejected for lack of stock"))
	return &Service{
		carts:    carts,
		stock:    stock,
		tx:       tx,
		logger:   logger,
		tracer:   otel.Tracer("grocery-api/cart"),
		added:    added,
		rejected: rejected,
	}
}

// AddInput identifies one add-to-cart request. Quantity nil means one unit.
type AddInput struct {
	CustomerID int64
	ProductID  int64
	Quantity   *int
}

func (in AddInput) quantity() int {
	if in.Quantity == nil {
		return DefaultQuantity
	}
	return *in.Quantity
}

// View returns the customer's cart lines with current names and prices.
func (s *Service) View(ctx context.Context, customerID int64) ([]domain.CartLine, error) {
	return s.carts.ListByCustomer(ctx, customerID)
}

// Add reserves quantity units of the product for the customer. The stock
// check, the cart upsert and the decrement share one transaction; the
// inventory row stays locked from the check until commit.
func (s *Service) Add(ctx context.Context, in AddInput) (int, error) {
	qty := in.quantity()
	if in.CustomerID <= 0 || in.ProductID <= 0 || qty <= 0 {
		return 0, domain.Invalid("Invalid customer ID, product ID, or quantity")
	}

	ctx, span := s.tracer.Start(ctx, "cart.Add", trace.WithAttributes(
		attribute.Int64("customer.id", in.CustomerID),
		attribute.Int64("product.id", in.ProductID),
		attribute.Int("quantity", qty),
	))
	defer span.End()

	err := s.tx.InTx(ctx, func(ctx context.Context, q db.Querier) error {
		available, err := s.stock.LockStock(ctx, q, in.ProductID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFound("Product not found in inventory")
		}
		if err != nil {
			return err
		}
		if qty > available {
			return &domain.InsufficientStockError{ProductID: in.ProductID, Available: available}
		}
		err = s.carts.AddQuantity(ctx, q, in.CustomerID, in.ProductID, qty)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFound("Customer not found")
		}
		if err != nil {
			return err
		}
		return s.stock.Decrement(ctx, q, in.ProductID, qty)
	})
	if err != nil {
		var stockErr *domain.InsufficientStockError
		if errors.As(err, &stockErr) {
			s.rejected.Add(ctx, 1, metric.WithAttributes(attribute.Int64("product.id", in.ProductID)))
		}
		span.RecordError(err)
		return 0, err
	}

	s.added.Add(ctx, int64(qty))
	s.logger.Printf("cart: added customer_id=%d product_id=%d quantity=%d", in.CustomerID, in.ProductID, qty)
	return qty, nil
}

// Remove deletes a cart line and returns its units to inventory.
func (s *Service) Remove(ctx context.Context, customerID, productID int64) error {
	return s.tx.InTx(ctx, func(ctx context.Context, q db.Querier) error {
		qty, err := s.carts.RemoveLine(ctx, q, customerID, productID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFound("Item not found in cart")
		}
		if err != nil {
			return err
		}
		return s.stock.Increment(ctx, q, productID, qty)
	})
}
