// Package order turns carts into orders and administers placed orders.
package order

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
	LockLines(ctx context.Context, q db.Querier, customerID int64) ([]domain.CartLine, error)
	DeleteLines(ctx context.Context, q db.Querier, ids []int64) error
}

type orderRepo interface {
	Insert(ctx context.Context, q db.Querier, o domain.Order) (*domain.Order, error)
	InsertLines(ctx context.Context, q db.Querier, lines []domain.OrderLine) error
	List(ctx context.Context, customerID *int64) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error
	Delete(ctx context.Context, q db.Querier, id int64) error
}

type transactor interface {
	InTx(ctx context.Context, fn db.TxFunc) error
}

type Service struct {
	carts  cartRepo
	orders orderRepo
	tx     transactor
	logger *log.Logger
	tracer trace.Tracer
	placed metric.Int64Counter
}

func New(carts cartRepo, orders orderRepo, tx transactor, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	placed, _ := otel.Meter("grocery-api/order").Int64Counter("orders.placed",
		metric.WithDescription("Orders created from carts"))
	return &Service{
		carts:  carts,
		orders: orders,
		tx:     tx,
		logger: logger,
		tracer: otel.Tracer("grocery-api/order"),
		placed: placed,
	}
}

// Place converts the customer's cart into one Pending order. Prices are
// captured from the locked cart snapshot and only the snapshot rows are
// removed, so a line added concurrently stays in the cart. Inventory is left
// alone since units were reserved when they were added to the cart.
func (s *Service) Place(ctx context.Context, customerID int64) (*domain.Order, error) {
	if customerID <= 0 {
		return nil, domain.Invalid("Customer ID is required")
	}

	ctx, span := s.tracer.Start(ctx, "order.Place", trace.WithAttributes(attribute.Int64("customer.id", customerID)))
	defer span.End()

	var placed *domain.Order
	err := s.tx.InTx(ctx, func(ctx context.Context, q db.Querier) error {
		lines, err := s.carts.LockLines(ctx, q, customerID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return domain.ErrEmptyCart
		}

		o, err := s.orders.Insert(ctx, q, domain.Order{
			CustomerID:  customerID,
			TotalAmount: domain.CartTotal(lines),
			Status:      domain.OrderStatusPending,
		})
		if err != nil {
			return err
		}
		o.Lines = domain.NewOrderLines(o.ID, lines)
		if err := s.orders.InsertLines(ctx, q, o.Lines); err != nil {
			return err
		}
		if err := s.carts.DeleteLines(ctx, q, domain.LineIDs(lines)); err != nil {
			return err
		}
		placed = o
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.placed.Add(ctx, 1)
	span.SetAttributes(attribute.Int64("order.id", placed.ID), attribute.Int("order.lines", len(placed.Lines)))
	s.logger.Printf("order: placed id=%d customer_id=%d total=%s lines=%d", placed.ID, customerID, placed.TotalAmount.StringFixed(2), len(placed.Lines))
	return placed, nil
}

// List returns orders newest first. A nil customerID lists every order.
func (s *Service) List(ctx context.Context, customerID *int64) ([]domain.Order, error) {
	return s.orders.List(ctx, customerID)
}

// UpdateStatus accepts only the exact names Pending and Complete.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (domain.OrderStatus, error) {
	if status == "" {
		return "", domain.Invalid("Status is required")
	}
	parsed, ok := domain.ParseOrderStatus(status)
	if !ok {
		return "", domain.Invalid("Invalid status")
	}
	if err := s.orders.UpdateStatus(ctx, id, parsed); err != nil {
		return "", orderNotFound(err)
	}
	return parsed, nil
}

// Delete removes the order and its lines.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.tx.InTx(ctx, func(ctx context.Context, q db.Querier) error {
		return s.orders.Delete(ctx, q, id)
	})
	return orderNotFound(err)
}

func orderNotFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound("Order not found")
	}
	return err
}
