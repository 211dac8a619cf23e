// Package catalog manages products and their inventory rows.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"grocery-api/internal/cache"
	"grocery-api/internal/db"
	"grocery-api/internal/domain"
)

type productRepo interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, q db.Querier, p domain.Product) (*domain.Product, error)
	UpsertByName(ctx context.Context, q db.Querier, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, q db.Querier, id int64) error
}

type inventoryRepo interface {
	List(ctx context.Context) ([]domain.InventoryItem, error)
	Init(ctx context.Context, q db.Querier, productID int64, stock int) error
	SetStock(ctx context.Context, q db.Querier, productID int64, stock int) error
	Delete(ctx context.Context, q db.Querier, productID int64) error
}

type cartCleaner interface {
	DeleteByProduct(ctx context.Context, q db.Querier, productID int64) error
}

type transactor interface {
	InTx(ctx context.Context, fn db.TxFunc) error
}

// ProductCache is the optional read-through cache for ListProducts.
type ProductCache interface {
	Get(ctx context.Context) ([]domain.Product, error)
	Set(ctx context.Context, products []domain.Product) error
	Invalidate(ctx context.Context) error
}

// listLoadTimeout bounds a shared product-list load, which runs detached from
// the cancellation of the request that started it.
const listLoadTimeout = 10 * time.Second

type Service struct {
	products  productRepo
	inventory inventoryRepo
	carts     cartCleaner
	tx        transactor
	cache     ProductCache
	sfg       singleflight.Group
	// gen counts invalidations; a fill that overlaps one is not cached.
	gen       atomic.Uint64
	logger    *log.Logger
	tracer    trace.Tracer
}

// New builds the catalog service. productCache may be nil.
func New(products productRepo, inventory inventoryRepo, carts cartCleaner, tx transactor, productCache ProductCache, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		products:  products,
		inventory: inventory,
		carts:     carts,
		tx:        tx,
		cache:     productCache,
		logger:    logger,
		tracer:    otel.Tracer("grocery-api/catalog"),
	}
}

// ProductInput is the payload for creating or importing a product.
type ProductInput struct {
	Name        string
	Price       *decimal.Decimal
	Description string
}

func (in ProductInput) validate() (domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)
	if name == "" || in.Price == nil || description == "" {
		return domain.Product{}, domain.Invalid("Missing required fields")
	}
	if in.Price.IsNegative() {
		return domain.Product{}, domain.Invalid("Price must be a positive number")
	}
	return domain.Product{Name: name, Price: in.Price.Round(2), Description: description}, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.ListProducts")
	defer span.End()

	if s.cache == nil {
		return s.products.List(ctx)
	}

	// Concurrent misses share one database read.
	v, err, _ := s.sfg.Do("products", func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), listLoadTimeout)
		defer cancel()

		cached, err := s.cache.Get(ctx)
		if err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Printf("catalog: cache get error=%v", err)
		}

		gen := s.gen.Load()
		products, err := s.products.List(ctx)
		if err != nil {
			return nil, err
		}
		if s.gen.Load() != gen {
			return products, nil
		}
		if err := s.cache.Set(ctx, products); err != nil {
			s.logger.Printf("catalog: cache set error=%v", err)
		}
		if s.gen.Load() != gen {
			// A write landed between the check and Set.
			s.invalidate(ctx)
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("Product not found")
	}
	return p, err
}

// CreateProduct inserts the product together with a zero stock row.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.CreateProduct")
	defer span.End()

	p, err := in.validate()
	if err != nil {
		return nil, err
	}

	var created *domain.Product
	err = s.tx.InTx(ctx, func(ctx context.Context, q db.Querier) error {
		res, err := s.products.Create(ctx, q, p)
		if errors.Is(err, domain.ErrAlreadyExists) {
			return &domain.ConflictError{Msg: fmt.Sprintf("Product '%s' already exists", p.Name), Err: err}
		}
		if err != nil {
			return err
		}
		created = res
		return s.inventory.Init(ctx, q, res.ID, 0)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	span.SetAttributes(attribute.Int64("product.id", created.ID))
	return created, nil
}

// ImportProduct upserts a product by name and sets its stock level.
func (s *Service) ImportProduct(ctx context.Context, in ProductInput, stock int) (*domain.Product, error) {
	p, err := in.validate()
	if err != nil {
		return nil, err
	}
	if stock < 0 {
		return nil, domain.Invalid("Invalid stock level")
	}

	var saved *domain.Product
	err = s.tx.InTx(ctx, func(ctx context.Context, q db.Querier) error {
		res, err := s.products.UpsertByName(ctx, q, p)
		if err != nil {
			return err
		}
		saved = res
		return s.inventory.Init(ctx, q, res.ID, stock)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return saved, nil
}

// DeleteProduct removes the product with its inventory row and cart lines.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "catalog.DeleteProduct")
	defer span.End()

	err := s.tx.InTx(ctx, func(ctx context.Context, q db.Querier) error {
		if err := s.inventory.Delete(ctx, q, id); err != nil {
			return err
		}
		if err := s.carts.DeleteByProduct(ctx, q, id); err != nil {
			return err
		}
		return s.products.Delete(ctx, q, id)
	})
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound("Product not found")
	}
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) ListInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	return s.inventory.List(ctx)
}

// SetStock overwrites the stock level. A nil level is reported as missing.
func (s *Service) SetStock(ctx context.Context, productID int64, stock *int) error {
	if stock == nil {
		return domain.Invalid("Missing stock level")
	}
	if *stock < 0 {
		return domain.Invalid("Invalid stock level")
	}
	err := s.tx.InTx(ctx, func(ctx context.Context, q db.Querier) error {
		return s.inventory.SetStock(ctx, q, productID, *stock)
	})
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound("Product not found in inventory")
	}
	return err
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.gen.Add(1)
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Printf("catalog: cache invalidate error=%v", err)
	}
}
