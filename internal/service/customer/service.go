package customer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"grocery-api/internal/db"
	"grocery-api/internal/domain"
)

type customerRepo interface {
	List(ctx context.Context) ([]domain.Customer, error)
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	Update(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	Lock(ctx context.Context, q db.Querier, id int64) error
	Delete(ctx context.Context, q db.Querier, id int64) error
}

type cartStore interface {
	LockLines(ctx context.Context, q db.Querier, customerID int64) ([]domain.CartLine, error)
	DeleteLines(ctx context.Context, q db.Querier, ids []int64) error
}

type restocker interface {
	Increment(ctx context.Context, q db.Querier, productID int64, quantity int) error
}

type transactor interface {
	InTx(ctx context.Context, fn db.TxFunc) error
}

// Service handles customer records.
type Service struct {
	repo   customerRepo
	carts  cartStore
	stock  restocker
	tx     transactor
	logger *log.Logger
}

func New(repo customerRepo, carts cartStore, stock restocker, tx transactor, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, carts: carts, stock: stock, tx: tx, logger: logger}
}

// Input captures the writable customer fields.
type Input struct {
	Name    string
	Email   string
	Address *string
}

func (in Input) normalize() (domain.Customer, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" {
		return domain.Customer{}, domain.Invalid("Name and email are required")
	}
	var address *string
	if in.Address != nil {
		if a := strings.TrimSpace(*in.Address); a != "" {
			address = &a
		}
	}
	return domain.Customer{Name: name, Email: email, Address: address}, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, customerNotFound(err)
	}
	return c, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Customer, error) {
	c, err := in.normalize()
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, emailConflict(err, c.Email)
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, in Input) (*domain.Customer, error) {
	c, err := in.normalize()
	if err != nil {
		return nil, err
	}
	c.ID = id
	updated, err := s.repo.Update(ctx, c)
	if err != nil {
		return nil, customerNotFound(emailConflict(err, c.Email))
	}
	return updated, nil
}

// Delete returns the customer's reserved cart units to inventory, clears the
// cart and removes the customer. Customers with order history are kept.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.tx.InTx(ctx, func(ctx context.Context, q db.Querier) error {
		if err := s.repo.Lock(ctx, q, id); err != nil {
			return err
		}
		lines, err := s.carts.LockLines(ctx, q, id)
		if err != nil {
			return err
		}
		for _, l := range lines {
			if err := s.stock.Increment(ctx, q, l.ProductID, l.Quantity); err != nil {
				return err
			}
		}
		if err := s.carts.DeleteLines(ctx, q, domain.LineIDs(lines)); err != nil {
			return err
		}
		return s.repo.Delete(ctx, q, id)
	})
	if errors.Is(err, domain.ErrInUse) {
		return &domain.ConflictError{Msg: "Customer has orders and cannot be deleted", Err: err}
	}
	if err == nil {
		s.logger.Printf("customer: deleted id=%d", id)
	}
	return customerNotFound(err)
}

func customerNotFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound("Customer not found")
	}
	return err
}

func emailConflict(err error, email string) error {
	if errors.Is(err, domain.ErrAlreadyExists) {
		return &domain.ConflictError{Msg: fmt.Sprintf("Email '%s' is already in use", email), Err: err}
	}
	return err
}
