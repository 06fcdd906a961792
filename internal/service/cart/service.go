package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"licensestore/internal/domain"
)

// Service is the cart manager: it freezes discounted unit prices at add
// time and keeps quantities valid (a line never stays at quantity <= 0).
type Service struct {
	repo     cartRepo
	products productRepo
	currency string
}

type cartRepo interface {
	GetOrCreate(ctx context.Context, ownerID, currency string) (*domain.Cart, error)
	GetByOwner(ctx context.Context, ownerID string) (*domain.Cart, error)
	AddLine(ctx context.Context, cartID string, line domain.CartLine) error
	SetLineQuantity(ctx context.Context, cartID, productID string, quantity int) error
	RemoveLine(ctx context.Context, cartID, productID string) error
	Clear(ctx context.Context, cartID string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

func New(repo cartRepo, products productRepo, currency string) *Service {
	return &Service{repo: repo, products: products, currency: currency}
}

// Get returns the owner's cart, creating an empty one on first use.
func (s *Service) Get(ctx context.Context, ownerID string) (*domain.Cart, error) {
	return s.repo.GetOrCreate(ctx, ownerID, s.currency)
}

// Add puts quantity units of a product into the cart. An existing line for
// the product is merged; the unit price frozen at first add wins.
func (s *Service) Add(ctx context.Context, ownerID, productID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		quantity = 1
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}

	cart, err := s.repo.GetOrCreate(ctx, ownerID, s.currency)
	if err != nil {
		return nil, err
	}

	line := domain.CartLine{
		ProductID:            product.ID,
		ProductName:          product.Name,
		EffectiveUnitPrice:   product.EffectiveUnitPrice(),
		Quantity:             quantity,
		RequiresHardwareLock: product.RequiresHardwareLock,
	}
	if err := s.repo.AddLine(ctx, cart.ID, line); err != nil {
		return nil, fmt.Errorf("add line: %w", err)
	}
	return s.repo.GetByOwner(ctx, ownerID)
}

// SetQuantity updates a line in place. Quantity <= 0 removes the line.
func (s *Service) SetQuantity(ctx context.Context, ownerID, productID string, quantity int) (*domain.Cart, error) {
	cart, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrLineNotFound
		}
		return nil, err
	}

	if quantity <= 0 {
		if !hasLine(cart, productID) {
			return nil, domain.ErrLineNotFound
		}
		if err := s.repo.RemoveLine(ctx, cart.ID, productID); err != nil {
			return nil, err
		}
	} else if err := s.repo.SetLineQuantity(ctx, cart.ID, productID, quantity); err != nil {
		return nil, err
	}
	return s.repo.GetByOwner(ctx, ownerID)
}

// Remove deletes a line. It is idempotent: removing an absent line is fine.
func (s *Service) Remove(ctx context.Context, ownerID, productID string) (*domain.Cart, error) {
	cart, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return s.repo.GetOrCreate(ctx, ownerID, s.currency)
		}
		return nil, err
	}
	if err := s.repo.RemoveLine(ctx, cart.ID, productID); err != nil {
		return nil, err
	}
	return s.repo.GetByOwner(ctx, ownerID)
}

// Total sums line totals rounded to 2 decimal places half up. The result
// does not depend on line insertion order.
func (s *Service) Total(ctx context.Context, ownerID string) (decimal.Decimal, error) {
	cart, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return decimal.Zero.Round(2), nil
		}
		return decimal.Zero, err
	}
	return CartTotal(cart.Lines), nil
}

// Clear empties the cart; used after a successful checkout.
func (s *Service) Clear(ctx context.Context, ownerID string) error {
	cart, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.repo.Clear(ctx, cart.ID)
}

// CartTotal is the rounded sum of unit price times quantity across lines.
func CartTotal(lines []domain.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total())
	}
	return total.Round(2)
}

func hasLine(cart *domain.Cart, productID string) bool {
	for _, l := range cart.Lines {
		if l.ProductID == productID {
			return true
		}
	}
	return false
}
