package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kimotaku1/Ecommerce-forever/internal/domain"
	"github.com/kimotaku1/Ecommerce-forever/internal/repositories"
)

// ErrCartInvalidInput signals the caller provided invalid cart data.
var ErrCartInvalidInput = errors.New("cart: invalid input")

// CartService manages the per-account cart snapshot. Quantities of zero remove
// the entry rather than storing it.
type CartService interface {
	Get(ctx context.Context, accountID string) (domain.CartData, error)
	Add(ctx context.Context, accountID, itemID, size string) (domain.CartData, error)
	Update(ctx context.Context, accountID, itemID, size string, quantity int) (domain.CartData, error)
}

// CartServiceDeps bundles collaborators required to construct the cart service.
type CartServiceDeps struct {
	Accounts repositories.AccountRepository
}

type cartService struct {
	accounts repositories.AccountRepository
}

// NewCartService wires dependencies into a concrete CartService implementation.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Accounts == nil {
		return nil, errors.New("cart service: account repository is required")
	}
	return &cartService{accounts: deps.Accounts}, nil
}

// Get returns the account's cart.
func (s *cartService) Get(ctx context.Context, accountID string) (domain.CartData, error) {
	account, err := s.loadAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	cart := account.Cart
	if cart == nil {
		cart = domain.CartData{}
	}
	return cart, nil
}

// Add increments the quantity for the item/size pair by one.
func (s *cartService) Add(ctx context.Context, accountID, itemID, size string) (domain.CartData, error) {
	itemID = strings.TrimSpace(itemID)
	size = strings.TrimSpace(size)
	if itemID == "" || size == "" {
		return nil, fmt.Errorf("%w: item id and size are required", ErrCartInvalidInput)
	}

	account, err := s.loadAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	cart := account.Cart.Clone()
	if cart == nil {
		cart = domain.CartData{}
	}
	if cart[itemID] == nil {
		cart[itemID] = map[string]int{}
	}
	cart[itemID][size]++

	if err := s.accounts.UpdateCart(ctx, account.ID, cart); err != nil {
		return nil, mapAccountRepositoryError(err)
	}
	return cart, nil
}

// Update sets the quantity for the item/size pair. Zero or negative quantities
// remove the entry, and emptied items drop out of the cart.
func (s *cartService) Update(ctx context.Context, accountID, itemID, size string, quantity int) (domain.CartData, error) {
	itemID = strings.TrimSpace(itemID)
	size = strings.TrimSpace(size)
	if itemID == "" || size == "" {
		return nil, fmt.Errorf("%w: item id and size are required", ErrCartInvalidInput)
	}

	account, err := s.loadAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	cart := account.Cart.Clone()
	if cart == nil {
		cart = domain.CartData{}
	}

	if quantity <= 0 {
		if sizes, ok := cart[itemID]; ok {
			delete(sizes, size)
			if len(sizes) == 0 {
				delete(cart, itemID)
			}
		}
	} else {
		if cart[itemID] == nil {
			cart[itemID] = map[string]int{}
		}
		cart[itemID][size] = quantity
	}

	if err := s.accounts.UpdateCart(ctx, account.ID, cart); err != nil {
		return nil, mapAccountRepositoryError(err)
	}
	return cart, nil
}

func (s *cartService) loadAccount(ctx context.Context, accountID string) (domain.Account, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return domain.Account{}, fmt.Errorf("%w: account id is required", ErrCartInvalidInput)
	}
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return domain.Account{}, mapAccountRepositoryError(err)
	}
	return account, nil
}

func mapAccountRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrAccountNotFound, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("%w: %v", ErrAccountUnavailable, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrAccountUnavailable, err)
}
