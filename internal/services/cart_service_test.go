package services

import (
	"context"
	"errors"
	"testing"

	"github.com/kimotaku1/Ecommerce-forever/internal/domain"
)

func newTestCartService(t *testing.T, accounts *stubAccountRepository) CartService {
	t.Helper()
	svc, err := NewCartService(CartServiceDeps{Accounts: accounts})
	if err != nil {
		t.Fatalf("NewCartService: %v", err)
	}
	return svc
}

func TestCartAddIncrementsQuantity(t *testing.T) {
	var saved domain.CartData
	accounts := &stubAccountRepository{
		findByIDFn: func(context.Context, string) (domain.Account, error) {
			return domain.Account{ID: "acct-1", Cart: domain.CartData{"prod-a": {"M": 1}}}, nil
		},
		updateCartFn: func(_ context.Context, _ string, cart domain.CartData) error {
			saved = cart
			return nil
		},
	}
	svc := newTestCartService(t, accounts)

	cart, err := svc.Add(context.Background(), "acct-1", "prod-a", "M")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if cart["prod-a"]["M"] != 2 {
		t.Fatalf("quantity = %d, want 2", cart["prod-a"]["M"])
	}
	if saved["prod-a"]["M"] != 2 {
		t.Fatalf("persisted quantity = %d, want 2", saved["prod-a"]["M"])
	}
}

func TestCartAddNewSizeStartsAtOne(t *testing.T) {
	accounts := &stubAccountRepository{
		findByIDFn: func(context.Context, string) (domain.Account, error) {
			return domain.Account{ID: "acct-1"}, nil
		},
	}
	svc := newTestCartService(t, accounts)

	cart, err := svc.Add(context.Background(), "acct-1", "prod-b", "XL")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if cart["prod-b"]["XL"] != 1 {
		t.Fatalf("quantity = %d, want 1", cart["prod-b"]["XL"])
	}
}

func TestCartUpdateZeroRemovesEntry(t *testing.T) {
	accounts := &stubAccountRepository{
		findByIDFn: func(context.Context, string) (domain.Account, error) {
			return domain.Account{ID: "acct-1", Cart: domain.CartData{
				"prod-a": {"M": 2, "L": 1},
				"prod-b": {"S": 1},
			}}, nil
		},
	}
	svc := newTestCartService(t, accounts)

	cart, err := svc.Update(context.Background(), "acct-1", "prod-b", "S", 0)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, ok := cart["prod-b"]; ok {
		t.Fatalf("emptied item must drop out of the cart, got %v", cart)
	}
	if cart["prod-a"]["M"] != 2 {
		t.Fatalf("untouched entries must survive, got %v", cart)
	}
}

func TestCartUpdateSetsQuantity(t *testing.T) {
	accounts := &stubAccountRepository{
		findByIDFn: func(context.Context, string) (domain.Account, error) {
			return domain.Account{ID: "acct-1", Cart: domain.CartData{"prod-a": {"M": 2}}}, nil
		},
	}
	svc := newTestCartService(t, accounts)

	cart, err := svc.Update(context.Background(), "acct-1", "prod-a", "M", 7)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if cart["prod-a"]["M"] != 7 {
		t.Fatalf("quantity = %d, want 7", cart["prod-a"]["M"])
	}
}

func TestCartGetNilCartBecomesEmpty(t *testing.T) {
	accounts := &stubAccountRepository{
		findByIDFn: func(context.Context, string) (domain.Account, error) {
			return domain.Account{ID: "acct-1"}, nil
		},
	}
	svc := newTestCartService(t, accounts)

	cart, err := svc.Get(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cart == nil || len(cart) != 0 {
		t.Fatalf("cart = %v, want empty map", cart)
	}
}

func TestCartUnknownAccount(t *testing.T) {
	svc := newTestCartService(t, &stubAccountRepository{})

	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}
}

func TestCartRejectsBlankInput(t *testing.T) {
	svc := newTestCartService(t, &stubAccountRepository{})

	if _, err := svc.Add(context.Background(), "acct-1", "", "M"); !errors.Is(err, ErrCartInvalidInput) {
		t.Fatalf("err = %v, want ErrCartInvalidInput", err)
	}
	if _, err := svc.Update(context.Background(), "acct-1", "prod-a", " ", 1); !errors.Is(err, ErrCartInvalidInput) {
		t.Fatalf("err = %v, want ErrCartInvalidInput", err)
	}
}
