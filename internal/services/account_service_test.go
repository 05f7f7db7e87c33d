package services

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/kimotaku1/Ecommerce-forever/internal/domain"
	"github.com/kimotaku1/Ecommerce-forever/internal/platform/auth"
)

type stubTokenIssuer struct {
	issueFn func(identity auth.Identity) (string, error)
}

func (s *stubTokenIssuer) Issue(identity auth.Identity) (string, error) {
	if s.issueFn == nil {
		return "token-" + identity.AccountID, nil
	}
	return s.issueFn(identity)
}

func newTestAccountService(t *testing.T, deps AccountServiceDeps) AccountService {
	t.Helper()
	if deps.Accounts == nil {
		deps.Accounts = &stubAccountRepository{}
	}
	if deps.Tokens == nil {
		deps.Tokens = &stubTokenIssuer{}
	}
	if deps.Clock == nil {
		deps.Clock = fixedClock()
	}
	svc, err := NewAccountService(deps)
	if err != nil {
		t.Fatalf("NewAccountService: %v", err)
	}
	return svc
}

func TestRegisterHashesPasswordAndIssuesToken(t *testing.T) {
	var inserted domain.Account
	accounts := &stubAccountRepository{
		insertFn: func(_ context.Context, account domain.Account) error {
			inserted = account
			return nil
		},
	}
	var issuedRoles []string
	tokens := &stubTokenIssuer{
		issueFn: func(identity auth.Identity) (string, error) {
			issuedRoles = identity.Roles
			return "signed-token", nil
		},
	}
	svc := newTestAccountService(t, AccountServiceDeps{
		Accounts:    accounts,
		Tokens:      tokens,
		IDGenerator: func() string { return "acct-new" },
	})

	result, err := svc.Register(context.Background(), "Asha", "Asha@Example.com", "correct horse")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if result.Token != "signed-token" {
		t.Fatalf("token = %q", result.Token)
	}
	if inserted.Email != "asha@example.com" {
		t.Fatalf("email must be lowercased, got %q", inserted.Email)
	}
	if inserted.PasswordHash == "correct horse" || inserted.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(inserted.PasswordHash), []byte("correct horse")); err != nil {
		t.Fatalf("stored hash does not match the password: %v", err)
	}
	if len(issuedRoles) != 1 || issuedRoles[0] != auth.RoleCustomer {
		t.Fatalf("roles = %v, want [customer]", issuedRoles)
	}
	if inserted.Cart == nil {
		t.Fatalf("new accounts start with an empty cart, not nil")
	}
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	svc := newTestAccountService(t, AccountServiceDeps{})

	cases := []struct {
		name     string
		userName string
		email    string
		password string
	}{
		{"missing name", "", "a@example.com", "long enough pw"},
		{"bad email", "Asha", "not-an-email", "long enough pw"},
		{"short password", "Asha", "a@example.com", "short"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tc.userName, tc.email, tc.password); !errors.Is(err, ErrAccountInvalidInput) {
				t.Fatalf("err = %v, want ErrAccountInvalidInput", err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	accounts := &stubAccountRepository{
		findByEmailFn: func(_ context.Context, email string) (domain.Account, error) {
			return domain.Account{ID: "acct-1", Email: email}, nil
		},
	}
	svc := newTestAccountService(t, AccountServiceDeps{Accounts: accounts})

	if _, err := svc.Register(context.Background(), "Asha", "taken@example.com", "long enough pw"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestLoginVerifiesPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	accounts := &stubAccountRepository{
		findByEmailFn: func(context.Context, string) (domain.Account, error) {
			return domain.Account{ID: "acct-1", Name: "Asha", Email: "asha@example.com", PasswordHash: string(hash)}, nil
		},
	}
	svc := newTestAccountService(t, AccountServiceDeps{Accounts: accounts})

	result, err := svc.Login(context.Background(), "asha@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.AccountID != "acct-1" || result.Token == "" {
		t.Fatalf("result = %+v", result)
	}

	if _, err := svc.Login(context.Background(), "asha@example.com", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginUnknownEmailIsInvalidCredentials(t *testing.T) {
	svc := newTestAccountService(t, AccountServiceDeps{})

	if _, err := svc.Login(context.Background(), "nobody@example.com", "whatever pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestAdminLoginMatchesConfiguredCredentials(t *testing.T) {
	var issued auth.Identity
	tokens := &stubTokenIssuer{
		issueFn: func(identity auth.Identity) (string, error) {
			issued = identity
			return "admin-token", nil
		},
	}
	svc := newTestAccountService(t, AccountServiceDeps{
		Tokens:        tokens,
		AdminEmail:    "admin@example.com",
		AdminPassword: "sekrit-admin-pw",
	})

	result, err := svc.AdminLogin(context.Background(), "Admin@Example.com", "sekrit-admin-pw")
	if err != nil {
		t.Fatalf("AdminLogin: %v", err)
	}
	if result.Token != "admin-token" {
		t.Fatalf("token = %q", result.Token)
	}
	if len(issued.Roles) != 1 || issued.Roles[0] != auth.RoleAdmin {
		t.Fatalf("roles = %v, want [admin]", issued.Roles)
	}

	if _, err := svc.AdminLogin(context.Background(), "admin@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestAdminLoginDisabledWithoutCredentials(t *testing.T) {
	svc := newTestAccountService(t, AccountServiceDeps{})

	if _, err := svc.AdminLogin(context.Background(), "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestGetAccountMapsNotFound(t *testing.T) {
	svc := newTestAccountService(t, AccountServiceDeps{})

	if _, err := svc.GetAccount(context.Background(), "missing"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}
}
