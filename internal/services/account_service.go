package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/kimotaku1/Ecommerce-forever/internal/domain"
	"github.com/kimotaku1/Ecommerce-forever/internal/platform/auth"
	"github.com/kimotaku1/Ecommerce-forever/internal/platform/textutil"
	"github.com/kimotaku1/Ecommerce-forever/internal/repositories"
)

const minPasswordLength = 8

var (
	// ErrAccountInvalidInput signals the caller provided invalid registration data.
	ErrAccountInvalidInput = errors.New("account: invalid input")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("account: email already registered")
	// ErrInvalidCredentials indicates a failed login attempt.
	ErrInvalidCredentials = errors.New("account: invalid credentials")
	// ErrAccountNotFound indicates the account could not be located.
	ErrAccountNotFound = errors.New("account: not found")
	// ErrAccountUnavailable indicates a transient persistence failure.
	ErrAccountUnavailable = errors.New("account: repository unavailable")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// TokenIssuer signs API tokens for authenticated callers.
type TokenIssuer interface {
	Issue(identity auth.Identity) (string, error)
}

// AuthResult carries the signed token plus the authenticated account.
type AuthResult struct {
	Token     string
	AccountID string
	Name      string
	Email     string
}

// AccountService implements shopper registration and login, plus the
// environment-credential admin login.
type AccountService interface {
	Register(ctx context.Context, name, email, password string) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
	AdminLogin(ctx context.Context, email, password string) (AuthResult, error)
	GetAccount(ctx context.Context, accountID string) (domain.Account, error)
}

// AccountServiceDeps bundles collaborators required to construct the account service.
type AccountServiceDeps struct {
	Accounts      repositories.AccountRepository
	Tokens        TokenIssuer
	Clock         func() time.Time
	IDGenerator   func() string
	AdminEmail    string
	AdminPassword string
}

type accountService struct {
	accounts      repositories.AccountRepository
	tokens        TokenIssuer
	clock         func() time.Time
	newID         func() string
	adminEmail    string
	adminPassword string
}

// NewAccountService wires dependencies into a concrete AccountService implementation.
func NewAccountService(deps AccountServiceDeps) (AccountService, error) {
	if deps.Accounts == nil {
		return nil, errors.New("account service: account repository is required")
	}
	if deps.Tokens == nil {
		return nil, errors.New("account service: token issuer is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := deps.IDGenerator
	if newID == nil {
		newID = func() string { return ulid.Make().String() }
	}

	return &accountService{
		accounts:      deps.Accounts,
		tokens:        deps.Tokens,
		clock:         clock,
		newID:         newID,
		adminEmail:    textutil.NormalizeEmail(deps.AdminEmail),
		adminPassword: deps.AdminPassword,
	}, nil
}

// Register creates a shopper account with a hashed password and returns a signed token.
func (s *accountService) Register(ctx context.Context, name, email, password string) (AuthResult, error) {
	name = textutil.NormalizeName(name)
	email = textutil.NormalizeEmail(email)

	if name == "" {
		return AuthResult{}, fmt.Errorf("%w: name is required", ErrAccountInvalidInput)
	}
	if !emailPattern.MatchString(email) {
		return AuthResult{}, fmt.Errorf("%w: invalid email address", ErrAccountInvalidInput)
	}
	if len(password) < minPasswordLength {
		return AuthResult{}, fmt.Errorf("%w: password must be at least %d characters", ErrAccountInvalidInput, minPasswordLength)
	}

	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return AuthResult{}, fmt.Errorf("%w: %s", ErrEmailTaken, email)
	} else if mapped := s.mapRepositoryError(err); !errors.Is(mapped, ErrAccountNotFound) {
		return AuthResult{}, mapped
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("account: hash password: %w", err)
	}

	account := domain.Account{
		ID:           s.newID(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Cart:         domain.CartData{},
		CreatedAt:    s.clock().UTC(),
	}

	if err := s.accounts.Insert(ctx, account); err != nil {
		mapped := s.mapRepositoryError(err)
		if errors.Is(mapped, ErrEmailTaken) || errors.Is(mapped, ErrAccountNotFound) {
			return AuthResult{}, fmt.Errorf("%w: %s", ErrEmailTaken, email)
		}
		return AuthResult{}, mapped
	}

	return s.issueFor(account, auth.RoleCustomer)
}

// Login authenticates a shopper and returns a signed token.
func (s *accountService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = textutil.NormalizeEmail(email)
	if email == "" || password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		mapped := s.mapRepositoryError(err)
		if errors.Is(mapped, ErrAccountNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, mapped
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.issueFor(account, auth.RoleCustomer)
}

// AdminLogin authenticates against the configured admin credentials.
func (s *accountService) AdminLogin(_ context.Context, email, password string) (AuthResult, error) {
	email = textutil.NormalizeEmail(email)
	if s.adminEmail == "" || s.adminPassword == "" {
		return AuthResult{}, ErrInvalidCredentials
	}

	emailMatch := subtle.ConstantTimeCompare([]byte(email), []byte(s.adminEmail)) == 1
	passwordMatch := subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPassword)) == 1
	if !emailMatch || !passwordMatch {
		return AuthResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(auth.Identity{
		AccountID: "admin",
		Email:     s.adminEmail,
		Roles:     []string{auth.RoleAdmin},
	})
	if err != nil {
		return AuthResult{}, fmt.Errorf("account: issue token: %w", err)
	}

	return AuthResult{Token: token, AccountID: "admin", Email: s.adminEmail}, nil
}

// GetAccount fetches a single account.
func (s *accountService) GetAccount(ctx context.Context, accountID string) (domain.Account, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return domain.Account{}, fmt.Errorf("%w: account id is required", ErrAccountInvalidInput)
	}
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return domain.Account{}, s.mapRepositoryError(err)
	}
	return account, nil
}

func (s *accountService) issueFor(account domain.Account, role string) (AuthResult, error) {
	token, err := s.tokens.Issue(auth.Identity{
		AccountID: account.ID,
		Email:     account.Email,
		Roles:     []string{role},
	})
	if err != nil {
		return AuthResult{}, fmt.Errorf("account: issue token: %w", err)
	}
	return AuthResult{
		Token:     token,
		AccountID: account.ID,
		Name:      account.Name,
		Email:     account.Email,
	}, nil
}

func (s *accountService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrAccountNotFound, err)
		case repoErr.IsConflict():
			return fmt.Errorf("%w: %v", ErrEmailTaken, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("%w: %v", ErrAccountUnavailable, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrAccountUnavailable, err)
}
