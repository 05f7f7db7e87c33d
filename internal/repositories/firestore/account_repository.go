package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kimotaku1/Ecommerce-forever/internal/domain"
	pfirestore "github.com/kimotaku1/Ecommerce-forever/internal/platform/firestore"
)

const accountsCollection = "accounts"

// AccountRepository persists registered shoppers within Firestore.
type AccountRepository struct {
	base *pfirestore.BaseRepository[accountDocument]
}

// NewAccountRepository constructs a Firestore-backed account repository.
func NewAccountRepository(provider *pfirestore.Provider) (*AccountRepository, error) {
	if provider == nil {
		return nil, errors.New("account repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[accountDocument](provider, accountsCollection, nil, nil)
	return &AccountRepository{base: base}, nil
}

// Insert creates the account document, returning a conflict error when the ID is taken.
func (r *AccountRepository) Insert(ctx context.Context, account domain.Account) error {
	if r == nil || r.base == nil {
		return errors.New("account repository not initialised")
	}
	accountID := strings.TrimSpace(account.ID)
	if accountID == "" {
		return errors.New("account repository: account id is required")
	}

	_, err := r.base.Create(ctx, accountID, accountToDocument(account))
	return err
}

// FindByID fetches a single account.
func (r *AccountRepository) FindByID(ctx context.Context, accountID string) (domain.Account, error) {
	if r == nil || r.base == nil {
		return domain.Account{}, errors.New("account repository not initialised")
	}
	doc, err := r.base.Get(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}
	return doc.Data.toAccount(doc.ID), nil
}

// FindByEmail looks up the account registered under the given email address.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	if r == nil || r.base == nil {
		return domain.Account{}, errors.New("account repository not initialised")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return domain.Account{}, pfirestore.WrapError("accounts.find_by_email", status.Error(codes.NotFound, "account not found"))
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("email", "==", email).Limit(1)
	})
	if err != nil {
		return domain.Account{}, err
	}
	if len(docs) == 0 {
		return domain.Account{}, pfirestore.WrapError("accounts.find_by_email", status.Error(codes.NotFound, "account not found"))
	}
	return docs[0].Data.toAccount(docs[0].ID), nil
}

// UpdateCart overwrites the account's cart snapshot.
func (r *AccountRepository) UpdateCart(ctx context.Context, accountID string, cart domain.CartData) error {
	if r == nil || r.base == nil {
		return errors.New("account repository not initialised")
	}
	if cart == nil {
		cart = domain.CartData{}
	}
	_, err := r.base.Update(ctx, accountID, []firestore.Update{
		{Path: "cart", Value: cart},
	})
	return err
}

type accountDocument struct {
	Name         string          `firestore:"name"`
	Email        string          `firestore:"email"`
	PasswordHash string          `firestore:"passwordHash"`
	Cart         domain.CartData `firestore:"cart"`
	CreatedAt    time.Time       `firestore:"createdAt"`
}

func accountToDocument(account domain.Account) accountDocument {
	cart := account.Cart
	if cart == nil {
		cart = domain.CartData{}
	}
	return accountDocument{
		Name:         strings.TrimSpace(account.Name),
		Email:        strings.ToLower(strings.TrimSpace(account.Email)),
		PasswordHash: account.PasswordHash,
		Cart:         cart,
		CreatedAt:    account.CreatedAt.UTC(),
	}
}

func (d accountDocument) toAccount(id string) domain.Account {
	cart := d.Cart
	if cart == nil {
		cart = domain.CartData{}
	}
	return domain.Account{
		ID:           id,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Cart:         cart,
		CreatedAt:    d.CreatedAt,
	}
}
