package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kimotaku1/Ecommerce-forever/internal/domain"
	pfirestore "github.com/kimotaku1/Ecommerce-forever/internal/platform/firestore"
)

const newsletterCollection = "newsletter"

// NewsletterRepository persists opted-in email addresses within Firestore.
// The lowercased email doubles as the document ID, which makes the duplicate
// check a plain create-with-exists-guard.
type NewsletterRepository struct {
	base *pfirestore.BaseRepository[newsletterDocument]
}

// NewNewsletterRepository constructs a Firestore-backed newsletter repository.
func NewNewsletterRepository(provider *pfirestore.Provider) (*NewsletterRepository, error) {
	if provider == nil {
		return nil, errors.New("newsletter repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[newsletterDocument](provider, newsletterCollection, nil, nil)
	return &NewsletterRepository{base: base}, nil
}

// Insert records the subscription, returning a conflict error for duplicates.
func (r *NewsletterRepository) Insert(ctx context.Context, sub domain.NewsletterSubscription) error {
	if r == nil || r.base == nil {
		return errors.New("newsletter repository not initialised")
	}
	email := strings.ToLower(strings.TrimSpace(sub.Email))
	if email == "" {
		return errors.New("newsletter repository: email is required")
	}

	_, err := r.base.Create(ctx, email, newsletterDocument{
		Email:        email,
		SubscribedAt: sub.SubscribedAt.UTC(),
	})
	return err
}

type newsletterDocument struct {
	Email        string    `firestore:"email"`
	SubscribedAt time.Time `firestore:"subscribedAt"`
}
