package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kimotaku1/Ecommerce-forever/internal/domain"
	"github.com/kimotaku1/Ecommerce-forever/internal/platform/textutil"
	"github.com/kimotaku1/Ecommerce-forever/internal/repositories"
)

var (
	// ErrNewsletterInvalidInput signals an invalid email address.
	ErrNewsletterInvalidInput = errors.New("newsletter: invalid input")
	// ErrAlreadySubscribed indicates the email is already on the list.
	ErrAlreadySubscribed = errors.New("newsletter: already subscribed")
	// ErrNewsletterUnavailable indicates a transient persistence failure.
	ErrNewsletterUnavailable = errors.New("newsletter: repository unavailable")
)

// NewsletterService manages the mailing list opt-ins.
type NewsletterService interface {
	Subscribe(ctx context.Context, email string) error
}

// NewsletterServiceDeps bundles collaborators required to construct the newsletter service.
type NewsletterServiceDeps struct {
	Subscriptions repositories.NewsletterRepository
	Clock         func() time.Time
}

type newsletterService struct {
	subscriptions repositories.NewsletterRepository
	clock         func() time.Time
}

// NewNewsletterService wires dependencies into a concrete NewsletterService implementation.
func NewNewsletterService(deps NewsletterServiceDeps) (NewsletterService, error) {
	if deps.Subscriptions == nil {
		return nil, errors.New("newsletter service: subscription repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &newsletterService{subscriptions: deps.Subscriptions, clock: clock}, nil
}

// Subscribe records the opt-in, rejecting duplicates.
func (s *newsletterService) Subscribe(ctx context.Context, email string) error {
	email = textutil.NormalizeEmail(email)
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: invalid email address", ErrNewsletterInvalidInput)
	}

	err := s.subscriptions.Insert(ctx, domain.NewsletterSubscription{
		Email:        email,
		SubscribedAt: s.clock().UTC(),
	})
	if err == nil {
		return nil
	}

	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsConflict():
			return fmt.Errorf("%w: %s", ErrAlreadySubscribed, email)
		case repoErr.IsUnavailable():
			return fmt.Errorf("%w: %v", ErrNewsletterUnavailable, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrNewsletterUnavailable, err)
}
