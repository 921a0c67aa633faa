package service

import (
	"context"

	"github.com/vinitgirdhar/KhelWapas/internal/services/market/storage"
)

// GetUser returns one user; absence is reported, not an error.
func (s *Service) GetUser(ctx context.Context, id string) (storage.User, bool, error) {
	return s.store.GetUser(ctx, id)
}

// GetUserByEmail looks a user up by email for login flows.
func (s *Service) GetUserByEmail(ctx context.Context, email string) (storage.User, bool, error) {
	return s.store.GetUserByEmail(ctx, email)
}

// ListUsers returns users for admin screens.
func (s *Service) ListUsers(ctx context.Context, filter storage.UserFilter, opts storage.ListOptions) ([]storage.User, error) {
	return s.store.ListUsers(ctx, filter, opts)
}

// CreateUser registers a user and drops cached user-scoped reads.
func (s *Service) CreateUser(ctx context.Context, data storage.User) (storage.User, error) {
	user, err := s.store.CreateUser(ctx, data)
	if err != nil {
		return storage.User{}, err
	}
	s.invalidate(userKeyPrefix)
	return user, nil
}

// UpdateUser patches a user and drops cached user-scoped reads.
func (s *Service) UpdateUser(ctx context.Context, id string, patch storage.UserPatch) (storage.User, error) {
	user, err := s.store.UpdateUser(ctx, id, patch)
	if err != nil {
		return storage.User{}, err
	}
	s.invalidate(userKeyPrefix)
	return user, nil
}

// ListAddresses returns a user's addresses, default first by convention of
// the caller's ordering terms.
func (s *Service) ListAddresses(ctx context.Context, filter storage.AddressFilter, opts storage.ListOptions) ([]storage.Address, error) {
	return s.store.ListAddresses(ctx, filter, opts)
}

// DeleteAddress removes an address.
func (s *Service) DeleteAddress(ctx context.Context, id string) error {
	if err := s.store.DeleteAddress(ctx, id); err != nil {
		return err
	}
	s.invalidate(userKeyPrefix)
	return nil
}

// ListPaymentMethods returns a user's saved payment methods.
func (s *Service) ListPaymentMethods(ctx context.Context, filter storage.PaymentMethodFilter, opts storage.ListOptions) ([]storage.PaymentMethod, error) {
	return s.store.ListPaymentMethods(ctx, filter, opts)
}

// DeletePaymentMethod removes a payment method.
func (s *Service) DeletePaymentMethod(ctx context.Context, id string) error {
	if err := s.store.DeletePaymentMethod(ctx, id); err != nil {
		return err
	}
	s.invalidate(userKeyPrefix)
	return nil
}

// ListReviews returns reviews, usually scoped to one product.
func (s *Service) ListReviews(ctx context.Context, filter storage.ReviewFilter, opts storage.ListOptions) ([]storage.Review, error) {
	return s.store.ListReviews(ctx, filter, opts)
}

// CreateReview records a product review.
func (s *Service) CreateReview(ctx context.Context, data storage.Review) (storage.Review, error) {
	review, err := s.store.CreateReview(ctx, data)
	if err != nil {
		return storage.Review{}, err
	}
	s.invalidate(productKeyPrefix)
	return review, nil
}
