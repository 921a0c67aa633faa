package service

import (
	"context"
	"fmt"

	"github.com/vinitgirdhar/KhelWapas/internal/services/market/storage"
)

// boolPtr values shared by the clear-then-set sequences.
var (
	flagTrue  = true
	flagFalse = false
)

// CreateAddress inserts an address. When the new address is flagged
// default, existing defaults for the user are cleared first so at most one
// default survives.
func (s *Service) CreateAddress(ctx context.Context, data storage.Address) (storage.Address, error) {
	if data.IsDefault {
		if err := s.clearDefaultAddresses(ctx, data.UserID); err != nil {
			return storage.Address{}, err
		}
	}
	address, err := s.store.CreateAddress(ctx, data)
	if err != nil {
		return storage.Address{}, err
	}
	s.invalidate(userKeyPrefix)
	return address, nil
}

// SetDefaultAddress makes the given address the user's only default via an
// explicit clear-then-set sequence.
func (s *Service) SetDefaultAddress(ctx context.Context, userID, addressID string) (storage.Address, error) {
	address, found, err := s.store.GetAddress(ctx, addressID)
	if err != nil {
		return storage.Address{}, err
	}
	if !found {
		return storage.Address{}, fmt.Errorf("set default address: %w", storage.ErrNotFound)
	}
	if address.UserID != userID {
		return storage.Address{}, fmt.Errorf("set default address: address does not belong to user")
	}
	if err := s.clearDefaultAddresses(ctx, userID); err != nil {
		return storage.Address{}, err
	}
	updated, err := s.store.UpdateAddress(ctx, addressID, storage.AddressPatch{IsDefault: &flagTrue})
	if err != nil {
		return storage.Address{}, err
	}
	s.invalidate(userKeyPrefix)
	return updated, nil
}

func (s *Service) clearDefaultAddresses(ctx context.Context, userID string) error {
	return s.store.UpdateAddresses(ctx,
		storage.AddressFilter{UserID: &userID, IsDefault: &flagTrue},
		storage.AddressPatch{IsDefault: &flagFalse},
	)
}

// CreatePaymentMethod inserts a payment method, clearing existing defaults
// first when the new method is flagged default.
func (s *Service) CreatePaymentMethod(ctx context.Context, data storage.PaymentMethod) (storage.PaymentMethod, error) {
	if data.IsDefault {
		if err := s.clearDefaultPaymentMethods(ctx, data.UserID); err != nil {
			return storage.PaymentMethod{}, err
		}
	}
	method, err := s.store.CreatePaymentMethod(ctx, data)
	if err != nil {
		return storage.PaymentMethod{}, err
	}
	s.invalidate(userKeyPrefix)
	return method, nil
}

// SetDefaultPaymentMethod makes the given method the user's only default.
func (s *Service) SetDefaultPaymentMethod(ctx context.Context, userID, methodID string) (storage.PaymentMethod, error) {
	method, found, err := s.store.GetPaymentMethod(ctx, methodID)
	if err != nil {
		return storage.PaymentMethod{}, err
	}
	if !found {
		return storage.PaymentMethod{}, fmt.Errorf("set default payment method: %w", storage.ErrNotFound)
	}
	if method.UserID != userID {
		return storage.PaymentMethod{}, fmt.Errorf("set default payment method: method does not belong to user")
	}
	if err := s.clearDefaultPaymentMethods(ctx, userID); err != nil {
		return storage.PaymentMethod{}, err
	}
	updated, err := s.store.UpdatePaymentMethod(ctx, methodID, storage.PaymentMethodPatch{IsDefault: &flagTrue})
	if err != nil {
		return storage.PaymentMethod{}, err
	}
	s.invalidate(userKeyPrefix)
	return updated, nil
}

func (s *Service) clearDefaultPaymentMethods(ctx context.Context, userID string) error {
	return s.store.UpdatePaymentMethods(ctx,
		storage.PaymentMethodFilter{UserID: &userID, IsDefault: &flagTrue},
		storage.PaymentMethodPatch{IsDefault: &flagFalse},
	)
}
