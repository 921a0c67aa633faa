package service

import (
	"context"
	"fmt"

	"github.com/vinitgirdhar/KhelWapas/internal/services/market/storage"
)

// CreateSellRequest files a new sell request; it always starts Pending.
func (s *Service) CreateSellRequest(ctx context.Context, data storage.SellRequest) (storage.SellRequest, error) {
	request, err := s.store.CreateSellRequest(ctx, data)
	if err != nil {
		return storage.SellRequest{}, err
	}
	s.invalidate(sellRequestKeyPrefix)
	return request, nil
}

// ListSellRequests returns sell requests for review screens.
func (s *Service) ListSellRequests(ctx context.Context, filter storage.SellRequestFilter, opts storage.SellRequestListOptions) ([]storage.SellRequest, error) {
	return s.store.ListSellRequests(ctx, filter, opts)
}

// ApproveSellRequest marks a pending request Approved and spawns the
// corresponding preowned product listing. This is the only operation that
// turns a sell request into catalog stock.
func (s *Service) ApproveSellRequest(ctx context.Context, id string) (storage.Product, error) {
	request, found, err := s.store.GetSellRequest(ctx, id, false)
	if err != nil {
		return storage.Product{}, err
	}
	if !found {
		return storage.Product{}, fmt.Errorf("approve sell request: %w", storage.ErrNotFound)
	}
	if request.Status != storage.SellRequestPending {
		return storage.Product{}, fmt.Errorf("approve sell request: status is %s, want %s", request.Status, storage.SellRequestPending)
	}

	approved := storage.SellRequestApproved
	if _, err := s.store.UpdateSellRequest(ctx, id, storage.SellRequestPatch{Status: &approved}); err != nil {
		return storage.Product{}, err
	}

	product, err := s.store.CreateProduct(ctx, storage.Product{
		Name:        request.Title,
		Category:    request.Category,
		Type:        storage.ProductTypePreowned,
		Price:       request.Price,
		ImageURLs:   request.ImageURLs,
		Description: request.Description,
		IsAvailable: true,
	})
	if err != nil {
		return storage.Product{}, fmt.Errorf("approve sell request: %w", err)
	}

	s.invalidate(sellRequestKeyPrefix)
	s.invalidate(productKeyPrefix)
	return product, nil
}

// RejectSellRequest marks a pending request Rejected.
func (s *Service) RejectSellRequest(ctx context.Context, id string) (storage.SellRequest, error) {
	request, found, err := s.store.GetSellRequest(ctx, id, false)
	if err != nil {
		return storage.SellRequest{}, err
	}
	if !found {
		return storage.SellRequest{}, fmt.Errorf("reject sell request: %w", storage.ErrNotFound)
	}
	if request.Status != storage.SellRequestPending {
		return storage.SellRequest{}, fmt.Errorf("reject sell request: status is %s, want %s", request.Status, storage.SellRequestPending)
	}
	rejected := storage.SellRequestRejected
	updated, err := s.store.UpdateSellRequest(ctx, id, storage.SellRequestPatch{Status: &rejected})
	if err != nil {
		return storage.SellRequest{}, err
	}
	s.invalidate(sellRequestKeyPrefix)
	return updated, nil
}
