package service

import (
	"context"

	"github.com/vinitgirdhar/KhelWapas/internal/services/market/storage"
)

// DashboardStats summarizes marketplace activity for admin screens.
type DashboardStats struct {
	Users               int     `json:"users"`
	Products            int     `json:"products"`
	Orders              int     `json:"orders"`
	PendingSellRequests int     `json:"pendingSellRequests"`
	Revenue             float64 `json:"revenue"`
}

// GetDashboardStats aggregates counts and the order revenue sum.
func (s *Service) GetDashboardStats(ctx context.Context) (DashboardStats, error) {
	users, err := s.store.CountUsers(ctx, storage.UserFilter{})
	if err != nil {
		return DashboardStats{}, err
	}
	products, err := s.store.CountProducts(ctx, storage.ProductFilter{})
	if err != nil {
		return DashboardStats{}, err
	}
	orders, err := s.store.CountOrders(ctx, storage.OrderFilter{})
	if err != nil {
		return DashboardStats{}, err
	}
	pending := storage.SellRequestPending
	pendingRequests, err := s.store.CountSellRequests(ctx, storage.SellRequestFilter{Status: &pending})
	if err != nil {
		return DashboardStats{}, err
	}
	revenue, err := s.store.SumOrderTotals(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	return DashboardStats{
		Users:               users,
		Products:            products,
		Orders:              orders,
		PendingSellRequests: pendingRequests,
		Revenue:             revenue,
	}, nil
}
