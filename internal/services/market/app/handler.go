package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vinitgirdhar/KhelWapas/internal/platform/timeouts"
	"github.com/vinitgirdhar/KhelWapas/internal/services/market/service"
	"github.com/vinitgirdhar/KhelWapas/internal/services/market/storage"
)

// Handler routes marketplace HTTP requests to the service layer.
type Handler struct {
	service *service.Service
	router  chi.Router
}

// NewHandler builds the market router.
func NewHandler(svc *service.Service) *Handler {
	h := &Handler{service: svc}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeouts.Request))

	r.Get("/healthz", h.handleHealthz)

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.handleListProducts)
			r.Post("/", h.handleCreateProduct)
			r.Get("/{id}", h.handleGetProduct)
			r.Patch("/{id}", h.handleUpdateProduct)
			r.Delete("/{id}", h.handleDeleteProduct)
			r.Get("/{id}/reviews", h.handleListReviews)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.handleListOrders)
			r.Post("/", h.handleCreateOrder)
			r.Get("/{id}", h.handleGetOrder)
			r.Patch("/{id}", h.handleUpdateOrder)
		})

		r.Route("/sell-requests", func(r chi.Router) {
			r.Get("/", h.handleListSellRequests)
			r.Post("/", h.handleCreateSellRequest)
			r.Post("/{id}/approve", h.handleApproveSellRequest)
			r.Post("/{id}/reject", h.handleRejectSellRequest)
		})

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/addresses", h.handleListAddresses)
			r.Post("/addresses", h.handleCreateAddress)
			r.Post("/addresses/{id}/default", h.handleSetDefaultAddress)
			r.Delete("/addresses/{id}", h.handleDeleteAddress)
			r.Get("/payment-methods", h.handleListPaymentMethods)
			r.Post("/payment-methods", h.handleCreatePaymentMethod)
			r.Post("/payment-methods/{id}/default", h.handleSetDefaultPaymentMethod)
			r.Delete("/payment-methods/{id}", h.handleDeletePaymentMethod)
		})

		r.Get("/admin/stats", h.handleDashboardStats)

		r.Route("/cache", func(r chi.Router) {
			r.Get("/", h.handleCacheStats)
			r.Post("/invalidate", h.handleCacheInvalidate)
		})
	})

	h.router = r
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()

	query := service.ProductListQuery{
		Category: q.Get("category"),
		Type:     q.Get("type"),
		Page:     atoiDefault(q.Get("page"), 0),
		Limit:    atoiDefault(q.Get("limit"), 0),
	}
	if raw := q.Get("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid available value %q", raw))
			return
		}
		query.Available = &available
	}

	list, cacheHit, err := h.service.ListProducts(r.Context(), query)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	w.Header().Set("X-Cache", cacheStatus(cacheHit))
	w.Header().Set("X-Response-Time", time.Since(start).String())
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, found, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, errors.New("product not found"))
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var data storage.Product
	if err := decodeJSON(r, &data); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	product, err := h.service.CreateProduct(r.Context(), data)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var patch storage.ProductPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	product, err := h.service.UpdateProduct(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListReviews(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")
	reviews, err := h.service.ListReviews(r.Context(), storage.ReviewFilter{ProductID: &productID}, storage.ListOptions{
		Order: []storage.OrderTerm{{Field: "createdAt", Desc: true}},
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()

	query := service.OrderListQuery{
		UserID:        q.Get("userId"),
		PaymentStatus: q.Get("paymentStatus"),
		Page:          atoiDefault(q.Get("page"), 0),
		Limit:         atoiDefault(q.Get("limit"), 0),
		IncludeUser:   q.Get("includeUser") == "true",
	}

	list, cacheHit, err := h.service.ListOrders(r.Context(), query)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	w.Header().Set("X-Cache", cacheStatus(cacheHit))
	w.Header().Set("X-Response-Time", time.Since(start).String())
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	includeUser := r.URL.Query().Get("includeUser") == "true"
	order, found, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"), includeUser)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, errors.New("order not found"))
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var data storage.Order
	if err := decodeJSON(r, &data); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	order, err := h.service.CreateOrder(r.Context(), data)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var patch storage.OrderPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	order, err := h.service.UpdateOrder(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) handleListSellRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.SellRequestFilter{}
	if status := q.Get("status"); status != "" {
		filter.Status = &status
	}
	if userID := q.Get("userId"); userID != "" {
		filter.UserID = &userID
	}
	requests, err := h.service.ListSellRequests(r.Context(), filter, storage.SellRequestListOptions{
		ListOptions: storage.ListOptions{
			Order: []storage.OrderTerm{{Field: "createdAt", Desc: true}},
		},
		IncludeUser: q.Get("includeUser") == "true",
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (h *Handler) handleCreateSellRequest(w http.ResponseWriter, r *http.Request) {
	var data storage.SellRequest
	if err := decodeJSON(r, &data); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	request, err := h.service.CreateSellRequest(r.Context(), data)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

func (h *Handler) handleApproveSellRequest(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.ApproveSellRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) handleRejectSellRequest(w http.ResponseWriter, r *http.Request) {
	request, err := h.service.RejectSellRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (h *Handler) handleListAddresses(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	addresses, err := h.service.ListAddresses(r.Context(), storage.AddressFilter{UserID: &userID}, storage.ListOptions{
		Order: []storage.OrderTerm{{Field: "isDefault", Desc: true}, {Field: "createdAt", Desc: true}},
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addresses)
}

func (h *Handler) handleCreateAddress(w http.ResponseWriter, r *http.Request) {
	var data storage.Address
	if err := decodeJSON(r, &data); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	data.UserID = chi.URLParam(r, "userID")
	address, err := h.service.CreateAddress(r.Context(), data)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, address)
}

func (h *Handler) handleSetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	address, err := h.service.SetDefaultAddress(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, address)
}

func (h *Handler) handleDeleteAddress(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAddress(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	methods, err := h.service.ListPaymentMethods(r.Context(), storage.PaymentMethodFilter{UserID: &userID}, storage.ListOptions{
		Order: []storage.OrderTerm{{Field: "isDefault", Desc: true}, {Field: "createdAt", Desc: true}},
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, methods)
}

func (h *Handler) handleCreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var data storage.PaymentMethod
	if err := decodeJSON(r, &data); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	data.UserID = chi.URLParam(r, "userID")
	method, err := h.service.CreatePaymentMethod(r.Context(), data)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, method)
}

func (h *Handler) handleSetDefaultPaymentMethod(w http.ResponseWriter, r *http.Request) {
	method, err := h.service.SetDefaultPaymentMethod(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, method)
}

func (h *Handler) handleDeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePaymentMethod(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetDashboardStats(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Cache().GetStats())
}

// cacheInvalidateRequest selects cached entries to drop: a regex pattern,
// or everything when All is set.
type cacheInvalidateRequest struct {
	Pattern string `json:"pattern"`
	All     bool   `json:"all"`
}

func (h *Handler) handleCacheInvalidate(w http.ResponseWriter, r *http.Request) {
	var req cacheInvalidateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	responseCache := h.service.Cache()
	if req.All {
		responseCache.Clear()
		writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
		return
	}
	if req.Pattern == "" {
		writeError(w, http.StatusBadRequest, errors.New("pattern or all is required"))
		return
	}
	removed, err := responseCache.InvalidatePattern(req.Pattern)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid pattern: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": removed})
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

func atoiDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, storage.ErrAlreadyExists):
		writeError(w, http.StatusConflict, err)
	default:
		log.Printf("market request failed: %v", err)
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}
