package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/makolahq/makola-backend/internal/modules/auth"
	"github.com/makolahq/makola-backend/internal/modules/inventory"
)

// Handler exposes the order HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	// Public tracking lookup, no auth.
	r.Get("/track/{trackingNumber}", h.track)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)
		r.Post("/buy-product", h.buyProduct)
		r.Post("/buy-multiple-products", h.buyMultipleProducts)
		r.Get("/user-orders", h.userOrders)
		r.Get("/seller-orders", h.sellerOrders)
		r.Put("/update-order-status/{orderId}", h.updateOrderStatus)
	})
}

func (h *Handler) buyProduct(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := auth.UserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req BuyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	o, err := h.service.BuyProduct(r.Context(), buyerID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusCreated, o)
}

func (h *Handler) buyMultipleProducts(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := auth.UserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.service.Checkout(r.Context(), buyerID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusCreated, result)
}

func (h *Handler) userOrders(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := auth.UserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	orders, err := h.service.ListBuyerOrders(r.Context(), buyerID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, orders)
}

func (h *Handler) sellerOrders(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := auth.UserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	orders, err := h.service.ListSellerOrders(r.Context(), sellerID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, orders)
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.UserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	orderID := chi.URLParam(r, "orderId")
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	o, err := h.service.UpdateStatus(r.Context(), callerID, auth.IsAdmin(r.Context()), orderID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, o)
}

func (h *Handler) track(w http.ResponseWriter, r *http.Request) {
	trackingNumber := chi.URLParam(r, "trackingNumber")
	view, err := h.service.Track(r.Context(), trackingNumber)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, view)
}

// ── responses ────────────────────────────────────────────────────────────────

func respondServiceError(w http.ResponseWriter, err error) {
	var (
		validationErr   *ValidationError
		authErr         *AuthorizationError
		transitionErr   *InvalidTransitionError
		insufficientErr *inventory.InsufficientStockError
	)
	switch {
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &authErr):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &transitionErr):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &insufficientErr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message":   err.Error(),
			"error":     true,
			"success":   false,
			"available": insufficientErr.Available,
			"requested": insufficientErr.Requested,
		})
	case IsNotFound(err):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func respondData(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": message,
		"error":   true,
		"success": false,
	})
}
