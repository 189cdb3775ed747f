package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/makolahq/makola-backend/internal/modules/auth"
	"github.com/makolahq/makola-backend/internal/modules/currency"
)

const baseCurrency = "USD"

// Handler exposes catalog HTTP endpoints.
type Handler struct {
	service   Service
	converter currency.Converter
}

func NewHandler(service Service, converter currency.Converter) *Handler {
	return &Handler{service: service, converter: converter}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Get("/{id}", h.getProduct)
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)
			r.Post("/", h.createProduct)
			r.Put("/{id}", h.updateProduct)
		})
	})
}

// productView decorates a product with a converted display price. The stored
// selling price is never touched.
type productView struct {
	*Product
	DisplayPrice    float64 `json:"display_price,omitempty"`
	DisplayCurrency string  `json:"display_currency,omitempty"`
}

func (h *Handler) view(p *Product, displayCurrency string) *productView {
	v := &productView{Product: p}
	if displayCurrency != "" && displayCurrency != baseCurrency {
		if converted, err := h.converter.Convert(p.SellingPrice, baseCurrency, displayCurrency); err == nil {
			v.DisplayPrice = converted
			v.DisplayCurrency = displayCurrency
		}
	}
	return v
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := auth.UserID(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	p, err := h.service.CreateProduct(r.Context(), sellerID, req)
	if err != nil {
		code := http.StatusInternalServerError
		if strings.Contains(err.Error(), "required") || strings.Contains(err.Error(), "must be") || strings.Contains(err.Error(), "cannot be") {
			code = http.StatusBadRequest
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusCreated, p)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, ErrNotFound) {
			code = http.StatusNotFound
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, h.view(p, strings.ToUpper(r.URL.Query().Get("currency"))))
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	sellerID := r.URL.Query().Get("seller_id")
	products, err := h.service.ListProducts(r.Context(), category, sellerID)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	displayCurrency := strings.ToUpper(r.URL.Query().Get("currency"))
	views := make([]*productView, 0, len(products))
	for _, p := range products {
		views = append(views, h.view(p, displayCurrency))
	}
	respond(w, http.StatusOK, views)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := auth.UserID(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}
	id := chi.URLParam(r, "id")
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	p, err := h.service.UpdateProduct(r.Context(), sellerID, id, req)
	if err != nil {
		code := http.StatusInternalServerError
		if strings.Contains(err.Error(), "not found") {
			code = http.StatusNotFound
		} else if strings.Contains(err.Error(), "only the listing seller") {
			code = http.StatusForbidden
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, p)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
