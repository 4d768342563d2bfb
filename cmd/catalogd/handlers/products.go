// Package handlers provides the REST API handlers for the catalog service.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	apperrors "github.com/swipeapp/catalog/internal/errors"
	"github.com/swipeapp/catalog/internal/service"
)

const maxUploadBytes = 10 << 20 // 10 MB

// ProductHandler handles product creation and listing.
type ProductHandler struct {
	svc *service.CatalogService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(svc *service.CatalogService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// Create handles POST /products.
// Accepts a multipart form with product_name, product_type, price, tax and an
// optional image file. The submission is durably queued and uploaded by the
// background sync; this endpoint never blocks on the remote service.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		http.Error(w, "price must be a number", http.StatusBadRequest)
		return
	}
	tax := 0.0
	if v := r.FormValue("tax"); v != "" {
		tax, err = strconv.ParseFloat(v, 64)
		if err != nil {
			http.Error(w, "tax must be a number", http.StatusBadRequest)
			return
		}
	}

	input := service.CreateProductInput{
		Name:     r.FormValue("product_name"),
		Category: r.FormValue("product_type"),
		Price:    price,
		TaxRate:  tax,
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		input.Image = file
		input.ImageName = header.Filename
	}

	product, err := h.svc.CreatePendingProduct(r.Context(), input)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to queue submission", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(product)
}

// List handles GET /products.
// Proxies the published product list from the remote service.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.ListProducts(r.Context())
	if err != nil {
		http.Error(w, "Failed to fetch products", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(products)
}

// Queue handles GET /queue.
// Returns the local submissions still awaiting upload, oldest first.
func (h *ProductHandler) Queue(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListQueue()
	if err != nil {
		http.Error(w, "Failed to list queue", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}
