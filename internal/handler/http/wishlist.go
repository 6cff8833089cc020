package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/A3Manav/jewellery-wishlist-service/pkg/httputil"
	"github.com/A3Manav/jewellery-wishlist-service/pkg/validator"
)

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required,min=1,max=64"`
}

type materializeRequest struct {
	ProductIDs []string `json:"product_ids" validate:"required,max=500"`
}

// GetWishlist returns the session's reconciled wishlist view.
func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	view, err := h.reconciler.View(r.Context(), sessionID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// AddItem adds a product to the wishlist.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	view, err := h.reconciler.AddToWishlist(r.Context(), sessionID(r), req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: view})
}

// RemoveItem removes a product from the wishlist. Only honored when the
// request carries the profile page marker header.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	view, err := h.reconciler.RemoveFromWishlist(r.Context(), sessionID(r), productID, fromProfilePage(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// RemoveItemLegacy is the retired removal route kept for old storefront
// builds. It always rejects.
func (h *Handler) RemoveItemLegacy(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	view, err := h.reconciler.RemoveFromWishlistLegacy(r.Context(), sessionID(r), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// CheckItem reports wishlist membership for one product.
func (h *Handler) CheckItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	present := h.reconciler.IsInWishlist(r.Context(), sessionID(r), productID)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]bool{"in_wishlist": present},
	})
}

// Materialize replaces the wishlist id set and resolves it into products.
func (h *Handler) Materialize(w http.ResponseWriter, r *http.Request) {
	var req materializeRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	view, err := h.reconciler.Materialize(r.Context(), sessionID(r), req.ProductIDs)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}
