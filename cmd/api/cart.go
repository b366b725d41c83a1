package main

import (
	"errors"
	"net/http"
	"strconv"

	"mogges/internal/domain/carts"
	"mogges/internal/domain/storage"

	"github.com/go-chi/chi/v5"
)

type CartItemPayload struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,min=1"`
}

// SyncItem is a row of the browser cart; only id and quantity are read.
type SyncItem struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

type CartSyncPayload struct {
	Items *[]SyncItem `json:"items"`
}

// getCartHandler godoc
//
//	@Summary	Returns the caller's cart
//	@Tags		cart
//	@Produce	json
//	@Success	200	{array}		carts.Line
//	@Failure	401	{object}	errorEnvelope
//	@Security	ApiKeyAuth
//	@Router		/cart [get]
func (app *application) getCartHandler(w http.ResponseWriter, r *http.Request) {
	lines, err := app.store.Sales.Carts.Lines(r.Context(), claimsFromContext(r).UserID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	app.writeCart(w, lines)
}

// setCartItemHandler godoc
//
//	@Summary		Sets the quantity of a cart row
//	@Description	The quantity is absolute; the row is created when missing.
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CartItemPayload	true	"Product and quantity"
//	@Success		200		{object}	messageEnvelope
//	@Failure		400		{object}	errorEnvelope	"productId and quantity required"
//	@Failure		404		{object}	errorEnvelope	"Product not found"
//	@Security		ApiKeyAuth
//	@Router			/cart [post]
func (app *application) setCartItemHandler(w http.ResponseWriter, r *http.Request) {
	var payload CartItemPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, "productId and quantity required")
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, "productId and quantity required")
		return
	}

	userID := claimsFromContext(r).UserID
	err := app.store.Sales.Carts.SetQuantity(r.Context(), userID, payload.ProductID, payload.Quantity)
	if err != nil {
		app.cartWriteError(w, r, err)
		return
	}
	app.messageResponse(w, http.StatusOK, "Cart updated")
}

// syncCartHandler godoc
//
//	@Summary		Merges a browser cart into the caller's cart
//	@Description	Quantities are added to what is already stored. Rows without id or with a non-positive quantity are skipped. The merge is all-or-nothing and the merged cart is returned.
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CartSyncPayload	true	"Browser cart"
//	@Success		200		{array}		carts.Line
//	@Failure		400		{object}	errorEnvelope	"items array required"
//	@Failure		404		{object}	errorEnvelope	"Product not found"
//	@Security		ApiKeyAuth
//	@Router			/cart/sync [post]
func (app *application) syncCartHandler(w http.ResponseWriter, r *http.Request) {
	var payload CartSyncPayload
	if err := readJSON(w, r, &payload); err != nil || payload.Items == nil {
		app.badRequestResponse(w, r, "items array required")
		return
	}

	items := make([]carts.Item, 0, len(*payload.Items))
	for _, it := range *payload.Items {
		items = append(items, carts.Item{ProductID: it.ID, Quantity: it.Quantity})
	}

	ctx := r.Context()
	userID := claimsFromContext(r).UserID

	var merged []carts.Line
	err := app.store.WithSalesTx(ctx, func(s *storage.SalesTx) error {
		if err := carts.Merge(ctx, s.Carts, userID, items); err != nil {
			return err
		}
		lines, err := s.Carts.Lines(ctx, userID)
		if err != nil {
			return err
		}
		merged = lines
		return nil
	})
	if err != nil {
		app.cartWriteError(w, r, err)
		return
	}

	app.logger.Infow("cart synced", "user_id", userID, "offered", len(items), "rows", len(merged))
	app.writeCart(w, merged)
}

// removeCartItemHandler godoc
//
//	@Summary	Removes a product from the caller's cart
//	@Tags		cart
//	@Produce	json
//	@Param		productID	path		int	true	"Product ID"
//	@Success	200			{object}	messageEnvelope
//	@Security	ApiKeyAuth
//	@Router		/cart/{productID} [delete]
func (app *application) removeCartItemHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, "Invalid product id")
		return
	}

	if err := app.store.Sales.Carts.Remove(r.Context(), claimsFromContext(r).UserID, productID); err != nil {
		app.internalServerError(w, r, err)
		return
	}
	app.messageResponse(w, http.StatusOK, "Item removed")
}

// clearCartHandler godoc
//
//	@Summary	Empties the caller's cart
//	@Tags		cart
//	@Produce	json
//	@Success	200	{object}	messageEnvelope
//	@Security	ApiKeyAuth
//	@Router		/cart [delete]
func (app *application) clearCartHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.store.Sales.Carts.Clear(r.Context(), claimsFromContext(r).UserID); err != nil {
		app.internalServerError(w, r, err)
		return
	}
	app.messageResponse(w, http.StatusOK, "Cart cleared")
}

func (app *application) writeCart(w http.ResponseWriter, lines []carts.Line) {
	if lines == nil {
		lines = []carts.Line{}
	}
	app.jsonResponse(w, http.StatusOK, lines)
}

func (app *application) cartWriteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, carts.ErrUnknownProduct):
		app.notFoundResponse(w, r, "Product not found")
	case errors.Is(err, carts.ErrInvalidQuantity):
		app.badRequestResponse(w, r, "productId and quantity required")
	default:
		app.internalServerError(w, r, err)
	}
}
