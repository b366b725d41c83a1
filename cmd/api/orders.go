package main

import (
	"errors"
	"net/http"
	"strconv"

	"mogges/internal/domain/orders"
	"mogges/internal/domain/storage"

	"github.com/go-chi/chi/v5"
)

type OrderStatusPayload struct {
	Status orders.Status `json:"status"`
}

type CheckoutResponse struct {
	Message string `json:"message" example:"Order placed"`
	*orders.Placed
}

func orderIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (app *application) writeOrders(w http.ResponseWriter, list []orders.Summary) {
	if list == nil {
		list = []orders.Summary{}
	}
	app.jsonResponse(w, http.StatusOK, list)
}

// listOrdersHandler godoc
//
//	@Summary	Lists every order
//	@Tags		orders
//	@Produce	json
//	@Success	200	{array}		orders.Summary
//	@Failure	401	{object}	errorEnvelope
//	@Failure	403	{object}	errorEnvelope
//	@Security	ApiKeyAuth
//	@Router		/orders [get]
func (app *application) listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	list, err := app.store.Sales.Orders.List(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	app.writeOrders(w, list)
}

// myOrdersHandler godoc
//
//	@Summary	Lists the caller's orders
//	@Tags		orders
//	@Produce	json
//	@Success	200	{array}		orders.Summary
//	@Failure	401	{object}	errorEnvelope
//	@Security	ApiKeyAuth
//	@Router		/orders/mine [get]
func (app *application) myOrdersHandler(w http.ResponseWriter, r *http.Request) {
	list, err := app.store.Sales.Orders.ListForUser(r.Context(), claimsFromContext(r).UserID, 0)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	app.writeOrders(w, list)
}

// getOrderHandler godoc
//
//	@Summary	Fetches an order with its lines
//	@Tags		orders
//	@Produce	json
//	@Param		orderID	path		int	true	"Order ID"
//	@Success	200		{object}	orders.Detail
//	@Failure	404		{object}	errorEnvelope	"Order not found"
//	@Security	ApiKeyAuth
//	@Router		/orders/{orderID} [get]
func (app *application) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(r)
	if !ok {
		app.notFoundResponse(w, r, "Order not found")
		return
	}

	order, err := app.store.Sales.Orders.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			app.notFoundResponse(w, r, "Order not found")
			return
		}
		app.internalServerError(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, order)
}

// updateOrderStatusHandler godoc
//
//	@Summary		Changes the status of an order
//	@Description	Any status may follow any other.
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			orderID	path		int					true	"Order ID"
//	@Param			payload	body		OrderStatusPayload	true	"pending, paid, shipped or cancelled"
//	@Success		200		{object}	messageEnvelope
//	@Failure		400		{object}	errorEnvelope	"Invalid status"
//	@Failure		403		{object}	errorEnvelope	"Forbidden - Admin access required"
//	@Failure		404		{object}	errorEnvelope	"Order not found"
//	@Security		ApiKeyAuth
//	@Router			/orders/{orderID}/status [put]
func (app *application) updateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(r)
	if !ok {
		app.notFoundResponse(w, r, "Order not found")
		return
	}

	var payload OrderStatusPayload
	if err := readJSON(w, r, &payload); err != nil || !payload.Status.Valid() {
		app.badRequestResponse(w, r, "Invalid status")
		return
	}

	if err := app.store.Sales.Orders.UpdateStatus(r.Context(), id, payload.Status); err != nil {
		switch {
		case errors.Is(err, orders.ErrNotFound):
			app.notFoundResponse(w, r, "Order not found")
		case errors.Is(err, orders.ErrInvalidStatus):
			app.badRequestResponse(w, r, "Invalid status")
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.logger.Infow("order status updated", "order_id", id, "status", payload.Status, "by", claimsFromContext(r).UserID)
	app.messageResponse(w, http.StatusOK, "Order status updated")
}

// checkoutHandler godoc
//
//	@Summary		Places an order from the caller's cart
//	@Description	Unit prices are copied into the order, the order starts as pending and the cart is emptied, all in one transaction. Shipping is free from 500 kr, otherwise 49 kr.
//	@Tags			orders
//	@Produce		json
//	@Success		201	{object}	CheckoutResponse
//	@Failure		400	{object}	errorEnvelope	"Cart is empty"
//	@Failure		401	{object}	errorEnvelope
//	@Security		ApiKeyAuth
//	@Router			/orders/checkout [post]
func (app *application) checkoutHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := claimsFromContext(r).UserID

	var placed *orders.Placed
	err := app.store.WithSalesTx(ctx, func(s *storage.SalesTx) error {
		p, err := s.Orders.CreateFromCart(ctx, userID)
		if err != nil {
			return err
		}
		placed = p
		return nil
	})
	if err != nil {
		if errors.Is(err, orders.ErrEmptyCart) {
			app.badRequestResponse(w, r, "Cart is empty")
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.logger.Infow("order placed", "order_id", placed.ID, "order_number", placed.OrderNumber, "user_id", userID, "total", placed.Total.String())
	app.jsonResponse(w, http.StatusCreated, &CheckoutResponse{Message: "Order placed", Placed: placed})
}
